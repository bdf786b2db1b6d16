package scrape

import (
	"regexp"

	"golang.org/x/text/width"

	"github.com/sells-group/lead-intel/internal/model"
)

const amount = `([0-9,]+(?:\.[0-9]+)?(?:億|万|千万)?円?)`

var (
	revenuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`売上高[:\s]*` + amount),
		regexp.MustCompile(`売上[:\s]*` + amount),
		regexp.MustCompile(`年商[:\s]*` + amount),
	}
	capitalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`資本金[:\s]*` + amount),
	}
	employeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`従業員数?[\s\S]{0,60}?([0-9,]+)\s*(?:名|人)`),
		regexp.MustCompile(`社員数[\s\S]{0,60}?([0-9,]+)\s*(?:名|人)`),
	}
	foundedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`設立[:\s]*([0-9]{4}年[0-9]{1,2}月?(?:[0-9]{1,2}日)?)`),
		regexp.MustCompile(`創業[:\s]*([0-9]{4}年[0-9]{1,2}月?(?:[0-9]{1,2}日)?)`),
		regexp.MustCompile(`設立[:\s]*([0-9]{4})`),
	}
	fiscalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`決算(?:期|月)?[:\s]*([0-9]{1,2}月)`),
		regexp.MustCompile(`([0-9]{1,2}月)決算`),
	}
)

// ParseCompanyInfo extracts corporate facts from visible page text.
// Full-width digits and colons are folded before matching.
func ParseCompanyInfo(text string) model.CompanyInfo {
	folded := width.Fold.String(text)
	info := model.CompanyInfo{
		Revenue:       firstMatch(folded, revenuePatterns),
		Capital:       firstMatch(folded, capitalPatterns),
		Founded:       firstMatch(folded, foundedPatterns),
		FiscalYearEnd: firstMatch(folded, fiscalPatterns),
	}
	if n := firstMatch(folded, employeePatterns); n != "" {
		info.Employees = n + "名"
	}
	return info
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}
