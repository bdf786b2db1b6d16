package llm

import (
	"embed"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-intel/internal/model"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"truncate": truncateRunes,
	"join":     strings.Join,
	"joinOr": func(list []string) string {
		if len(list) == 0 {
			return "不明"
		}
		return strings.Join(list, ", ")
	},
	"concat": func(a, b []string) []string {
		return append(append([]string{}, a...), b...)
	},
}).ParseFS(promptFS, "prompts/*.tmpl"))

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", eris.Wrapf(err, "llm: render %s", name)
	}
	return sb.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type classifyData struct {
	CompanyName string
	Title       string
	Description string
	Body        string
	Industries  []string
}

type strategyData struct {
	Company         model.CompanyProfile
	Financial       *model.FinancialRecord
	BusinessSegment string
	Page            model.ScrapedPage
	CompanyNews     []model.NewsItem
	IndustryNews    []model.NewsItem
	InquiryBody     string
	Additional      *model.ScrapedPage
}

type repairData struct {
	CompanyName  string
	MissingJSON  string
	SectionsJSON string
}

type inboundData struct {
	CompanyName string
	Description string
	Body        string
	InflowType  string
	LPTitle     string
	LPURL       string
}

type ocrData struct {
	Hint string
}
