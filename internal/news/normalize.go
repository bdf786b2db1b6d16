// Package news aggregates company and topic news from RSS feeds and
// metered search APIs.
package news

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// MaxQueryRunes caps a normalized query.
const MaxQueryRunes = 30

var (
	legalSuffixRe = regexp.MustCompile(`株式会社|有限会社|合同会社`)
	separatorRe   = regexp.MustCompile(`[｜|\-–—:：]`)
	unsafeCharRe  = regexp.MustCompile(`["'()<>]`)
	boolOpRe      = regexp.MustCompile(`(?i)\b(AND|OR|NOT)\b`)
)

// knownBrands are short aliases searched alongside the registered name.
var knownBrands = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ALSOK`),
	regexp.MustCompile(`セコム`),
	regexp.MustCompile(`ソフトバンク`),
	regexp.MustCompile(`トヨタ`),
	regexp.MustCompile(`ホンダ`),
	regexp.MustCompile(`ソニー`),
	regexp.MustCompile(`パナソニック`),
	regexp.MustCompile(`日立`),
	regexp.MustCompile(`(?i)NEC`),
	regexp.MustCompile(`(?i)NTT`),
}

// StripLegalSuffix removes 株式会社/有限会社/合同会社 wherever they appear.
func StripLegalSuffix(name string) string {
	return strings.TrimSpace(legalSuffixRe.ReplaceAllString(name, ""))
}

// NormalizeQuery turns a display name into a provider-safe search query.
// It never returns an empty string for non-empty input.
func NormalizeQuery(raw string) string {
	q := width.Fold.String(raw)
	q = StripLegalSuffix(q)
	q = strings.TrimSpace(separatorRe.Split(q, 2)[0])
	q = unsafeCharRe.ReplaceAllString(q, " ")
	q = boolOpRe.ReplaceAllString(q, " ")
	q = strings.Join(strings.Fields(q), " ")
	if utf8.RuneCountInString(q) > MaxQueryRunes {
		q = strings.TrimSpace(string([]rune(q)[:MaxQueryRunes]))
	}
	if q == "" {
		return raw
	}
	return q
}

// BrandName returns a short alias for a company name: a known brand found
// inside it, else the suffix-stripped name when that differs and is longer
// than two characters. It returns "" when there is no alias.
func BrandName(name string) string {
	for _, re := range knownBrands {
		if m := re.FindString(name); m != "" {
			return m
		}
	}
	simple := StripLegalSuffix(name)
	if simple != name && utf8.RuneCountInString(simple) > 2 {
		return simple
	}
	return ""
}

// LooksGeneric reports whether q reads like a topic query rather than a
// company name: quoting, boolean operators, spaces, or excessive length.
func LooksGeneric(q string) bool {
	return strings.ContainsAny(q, `"'()`) ||
		boolOpRe.MatchString(q) ||
		strings.Contains(q, " ") ||
		utf8.RuneCountInString(q) > 40
}
