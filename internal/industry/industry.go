// Package industry classifies company text against an embedded subset of
// the Japan Standard Industrial Classification.
package industry

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed classification.yaml
var classificationYAML []byte

// Category is a top-level division (大分類).
type Category struct {
	Code string        `yaml:"code"`
	Name string        `yaml:"name"`
	Sub  []SubCategory `yaml:"sub"`
}

// SubCategory is a major group (中分類) with its detection keywords.
type SubCategory struct {
	Code      string   `yaml:"code"`
	Name      string   `yaml:"name"`
	Keywords  []string `yaml:"keywords"`
	NewsQuery string   `yaml:"news_query"`
}

// Match is the result of a keyword lookup.
type Match struct {
	CategoryCode    string
	CategoryName    string
	SubCategoryCode string
	SubCategoryName string
	NewsQuery       string
	Keyword         string
}

// Table is an ordered classification table.
type Table struct {
	Categories []Category `yaml:"categories"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded table, parsed once.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(classificationYAML)
	})
	return defaultTable, defaultErr
}

// Parse decodes a table from YAML.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "industry: parse table")
	}
	if len(t.Categories) == 0 {
		return nil, eris.New("industry: table has no categories")
	}
	return &t, nil
}

// Detect returns the first subcategory with a keyword contained in text,
// scanning in table order. Matching is case-insensitive.
func (t *Table) Detect(text string) (Match, bool) {
	lower := strings.ToLower(text)
	for _, cat := range t.Categories {
		for _, sub := range cat.Sub {
			for _, kw := range sub.Keywords {
				if kw == "" || !strings.Contains(lower, strings.ToLower(kw)) {
					continue
				}
				return Match{
					CategoryCode:    cat.Code,
					CategoryName:    cat.Name,
					SubCategoryCode: sub.Code,
					SubCategoryName: sub.Name,
					NewsQuery:       sub.NewsQuery,
					Keyword:         kw,
				}, true
			}
		}
	}
	return Match{}, false
}

// NewsQuery returns the news query of the first subcategory whose name
// contains, or is contained in, name. Unknown names get a generic query.
func (t *Table) NewsQuery(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower != "" {
		for _, cat := range t.Categories {
			for _, sub := range cat.Sub {
				subName := strings.ToLower(sub.Name)
				if strings.Contains(subName, lower) || strings.Contains(lower, subName) {
					return sub.NewsQuery
				}
			}
		}
	}
	return `"` + name + `" AND ("業界" OR "動向")`
}

// SubCategoryNames lists "sub（category）" labels for prompt context.
func (t *Table) SubCategoryNames() []string {
	var names []string
	for _, cat := range t.Categories {
		for _, sub := range cat.Sub {
			names = append(names, sub.Name+"（"+cat.Name+"）")
		}
	}
	return names
}
