package scrape

import (
	"bytes"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
)

const (
	htmlTextBudget = 10000
	// thinBodyRunes triggers the readability fallback.
	thinBodyRunes = 200
)

var recruitKeywords = []string{"recruit", "採用", "career"}

// htmlPage is the parsed view of one HTML document.
type htmlPage struct {
	raw         string
	title       string
	description string
	// text is the full visible text used for fact extraction.
	text         string
	recruitLinks []string
}

// decodeHTML converts body to UTF-8 using the declared or sniffed charset.
// Many Japanese corporate sites still serve Shift_JIS or EUC-JP.
func decodeHTML(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return string(body)
	}
	return buf.String()
}

func parseHTML(body []byte, contentType, pageURL string) (*htmlPage, error) {
	raw := decodeHTML(body, contentType)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	base, _ := url.Parse(pageURL)

	p := &htmlPage{raw: raw}
	p.title = strings.TrimSpace(doc.Find("title").First().Text())
	p.description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	p.recruitLinks = recruitLinks(doc, base)

	doc.Find("script, style, noscript, nav, header, footer").Remove()
	p.text = collapse(doc.Find("body").Text())

	if utf8.RuneCountInString(p.text) < thinBodyRunes && base != nil {
		if article, err := readability.FromReader(strings.NewReader(raw), base); err == nil {
			if alt := collapse(article.TextContent); utf8.RuneCountInString(alt) > utf8.RuneCountInString(p.text) {
				p.text = alt
			}
		}
	}
	return p, nil
}

// pageText returns the visible text of an HTML document for probing.
func pageText(body []byte, contentType string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decodeHTML(body, contentType)))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return collapse(doc.Find("body").Text())
}

func recruitLinks(doc *goquery.Document, base *url.URL) []string {
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.ToLower(a.Text())
		alt := strings.ToLower(a.Find("img").AttrOr("alt", ""))
		if !containsAny(text, recruitKeywords) && !containsAny(alt, recruitKeywords) {
			return
		}
		abs, ok := resolve(base, a.AttrOr("href", ""))
		if ok && !slices.Contains(links, abs) {
			links = append(links, abs)
		}
	})
	return links
}

func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	return ref.String(), true
}
