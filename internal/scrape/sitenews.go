package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
)

const (
	siteNewsLimit  = 5
	siteNewsSource = "公式サイト"
)

// newsPaths are IR and news index paths, IR first for listed companies.
var newsPaths = []string{
	"/ir", "/ir/news", "/ir/topics", "/ir/info",
	"/news", "/news/release", "/newsrelease",
	"/press", "/pressrelease", "/press-release",
	"/info", "/topics", "/information",
	"/corporate/news", "/company/news",
	"/oshirase", "/whatsnew",
}

var (
	newsTitleMarkers = []string{"news", "お知らせ", "新着", "ir", "投資家", "プレス", "リリース"}
	newsBodyMarkers  = []string{"ニュース", "プレスリリース"}

	newsSelectors = []string{
		".news-list li", ".newsList li", ".news li", ".news-item",
		".press-list li", ".pressrelease li", ".ir-list li",
		"dl.news dt", "table.news tr", ".topic-list li",
		"article", ".post", ".entry",
	}

	navigationKeywords = []string{
		"サイトマップ", "english", "トップ", "ホーム", "top", "home",
		"お問い合わせ", "contact", "アクセス", "access", "プライバシー",
		"privacy", "会社概要", "about", "採用", "recruit", "career",
		"ログイン", "login", "検索", "search", "menu", "メニュー",
		"お近くの", "日本語", "japanese", "language",
		"faq", "よくある質問", "お客様", "customer", "サービス一覧",
	}
	newsURLMarkers = []string{"/news", "/press", "/ir", "/release", "/info", "/topics"}

	itemDateRe  = regexp.MustCompile(`(\d{4})[年./-](\d{1,2})[月./-](\d{1,2})日?`)
	titleYearRe = regexp.MustCompile(`202[0-9]`)
)

// SiteNewsScraper reads news straight from a company's own news or IR
// index. It is the fallback when no news provider found anything.
type SiteNewsScraper struct {
	fetcher *Fetcher
	timeout time.Duration
}

// NewSiteNewsScraper creates a SiteNewsScraper sharing f's pacing.
func NewSiteNewsScraper(f *Fetcher, timeout time.Duration) *SiteNewsScraper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SiteNewsScraper{fetcher: f, timeout: timeout}
}

// Fetch probes the site's news paths and returns items from the first page
// that looks like a news index and yields any.
func (n *SiteNewsScraper) Fetch(ctx context.Context, siteURL string) []model.NewsItem {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return []model.NewsItem{}
	}
	origin := base.Scheme + "://" + base.Host

	for _, p := range newsPaths {
		if ctx.Err() != nil {
			break
		}
		pageURL := origin + p
		resp, err := n.fetcher.Get(ctx, pageURL, n.timeout)
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(decodeHTML(resp.Body, resp.ContentType)))
		if err != nil || !looksLikeNewsIndex(doc) {
			continue
		}
		if items := ParseNewsIndex(doc, origin); len(items) > 0 {
			zap.L().Info("scrape: site news found", zap.String("url", pageURL), zap.Int("items", len(items)))
			if len(items) > siteNewsLimit {
				items = items[:siteNewsLimit]
			}
			return items
		}
	}
	return []model.NewsItem{}
}

func looksLikeNewsIndex(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").Text())
	if containsAny(title, newsTitleMarkers) {
		return true
	}
	return containsAny(strings.ToLower(doc.Find("body").Text()), newsBodyMarkers)
}

// ParseNewsIndex extracts news entries using the first selector that
// yields any valid item.
func ParseNewsIndex(doc *goquery.Document, origin string) []model.NewsItem {
	base, _ := url.Parse(origin)
	var items []model.NewsItem
	seen := map[string]bool{}

	for _, sel := range newsSelectors {
		doc.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if len(items) >= 2*siteNewsLimit {
				return false
			}
			link := el.Find("a").First()
			if link.Length() == 0 && goquery.NodeName(el) == "a" {
				link = el
			}
			if link.Length() == 0 {
				return true
			}
			title := collapse(link.Text())
			href, ok := resolve(base, link.AttrOr("href", ""))
			if title == "" || !ok || seen[title] || !validNewsItem(title, href) {
				return true
			}
			seen[title] = true
			items = append(items, model.NewsItem{
				Title:       title,
				URL:         href,
				PublishedAt: itemDate(el.Text()),
				Source:      siteNewsSource,
			})
			return true
		})
		if len(items) > 0 {
			break
		}
	}
	return items
}

func validNewsItem(title, href string) bool {
	n := utf8.RuneCountInString(title)
	if n < 10 || n > 200 {
		return false
	}
	if containsAny(strings.ToLower(title), navigationKeywords) {
		return false
	}
	return containsAny(href, newsURLMarkers) ||
		itemDateRe.MatchString(title) ||
		titleYearRe.MatchString(title) ||
		n > 20
}

// itemDate finds a date in an entry's text and renders it as YYYY-MM-DD,
// or returns "" when none is present.
func itemDate(text string) string {
	m := itemDateRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return m[0]
	}
	return t.Format("2006-01-02")
}
