package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

const homeHTML = `<!doctype html><html><head>
<title>株式会社サンプル | 物流DX</title>
<meta name="description" content="物流の現場を変える">
<script src="/wp-content/themes/sample/app.js"></script>
</head><body>
<header><a href="/">トップ</a></header>
<nav><a href="/company">会社概要</a></nav>
<main>
<h1>物流の現場を、もっとスマートに。</h1>
<p>倉庫管理システムを提供しています。</p>
<a href="/recruit/">採用情報</a>
<a href="https://jobs.example.net/sample"><img src="b.png" alt="Career"></a>
<a href="/recruit/">採用情報はこちら</a>
<a href="mailto:saiyo@example.com">採用窓口</a>
</main>
<footer>資本金 9億円</footer>
</body></html>`

const companyHTML = `<html><body><table>
<tr><th>設立</th><td>2001年6月1日</td></tr>
<tr><th>資本金</th><td>1,000万円</td></tr>
<tr><th>従業員数</th><td>50名</td></tr>
</table></body></html>`

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newTestScraper(opts ...Option) *Scraper {
	return New(Config{UserAgent: "test-agent"}, opts...)
}

func TestFetchPageContent_HTML(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(homeHTML))
		case "/company":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(companyHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	page := newTestScraper().FetchPageContent(context.Background(), srv.URL+"/")

	assert.Equal(t, "株式会社サンプル | 物流DX", page.Title)
	assert.Equal(t, "物流の現場を変える", page.Description)
	assert.Contains(t, page.BodyText, "倉庫管理システム")
	assert.NotContains(t, page.BodyText, "資本金 9億円", "footer is stripped")
	assert.NotContains(t, page.BodyText, "トップ", "header is stripped")
	assert.Equal(t, []string{srv.URL + "/recruit/", "https://jobs.example.net/sample"}, page.RecruitLinks)
	assert.Equal(t, []string{"WordPress"}, page.TechStack.CMS)
	assert.False(t, page.IsPDF)

	assert.Equal(t, "1,000万円", page.CompanyInfo.Capital)
	assert.Equal(t, "50名", page.CompanyInfo.Employees)
	assert.Equal(t, "2001年6月1日", page.CompanyInfo.Founded)

	assert.Equal(t, []string{"/", "/sitemap.xml", "/sitemap_index.xml", "/company"}, rec.list(),
		"crawl stops at the first page with core facts")
}

func TestFetchPageContent_SitemapCandidate(t *testing.T) {
	rec := &recorder{}
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte("<html><body><p>ようこそ</p></body></html>"))
		case "/sitemap.xml":
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<urlset><url><loc>%s/news/1</loc></url><url><loc>%s/jp/corporate/outline</loc></url></urlset>`, srvURL, srvURL)
		case "/jp/corporate/outline":
			_, _ = w.Write([]byte("<html><body>売上高：12億円</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	page := newTestScraper().FetchPageContent(context.Background(), srv.URL+"/")
	assert.Equal(t, "12億円", page.CompanyInfo.Revenue)
	assert.Equal(t, []string{"/", "/sitemap.xml", "/jp/corporate/outline"}, rec.list())
}

func TestFetchPageContent_ShiftJIS(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().String(`<html><head><title>サンプル商事</title></head><body><p>資本金 3,000万円</p></body></html>`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(sjis))
	}))
	defer srv.Close()

	page := newTestScraper().FetchPageContent(context.Background(), srv.URL+"/")
	assert.Equal(t, "サンプル商事", page.Title)
	assert.Equal(t, "3,000万円", page.CompanyInfo.Capital)
}

func TestFetchPageContent_FailureYieldsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	page := newTestScraper().FetchPageContent(context.Background(), srv.URL+"/")
	assert.Empty(t, page.Title)
	assert.Empty(t, page.BodyText)
	assert.NotNil(t, page.RecruitLinks)
	assert.True(t, page.TechStack.Empty())
	assert.False(t, page.CompanyInfo.HasCoreFacts())
}

func TestFetchPageContent_BlockedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Please complete the captcha</body></html>"))
	}))
	defer srv.Close()

	page := newTestScraper().FetchPageContent(context.Background(), srv.URL+"/")
	assert.Empty(t, page.BodyText)
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	hint  string
}

func (f *fakeTranscriber) TranscribePDF(_ context.Context, _ []byte, hint string) (string, error) {
	f.calls++
	f.hint = hint
	return f.text, f.err
}

// blankPDF builds a one-page PDF with no text layer.
func blankPDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objs))
	for i, o := range objs {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

func pdfServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(body)
	}))
}

func TestFetchPageContent_PDFWithOCR(t *testing.T) {
	srv := pdfServer(t, blankPDF())
	defer srv.Close()

	ocr := &fakeTranscriber{text: strings.Repeat("決算 短信 ", 50)}
	page := newTestScraper(WithTranscriber(ocr)).FetchPageContent(context.Background(), srv.URL+"/ir/tanshin.pdf")

	assert.True(t, page.IsPDF)
	assert.Equal(t, "PDF Document: tanshin.pdf", page.Title)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, "PDF URL: "+srv.URL+"/ir/tanshin.pdf", ocr.hint)
	assert.True(t, strings.HasPrefix(page.BodyText, "決算 短信"))
}

func TestFetchPageContent_PDFOCRFailureKeepsNativeText(t *testing.T) {
	srv := pdfServer(t, blankPDF())
	defer srv.Close()

	ocr := &fakeTranscriber{err: errors.New("vision unavailable")}
	page := newTestScraper(WithTranscriber(ocr)).FetchPageContent(context.Background(), srv.URL+"/a.pdf")

	assert.True(t, page.IsPDF)
	assert.Equal(t, 1, ocr.calls)
	assert.Empty(t, page.BodyText)
}

func TestFetchPageContent_CorruptPDF(t *testing.T) {
	srv := pdfServer(t, []byte("%PDF-1.7 truncated"))
	defer srv.Close()

	ocr := &fakeTranscriber{text: "unused"}
	page := newTestScraper(WithTranscriber(ocr)).FetchPageContent(context.Background(), srv.URL+"/broken")

	assert.True(t, page.IsPDF)
	assert.Equal(t, pdfFailureText, page.BodyText)
	assert.Zero(t, ocr.calls)
}
