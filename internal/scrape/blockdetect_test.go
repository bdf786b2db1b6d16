package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	longPage := "<html><body><p>" + strings.Repeat("会社概要 資本金 1,000万円 ", 400) +
		`<form><div class="g-recaptcha"></div></form></p></body></html>`

	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   BlockType
	}{
		{"cloudflare ray on 403", 403, http.Header{"Cf-Ray": {"abc"}}, "", BlockCloudflare},
		{"cloudflare server on 503", 503, http.Header{"Server": {"cloudflare"}}, "", BlockCloudflare},
		{"challenge marker", 200, http.Header{}, "<html>Checking your browser before accessing</html>", BlockCloudflare},
		{"captcha interstitial", 200, http.Header{}, "<html><body>Please complete the CAPTCHA</body></html>", BlockCaptcha},
		{"js shell", 200, http.Header{}, "<html><noscript>Enable JavaScript to continue</noscript></html>", BlockJSShell},
		{"meta refresh", 200, http.Header{}, `<html><meta http-equiv="refresh" content="0;url=/jp/"></html>`, BlockJSShell},
		{"contact form with recaptcha", 200, http.Header{}, longPage, BlockNone},
		{"plain 403", 403, http.Header{}, "<html><body>Forbidden</body></html>", BlockNone},
		{"clean page", 200, http.Header{}, "<html><body><p>株式会社サンプルのコーポレートサイトです。</p></body></html>", BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			blocked, kind := DetectBlock(resp, []byte(tt.body))
			assert.Equal(t, tt.want != BlockNone, blocked)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDetectBlock_NilResponse(t *testing.T) {
	blocked, kind := DetectBlock(nil, nil)
	assert.False(t, blocked)
	assert.Equal(t, BlockNone, kind)
}
