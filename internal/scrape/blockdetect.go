package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot page detected.
type BlockType string

// Block types.
const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// smallPage is the size below which a page is treated as an interstitial
// rather than real content that merely mentions a captcha widget.
const smallPage = 5000

// DetectBlock reports whether a response is a challenge, captcha or
// JavaScript-only shell instead of site content.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-mitigated") != "" ||
			strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") {
		return true, BlockCloudflare
	}

	if len(body) >= smallPage {
		return false, BlockNone
	}

	if strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}
	if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") &&
		!strings.Contains(lower, "<p") {
		return true, BlockJSShell
	}
	if strings.Contains(lower, `http-equiv="refresh"`) {
		return true, BlockJSShell
	}

	return false, BlockNone
}
