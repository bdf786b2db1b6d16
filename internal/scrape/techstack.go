package scrape

import (
	"slices"
	"strings"

	"github.com/sells-group/lead-intel/internal/model"
)

type fingerprint struct {
	category string
	name     string
	markers  []string
}

// fingerprints are matched case-insensitively against raw HTML.
var fingerprints = []fingerprint{
	{"cms", "WordPress", []string{"wp-content"}},
	{"cms", "Shopify", []string{"shopify"}},
	{"cms", "Wix", []string{"wix"}},
	{"cms", "Studio", []string{"studio.design"}},

	{"crm", "HubSpot", []string{"hubspot"}},
	{"crm", "Salesforce/Pardot", []string{"salesforce", "pardot"}},
	{"ma", "Marketo", []string{"marketo"}},
	{"crm", "Kintone", []string{"kintone"}},
	{"crm", "Sansan", []string{"sansan"}},

	{"analytics", "GA4", []string{"gtag", "google-analytics"}},
	{"analytics", "GTM", []string{"gtm.js"}},
	{"analytics", "Hotjar", []string{"hotjar"}},
	{"analytics", "Microsoft Clarity", []string{"clarity"}},

	{"ec", "Shopify", []string{"cdn.shopify.com", "myshopify.com"}},
	{"ec", "EC-CUBE", []string{"ec-cube", "eccube"}},
	{"ec", "BASE", []string{"thebase.in", "base.shop", "base-ec"}},
	{"ec", "MakeShop", []string{"makeshop"}},
	{"ec", "futureshop", []string{"futureshop"}},
	{"ec", "カラーミー", []string{"shop-pro.jp", "colorme"}},

	{"js", "React", []string{"react"}},
	{"js", "Vue.js", []string{"vue"}},
	{"js", "jQuery", []string{"jquery"}},
	{"js", "Next.js", []string{"next.js", "__next"}},
	{"js", "Nuxt.js", []string{"nuxt"}},
}

// DetectTechStack matches vendor fingerprints against raw HTML.
func DetectTechStack(html string) model.TechStack {
	lower := strings.ToLower(html)
	ts := model.NewTechStack()
	for _, fp := range fingerprints {
		if !containsAny(lower, fp.markers) {
			continue
		}
		bucket := ts.Bucket(fp.category)
		if bucket != nil && !slices.Contains(*bucket, fp.name) {
			*bucket = append(*bucket, fp.name)
		}
	}
	return ts
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
