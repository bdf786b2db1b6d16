package scrape

import (
	"iter"
	"net"
	"net/url"
	"strings"
)

// Stage names where a candidate URL came from.
type Stage string

// Crawl stages, in the order they are tried.
const (
	StageSitemap Stage = "sitemap"
	StageDirect  Stage = "direct"
	StageParent  Stage = "parent"
)

// Candidate is one page that may hold corporate facts.
type Candidate struct {
	URL   string
	Stage Stage
}

// companyPaths are conventional Japanese corporate-profile, IR and
// recruitment paths, most likely first.
var companyPaths = []string{
	"/company", "/about", "/corporate", "/about-us", "/company-info",
	"/company/", "/about/", "/corporate/", "/about-us/", "/company-info/",
	"/corporate/profile.html", "/corporate/outline.html", "/company/profile.html",
	"/about/company.html", "/company/about.html", "/corporate/company.html",
	"/company/index.html", "/corporate/index.html", "/about/index.html",
	"/company/profile", "/corporate/profile", "/about/profile",
	"/kaisya", "/gaiyou", "/kigyou", "/jigyou",
	"/company/gaiyou", "/corporate/gaiyou",
	"/ir", "/ir/", "/investor", "/investors",
	"/ir/library", "/ir/financial", "/kessan",
	"/recruit", "/recruit/", "/recruitment", "/careers", "/jobs", "/saiyo",
	"/recruit/index.html", "/careers/index.html", "/saiyo/index.html",
	"/overview", "/company-overview", "/about-company",
}

// parentPaths is the profile-only prefix of companyPaths tried on the
// parent domain.
var parentPaths = companyPaths[:19]

var sitemapNames = []string{"/sitemap.xml", "/sitemap_index.xml"}

// SitemapLocs lists the <loc> entries of a sitemap; it returns nil when the
// sitemap is missing or unreadable.
type SitemapLocs func(sitemapURL string) []string

// Candidates lazily yields company-page URLs for the site at base: relevant
// sitemap entries, then conventional paths at the origin, then the same
// profile paths on the parent domain when base looks like a subdomain.
// Sitemaps are only fetched once iteration reaches them.
func Candidates(base *url.URL, sitemap SitemapLocs, maxSitemapPages int) iter.Seq[Candidate] {
	origin := base.Scheme + "://" + base.Host
	return func(yield func(Candidate) bool) {
		if sitemap != nil {
			for _, name := range sitemapNames {
				locs := RelevantLocs(sitemap(origin+name), maxSitemapPages)
				for _, loc := range locs {
					if !yield(Candidate{URL: loc, Stage: StageSitemap}) {
						return
					}
				}
			}
		}

		for _, p := range companyPaths {
			if !yield(Candidate{URL: origin + p, Stage: StageDirect}) {
				return
			}
		}

		parent, ok := ParentHost(base.Hostname())
		if !ok {
			return
		}
		for _, p := range parentPaths {
			if !yield(Candidate{URL: base.Scheme + "://" + parent + p, Stage: StageParent}) {
				return
			}
		}
	}
}

var sitemapKeywords = []string{
	"profile", "company", "corporate", "about",
	"gaiyou", "kaisya", "recruit", "career", "saiyo",
}

// RelevantLocs keeps sitemap entries that look like corporate or
// recruitment pages, up to limit.
func RelevantLocs(locs []string, limit int) []string {
	var out []string
	for _, loc := range locs {
		if limit > 0 && len(out) == limit {
			break
		}
		if containsAny(strings.ToLower(loc), sitemapKeywords) {
			out = append(out, loc)
		}
	}
	return out
}

// secondLevelLabels are the Japanese second-level domains that make a
// three-label host a registrable domain rather than a subdomain.
var secondLevelLabels = map[string]bool{"co": true, "ne": true, "ac": true, "go": true, "or": true}

// ParentHost strips the first label of host when it looks like a subdomain:
// four or more labels, or three labels whose second-level label is not a
// Japanese public suffix (sub.example.com, but not example.co.jp).
func ParentHost(host string) (string, bool) {
	if net.ParseIP(host) != nil {
		return "", false
	}
	parts := strings.Split(strings.ToLower(host), ".")
	switch {
	case len(parts) >= 4:
		return strings.Join(parts[1:], "."), true
	case len(parts) == 3 && !secondLevelLabels[parts[1]]:
		return strings.Join(parts[1:], "."), true
	}
	return "", false
}
