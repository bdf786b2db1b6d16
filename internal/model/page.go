package model

// ScrapedPage is the result of fetching and parsing a single target URL.
// A failed scrape yields the zero-ish value from EmptyScrapedPage.
type ScrapedPage struct {
	URL          string      `json:"url,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	BodyText     string      `json:"bodyText"`
	RecruitLinks []string    `json:"recruitLinks"`
	TechStack    TechStack   `json:"techStack"`
	CompanyInfo  CompanyInfo `json:"companyInfo"`
	IsPDF        bool        `json:"isPdf,omitempty"`
}

// EmptyScrapedPage returns a page with non-nil slices so it serializes as [].
func EmptyScrapedPage() ScrapedPage {
	return ScrapedPage{
		RecruitLinks: []string{},
		TechStack:    NewTechStack(),
	}
}

// TechStack groups detected vendor fingerprints by category.
type TechStack struct {
	CMS       []string `json:"cms"`
	CRM       []string `json:"crm"`
	MA        []string `json:"ma"`
	Analytics []string `json:"analytics"`
	EC        []string `json:"ec"`
	JS        []string `json:"js"`
}

// NewTechStack returns a TechStack with every category initialized.
func NewTechStack() TechStack {
	return TechStack{
		CMS:       []string{},
		CRM:       []string{},
		MA:        []string{},
		Analytics: []string{},
		EC:        []string{},
		JS:        []string{},
	}
}

// Bucket returns the list for a category name (cms, crm, ma, analytics, ec,
// js), or nil for an unknown category.
func (t *TechStack) Bucket(category string) *[]string {
	switch category {
	case "cms":
		return &t.CMS
	case "crm":
		return &t.CRM
	case "ma":
		return &t.MA
	case "analytics":
		return &t.Analytics
	case "ec":
		return &t.EC
	case "js":
		return &t.JS
	}
	return nil
}

// Empty reports whether no fingerprint was detected.
func (t TechStack) Empty() bool {
	return len(t.CMS)+len(t.CRM)+len(t.MA)+len(t.Analytics)+len(t.EC)+len(t.JS) == 0
}

// CompanyInfo holds structured facts harvested from corporate pages.
// Each field is filled at most once; later pages never overwrite it.
type CompanyInfo struct {
	Revenue       string `json:"revenue"`
	Capital       string `json:"capital"`
	Employees     string `json:"employees"`
	Founded       string `json:"founded"`
	FiscalYearEnd string `json:"fiscalYearEnd"`
}

// HasCoreFacts reports whether revenue, capital or headcount is known.
// The corporate-page crawl stops once this is true.
func (c CompanyInfo) HasCoreFacts() bool {
	return c.Revenue != "" || c.Capital != "" || c.Employees != ""
}

// Fill copies fields from other that are still empty in c.
func (c *CompanyInfo) Fill(other CompanyInfo) {
	if c.Revenue == "" {
		c.Revenue = other.Revenue
	}
	if c.Capital == "" {
		c.Capital = other.Capital
	}
	if c.Employees == "" {
		c.Employees = other.Employees
	}
	if c.Founded == "" {
		c.Founded = other.Founded
	}
	if c.FiscalYearEnd == "" {
		c.FiscalYearEnd = other.FiscalYearEnd
	}
}
