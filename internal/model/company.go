package model

// ListingStatus describes whether a company is publicly listed.
type ListingStatus string

const (
	ListingListed   ListingStatus = "Listed"
	ListingUnlisted ListingStatus = "Unlisted"
	ListingUnknown  ListingStatus = "Unknown"
)

// CompanyProfile is the resolved identity of the analyzed company.
// IndustryName is attached once after industry classification.
type CompanyProfile struct {
	Name            string        `json:"name"`
	CorporateNumber string        `json:"corporateNumber,omitempty"`
	Domain          string        `json:"domain,omitempty"`
	URL             string        `json:"url,omitempty"`
	Address         string        `json:"address,omitempty"`
	IndustryCode    string        `json:"industryCode,omitempty"`
	IndustryName    string        `json:"industryName,omitempty"`
	ListingStatus   ListingStatus `json:"listingStatus"`
}

// FinancialRecord is one period of financial figures from a disclosure source.
// Values are display strings; "-" means the source did not report the figure.
type FinancialRecord struct {
	Year            string `json:"year"`
	Revenue         string `json:"revenue"`
	OperatingProfit string `json:"operatingProfit"`
	NetIncome       string `json:"netIncome,omitempty"`
	TotalAssets     string `json:"totalAssets,omitempty"`
	Source          string `json:"source,omitempty"`
}

// PhaseStatus represents the outcome of an analysis phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult records timing and outcome of one analysis phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
