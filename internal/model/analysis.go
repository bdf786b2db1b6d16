package model

// TopicQuerySet holds the four short keyword queries derived once per analysis.
// Technology is produced by classification but not fetched by the PESTLE fan-out.
type TopicQuerySet struct {
	Regulation   string `json:"regulation"`
	ClientMarket string `json:"clientMarket"`
	Technology   string `json:"technology"`
	Industry     string `json:"industry"`
}

// QuickAnalysis is the cheap industry classification made before the fan-out.
type QuickAnalysis struct {
	Industry          string        `json:"industry"`
	IndustryCode      string        `json:"industryCode"`
	IndustryNewsQuery string        `json:"industryNewsQuery"`
	Topics            TopicQuerySet `json:"pestleQueries"`
	BusinessType      string        `json:"businessType"`
	EstimatedScale    string        `json:"estimatedScale"`
	MainProducts      []string      `json:"mainProducts"`
	ClientIndustries  []string      `json:"clientIndustries"`
}

// Summary returns the subset of the classification surfaced to callers.
func (q QuickAnalysis) Summary() QuickAnalysisSummary {
	products := q.MainProducts
	if products == nil {
		products = []string{}
	}
	return QuickAnalysisSummary{
		IndustryCode:   q.IndustryCode,
		BusinessType:   q.BusinessType,
		EstimatedScale: q.EstimatedScale,
		MainProducts:   products,
	}
}

// QuickAnalysisSummary is the caller-facing part of QuickAnalysis.
type QuickAnalysisSummary struct {
	IndustryCode   string   `json:"industryCode"`
	BusinessType   string   `json:"businessType"`
	EstimatedScale string   `json:"estimatedScale"`
	MainProducts   []string `json:"mainProducts"`
}

// AnalysisRequest is the input of a full company analysis. At least one of
// CompanyName and Domain is required.
type AnalysisRequest struct {
	CompanyName     string `json:"companyName" validate:"required_without=Domain"`
	Domain          string `json:"domain" validate:"required_without=CompanyName"`
	PageURL         string `json:"pageUrl"`
	AdditionalURL   string `json:"additionalUrl"`
	InquiryBody     string `json:"inquiryBody"`
	BusinessSegment string `json:"businessSegment"`
}

// NewsBundle groups every news list returned with an analysis.
type NewsBundle struct {
	Company  []NewsItem `json:"company"`
	Industry []NewsItem `json:"industry"`
	Pestle   PestleNews `json:"pestle"`
}

// AnalysisResult is the terminal aggregate of one analysis request.
type AnalysisResult struct {
	RequestID     string               `json:"requestId,omitempty"`
	Company       CompanyProfile       `json:"company"`
	Financials    []FinancialRecord    `json:"financials"`
	News          NewsBundle           `json:"news"`
	QuickAnalysis QuickAnalysisSummary `json:"quickAnalysis"`
	Strategy      Strategy             `json:"strategy"`
	Phases        []PhaseResult        `json:"phases,omitempty"`
}

// InboundLeadRequest describes a landing-page visit by a prospect.
type InboundLeadRequest struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	LPTitle     string `json:"lpTitle"`
	LPURL       string `json:"lpUrl"`
	InflowType  string `json:"inflowType"`
}

// InboundLeadResult is the visit hypothesis returned for an inbound lead.
type InboundLeadResult struct {
	PestleFactors []string `json:"pestle_factors"`
	Hypothesis    string   `json:"hypothesis"`
	SalesHook     string   `json:"sales_hook"`
}
