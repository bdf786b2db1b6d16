package model

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Text is a string that also accepts numbers, booleans and string arrays
// when decoded, since generated JSON is loosely typed.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var list TextList
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = Text(strings.Join(list, "\n"))
	case '{':
		*t = Text(data)
	default:
		*t = Text(data)
	}
	return nil
}

// TextList is a string slice that also accepts a single scalar when decoded.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = TextList{}
		return nil
	}
	if data[0] != '[' {
		var t Text
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		if t == "" {
			*l = TextList{}
			return nil
		}
		*l = TextList{string(t)}
		return nil
	}
	var raw []Text
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(TextList, 0, len(raw))
	for _, r := range raw {
		out = append(out, string(r))
	}
	*l = out
	return nil
}

// MarshalJSON keeps nil lists serialized as [].
func (l TextList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Score is a 0-100 likelihood. Decoding never fails: a string is read up to
// its leading number ("80点" is 80) and anything without one is 0.
type Score int

var leadingNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?`)

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	*s = 0
	var t Text
	if json.Unmarshal(data, &t) != nil {
		return nil
	}
	raw := leadingNumber.FindString(width.Narrow.String(strings.TrimSpace(string(t))))
	if raw == "" {
		return nil
	}
	// Out-of-range input parses as ±Inf and is clamped.
	f, _ := strconv.ParseFloat(raw, 64)
	*s = Score(math.Max(0, math.Min(100, math.Round(f))))
	return nil
}

// IndustryData holds market-level figures for the company's industry.
type IndustryData struct {
	MarketSize      Text `json:"marketSize"`
	GrowthRate      Text `json:"growthRate"`
	CompanyCount    Text `json:"companyCount"`
	LaborPopulation Text `json:"laborPopulation"`
}

// TechStackAnalysis interprets the detected tooling.
type TechStackAnalysis struct {
	Maturity   Text     `json:"maturity"`
	Tools      TextList `json:"tools"`
	Missing    TextList `json:"missing"`
	Hypothesis Text     `json:"hypothesis"`
}

// PestleSection is the macro-environment analysis.
type PestleSection struct {
	Political     Text `json:"political"`
	Economic      Text `json:"economic"`
	Social        Text `json:"social"`
	Technological Text `json:"technological"`
	Legal         Text `json:"legal"`
	Environmental Text `json:"environmental"`
	FutureOutlook Text `json:"futureOutlook"`
	Conclusion    Text `json:"conclusion"`
}

// FiveForcesSection is the industry-structure analysis.
type FiveForcesSection struct {
	Rivalry       Text `json:"rivalry"`
	NewEntrants   Text `json:"newEntrants"`
	Substitutes   Text `json:"substitutes"`
	Suppliers     Text `json:"suppliers"`
	Buyers        Text `json:"buyers"`
	FutureOutlook Text `json:"futureOutlook"`
	Conclusion    Text `json:"conclusion"`
}

// ThreeCSection covers customer, competitor and company.
type ThreeCSection struct {
	Customer   Text `json:"customer"`
	Competitor Text `json:"competitor"`
	Company    Text `json:"company"`
	Conclusion Text `json:"conclusion"`
}

// STPSection covers segmentation, targeting and positioning.
type STPSection struct {
	Segmentation Text `json:"segmentation"`
	Targeting    Text `json:"targeting"`
	Positioning  Text `json:"positioning"`
	Conclusion   Text `json:"conclusion"`
}

// MarketingSection holds the value proposition and key success factors.
type MarketingSection struct {
	ValueProposition Text     `json:"valueProposition"`
	KSF              TextList `json:"ksf"`
	Conclusion       Text     `json:"conclusion"`
}

// BusinessModelSection describes unit economics and moat.
type BusinessModelSection struct {
	CostStructure Text `json:"costStructure"`
	UnitEconomics Text `json:"unitEconomics"`
	EconomicMoat  Text `json:"economicMoat"`
	Conclusion    Text `json:"conclusion"`
}

// FinancialHealthSection estimates budget capacity and decision speed.
type FinancialHealthSection struct {
	Status             Text `json:"status"`
	Concern            Text `json:"concern"`
	InvestmentCapacity Text `json:"investmentCapacity"`
	BudgetCycle        Text `json:"budgetCycle"`
	DecisionSpeed      Text `json:"decisionSpeed"`
	Conclusion         Text `json:"conclusion"`
}

// SWOTSection is the strengths/weaknesses/opportunities/threats grid.
type SWOTSection struct {
	Strengths     TextList `json:"strengths"`
	Weaknesses    TextList `json:"weaknesses"`
	Opportunities TextList `json:"opportunities"`
	Threats       TextList `json:"threats"`
	Unknowns      TextList `json:"unknowns"`
	Conclusion    Text     `json:"conclusion"`
}

// RecruitmentSection reads hiring signals.
type RecruitmentSection struct {
	JobTypes   TextList `json:"jobTypes"`
	Count      Text     `json:"count"`
	Phase      Text     `json:"phase"`
	Conclusion Text     `json:"conclusion"`
}

// SevenSSection is the McKinsey 7S organizational view.
type SevenSSection struct {
	Strategy     Text `json:"strategy"`
	Structure    Text `json:"structure"`
	Systems      Text `json:"systems"`
	SharedValues Text `json:"sharedValues"`
	Style        Text `json:"style"`
	Staff        Text `json:"staff"`
	Skills       Text `json:"skills"`
}

// BusinessSummarySection is a short business overview.
type BusinessSummarySection struct {
	Summary         Text `json:"summary"`
	ServiceClass    Text `json:"serviceClass"`
	CustomerSegment Text `json:"customerSegment"`
	RevenueModel    Text `json:"revenueModel"`
	Conclusion      Text `json:"conclusion"`
}

// ValueChainStage is one step of the value chain.
type ValueChainStage struct {
	Name         Text     `json:"name"`
	Activities   TextList `json:"activities"`
	Significance Text     `json:"significance"`
}

// ValueChainSection lists the value chain and its key success factors.
type ValueChainSection struct {
	KSF        TextList          `json:"ksf"`
	Stages     []ValueChainStage `json:"stages"`
	Conclusion Text              `json:"conclusion"`
}

// FormDraft holds short and long outbound message drafts.
type FormDraft struct {
	Short Text `json:"short"`
	Long  Text `json:"long"`
}

// Strategy is the synthesized multi-section sales analysis.
type Strategy struct {
	Summary             Text                   `json:"summary"`
	IndustrySummary     Text                   `json:"industrySummary"`
	IndustryData        IndustryData           `json:"industryData"`
	TechStackAnalysis   TechStackAnalysis      `json:"techStackAnalysis"`
	Pestle              PestleSection          `json:"pestle"`
	FiveForces          FiveForcesSection      `json:"fiveForces"`
	ThreeC              ThreeCSection          `json:"threeC"`
	STP                 STPSection             `json:"stp"`
	Marketing           MarketingSection       `json:"marketing"`
	BusinessModel       BusinessModelSection   `json:"businessModel"`
	FinancialHealth     FinancialHealthSection `json:"financialHealth"`
	SWOT                SWOTSection            `json:"swot"`
	EstimatedChallenges TextList               `json:"estimatedChallenges"`
	Recruitment         RecruitmentSection     `json:"recruitment"`
	SevenS              SevenSSection          `json:"sevenS"`
	BusinessSummary     BusinessSummarySection `json:"businessSummary"`
	ValueChain          ValueChainSection      `json:"valueChain"`
	SalesStrategy       Text                   `json:"salesStrategy"`
	CallTalk            Text                   `json:"callTalk"`
	FormDraft           FormDraft              `json:"formDraft"`
	Score               Score                  `json:"score"`
}

// ConclusionSections lists, in order, the sections whose conclusion must be filled.
var ConclusionSections = []string{
	"pestle",
	"fiveForces",
	"threeC",
	"stp",
	"marketing",
	"businessModel",
	"financialHealth",
	"swot",
	"recruitment",
	"businessSummary",
	"valueChain",
}

// Section returns a pointer to the named section and its conclusion field.
// ok is false for names outside ConclusionSections.
func (s *Strategy) Section(name string) (section any, conclusion *Text, ok bool) {
	switch name {
	case "pestle":
		return &s.Pestle, &s.Pestle.Conclusion, true
	case "fiveForces":
		return &s.FiveForces, &s.FiveForces.Conclusion, true
	case "threeC":
		return &s.ThreeC, &s.ThreeC.Conclusion, true
	case "stp":
		return &s.STP, &s.STP.Conclusion, true
	case "marketing":
		return &s.Marketing, &s.Marketing.Conclusion, true
	case "businessModel":
		return &s.BusinessModel, &s.BusinessModel.Conclusion, true
	case "financialHealth":
		return &s.FinancialHealth, &s.FinancialHealth.Conclusion, true
	case "swot":
		return &s.SWOT, &s.SWOT.Conclusion, true
	case "recruitment":
		return &s.Recruitment, &s.Recruitment.Conclusion, true
	case "businessSummary":
		return &s.BusinessSummary, &s.BusinessSummary.Conclusion, true
	case "valueChain":
		return &s.ValueChain, &s.ValueChain.Conclusion, true
	}
	return nil, nil, false
}

// ConclusionPath returns the dotted path of a section's conclusion.
func ConclusionPath(section string) string {
	return section + ".conclusion"
}

// MissingConclusions returns the dotted paths of conclusions that are empty
// or hold a placeholder, in ConclusionSections order.
func (s *Strategy) MissingConclusions() []string {
	var missing []string
	for _, name := range ConclusionSections {
		_, c, _ := s.Section(name)
		if IsPlaceholder(string(*c)) {
			missing = append(missing, ConclusionPath(name))
		}
	}
	return missing
}

var placeholders = map[string]bool{
	"":        true,
	"-":       true,
	"不明":      true,
	"情報取得中...": true,
	"分析中":     true,
}

// IsPlaceholder reports whether v carries no real content.
func IsPlaceholder(v string) bool {
	return placeholders[strings.TrimSpace(v)]
}
