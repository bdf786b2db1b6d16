package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
)

// Generic classification values. A result carrying any of them is replaced
// by the keyword table when the table finds a match.
const (
	GenericIndustry     = "その他サービス業"
	GenericIndustryCode = "99"

	defaultBusinessType   = "Both"
	defaultEstimatedScale = "中小企業"
)

// quickReply is the loosely typed classification reply. Topic keys are
// accepted under their PESTLE aliases too.
type quickReply struct {
	Industry         model.Text     `json:"industry"`
	IndustryCode     model.Text     `json:"industryCode"`
	BusinessType     model.Text     `json:"businessType"`
	EstimatedScale   model.Text     `json:"estimatedScale"`
	MainProducts     model.TextList `json:"mainProducts"`
	ClientIndustries model.TextList `json:"clientIndustries"`
	Queries          struct {
		Regulation    model.Text `json:"regulation"`
		Political     model.Text `json:"political"`
		Legal         model.Text `json:"legal"`
		ClientMarket  model.Text `json:"clientMarket"`
		Economic      model.Text `json:"economic"`
		Social        model.Text `json:"social"`
		Technology    model.Text `json:"technology"`
		Technological model.Text `json:"technological"`
		Industry      model.Text `json:"industry"`
	} `json:"pestleQueries"`
}

// DefaultQuickAnalysis is used when there is nothing to classify or the
// model call fails.
func DefaultQuickAnalysis() model.QuickAnalysis {
	topics := model.TopicQuerySet{
		Regulation:   "規制 改正",
		ClientMarket: "市場 トレンド",
		Technology:   "DX 導入",
		Industry:     "ビジネス トレンド",
	}
	return model.QuickAnalysis{
		Industry:          GenericIndustry,
		IndustryCode:      GenericIndustryCode,
		IndustryNewsQuery: topics.Industry,
		Topics:            topics,
		BusinessType:      defaultBusinessType,
		EstimatedScale:    defaultEstimatedScale,
		MainProducts:      []string{},
		ClientIndustries:  []string{},
	}
}

// IsGenericIndustry reports whether q carries the generic fallback industry.
func IsGenericIndustry(q model.QuickAnalysis) bool {
	name := strings.TrimSpace(q.Industry)
	code := strings.TrimSpace(q.IndustryCode)
	return name == "" || code == "" || name == GenericIndustry || code == GenericIndustryCode
}

// AnalyzeIndustryAndTopics classifies the company on the lite cascade and
// derives the four topic queries. It never fails: model errors yield the
// default classification, and a generic classification is overridden by the
// keyword table when the page text matches an entry.
func (o *Orchestrator) AnalyzeIndustryAndTopics(ctx context.Context, companyName string, page model.ScrapedPage) model.QuickAnalysis {
	q, err := o.classify(ctx, companyName, page)
	if err != nil {
		zap.L().Warn("llm: industry classification failed, using defaults",
			zap.String("company", companyName),
			zap.Error(err),
		)
		q = DefaultQuickAnalysis()
	}
	return o.applyKeywordFallback(q, page)
}

func (o *Orchestrator) classify(ctx context.Context, companyName string, page model.ScrapedPage) (model.QuickAnalysis, error) {
	data := classifyData{
		CompanyName: companyName,
		Title:       page.Title,
		Description: page.Description,
		Body:        page.BodyText,
	}
	if o.industries != nil {
		data.Industries = o.industries.SubCategoryNames()
	}
	prompt, err := render("classify.tmpl", data)
	if err != nil {
		return model.QuickAnalysis{}, err
	}

	text, err := o.cascade(ctx, o.lite, Call{Phase: "classify", Prompt: prompt, JSON: true})
	if err != nil {
		return model.QuickAnalysis{}, err
	}

	var reply quickReply
	if err := decodeReply(text, &reply); err != nil {
		return model.QuickAnalysis{}, err
	}
	return normalizeQuick(reply), nil
}

func normalizeQuick(r quickReply) model.QuickAnalysis {
	topics := model.TopicQuerySet{
		Regulation:   firstText(r.Queries.Regulation, r.Queries.Political, r.Queries.Legal),
		ClientMarket: firstText(r.Queries.ClientMarket, r.Queries.Economic, r.Queries.Social),
		Technology:   firstText(r.Queries.Technology, r.Queries.Technological),
		Industry:     firstText(r.Queries.Industry),
	}

	base := firstText(r.Industry)
	if base == "" {
		base = "サービス業"
	}
	fillTopics(&topics, base)

	q := model.QuickAnalysis{
		Industry:          firstText(r.Industry),
		IndustryCode:      firstText(r.IndustryCode),
		IndustryNewsQuery: topics.Industry,
		Topics:            topics,
		BusinessType:      firstText(r.BusinessType),
		EstimatedScale:    firstText(r.EstimatedScale),
		MainProducts:      nonEmpty(r.MainProducts),
		ClientIndustries:  nonEmpty(r.ClientIndustries),
	}
	if q.Industry == "" {
		q.Industry = GenericIndustry
	}
	if q.IndustryCode == "" {
		q.IndustryCode = GenericIndustryCode
	}
	if q.BusinessType == "" {
		q.BusinessType = defaultBusinessType
	}
	if q.EstimatedScale == "" {
		q.EstimatedScale = defaultEstimatedScale
	}
	return q
}

// fillTopics sets every empty query to "<industry> <facet>".
func fillTopics(t *model.TopicQuerySet, industry string) {
	if t.Regulation == "" {
		t.Regulation = industry + " 法規制"
	}
	if t.ClientMarket == "" {
		t.ClientMarket = industry + " 市場"
	}
	if t.Technology == "" {
		t.Technology = industry + " DX"
	}
	if t.Industry == "" {
		t.Industry = industry + " 業界"
	}
}

func (o *Orchestrator) applyKeywordFallback(q model.QuickAnalysis, page model.ScrapedPage) model.QuickAnalysis {
	if o.industries == nil || !IsGenericIndustry(q) {
		return q
	}
	m, ok := o.industries.Detect(page.BodyText + " " + page.Title)
	if !ok {
		return q
	}

	zap.L().Info("llm: industry from keyword table",
		zap.String("keyword", m.Keyword),
		zap.String("industry", m.SubCategoryName),
		zap.String("code", m.SubCategoryCode),
	)

	def := DefaultQuickAnalysis().Topics
	if q.Topics == def {
		// Nothing came from the model; derive queries from the detected name.
		q.Topics = model.TopicQuerySet{}
		fillTopics(&q.Topics, m.SubCategoryName)
	}
	q.Industry = m.SubCategoryName
	q.IndustryCode = m.SubCategoryCode
	q.IndustryNewsQuery = m.NewsQuery
	return q
}

func firstText(vals ...model.Text) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(list model.TextList) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
