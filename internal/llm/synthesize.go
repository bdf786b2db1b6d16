package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/resilience"
)

const newsInPrompt = 5

// SynthesisInput is everything gathered for one company before synthesis.
type SynthesisInput struct {
	Company         model.CompanyProfile
	Financials      []model.FinancialRecord
	CompanyNews     []model.NewsItem
	IndustryNews    []model.NewsItem
	Page            model.ScrapedPage
	InquiryBody     string
	BusinessSegment string
	// Additional is the optional second page supplied by the user.
	Additional *model.ScrapedPage
}

// Synthesize builds the strategy report on the full cascade. Retryable
// failures are retried with backoff; fatal model errors and unparsable
// replies are retried at once. When the attempts run out the result is
// DefaultStrategy. A parsed report gets one conclusion repair pass.
func (o *Orchestrator) Synthesize(ctx context.Context, in SynthesisInput) model.Strategy {
	log := zap.L().With(zap.String("company", in.Company.Name))

	prompt, err := render("strategy.tmpl", strategyPromptData(in))
	if err != nil {
		log.Error("llm: render strategy prompt", zap.Error(err))
		return DefaultStrategy()
	}

	start := time.Now()
	s, err := resilience.DoVal(ctx, o.retry, func(ctx context.Context) (model.Strategy, error) {
		var s model.Strategy
		text, err := o.cascade(ctx, o.full, Call{Phase: "synthesize", Prompt: prompt})
		if err != nil {
			return s, err
		}
		if err := decodeReply(text, &s); err != nil {
			log.Warn("llm: synthesis reply is not a report", zap.Error(err))
			return s, err
		}
		return s, nil
	})
	if err != nil {
		log.Warn("llm: synthesis failed, returning placeholder report",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return DefaultStrategy()
	}
	if s.ValueChain.Stages == nil {
		s.ValueChain.Stages = []model.ValueChainStage{}
	}

	o.RepairConclusions(ctx, in.Company.Name, &s)
	log.Info("llm: synthesis complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("score", int(s.Score)),
	)
	return s
}

func strategyPromptData(in SynthesisInput) strategyData {
	d := strategyData{
		Company:         in.Company,
		BusinessSegment: in.BusinessSegment,
		Page:            in.Page,
		CompanyNews:     head(in.CompanyNews, newsInPrompt),
		IndustryNews:    head(in.IndustryNews, newsInPrompt),
		InquiryBody:     in.InquiryBody,
		Additional:      in.Additional,
	}
	if len(in.Financials) > 0 {
		f := in.Financials[0]
		d.Financial = &f
	}
	return d
}

func head[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// DefaultStrategy is the fully populated placeholder report.
func DefaultStrategy() model.Strategy {
	const p = "-"
	return model.Strategy{
		Summary:         "情報取得中...",
		IndustrySummary: "情報取得中...",
		IndustryData:    model.IndustryData{MarketSize: p, GrowthRate: p, CompanyCount: p, LaborPopulation: p},
		TechStackAnalysis: model.TechStackAnalysis{
			Maturity: p, Tools: model.TextList{}, Missing: model.TextList{}, Hypothesis: p,
		},
		Pestle: model.PestleSection{
			Political: p, Economic: p, Social: p, Technological: p, Legal: p, Environmental: p,
			FutureOutlook: p, Conclusion: p,
		},
		FiveForces: model.FiveForcesSection{
			Rivalry: p, NewEntrants: p, Substitutes: p, Suppliers: p, Buyers: p,
			FutureOutlook: p, Conclusion: p,
		},
		ThreeC:        model.ThreeCSection{Customer: p, Competitor: p, Company: p, Conclusion: p},
		STP:           model.STPSection{Segmentation: p, Targeting: p, Positioning: p, Conclusion: p},
		Marketing:     model.MarketingSection{ValueProposition: p, KSF: model.TextList{}, Conclusion: p},
		BusinessModel: model.BusinessModelSection{CostStructure: p, UnitEconomics: p, EconomicMoat: p, Conclusion: p},
		FinancialHealth: model.FinancialHealthSection{
			Status: p, Concern: p, InvestmentCapacity: p, BudgetCycle: p, DecisionSpeed: p, Conclusion: p,
		},
		SWOT: model.SWOTSection{
			Strengths: model.TextList{}, Weaknesses: model.TextList{}, Opportunities: model.TextList{},
			Threats: model.TextList{}, Unknowns: model.TextList{}, Conclusion: p,
		},
		EstimatedChallenges: model.TextList{"分析中"},
		Recruitment:         model.RecruitmentSection{JobTypes: model.TextList{}, Count: p, Phase: p, Conclusion: p},
		SevenS: model.SevenSSection{
			Strategy: p, Structure: p, Systems: p, SharedValues: p, Style: p, Staff: p, Skills: p,
		},
		BusinessSummary: model.BusinessSummarySection{
			Summary: p, ServiceClass: p, CustomerSegment: p, RevenueModel: p, Conclusion: p,
		},
		ValueChain:    model.ValueChainSection{KSF: model.TextList{}, Stages: []model.ValueChainStage{}, Conclusion: p},
		SalesStrategy: "分析中",
		CallTalk:      "お忙しいところ恐れ入ります。",
		FormDraft:     model.FormDraft{Short: "分析中", Long: "分析中"},
		Score:         0,
	}
}
