package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
)

// InboundInput describes a landing-page visit and the visitor's site.
type InboundInput struct {
	CompanyName string
	Page        model.ScrapedPage
	LPTitle     string
	LPURL       string
	InflowType  string
}

type inboundReply struct {
	PestleFactors model.TextList `json:"pestle_factors"`
	Hypothesis    model.Text     `json:"hypothesis"`
	SalesHook     model.Text     `json:"sales_hook"`
}

// FallbackInboundResult is the result used when no hypothesis could be generated.
func FallbackInboundResult(lpTitle string) model.InboundLeadResult {
	return model.InboundLeadResult{
		PestleFactors: []string{},
		Hypothesis:    "LP「" + lpTitle + "」への関心が確認されました。",
		SalesHook:     lpTitle + "についてのご状況はいかがでしょうか？",
	}
}

// InboundHypothesis explains why a visitor's company looked at a landing
// page, on the lite cascade. It never fails.
func (o *Orchestrator) InboundHypothesis(ctx context.Context, in InboundInput) model.InboundLeadResult {
	fallback := FallbackInboundResult(in.LPTitle)
	log := zap.L().With(zap.String("company", in.CompanyName), zap.String("lp_title", in.LPTitle))

	prompt, err := render("inbound.tmpl", inboundData{
		CompanyName: in.CompanyName,
		Description: in.Page.Description,
		Body:        in.Page.BodyText,
		InflowType:  in.InflowType,
		LPTitle:     in.LPTitle,
		LPURL:       in.LPURL,
	})
	if err != nil {
		log.Warn("llm: render inbound prompt", zap.Error(err))
		return fallback
	}

	text, err := o.cascade(ctx, o.lite, Call{Phase: "inbound", Prompt: prompt, JSON: true})
	if err != nil {
		log.Warn("llm: inbound hypothesis failed", zap.Error(err))
		return fallback
	}

	var reply inboundReply
	if err := decodeReply(text, &reply); err != nil {
		log.Warn("llm: inbound reply unusable", zap.Error(err))
		return fallback
	}

	out := model.InboundLeadResult{
		PestleFactors: nonEmpty(reply.PestleFactors),
		Hypothesis:    strings.TrimSpace(string(reply.Hypothesis)),
		SalesHook:     strings.TrimSpace(string(reply.SalesHook)),
	}
	if out.Hypothesis == "" {
		out.Hypothesis = fallback.Hypothesis
	}
	if out.SalesHook == "" {
		out.SalesHook = fallback.SalesHook
	}
	return out
}
