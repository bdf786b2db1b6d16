package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/llm"
	"github.com/sells-group/lead-intel/internal/model"
)

const (
	hypothesisNoKey = "法人・ドメインが特定できないため、詳細分析をスキップしました。"
	hypothesisError = "分析中にエラーが発生しました。"
)

// freeMailDomains never identify a company.
var freeMailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.co.jp": true,
}

// InboundSearchKey returns the company name, else the email domain unless it
// belongs to a free mail provider.
func InboundSearchKey(req model.InboundLeadRequest) string {
	if name := strings.TrimSpace(req.CompanyName); name != "" {
		return name
	}
	email := strings.TrimSpace(req.Email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	domain := strings.ToLower(email[at+1:])
	if freeMailDomains[domain] {
		return ""
	}
	return domain
}

// AnalyzeInboundLead builds a visit hypothesis for a landing-page lead. It
// never fails: a missing key, a panic or any collaborator failure all
// produce an explanatory result.
func (s *Service) AnalyzeInboundLead(ctx context.Context, req model.InboundLeadRequest) (result model.InboundLeadResult) {
	log := zap.L().With(zap.String("company", req.CompanyName), zap.String("lp_title", req.LPTitle))

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis: inbound lead panicked", zap.String("panic", fmt.Sprint(r)))
			result = model.InboundLeadResult{PestleFactors: []string{}, Hypothesis: hypothesisError}
		}
	}()

	key := InboundSearchKey(req)
	if key == "" {
		log.Info("analysis: inbound lead has no usable key")
		return model.InboundLeadResult{PestleFactors: []string{}, Hypothesis: hypothesisNoKey}
	}

	name, domain := key, ""
	if strings.TrimSpace(req.CompanyName) == "" {
		name, domain = "", key
	}
	profile, err := s.deps.Identity.Resolve(ctx, name, domain)
	if err != nil {
		log.Warn("analysis: inbound identity failed", zap.Error(err))
		profile = model.CompanyProfile{Name: key, ListingStatus: model.ListingUnknown}
	}

	target := profile.URL
	if target == "" && strings.Contains(key, ".") {
		target = "https://" + key
	}
	page := model.EmptyScrapedPage()
	if target != "" {
		page = s.deps.Scraper.FetchPageContent(ctx, target)
	}

	return s.deps.Generator.InboundHypothesis(ctx, llm.InboundInput{
		CompanyName: profile.Name,
		Page:        page,
		LPTitle:     req.LPTitle,
		LPURL:       req.LPURL,
		InflowType:  req.InflowType,
	})
}
