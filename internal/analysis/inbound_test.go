package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-intel/internal/model"
)

func TestInboundSearchKey(t *testing.T) {
	tests := []struct {
		req  model.InboundLeadRequest
		want string
	}{
		{model.InboundLeadRequest{CompanyName: " 株式会社サンプル ", Email: "a@example.co.jp"}, "株式会社サンプル"},
		{model.InboundLeadRequest{Email: "taro@Example.co.jp"}, "example.co.jp"},
		{model.InboundLeadRequest{Email: "taro@gmail.com"}, ""},
		{model.InboundLeadRequest{Email: "taro@yahoo.co.jp"}, ""},
		{model.InboundLeadRequest{Email: "not-an-email"}, ""},
		{model.InboundLeadRequest{Email: "taro@"}, ""},
		{model.InboundLeadRequest{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InboundSearchKey(tt.req), "%+v", tt.req)
	}
}

func TestAnalyzeInboundLead_NoKey(t *testing.T) {
	deps, scraper, gen := baseDeps()

	res := New(deps).AnalyzeInboundLead(context.Background(), model.InboundLeadRequest{
		Email:   "taro@gmail.com",
		LPTitle: "物流DX",
	})

	assert.Equal(t, hypothesisNoKey, res.Hypothesis)
	assert.NotNil(t, res.PestleFactors)
	assert.Empty(t, res.PestleFactors)
	assert.Empty(t, scraper.fetched())
	assert.Empty(t, gen.inbounds)
}

func TestAnalyzeInboundLead_EmailDomain(t *testing.T) {
	deps, scraper, gen := baseDeps()
	deps.Identity = NewRegistryResolver(nil)
	scraper.pages["https://example.co.jp"] = model.ScrapedPage{Title: "Example", BodyText: "物流サービス"}
	gen.inbound = model.InboundLeadResult{
		PestleFactors: []string{"Economic"},
		Hypothesis:    "配送コストの見直し",
		SalesHook:     "配送コストはいかがでしょうか？",
	}

	res := New(deps).AnalyzeInboundLead(context.Background(), model.InboundLeadRequest{
		Email:      "taro@example.co.jp",
		LPTitle:    "物流DX",
		LPURL:      "https://lp.example.com/dx",
		InflowType: "資料請求",
	})

	assert.Equal(t, gen.inbound, res)
	assert.Equal(t, []string{"https://example.co.jp"}, scraper.fetched())
	require.Len(t, gen.inbounds, 1)
	in := gen.inbounds[0]
	assert.Equal(t, "example.co.jp", in.CompanyName)
	assert.Equal(t, "Example", in.Page.Title)
	assert.Equal(t, "物流DX", in.LPTitle)
	assert.Equal(t, "https://lp.example.com/dx", in.LPURL)
	assert.Equal(t, "資料請求", in.InflowType)
}

func TestAnalyzeInboundLead_NameWithoutSite(t *testing.T) {
	deps, scraper, gen := baseDeps()
	deps.Identity = fakeIdentity{err: errors.New("registry down")}

	New(deps).AnalyzeInboundLead(context.Background(), model.InboundLeadRequest{CompanyName: "株式会社サンプル"})

	assert.Empty(t, scraper.fetched())
	require.Len(t, gen.inbounds, 1)
	assert.Equal(t, "株式会社サンプル", gen.inbounds[0].CompanyName)
	assert.Equal(t, model.EmptyScrapedPage(), gen.inbounds[0].Page)
}

func TestAnalyzeInboundLead_RecoversFromPanic(t *testing.T) {
	deps, _, _ := baseDeps()

	res := New(deps).AnalyzeInboundLead(context.Background(), model.InboundLeadRequest{CompanyName: "panic"})

	assert.Equal(t, hypothesisError, res.Hypothesis)
	assert.NotNil(t, res.PestleFactors)
}
