package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-intel/internal/analysis"
	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/internal/resilience"
)

type fakeAnalyzer struct {
	result  *model.AnalysisResult
	err     error
	inbound model.InboundLeadResult
	panics  bool
	gotReq  model.AnalysisRequest
	gotLead model.InboundLeadRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	f.gotReq = req
	if f.panics {
		panic("nil profile")
	}
	return f.result, f.err
}

func (f *fakeAnalyzer) AnalyzeInboundLead(_ context.Context, req model.InboundLeadRequest) model.InboundLeadResult {
	f.gotLead = req
	return f.inbound
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestRouter_Health(t *testing.T) {
	h := buildRouter(&fakeAnalyzer{}, nil, nil, time.Second)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouter_HealthReportsBreakers(t *testing.T) {
	breakers := resilience.NewServiceBreakers(resilience.NewCircuitBreakerConfig(1, time.Hour))
	breakers.Get("newsapi")
	err := breakers.Get("gnews").Execute(context.Background(), func(context.Context) error {
		return errors.New("gnews: status 503")
	})
	require.Error(t, err)

	h := buildRouter(&fakeAnalyzer{}, breakers, nil, time.Second)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","breakers":{"gnews":"open","newsapi":"closed"}}`, rr.Body.String())
}

func TestRouter_PanicReturnsErrorEnvelope(t *testing.T) {
	h := buildRouter(&fakeAnalyzer{panics: true}, nil, nil, time.Second)

	for _, path := range []string{"/analyze", "/api/analyze"} {
		rr := post(t, h, path, `{"companyName":"株式会社サンプル"}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
		assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
		assert.Equal(t, "Internal Server Error", errorBody(t, rr))
	}
}

func TestRouter_Analyze(t *testing.T) {
	fa := &fakeAnalyzer{result: &model.AnalysisResult{
		Company:    model.CompanyProfile{Name: "株式会社サンプル", ListingStatus: model.ListingUnknown},
		Financials: []model.FinancialRecord{},
	}}
	h := buildRouter(fa, nil, nil, time.Second)

	for _, path := range []string{"/analyze", "/api/analyze"} {
		rr := post(t, h, path, `{"companyName":"株式会社サンプル","domain":"example.co.jp","businessSegment":"物流"}`)
		require.Equal(t, http.StatusOK, rr.Code, path)

		var res model.AnalysisResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, "株式会社サンプル", res.Company.Name)
		assert.Equal(t, model.AnalysisRequest{
			CompanyName:     "株式会社サンプル",
			Domain:          "example.co.jp",
			BusinessSegment: "物流",
		}, fa.gotReq)
	}
}

func TestRouter_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid", analysis.ErrInvalidRequest, http.StatusBadRequest, "Company name or domain is required"},
		{"not found", analysis.ErrNotFound, http.StatusNotFound, "Company not found"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := buildRouter(&fakeAnalyzer{err: tt.err}, nil, nil, time.Second)
			rr := post(t, h, "/analyze", `{"companyName":"x"}`)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.msg, errorBody(t, rr))
		})
	}
}

func TestRouter_AnalyzeBadBody(t *testing.T) {
	h := buildRouter(&fakeAnalyzer{}, nil, nil, time.Second)
	rr := post(t, h, "/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_InboundLeadAlwaysOK(t *testing.T) {
	fa := &fakeAnalyzer{inbound: model.InboundLeadResult{
		PestleFactors: []string{"Economic"},
		Hypothesis:    "コスト削減",
		SalesHook:     "いかがでしょうか？",
	}}
	h := buildRouter(fa, nil, nil, time.Second)

	rr := post(t, h, "/api/analyze-inbound-lead", `{"email":"taro@example.co.jp","lpTitle":"物流DX"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"pestle_factors":["Economic"],"hypothesis":"コスト削減","sales_hook":"いかがでしょうか？"}`, rr.Body.String())
	assert.Equal(t, "taro@example.co.jp", fa.gotLead.Email)

	rr = post(t, h, "/analyze-inbound-lead", `garbage`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.InboundLeadRequest{}, fa.gotLead)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := buildRouter(&fakeAnalyzer{}, nil, []string{"chrome-extension://abc"}, time.Second)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "chrome-extension://abc", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunAnalyze_PrintsJSON(t *testing.T) {
	fa := &fakeAnalyzer{result: &model.AnalysisResult{Company: model.CompanyProfile{Name: "株式会社サンプル"}}}
	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	analyzeCmd.SetContext(context.Background())
	t.Cleanup(func() { analyzeCmd.SetOut(nil) })

	require.NoError(t, runAnalyze(analyzeCmd, fa, model.AnalysisRequest{CompanyName: "株式会社サンプル"}))
	assert.Contains(t, out.String(), `"name": "株式会社サンプル"`)
}

func TestRunAnalyze_Error(t *testing.T) {
	analyzeCmd.SetContext(context.Background())
	err := runAnalyze(analyzeCmd, &fakeAnalyzer{err: analysis.ErrNotFound}, model.AnalysisRequest{CompanyName: "x"})
	assert.ErrorIs(t, err, analysis.ErrNotFound)
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])
	assert.Equal(t, "lead-intel", rootCmd.Use)

	for _, flag := range []string{"company", "domain", "url", "additional-url", "segment", "inquiry"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(flag), flag)
	}
	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
}
