package analysis

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
	"github.com/sells-group/lead-intel/pkg/catr"
	"github.com/sells-group/lead-intel/pkg/edinet"
)

// KanpoYear labels figures read from the latest public notice.
const KanpoYear = "Latest (Kanpo)"

// FinancialSource returns reported figures for a company, newest first.
// No data is an empty result, not an error.
type FinancialSource interface {
	Name() string
	Financials(ctx context.Context, profile model.CompanyProfile) ([]model.FinancialRecord, error)
}

// firstFinancials returns the records of the first source with any. Source
// errors are logged and skipped.
func firstFinancials(ctx context.Context, sources []FinancialSource, profile model.CompanyProfile) ([]model.FinancialRecord, string) {
	for _, src := range sources {
		recs, err := src.Financials(ctx, profile)
		if err != nil {
			zap.L().Warn("analysis: financial source failed",
				zap.String("source", src.Name()),
				zap.String("company", profile.Name),
				zap.Error(err),
			)
			continue
		}
		if len(recs) > 0 {
			return recs, src.Name()
		}
	}
	return []model.FinancialRecord{}, ""
}

// EDINETSource finds the latest annual report filed under the company's
// corporate number within a short lookback window.
type EDINETSource struct {
	client   edinet.Client
	lookback int
	now      func() time.Time
}

// NewEDINETSource creates a source scanning lookbackDays of filing indexes.
func NewEDINETSource(client edinet.Client, lookbackDays int) *EDINETSource {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &EDINETSource{client: client, lookback: lookbackDays, now: time.Now}
}

// Name implements FinancialSource.
func (s *EDINETSource) Name() string { return "edinet" }

// Financials implements FinancialSource.
func (s *EDINETSource) Financials(ctx context.Context, profile model.CompanyProfile) ([]model.FinancialRecord, error) {
	if profile.CorporateNumber == "" {
		return nil, nil
	}
	today := s.now()
	for day := 0; day < s.lookback; day++ {
		docs, err := s.client.Documents(ctx, today.AddDate(0, 0, -day))
		if err != nil {
			return nil, err
		}
		doc, ok := annualReport(docs, profile.CorporateNumber)
		if !ok {
			continue
		}
		fig, err := s.client.Figures(ctx, doc.DocID)
		if err != nil {
			return nil, err
		}
		if fig.Empty() {
			return nil, nil
		}
		return []model.FinancialRecord{{
			Year:            fiscalYear(doc.PeriodEnd),
			Revenue:         orDash(fig.Revenue),
			OperatingProfit: orDash(fig.OperatingProfit),
			NetIncome:       fig.NetIncome,
			TotalAssets:     fig.TotalAssets,
			Source:          "EDINET",
		}}, nil
	}
	return nil, nil
}

func annualReport(docs []edinet.Document, corporateNumber string) (edinet.Document, bool) {
	for _, d := range docs {
		if d.JCN == corporateNumber && d.DocTypeCode == edinet.DocTypeAnnualReport && d.CSVFlag == "1" {
			return d, true
		}
	}
	return edinet.Document{}, false
}

func fiscalYear(periodEnd string) string {
	if len(periodEnd) >= 4 {
		return periodEnd[:4]
	}
	if periodEnd == "" {
		return "-"
	}
	return periodEnd
}

// CatrSource reads figures from the latest public notice on catr.jp.
type CatrSource struct {
	client catr.Client
}

// NewCatrSource creates a notice-based source.
func NewCatrSource(client catr.Client) *CatrSource {
	return &CatrSource{client: client}
}

// Name implements FinancialSource.
func (s *CatrSource) Name() string { return "catr" }

// Financials implements FinancialSource.
func (s *CatrSource) Financials(ctx context.Context, profile model.CompanyProfile) ([]model.FinancialRecord, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, nil
	}
	n, err := s.client.LatestNotice(ctx, profile.Name)
	if err != nil {
		return nil, err
	}
	if n.Empty() {
		return nil, nil
	}
	return []model.FinancialRecord{{
		Year:            KanpoYear,
		Revenue:         "-",
		OperatingProfit: "-",
		NetIncome:       n.NetIncome,
		TotalAssets:     n.TotalAssets,
		Source:          "catr.jp",
	}}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
