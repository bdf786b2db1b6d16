package edinet

import (
	"encoding/csv"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Figures are the headline values of an annual report, as printed (yen).
type Figures struct {
	Revenue         string
	OperatingProfit string
	NetIncome       string
	TotalAssets     string
}

// Empty reports whether no figure was found.
func (f *Figures) Empty() bool {
	return f == nil || (f.Revenue == "" && f.OperatingProfit == "" && f.NetIncome == "" && f.TotalAssets == "")
}

// Element IDs in priority order; summary-of-business values come first
// because every filer reports them regardless of accounting standard.
var (
	revenueElements = []string{
		"jpcrp_cor:NetSalesSummaryOfBusinessResults",
		"jpcrp_cor:RevenueIFRSSummaryOfBusinessResults",
		"jpcrp_cor:OperatingRevenue1SummaryOfBusinessResults",
		"jppfs_cor:NetSales",
	}
	operatingElements = []string{
		"jppfs_cor:OperatingIncome",
		"jpigp_cor:OperatingProfitLossIFRS",
	}
	netIncomeElements = []string{
		"jpcrp_cor:ProfitLossAttributableToOwnersOfParentSummaryOfBusinessResults",
		"jpcrp_cor:NetIncomeLossSummaryOfBusinessResults",
		"jpcrp_cor:ProfitLossAttributableToOwnersOfParentIFRSSummaryOfBusinessResults",
		"jppfs_cor:ProfitLoss",
	}
	assetElements = []string{
		"jpcrp_cor:TotalAssetsSummaryOfBusinessResults",
		"jpcrp_cor:TotalAssetsIFRSSummaryOfBusinessResults",
		"jppfs_cor:Assets",
	}
)

// currentContexts are the context IDs for the reporting period itself.
var currentContexts = map[string]bool{
	"CurrentYearDuration":                       true,
	"CurrentYearInstant":                        true,
	"CurrentYearDuration_NonConsolidatedMember": true,
	"CurrentYearInstant_NonConsolidatedMember":  true,
}

func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}

// readCSV consumes one UTF-16 tab-separated XBRL CSV. Columns:
// element ID, label, context ID, relative year, consolidation, period,
// unit ID, unit, value.
func (f *Figures) readCSV(r io.Reader) error {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	found := map[string]map[string]string{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(rec) < 9 || !currentContexts[rec[2]] {
			continue
		}
		val := strings.TrimSpace(rec[8])
		if val == "" || val == "－" || val == "-" {
			continue
		}
		byCtx, ok := found[rec[0]]
		if !ok {
			byCtx = map[string]string{}
			found[rec[0]] = byCtx
		}
		byCtx[rec[2]] = val
	}

	pick := func(dst *string, ids []string) {
		if *dst != "" {
			return
		}
		for _, id := range ids {
			byCtx := found[id]
			for _, ctx := range []string{
				"CurrentYearDuration", "CurrentYearInstant",
				"CurrentYearDuration_NonConsolidatedMember", "CurrentYearInstant_NonConsolidatedMember",
			} {
				if v := byCtx[ctx]; v != "" {
					*dst = v
					return
				}
			}
		}
	}
	pick(&f.Revenue, revenueElements)
	pick(&f.OperatingProfit, operatingElements)
	pick(&f.NetIncome, netIncomeElements)
	pick(&f.TotalAssets, assetElements)
	return nil
}
