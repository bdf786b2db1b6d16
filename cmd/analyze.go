package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-intel/internal/model"
)

var analyzeReq model.AnalysisRequest

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one company and print the result as JSON",
	Example: `  lead-intel analyze --company "株式会社サンプル"
  lead-intel analyze --domain example.co.jp --additional-url https://example.co.jp/ir/report.pdf`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Validate("analyze")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cmd.Context(), cfg, newsBreakers(cfg))
		if err != nil {
			return err
		}
		return runAnalyze(cmd, svc, analyzeReq)
	},
}

func runAnalyze(cmd *cobra.Command, svc analyzer, req model.AnalysisRequest) error {
	res, err := svc.Analyze(cmd.Context(), req)
	if err != nil {
		return eris.Wrap(err, "analyze")
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeReq.CompanyName, "company", "", "company name")
	f.StringVar(&analyzeReq.Domain, "domain", "", "company domain, e.g. example.co.jp")
	f.StringVar(&analyzeReq.PageURL, "url", "", "page to scrape instead of the domain root")
	f.StringVar(&analyzeReq.AdditionalURL, "additional-url", "", "extra page or PDF to include")
	f.StringVar(&analyzeReq.BusinessSegment, "segment", "", "business segment to focus on")
	f.StringVar(&analyzeReq.InquiryBody, "inquiry", "", "inquiry text received from the company")
	rootCmd.AddCommand(analyzeCmd)
}
