package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"StockScreener/internal/model"
	"StockScreener/internal/report"
)

func newAnalyzeCmd() *cobra.Command {
	var record bool
	cmd := &cobra.Command{
		Use:   "analyze TICKER...",
		Short: "Run technical, fundamental, sentiment and valuation analysis",
		Example: `  screener analyze AAPL
  screener analyze AAPL MSFT --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tickers := make([]string, len(args))
			for i, t := range args {
				tickers[i] = strings.ToUpper(t)
			}
			bundles := a.collector.AnalyzeAll(ctx, tickers)

			if record {
				rec := a.openRecorder(ctx)
				for _, b := range bundles {
					if err := rec.RecordAnalysis("", b); err != nil {
						return fmt.Errorf("record %s: %w", b.Ticker, err)
					}
				}
			}
			return printBundles(bundles)
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "store the analyses in the database")
	return cmd
}

func printBundles(bundles []*model.Bundle) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(bundles)
	}
	for _, b := range bundles {
		fmt.Println(report.RenderBundle(b))
	}
	return nil
}
