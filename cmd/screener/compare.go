package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"StockScreener/internal/logger"
	"StockScreener/internal/report"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare TICKER;TICKER[;...]",
		Short: "Compare 2 to 5 tickers, summarised by Claude when configured",
		Example: `  screener compare "AAPL;MSFT;NVDA"
  screener compare AAPL MSFT`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tickers, err := report.ParseCompareTickers(strings.Join(args, ";"))
			if err != nil {
				return err
			}
			a, err := loadApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			bundles := a.collector.AnalyzeAll(ctx, tickers)
			if err := printBundles(bundles); err != nil {
				return err
			}
			if a.summarizer == nil || jsonOutput {
				return nil
			}
			summary, err := a.summarizer.Compare(ctx, bundles)
			if err != nil {
				logger.ErrorWithErr(ctx, "compare summary failed", err)
				return nil
			}
			fmt.Println(summary)
			return nil
		},
	}
}
