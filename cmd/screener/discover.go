package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockScreener/internal/report"
)

func newDiscoverCmd() *cobra.Command {
	var listOnly bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Pick random NASDAQ/NYSE tickers and derive their company metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tickers, err := a.discover(ctx)
			if err != nil {
				return err
			}
			if listOnly {
				fmt.Println(tickers)
				return nil
			}

			rec := a.openRecorder(ctx)
			enc := json.NewEncoder(os.Stdout)
			for _, t := range tickers {
				m, items, err := a.collector.ProcessCompany(ctx, t)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", t, err)
					continue
				}
				if err := rec.RecordCompany(m, items); err != nil {
					return fmt.Errorf("record %s: %w", t, err)
				}
				if jsonOutput {
					if err := enc.Encode(m); err != nil {
						return err
					}
					continue
				}
				fmt.Println(report.RenderCompany(m))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listOnly, "list", false, "only list the selected tickers")
	return cmd
}
