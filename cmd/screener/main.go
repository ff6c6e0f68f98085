package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockScreener/internal/logger"
)

var (
	cfgPath    string
	jsonOutput bool
)

func main() {
	root := &cobra.Command{
		Use:           "screener",
		Short:         "Multi-strategy stock analysis and screening",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Shutdown(context.Background())
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newAnalyzeCmd(),
		newCompareCmd(),
		newDiscoverCmd(),
		newServeCmd(),
		versionCmd,
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
