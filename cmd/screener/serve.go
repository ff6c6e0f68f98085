package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockScreener/internal/logger"
	"StockScreener/internal/notifier"
	"StockScreener/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, Telegram bot and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Context for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			logger.Info(ctx, "StockScreener starting...")

			tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
			rec := a.openRecorder(ctx)

			sched := scheduler.NewScheduler(ctx, a.collector, tn, rec, a.discover)
			sched.Metrics = a.metrics
			sched.Summarizer = a.summarizer
			sched.Watchlist = a.cfg.Analysis.Watchlist
			if err := sched.RegisterAll(a.cfg.Schedule.ScreeningCron, a.cfg.Schedule.WatchlistCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if addr := a.cfg.Metrics.Addr; addr != "" {
				go func() {
					if err := a.metrics.Serve(ctx, addr); err != nil {
						logger.ErrorWithErr(ctx, "metrics server failed", err)
					}
				}()
				logger.Info(ctx, "metrics endpoint started", "addr", addr)
			}

			go tn.StartPolling(ctx, sched.HandleCommand)
			logger.Info(ctx, "telegram polling started")

			// Optional: run immediately on start
			if os.Getenv("RUN_ON_START") == "true" {
				logger.Info(ctx, "RUN_ON_START enabled, executing screening now")
				go sched.RunScreeningNow()
			}

			logger.Info(ctx, "StockScreener is running. Press Ctrl+C to stop.")
			<-ctx.Done()
			logger.Info(context.Background(), "shutdown signal received, stopping...")
			return nil
		},
	}
}
