package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ListingScanner/internal/app"
	"ListingScanner/internal/config"
	"ListingScanner/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the observed tab and record eligibility results until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Load()
		logger := logging.New(cfg.Logging.Level)

		application, err := app.New(cfg, logger)
		if err != nil {
			return err
		}

		if err := application.Run(ctx); err != nil {
			logger.Error("application stopped", "error", err)
			return err
		}
		return nil
	},
}
