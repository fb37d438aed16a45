package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ListingScanner/internal/app"
	"ListingScanner/internal/config"
	"ListingScanner/internal/dom"
	"ListingScanner/internal/infrastructure/browser"
	"ListingScanner/internal/logging"
	"ListingScanner/internal/ports"
)

var (
	checkFile string
	checkURL  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one evaluation pass (manual re-check semantics) and print the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.Logging.Level)

		source, closeSource, err := buildSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSource()

		engine, cleanup, err := app.NewCheckEngine(cfg, logger, source)
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()

		result, err := engine.CheckNow(cmd.Context())
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Fprintln(os.Stderr, "no checkable panel")
			return nil
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkFile, "file", "", "classify a saved page snapshot instead of the live browser")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "source URL recorded for a --file snapshot")
}

func buildSource(cfg config.Config, logger *slog.Logger) (ports.PageSource, func(), error) {
	if checkFile != "" {
		source := ports.PageSourceFunc(func(context.Context) (*dom.Page, error) {
			f, err := os.Open(checkFile)
			if err != nil {
				return nil, fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()
			return dom.NewPage(checkURL, f)
		})
		return source, func() {}, nil
	}

	live, err := browser.Connect(browser.Config{
		DebuggerURL:    cfg.Browser.DebuggerURL,
		Headless:       cfg.Browser.Headless,
		PageURLPattern: cfg.Browser.PageURLPattern,
	}, logging.Component(logger, "browser"))
	if err != nil {
		return nil, nil, err
	}
	return live, func() { _ = live.Close() }, nil
}
