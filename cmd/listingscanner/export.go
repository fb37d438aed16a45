package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ListingScanner/internal/config"
	"ListingScanner/internal/infrastructure/storage"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump all stored classification results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()

		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var out io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "csv":
			return store.ExportCSV(cmd.Context(), out)
		case "json":
			return store.ExportJSON(cmd.Context(), out)
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
}
