package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/export"
)

var (
	templateOutPath string
	templateLocale  string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an import template with sample rows",
	RunE: func(_ *cobra.Command, _ []string) error {
		locale := templateLocale
		if locale == "" {
			locale = cfg.Export.Locale
		}
		projector, err := export.NewProjector(config.ExportConfig{
			Locale:    locale,
			Precision: cfg.Export.Precision,
		})
		if err != nil {
			return err
		}

		f, err := os.Create(templateOutPath)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close()

		switch strings.ToLower(filepath.Ext(templateOutPath)) {
		case ".csv":
			err = export.WriteTemplateCSV(f, projector)
		case ".xlsx":
			err = export.WriteTemplateXLSX(f, projector)
		default:
			return eris.Errorf("unsupported output extension %q (expected .csv or .xlsx)", filepath.Ext(templateOutPath))
		}
		if err != nil {
			return err
		}

		zap.L().Info("template written", zap.String("file", templateOutPath))
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateOutPath, "out", "import_template.xlsx", "output file, .csv or .xlsx")
	templateCmd.Flags().StringVar(&templateLocale, "locale", "", "header locale, en or zh (default from config)")
	rootCmd.AddCommand(templateCmd)
}
