package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbonref/factor-cli/internal/export"
	"github.com/carbonref/factor-cli/internal/model"
	"github.com/carbonref/factor-cli/internal/store"
)

var (
	exportOutPath  string
	exportCategory string
	exportCountry  string
	exportGrade    string
	exportYearFrom int
	exportYearTo   int
	exportStatus   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export factors to a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		projector, err := export.NewProjector(cfg.Export)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListFactors(ctx, store.Filter{
			CategoryL1:  exportCategory,
			CountryCode: exportCountry,
			Grade:       model.Grade(exportGrade),
			YearFrom:    exportYearFrom,
			YearTo:      exportYearTo,
			Status:      model.Status(exportStatus),
			Limit:       1000000,
		})
		if err != nil {
			return eris.Wrap(err, "list factors")
		}

		f, err := os.Create(exportOutPath)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close()

		switch strings.ToLower(filepath.Ext(exportOutPath)) {
		case ".csv":
			err = export.WriteCSV(f, projector, records)
		case ".xlsx":
			err = export.WriteXLSX(f, projector, records)
		default:
			return eris.Errorf("unsupported output extension %q (expected .csv or .xlsx)", filepath.Ext(exportOutPath))
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("file", exportOutPath),
			zap.Int("records", len(records)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutPath, "out", "", "output file, .csv or .xlsx (required)")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "filter by level-1 category")
	exportCmd.Flags().StringVar(&exportCountry, "country", "", "filter by country code")
	exportCmd.Flags().StringVar(&exportGrade, "grade", "", "filter by quality grade")
	exportCmd.Flags().IntVar(&exportYearFrom, "year-from", 0, "filter by minimum reference year")
	exportCmd.Flags().IntVar(&exportYearTo, "year-to", 0, "filter by maximum reference year")
	exportCmd.Flags().StringVar(&exportStatus, "status", "published", "filter by record status")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
