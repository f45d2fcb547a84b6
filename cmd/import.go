package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbonref/factor-cli/internal/fetcher"
	"github.com/carbonref/factor-cli/internal/importer"
	"github.com/carbonref/factor-cli/internal/model"
)

var (
	importFilePath  string
	importCreatedBy string
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import emission factors from an XLSX or CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		table, err := fetcher.ReadFile(importFilePath)
		if err != nil {
			return err
		}
		rows := table.Records()
		if len(rows) == 0 {
			return eris.Errorf("%s contains no data rows", importFilePath)
		}

		if importDryRun {
			imp := importer.NewImporter(cfg.Import, nil)
			result := dryRunRows(imp, rows, importCreatedBy)
			printImportResult(result, true)
			if result.Rejected > 0 {
				os.Exit(1)
			}
			return nil
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		imp := importer.NewImporter(cfg.Import, st)
		result, err := imp.ImportBatch(ctx, rows, importCreatedBy)
		if err != nil {
			return eris.Wrap(err, "import batch")
		}

		printImportResult(result, false)
		zap.L().Info("import finished",
			zap.String("file", importFilePath),
			zap.Int("accepted", result.Accepted),
			zap.Int("rejected", result.Rejected),
		)
		if result.Rejected > 0 {
			os.Exit(1)
		}
		return nil
	},
}

// dryRunRows validates without writing, mirroring the per-row outcome
// shape of a real import.
func dryRunRows(imp *importer.Importer, rows []model.RawRow, createdBy string) *model.ImportResult {
	outcomes := make([]model.ImportOutcome, len(rows))
	for i, raw := range rows {
		_, errs := imp.ValidateRow(i+1, raw, createdBy)
		outcome := model.ImportOutcome{Row: i + 1, Status: model.OutcomeAccepted}
		if len(errs) > 0 {
			outcome.Status = model.OutcomeRejectedInvalid
			outcome.Errors = errs
		}
		outcomes[i] = outcome
	}
	result := &model.ImportResult{Outcomes: outcomes}
	result.Tally()
	return result
}

func printImportResult(result *model.ImportResult, dryRun bool) {
	verb := "imported"
	if dryRun {
		verb = "validated"
	}
	fmt.Printf("%s %d rows: %d accepted, %d rejected\n",
		verb, result.TotalRows, result.Accepted, result.Rejected)

	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case model.OutcomeRejectedInvalid:
			for _, verr := range outcome.Errors {
				fmt.Printf("  row %d: %s %s\n", verr.Row, verr.Field, verr.Message)
			}
		case model.OutcomeRejectedStorage:
			fmt.Printf("  row %d: storage: %s\n", outcome.Row, outcome.StorageError)
		case model.OutcomeRejectedCancelled:
			fmt.Printf("  row %d: cancelled\n", outcome.Row)
		}
	}
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to XLSX or CSV file (required)")
	importCmd.Flags().StringVar(&importCreatedBy, "created-by", "", "creator recorded on imported factors")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only, write nothing")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
