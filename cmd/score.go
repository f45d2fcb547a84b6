package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/carbonref/factor-cli/internal/model"
)

var (
	scoreInput model.QualityInput
	scoreJSON  bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a pedigree-matrix quality assessment",
	RunE: func(_ *cobra.Command, _ []string) error {
		engine, err := newQualityEngine()
		if err != nil {
			return err
		}

		assessment, err := engine.Score(scoreInput)
		if err != nil {
			return eris.Wrap(err, "score")
		}

		if scoreJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(assessment)
		}

		fmt.Printf("overall score: %d (grade %s, confidence %.0f%%)\n",
			assessment.OverallScore, assessment.Grade, assessment.ConfidenceLevel)
		for _, f := range assessment.Factors {
			fmt.Printf("  %-32s %d x %.2f = %.3f (%s)\n",
				f.Factor, f.Score, f.Weight, f.Contribution, f.Band)
		}
		for _, rec := range assessment.Recommendations {
			fmt.Printf("  ! %s\n", rec)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreInput.Temporal, "temporal", 3, "temporal representativeness (1-5)")
	scoreCmd.Flags().IntVar(&scoreInput.Geographical, "geographical", 3, "geographical representativeness (1-5)")
	scoreCmd.Flags().IntVar(&scoreInput.Technological, "technological", 3, "technological representativeness (1-5)")
	scoreCmd.Flags().IntVar(&scoreInput.Completeness, "completeness", 3, "completeness (1-5)")
	scoreCmd.Flags().IntVar(&scoreInput.Reliability, "reliability", 3, "reliability (1-5)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "emit the assessment as JSON")
	rootCmd.AddCommand(scoreCmd)
}
