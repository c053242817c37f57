package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/dedupe"
)

var cleanKind string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deduplicate a dataset, merging duplicate records by name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, err := parseKind(cleanKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("clean"); err != nil {
			return err
		}

		records, err := loadDataset(kind)
		if err != nil {
			return eris.Wrap(err, "read dataset")
		}

		merged := dedupe.Merge(records, dedupe.ByName, kind.ScoreFields())

		if err := saveDataset(kind, merged); err != nil {
			return eris.Wrap(err, "write dataset")
		}

		zap.L().Info("clean complete",
			zap.String("kind", string(kind)),
			zap.Int("before", len(records)),
			zap.Int("after", len(merged)),
		)
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	rootCmd.AddCommand(cleanCmd)
}
