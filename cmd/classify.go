package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var classifyKind string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Backfill cuisine or category labels on a dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := parseKind(classifyKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		classifier, err := cfg.Classify.Classifier()
		if err != nil {
			return eris.Wrap(err, "build classifier")
		}

		records, err := loadDataset(kind)
		if err != nil {
			return eris.Wrap(err, "read dataset")
		}

		labeled, err := classifier.LabelAll(ctx, kind, records)
		if err != nil {
			return eris.Wrap(err, "label dataset")
		}

		if err := saveDataset(kind, records); err != nil {
			return eris.Wrap(err, "write dataset")
		}

		zap.L().Info("classify complete",
			zap.String("kind", string(kind)),
			zap.Int("records", len(records)),
			zap.Int("labeled", labeled),
		)
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	rootCmd.AddCommand(classifyCmd)
}
