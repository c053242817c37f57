package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/dedupe"
	"github.com/magic-city-guide/poi-cli/internal/ingest"
)

var sheetKind string

var sheetCmd = &cobra.Command{
	Use:   "sheet <path>",
	Short: "Merge curated spreadsheet rows into a dataset",
	Long:  "Reads an .xlsx or .csv sheet of hand-curated places and folds the rows into the dataset. Existing dataset values win; sheet values only fill gaps.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(sheetKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("sheet"); err != nil {
			return err
		}

		additions, err := ingest.ReadSheet(args[0])
		if err != nil {
			return eris.Wrap(err, "read sheet")
		}

		existing, err := loadDataset(kind)
		if err != nil {
			zap.L().Info("no existing dataset, starting from sheet",
				zap.String("kind", string(kind)),
			)
			existing = nil
		}

		merged := dedupe.MergeInto(existing, additions, dedupe.ByNameAddress)

		if err := saveDataset(kind, merged); err != nil {
			return eris.Wrap(err, "write dataset")
		}

		zap.L().Info("sheet merge complete",
			zap.String("sheet", args[0]),
			zap.String("kind", string(kind)),
			zap.Int("rows", len(additions)),
			zap.Int("total", len(merged)),
		)
		return nil
	},
}

func init() {
	sheetCmd.Flags().StringVar(&sheetKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	rootCmd.AddCommand(sheetCmd)
}
