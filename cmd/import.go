package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importKind string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a cleaned dataset CSV into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := parseKind(importKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		records, err := loadDataset(kind)
		if err != nil {
			return eris.Wrap(err, "read dataset")
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		written, err := st.UpsertPlaces(ctx, kind, records)
		if err != nil {
			return eris.Wrap(err, "upsert places")
		}

		zap.L().Info("import complete",
			zap.String("kind", string(kind)),
			zap.Int("records", len(records)),
			zap.Int("written", written),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	rootCmd.AddCommand(importCmd)
}
