package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/fetch"
)

var geocodeKind string

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Backfill missing addresses via Nominatim reverse geocoding",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := parseKind(geocodeKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("geocode"); err != nil {
			return err
		}

		records, err := loadDataset(kind)
		if err != nil {
			return eris.Wrap(err, "read dataset")
		}

		client := fetch.NewClient(cfg.Fetch.ClientOptions())
		nominatim := fetch.NewNominatim(client, cfg.Geocode)

		filled, err := nominatim.FillAddresses(ctx, records)
		if err != nil {
			return eris.Wrap(err, "fill addresses")
		}

		if err := saveDataset(kind, records); err != nil {
			return eris.Wrap(err, "write dataset")
		}

		zap.L().Info("geocode complete",
			zap.String("kind", string(kind)),
			zap.Int("filled", filled),
		)
		return nil
	},
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	rootCmd.AddCommand(geocodeCmd)
}
