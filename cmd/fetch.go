package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/dedupe"
	"github.com/magic-city-guide/poi-cli/internal/fetch"
	"github.com/magic-city-guide/poi-cli/internal/model"
)

var (
	fetchKind  string
	fetchQuery string
	fetchMerge bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw records from external sources",
}

var fetchOSMCmd = &cobra.Command{
	Use:   "osm",
	Short: "Fetch places from the OSM Overpass API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := parseKind(fetchKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		client := fetch.NewClient(cfg.Fetch.ClientOptions())
		overpass := fetch.NewOverpass(client, cfg.Overpass)

		fetched, err := overpass.Fetch(ctx, kind)
		if err != nil {
			return eris.Wrap(err, "fetch osm")
		}

		return writeFetched(kind, fetched)
	},
}

var fetchPlacesCmd = &cobra.Command{
	Use:   "places",
	Short: "Fetch restaurants from the Google Places API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := parseKind(fetchKind)
		if err != nil {
			return err
		}
		if err := cfg.Validate("places"); err != nil {
			return err
		}

		client := fetch.NewClient(cfg.Fetch.ClientOptions())
		places := fetch.NewPlaces(client, cfg.Places)

		query := fetchQuery
		if query == "" {
			query = string(kind) + " in " + cfg.Overpass.City + " AL"
		}

		fetched, err := places.Search(ctx, query)
		if err != nil {
			return eris.Wrap(err, "fetch places")
		}

		return writeFetched(kind, fetched)
	},
}

// writeFetched folds new records into the existing dataset, or overwrites it
// when --merge=false. Existing values win on merge; fetches only fill gaps.
func writeFetched(kind model.Kind, fetched []model.Record) error {
	out := fetched
	if fetchMerge {
		existing, err := loadDataset(kind)
		if err == nil {
			out = dedupe.MergeInto(existing, fetched, dedupe.ByNameAddress)
		} else {
			zap.L().Info("no existing dataset, writing fetched records",
				zap.String("kind", string(kind)),
			)
		}
	}

	if err := saveDataset(kind, out); err != nil {
		return eris.Wrap(err, "write dataset")
	}

	zap.L().Info("fetch complete",
		zap.String("kind", string(kind)),
		zap.Int("fetched", len(fetched)),
		zap.Int("total", len(out)),
	)
	return nil
}

func init() {
	fetchCmd.PersistentFlags().StringVar(&fetchKind, "kind", "restaurants", "dataset kind (restaurants or hikes)")
	fetchCmd.PersistentFlags().BoolVar(&fetchMerge, "merge", true, "merge into the existing dataset instead of overwriting")
	fetchPlacesCmd.Flags().StringVar(&fetchQuery, "query", "", "text search query (default derived from kind and city)")

	fetchCmd.AddCommand(fetchOSMCmd)
	fetchCmd.AddCommand(fetchPlacesCmd)
	rootCmd.AddCommand(fetchCmd)
}
