package main

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/magic-city-guide/poi-cli/internal/ingest"
	"github.com/magic-city-guide/poi-cli/internal/model"
	"github.com/magic-city-guide/poi-cli/internal/store"
)

// parseKind validates a --kind flag value.
func parseKind(s string) (model.Kind, error) {
	kind := model.Kind(s)
	if !kind.Valid() {
		return "", eris.Errorf("unknown kind %q (expected restaurants or hikes)", s)
	}
	return kind, nil
}

// dataPath is the CSV location of a dataset under the configured data dir.
func dataPath(kind model.Kind) string {
	return filepath.Join(cfg.Data.Dir, string(kind)+".csv")
}

func loadDataset(kind model.Kind) ([]model.Record, error) {
	_, records, err := ingest.ReadCSVFile(dataPath(kind))
	return records, err
}

// saveDataset writes the dataset back with the kind's column order plus any
// extra columns the records carry.
func saveDataset(kind model.Kind, records []model.Record) error {
	header := ingest.MergeHeader(kind.Fields(), records)
	return ingest.WriteCSVFile(dataPath(kind), header, records)
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "poi.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
