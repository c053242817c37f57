// Package store persists cleaned point-of-interest datasets to SQLite or
// Postgres, keyed by dataset kind and dedupe group key.
package store

import (
	"context"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// Store defines the persistence interface for place datasets and the
// community post feed.
type Store interface {
	// UpsertPlaces writes records for a kind, replacing rows that share the
	// same group key. Returns the number of rows written.
	UpsertPlaces(ctx context.Context, kind model.Kind, records []model.Record) (int, error)
	// ListPlaces returns all records for a kind ordered by name.
	ListPlaces(ctx context.Context, kind model.Kind) ([]model.Record, error)
	CountPlaces(ctx context.Context, kind model.Kind) (int, error)

	// UpsertPosts writes posts, replacing rows that share a reddit id.
	// Returns the number of rows written.
	UpsertPosts(ctx context.Context, posts []model.Post) (int, error)
	// ListPosts returns posts matching the filter, newest first.
	ListPosts(ctx context.Context, params ListPostsParams) ([]model.Post, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// ListPostsParams filters the post listing.
type ListPostsParams struct {
	// Category narrows to one label when set.
	Category model.Category
	// Search matches a substring of title, content, or flair.
	Search string
	// Limit caps the result count; zero means the default.
	Limit int
}

const (
	defaultPostLimit = 50
	maxPostLimit     = 500
)

func (p ListPostsParams) limit() int {
	switch {
	case p.Limit <= 0:
		return defaultPostLimit
	case p.Limit > maxPostLimit:
		return maxPostLimit
	default:
		return p.Limit
	}
}

// placeColumns is the fixed column set of the places table, in insert order.
// Record fields outside this set travel in the extra JSON column.
var placeColumns = model.FieldSet{
	model.FieldName,
	model.FieldAddress,
	model.FieldLatitude,
	model.FieldLongitude,
	model.FieldHours,
	model.FieldWebsite,
	model.FieldPhone,
	model.FieldCuisine,
	model.FieldCategory,
	model.FieldType,
	model.FieldSource,
	model.FieldMapsLink,
}

// extraFields collects the record's non-column fields, for the extra JSON
// column. Returns nil when the record has none.
func extraFields(r model.Record) map[string]string {
	var extra map[string]string
	for field, v := range r {
		if v == "" || placeColumns.Contains(field) {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[field] = v
	}
	return extra
}

// buildRecord reassembles a Record from column values and the extra JSON
// fields, skipping empties so round-tripped records compare equal.
func buildRecord(values map[string]string, extra map[string]string) model.Record {
	r := make(model.Record, len(values)+len(extra))
	for field, v := range values {
		if v != "" {
			r[field] = v
		}
	}
	for field, v := range extra {
		if v != "" {
			r[field] = v
		}
	}
	return r
}
