package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_UpsertAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	records := []model.Record{
		{
			model.FieldName:     "Saw's BBQ",
			model.FieldAddress:  "1008 Oxmoor Rd",
			model.FieldCuisine:  "Barbecue",
			model.FieldSource:   "osm",
			model.FieldMapsLink: "https://maps.example/saws",
		},
		{
			model.FieldName:    "El Barrio",
			model.FieldAddress: "2211 2nd Ave N",
			model.FieldCuisine: "Mexican",
		},
	}

	n, err := st.UpsertPlaces(ctx, model.KindRestaurants, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListPlaces(ctx, model.KindRestaurants)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by name.
	assert.Equal(t, "El Barrio", got[0].Get(model.FieldName))
	assert.Equal(t, records[0], got[1])
}

func TestSQLite_UpsertReplacesSameGroupKey(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := model.Record{
		model.FieldName:    "Silver Coin Indian Grill",
		model.FieldAddress: "100 Main Street",
	}
	_, err := st.UpsertPlaces(ctx, model.KindRestaurants, []model.Record{first})
	require.NoError(t, err)

	// Same name key and address key as the first record.
	second := model.Record{
		model.FieldName:    "Silver Coin",
		model.FieldAddress: "100 Main St",
		model.FieldPhone:   "205-555-0100",
	}
	_, err = st.UpsertPlaces(ctx, model.KindRestaurants, []model.Record{second})
	require.NoError(t, err)

	got, err := st.ListPlaces(ctx, model.KindRestaurants)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Silver Coin", got[0].Get(model.FieldName))
	assert.Equal(t, "205-555-0100", got[0].Get(model.FieldPhone))
}

func TestSQLite_KindsAreIsolated(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPlaces(ctx, model.KindRestaurants, []model.Record{
		{model.FieldName: "Saw's BBQ"},
	})
	require.NoError(t, err)
	_, err = st.UpsertPlaces(ctx, model.KindHikes, []model.Record{
		{model.FieldName: "Ruffner Mountain", model.FieldType: "Nature Reserve"},
		{model.FieldName: "Avondale Park", model.FieldType: "Park"},
	})
	require.NoError(t, err)

	restaurants, err := st.CountPlaces(ctx, model.KindRestaurants)
	require.NoError(t, err)
	assert.Equal(t, 1, restaurants)

	hikes, err := st.CountPlaces(ctx, model.KindHikes)
	require.NoError(t, err)
	assert.Equal(t, 2, hikes)
}

func TestSQLite_ExtraFieldsRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	record := model.Record{
		model.FieldName: "The Essential",
		"instagram":     "@essentialbham",
		"price_range":   "$$",
	}
	_, err := st.UpsertPlaces(ctx, model.KindRestaurants, []model.Record{record})
	require.NoError(t, err)

	got, err := st.ListPlaces(ctx, model.KindRestaurants)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record, got[0])
}

func TestSQLite_SkipsNamelessRecords(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.UpsertPlaces(ctx, model.KindRestaurants, []model.Record{
		{model.FieldAddress: "no name here"},
		{model.FieldName: "Named"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_RejectsUnknownKind(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.UpsertPlaces(context.Background(), model.Kind("museums"), []model.Record{
		{model.FieldName: "x"},
	})
	assert.Error(t, err)
}

func TestSQLite_ListEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.ListPlaces(context.Background(), model.KindHikes)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)

	assert.NoError(t, st.Ping(context.Background()))
}

func TestSQLite_UpsertAndListPosts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	posts := []model.Post{
		{
			RedditID:   "p1",
			Title:      "Best BBQ in town?",
			Author:     "bhamfan",
			Flair:      "Food",
			CreatedUTC: 100,
			Category:   model.CategoryFood,
			URL:        "https://www.reddit.com/r/Birmingham/comments/p1/",
		},
		{
			RedditID:   "p2",
			Title:      "Trail conditions at Ruffner",
			Content:    "Muddy after the rain.",
			CreatedUTC: 200,
			Category:   model.CategoryOutdoors,
		},
		{Title: "no reddit id, skipped"},
	}

	n, err := st.UpsertPosts(ctx, posts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListPosts(ctx, ListPostsParams{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "p2", got[0].RedditID)
	assert.Equal(t, posts[0], got[1])
}

func TestSQLite_UpsertPostsReplacesSameRedditID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPosts(ctx, []model.Post{
		{RedditID: "p1", Title: "untitled", CreatedUTC: 100},
	})
	require.NoError(t, err)

	_, err = st.UpsertPosts(ctx, []model.Post{
		{RedditID: "p1", Title: "Best BBQ in town?", CreatedUTC: 100, Category: model.CategoryFood},
	})
	require.NoError(t, err)

	got, err := st.ListPosts(ctx, ListPostsParams{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Best BBQ in town?", got[0].Title)
	assert.Equal(t, model.CategoryFood, got[0].Category)
}

func TestSQLite_ListPostsFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPosts(ctx, []model.Post{
		{RedditID: "p1", Title: "Best BBQ in town?", CreatedUTC: 300, Category: model.CategoryFood},
		{RedditID: "p2", Title: "Trail conditions", Content: "Muddy at Ruffner.", CreatedUTC: 200, Category: model.CategoryOutdoors},
		{RedditID: "p3", Title: "Anyone hiring?", Flair: "Jobs", CreatedUTC: 100, Category: model.CategoryJobs},
	})
	require.NoError(t, err)

	byCategory, err := st.ListPosts(ctx, ListPostsParams{Category: model.CategoryOutdoors})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "p2", byCategory[0].RedditID)

	// Search matches title, content, or flair.
	bySearch, err := st.ListPosts(ctx, ListPostsParams{Search: "Ruffner"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "p2", bySearch[0].RedditID)

	byFlair, err := st.ListPosts(ctx, ListPostsParams{Search: "Jobs"})
	require.NoError(t, err)
	require.Len(t, byFlair, 1)
	assert.Equal(t, "p3", byFlair[0].RedditID)

	none, err := st.ListPosts(ctx, ListPostsParams{Category: model.CategoryFood, Search: "Ruffner"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_ListPostsLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPosts(ctx, []model.Post{
		{RedditID: "p1", Title: "oldest", CreatedUTC: 100},
		{RedditID: "p2", Title: "middle", CreatedUTC: 200},
		{RedditID: "p3", Title: "newest", CreatedUTC: 300},
	})
	require.NoError(t, err)

	got, err := st.ListPosts(ctx, ListPostsParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].RedditID)
	assert.Equal(t, "p2", got[1].RedditID)
}
