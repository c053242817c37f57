package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS places`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlaces(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO places .+ ON CONFLICT \(kind, group_key\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO places .+ ON CONFLICT \(kind, group_key\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.UpsertPlaces(context.Background(), model.KindRestaurants, []model.Record{
		{model.FieldName: "Saw's BBQ", model.FieldAddress: "1008 Oxmoor Rd"},
		{model.FieldName: "El Barrio"},
		{model.FieldAddress: "nameless, skipped"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlaces_UnknownKind(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	_, err := s.UpsertPlaces(context.Background(), model.Kind("museums"), []model.Record{
		{model.FieldName: "x"},
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPlaces(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"name", "address", "latitude", "longitude", "hours", "website",
		"phone", "cuisine", "category", "type", "source", "maps_link", "extra",
	}).AddRow(
		"Saw's BBQ", "1008 Oxmoor Rd", "33.4726", "-86.7976", "", "",
		"", "Barbecue", "", "", "osm", "", []byte(`{"instagram":"@sawsbbq"}`),
	).AddRow(
		"The Essential", "", "", "", "", "",
		"", "", "", "", "", "", []byte(nil),
	)

	mock.ExpectQuery(`SELECT .+ FROM places WHERE kind = \$1 ORDER BY name`).
		WithArgs("restaurants").
		WillReturnRows(rows)

	got, err := s.ListPlaces(context.Background(), model.KindRestaurants)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.Record{
		model.FieldName:      "Saw's BBQ",
		model.FieldAddress:   "1008 Oxmoor Rd",
		model.FieldLatitude:  "33.4726",
		model.FieldLongitude: "-86.7976",
		model.FieldCuisine:   "Barbecue",
		model.FieldSource:    "osm",
		"instagram":          "@sawsbbq",
	}, got[0])
	assert.Equal(t, model.Record{model.FieldName: "The Essential"}, got[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountPlaces(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM places WHERE kind = \$1`).
		WithArgs("hikes").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountPlaces(context.Background(), model.KindHikes)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	s := &PostgresStore{pool: mock}

	mock.ExpectPing()

	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPosts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO posts .+ ON CONFLICT \(reddit_id\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO posts .+ ON CONFLICT \(reddit_id\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.UpsertPosts(context.Background(), []model.Post{
		{RedditID: "p1", Title: "Best BBQ in town?", Category: model.CategoryFood},
		{RedditID: "p2", Title: "Trail conditions", Category: model.CategoryOutdoors},
		{Title: "no reddit id, skipped"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPosts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"reddit_id", "title", "author", "content", "flair", "created_utc",
		"media", "category", "url",
	}).AddRow(
		"p1", "Best BBQ in town?", "bhamfan", "", "Food", int64(100),
		"", "food", "https://www.reddit.com/r/Birmingham/comments/p1/",
	)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE category = \$1 .* ORDER BY created_utc DESC LIMIT \$2`).
		WithArgs("food", 50).
		WillReturnRows(rows)

	got, err := s.ListPosts(context.Background(), ListPostsParams{Category: model.CategoryFood})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].RedditID)
	assert.Equal(t, model.CategoryFood, got[0].Category)
	assert.Equal(t, int64(100), got[0].CreatedUTC)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPostsSearchArgs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM posts WHERE \(title ILIKE \$1 OR content ILIKE \$1 OR flair ILIKE \$1\) ORDER BY created_utc DESC LIMIT \$2`).
		WithArgs("%trail%", 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"reddit_id", "title", "author", "content", "flair", "created_utc",
			"media", "category", "url",
		}))

	got, err := s.ListPosts(context.Background(), ListPostsParams{Search: "trail", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPlaces_ExecError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO places`).
		WillReturnError(assert.AnError)

	_, err := s.UpsertPlaces(context.Background(), model.KindRestaurants, []model.Record{
		{model.FieldName: "Saw's BBQ"},
	})

	assert.ErrorContains(t, err, "upsert place")
	assert.NoError(t, mock.ExpectationsWereMet())
}
