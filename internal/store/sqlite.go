package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/magic-city-guide/poi-cli/internal/dedupe"
	"github.com/magic-city-guide/poi-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	group_key  TEXT NOT NULL,
	name       TEXT NOT NULL,
	address    TEXT,
	latitude   TEXT,
	longitude  TEXT,
	hours      TEXT,
	website    TEXT,
	phone      TEXT,
	cuisine    TEXT,
	category   TEXT,
	type       TEXT,
	source     TEXT,
	maps_link  TEXT,
	extra      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (kind, group_key)
);

CREATE INDEX IF NOT EXISTS idx_places_kind ON places(kind);
CREATE INDEX IF NOT EXISTS idx_places_kind_name ON places(kind, name);

CREATE TABLE IF NOT EXISTS posts (
	id          TEXT PRIMARY KEY,
	reddit_id   TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	author      TEXT,
	content     TEXT,
	flair       TEXT,
	created_utc INTEGER NOT NULL,
	media       TEXT,
	category    TEXT,
	url         TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts(created_utc);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertPlace = `
INSERT INTO places (id, kind, group_key, name, address, latitude, longitude,
	hours, website, phone, cuisine, category, type, source, maps_link, extra,
	created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kind, group_key) DO UPDATE SET
	name = excluded.name, address = excluded.address,
	latitude = excluded.latitude, longitude = excluded.longitude,
	hours = excluded.hours, website = excluded.website,
	phone = excluded.phone, cuisine = excluded.cuisine,
	category = excluded.category, type = excluded.type,
	source = excluded.source, maps_link = excluded.maps_link,
	extra = excluded.extra, updated_at = excluded.updated_at`

func (s *SQLiteStore) UpsertPlaces(ctx context.Context, kind model.Kind, records []model.Record) (int, error) {
	if !kind.Valid() {
		return 0, eris.Errorf("sqlite: unknown kind %q", kind)
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	written := 0
	for _, r := range records {
		if !r.Has(model.FieldName) {
			continue
		}

		extraJSON, err := marshalExtra(r)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal extra")
		}

		args := []any{uuid.New().String(), string(kind), dedupe.ByNameAddress(r)}
		for _, col := range placeColumns {
			args = append(args, r.Get(col))
		}
		args = append(args, extraJSON, now, now)

		if _, err := tx.ExecContext(ctx, sqliteUpsertPlace, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert place %s", r.Get(model.FieldName))
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return written, nil
}

func (s *SQLiteStore) ListPlaces(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, address, latitude, longitude, hours, website, phone,
			cuisine, category, type, source, maps_link, extra
		 FROM places WHERE kind = ? ORDER BY name`,
		string(kind),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list places")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		cols := make([]sql.NullString, len(placeColumns))
		dest := make([]any, 0, len(placeColumns)+1)
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		var extraJSON sql.NullString
		dest = append(dest, &extraJSON)

		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan place")
		}

		values := make(map[string]string, len(placeColumns))
		for i, col := range placeColumns {
			values[col] = cols[i].String
		}
		extra, err := unmarshalExtra([]byte(extraJSON.String))
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal extra")
		}
		records = append(records, buildRecord(values, extra))
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list places iterate")
}

const sqliteUpsertPost = `
INSERT INTO posts (id, reddit_id, title, author, content, flair, created_utc,
	media, category, url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (reddit_id) DO UPDATE SET
	title = excluded.title, author = excluded.author,
	content = excluded.content, flair = excluded.flair,
	created_utc = excluded.created_utc, media = excluded.media,
	category = excluded.category, url = excluded.url,
	updated_at = excluded.updated_at`

func (s *SQLiteStore) UpsertPosts(ctx context.Context, posts []model.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	written := 0
	for _, p := range posts {
		if p.RedditID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, sqliteUpsertPost,
			uuid.New().String(), p.RedditID, p.Title, p.Author, p.Content,
			p.Flair, p.CreatedUTC, p.Media, string(p.Category), p.URL, now, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert post %s", p.RedditID)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return written, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context, params ListPostsParams) ([]model.Post, error) {
	query := `SELECT reddit_id, title, author, content, flair, created_utc,
		media, category, url FROM posts`
	var conds []string
	var args []any
	if params.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(params.Category))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		conds = append(conds, "(title LIKE ? OR content LIKE ? OR flair LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_utc DESC LIMIT ?"
	args = append(args, params.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list posts")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var author, content, flair, media, category, postURL sql.NullString
		if err := rows.Scan(&p.RedditID, &p.Title, &author, &content, &flair,
			&p.CreatedUTC, &media, &category, &postURL); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan post")
		}
		p.Author = author.String
		p.Content = content.String
		p.Flair = flair.String
		p.Media = media.String
		p.Category = model.Category(category.String)
		p.URL = postURL.String
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "sqlite: list posts iterate")
}

func (s *SQLiteStore) CountPlaces(ctx context.Context, kind model.Kind) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM places WHERE kind = ?`, string(kind),
	).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count places")
}

// helpers

func marshalExtra(r model.Record) ([]byte, error) {
	extra := extraFields(r)
	if extra == nil {
		return nil, nil
	}
	return json.Marshal(extra)
}

func unmarshalExtra(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var extra map[string]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, err
	}
	return extra, nil
}
