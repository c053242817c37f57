package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/magic-city-guide/poi-cli/internal/dedupe"
	"github.com/magic-city-guide/poi-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests satisfy it with
// pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS places (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
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
	extra      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (kind, group_key)
);

CREATE INDEX IF NOT EXISTS idx_places_kind ON places(kind);
CREATE INDEX IF NOT EXISTS idx_places_kind_name ON places(kind, name);

CREATE TABLE IF NOT EXISTS posts (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	reddit_id   TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	author      TEXT,
	content     TEXT,
	flair       TEXT,
	created_utc BIGINT NOT NULL,
	media       TEXT,
	category    TEXT,
	url         TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts(created_utc);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresUpsertPlace = `
INSERT INTO places (id, kind, group_key, name, address, latitude, longitude,
	hours, website, phone, cuisine, category, type, source, maps_link, extra,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (kind, group_key) DO UPDATE SET
	name = EXCLUDED.name, address = EXCLUDED.address,
	latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
	hours = EXCLUDED.hours, website = EXCLUDED.website,
	phone = EXCLUDED.phone, cuisine = EXCLUDED.cuisine,
	category = EXCLUDED.category, type = EXCLUDED.type,
	source = EXCLUDED.source, maps_link = EXCLUDED.maps_link,
	extra = EXCLUDED.extra, updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) UpsertPlaces(ctx context.Context, kind model.Kind, records []model.Record) (int, error) {
	if !kind.Valid() {
		return 0, eris.Errorf("postgres: unknown kind %q", kind)
	}

	now := time.Now().UTC()
	written := 0
	for _, r := range records {
		if !r.Has(model.FieldName) {
			continue
		}

		extraJSON, err := marshalExtra(r)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal extra")
		}

		args := []any{uuid.New().String(), string(kind), dedupe.ByNameAddress(r)}
		for _, col := range placeColumns {
			args = append(args, r.Get(col))
		}
		args = append(args, extraJSON, now, now)

		if _, err := s.pool.Exec(ctx, postgresUpsertPlace, args...); err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert place %s", r.Get(model.FieldName))
		}
		written++
	}
	return written, nil
}

func (s *PostgresStore) ListPlaces(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, address, latitude, longitude, hours, website, phone,
			cuisine, category, type, source, maps_link, extra
		 FROM places WHERE kind = $1 ORDER BY name`,
		string(kind),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list places")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		// Columns are written as strings by UpsertPlaces, never NULL.
		cols := make([]string, len(placeColumns))
		dest := make([]any, 0, len(placeColumns)+1)
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		var extraJSON []byte
		dest = append(dest, &extraJSON)

		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place")
		}

		values := make(map[string]string, len(placeColumns))
		for i, col := range placeColumns {
			values[col] = cols[i]
		}
		var extra map[string]string
		if len(extraJSON) > 0 {
			if err := json.Unmarshal(extraJSON, &extra); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal extra")
			}
		}
		records = append(records, buildRecord(values, extra))
	}
	return records, eris.Wrap(rows.Err(), "postgres: list places iterate")
}

const postgresUpsertPost = `
INSERT INTO posts (id, reddit_id, title, author, content, flair, created_utc,
	media, category, url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (reddit_id) DO UPDATE SET
	title = EXCLUDED.title, author = EXCLUDED.author,
	content = EXCLUDED.content, flair = EXCLUDED.flair,
	created_utc = EXCLUDED.created_utc, media = EXCLUDED.media,
	category = EXCLUDED.category, url = EXCLUDED.url,
	updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) UpsertPosts(ctx context.Context, posts []model.Post) (int, error) {
	now := time.Now().UTC()
	written := 0
	for _, p := range posts {
		if p.RedditID == "" {
			continue
		}
		_, err := s.pool.Exec(ctx, postgresUpsertPost,
			uuid.New().String(), p.RedditID, p.Title, p.Author, p.Content,
			p.Flair, p.CreatedUTC, p.Media, string(p.Category), p.URL, now, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert post %s", p.RedditID)
		}
		written++
	}
	return written, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, params ListPostsParams) ([]model.Post, error) {
	query := `SELECT reddit_id, title, author, content, flair, created_utc,
		media, category, url FROM posts`
	var conds []string
	var args []any
	if params.Category != "" {
		args = append(args, string(params.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d OR flair ILIKE $%d)", n, n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, params.limit())
	query += fmt.Sprintf(" ORDER BY created_utc DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list posts")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var category string
		if err := rows.Scan(&p.RedditID, &p.Title, &p.Author, &p.Content,
			&p.Flair, &p.CreatedUTC, &p.Media, &category, &p.URL); err != nil {
			return nil, eris.Wrap(err, "postgres: scan post")
		}
		p.Category = model.Category(category)
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "postgres: list posts iterate")
}

func (s *PostgresStore) CountPlaces(ctx context.Context, kind model.Kind) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM places WHERE kind = $1`, string(kind),
	).Scan(&count)
	return count, eris.Wrap(err, "postgres: count places")
}
