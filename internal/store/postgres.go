package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/mlscout/mlscout/pkg/resource"
)

// Postgres implements GraphStore on top of PostgreSQL. Dedup relies on the
// UNIQUE constraints on resources.url and (links.source_url,
// links.destination_url) together with ON CONFLICT DO NOTHING, so concurrent
// upserts need no application-level locking.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection and ensures the schema exists
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg := &Postgres{db: db}
	if err := pg.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resources (
			id SERIAL PRIMARY KEY,
			url TEXT UNIQUE NOT NULL,
			title TEXT,
			description TEXT,
			summary TEXT,
			tags TEXT,
			last_crawled TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			popularity_score DOUBLE PRECISION DEFAULT 0.0
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			id SERIAL PRIMARY KEY,
			source_url TEXT NOT NULL,
			destination_url TEXT NOT NULL,
			UNIQUE (source_url, destination_url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_url ON resources(url)`,
		`CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_url)`,
		`CREATE INDEX IF NOT EXISTS idx_links_dest ON links(destination_url)`,
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

func (p *Postgres) UpsertResource(ctx context.Context, res *resource.Resource) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO resources (url, title, description, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING`,
		res.URL, res.Title, res.Description, res.Tags,
	)
	if err != nil {
		return fmt.Errorf("upsert resource %s: %w", res.URL, err)
	}
	return nil
}

func (p *Postgres) UpsertEdge(ctx context.Context, source, destination string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO links (source_url, destination_url)
		VALUES ($1, $2)
		ON CONFLICT (source_url, destination_url) DO NOTHING`,
		source, destination,
	)
	if err != nil {
		return fmt.Errorf("upsert edge %s -> %s: %w", source, destination, err)
	}
	return nil
}

func (p *Postgres) ListResources(ctx context.Context, tagFilter []string) ([]*resource.Resource, error) {
	query := `SELECT url, title, description, summary, tags, popularity_score, last_crawled FROM resources`

	var args []interface{}
	if len(tagFilter) > 0 {
		conditions := make([]string, len(tagFilter))
		for i, tag := range tagFilter {
			conditions[i] = fmt.Sprintf("tags LIKE $%d", i+1)
			args = append(args, "%"+tag+"%")
		}
		query += " WHERE " + strings.Join(conditions, " OR ")
	}
	query += " ORDER BY id"

	return p.queryResources(ctx, query, args...)
}

func (p *Postgres) ListEdges(ctx context.Context) ([]resource.Edge, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT source_url, destination_url FROM links ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	var edges []resource.Edge
	for rows.Next() {
		var e resource.Edge
		if err := rows.Scan(&e.Source, &e.Destination); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (p *Postgres) SetPopularity(ctx context.Context, url string, score float64) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE resources SET popularity_score = $1 WHERE url = $2`, score, url)
	if err != nil {
		return fmt.Errorf("set popularity for %s: %w", url, err)
	}
	return nil
}

func (p *Postgres) SetSummary(ctx context.Context, url, text string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE resources SET summary = $1 WHERE url = $2`, text, url)
	if err != nil {
		return fmt.Errorf("set summary for %s: %w", url, err)
	}
	return nil
}

func (p *Postgres) ResourcesWithoutSummary(ctx context.Context) ([]*resource.Resource, error) {
	return p.queryResources(ctx, `
		SELECT url, title, description, summary, tags, popularity_score, last_crawled
		FROM resources
		WHERE summary IS NULL
		ORDER BY id`)
}

func (p *Postgres) CountResources(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&n)
	return n, err
}

func (p *Postgres) CountEdges(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&n)
	return n, err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) queryResources(ctx context.Context, query string, args ...interface{}) ([]*resource.Resource, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []*resource.Resource
	for rows.Next() {
		var (
			res     resource.Resource
			title   sql.NullString
			desc    sql.NullString
			summary sql.NullString
			tags    sql.NullString
		)
		if err := rows.Scan(&res.URL, &title, &desc, &summary, &tags, &res.Popularity, &res.LastCrawled); err != nil {
			return nil, err
		}
		res.Title = title.String
		res.Description = desc.String
		res.Tags = tags.String
		if summary.Valid {
			s := summary.String
			res.Summary = &s
		}
		resources = append(resources, &res)
	}
	return resources, rows.Err()
}
