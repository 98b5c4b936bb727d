package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/souk-search/pkg/search"
	_ "modernc.org/sqlite"
)

// Store persists services and categories in SQLite. The search engine never
// touches it; the hosting process reads a Snapshot out of it at start-up and
// on reload.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	aliases    TEXT NOT NULL DEFAULT '[]',
	position   INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS services (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	category_id TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS services_category ON services(category_id);
`

// OpenStore opens (or creates) the catalog database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertCategory = `INSERT INTO categories (id, name, aliases, position, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, aliases = excluded.aliases,
		position = excluded.position, updated_at = excluded.updated_at`

const upsertService = `INSERT INTO services (id, title, tags, category_id, position, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title, tags = excluded.tags, category_id = excluded.category_id,
		position = excluded.position, updated_at = excluded.updated_at`

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

func putCategory(ctx context.Context, ex execer, c search.Candidate, position int) error {
	if c.ID == "" {
		return fmt.Errorf("category: missing id")
	}
	aliases, err := encodeList(c.Tags)
	if err != nil {
		return fmt.Errorf("category %s: encode aliases: %w", c.ID, err)
	}
	if _, err := ex.ExecContext(ctx, upsertCategory, c.ID, c.Title, aliases, position, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

func putService(ctx context.Context, ex execer, c search.Candidate, position int) error {
	if c.ID == "" {
		return fmt.Errorf("service: missing id")
	}
	tags, err := encodeList(c.Tags)
	if err != nil {
		return fmt.Errorf("service %s: encode tags: %w", c.ID, err)
	}
	if _, err := ex.ExecContext(ctx, upsertService, c.ID, c.Title, tags, c.CategoryID, position, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert service %s: %w", c.ID, err)
	}
	return nil
}

// UpsertCategory inserts or replaces a category. Tags hold its aliases.
func (s *Store) UpsertCategory(ctx context.Context, c search.Candidate, position int) error {
	return putCategory(ctx, s.db, c, position)
}

// UpsertService inserts or replaces a service.
func (s *Store) UpsertService(ctx context.Context, c search.Candidate, position int) error {
	return putService(ctx, s.db, c, position)
}

// DeleteService removes a service. Deleting an unknown id is not an error.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	return nil
}

// Services returns every service ordered by position, then id.
func (s *Store) Services(ctx context.Context) ([]search.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, tags, category_id FROM services ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []search.Candidate
	for rows.Next() {
		var c search.Candidate
		var tags string
		if err := rows.Scan(&c.ID, &c.Title, &tags, &c.CategoryID); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		c.Tags = decodeList(tags)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Categories returns every category ordered by position, then id. Each
// category's aliases are returned as its Tags.
func (s *Store) Categories(ctx context.Context) ([]search.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, aliases FROM categories ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []search.Candidate
	for rows.Next() {
		var c search.Candidate
		var aliases string
		if err := rows.Scan(&c.ID, &c.Title, &aliases); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Tags = decodeList(aliases)
		out = append(out, c)
	}
	return out, rows.Err()
}
