package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hawknews/hawk-translation/internal"
)

// ErrNotFound is returned when a post or option does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS options (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_slug ON posts(slug);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetOption returns the stored value for name, or ErrNotFound.
func (s *Store) GetOption(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetOption inserts or replaces an option value.
func (s *Store) SetOption(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now())
	return err
}

// AddOption stores value only when name is not set yet. It reports whether a row was written.
func (s *Store) AddOption(ctx context.Context, name, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO options (name, value, updated_at) VALUES (?, ?, ?)`,
		name, value, time.Now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Options returns every stored option as a name → value map.
func (s *Store) Options(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM options ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opts := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		opts[name] = value
	}
	return opts, rows.Err()
}

// GetPost loads a post by ID.
func (s *Store) GetPost(ctx context.Context, id int64) (*internal.Post, error) {
	var p internal.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, body, author, status, updated_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Author, &p.Status, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]internal.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, slug, body, author, status, updated_at FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []internal.Post
	for rows.Next() {
		var p internal.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Author, &p.Status, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SavePost inserts the post when ID is zero and updates it otherwise.
// The stored ID is written back into p.
func (s *Store) SavePost(ctx context.Context, p *internal.Post) error {
	if p.Status == "" {
		p.Status = "draft"
	}
	p.Slug = slugify(p.Slug)
	p.UpdatedAt = time.Now()

	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO posts (title, slug, body, author, status, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.Title, p.Slug, p.Body, p.Author, p.Status, p.UpdatedAt)
		if err != nil {
			return err
		}
		p.ID, err = res.LastInsertId()
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, slug, body, author, status, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, slug = excluded.slug, body = excluded.body,
		 author = excluded.author, status = excluded.status, updated_at = excluded.updated_at`,
		p.ID, p.Title, p.Slug, p.Body, p.Author, p.Status, p.UpdatedAt)
	return err
}

// DeletePost removes a post by ID.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// slugify lowercases s and keeps only ASCII letters, digits and single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
