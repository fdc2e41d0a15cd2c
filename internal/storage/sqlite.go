package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store on an embedded sqlite database. Each restaurant
// is a single row holding the full document as JSON, keyed by name, so the
// store keeps document semantics: updates rewrite the whole document.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the restaurant with the given name, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, name string) (*Restaurant, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM restaurants WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant %q: %w", name, err)
	}

	return decodeDoc(name, doc)
}

// Insert creates a new restaurant. The primary key rejects duplicates.
func (s *SQLiteStore) Insert(ctx context.Context, r *Restaurant) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("restaurant name is required")
	}

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode restaurant %q: %w", r.Name, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO restaurants (name, doc) VALUES (?, ?)`, r.Name, string(doc)); err != nil {
		return fmt.Errorf("failed to insert restaurant %q: %w", r.Name, err)
	}

	return nil
}

// List returns every restaurant in the roster.
func (s *SQLiteStore) List(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, doc FROM restaurants`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var restaurants []Restaurant
	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}

		r, err := decodeDoc(name, doc)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read restaurant rows: %w", err)
	}

	return restaurants, nil
}

// SetLastVisited reads the full document back, sets the new visit time, and
// rewrites it. Last write wins; there is no transactional isolation with
// concurrent adds, which is acceptable for this roster.
func (s *SQLiteStore) SetLastVisited(ctx context.Context, name string, visited time.Time) error {
	r, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	r.LastVisited = &visited

	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode restaurant %q: %w", name, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE restaurants SET doc = ? WHERE name = ?`, string(doc), name)
	if err != nil {
		return fmt.Errorf("failed to update restaurant %q: %w", name, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func decodeDoc(name, doc string) (*Restaurant, error) {
	var r Restaurant
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("failed to decode restaurant %q: %w", name, err)
	}
	// The row key is authoritative.
	r.Name = name
	return &r, nil
}
