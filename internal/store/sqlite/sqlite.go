// Package sqlite provides a file-backed store for single-machine setups.
// It implements the same gateway contract as the postgres package so the
// two are interchangeable behind store.Gateway.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pavelhrncir/casebook/internal/config"
)

//go:embed schema.sql
var schema string

// Store provides SQLite-backed case storage.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and initializes the schema.
// Foreign keys are switched on so deletes cascade the same way they do
// on postgres.
func Open(cfg *config.SqliteConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
