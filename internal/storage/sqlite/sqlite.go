package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wsup/internal/storage"
	wserrors "wsup/pkg/errors"
)

// DB implements the Store interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates a new SQLite store instance
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &DB{db: db}

	// Run migrations
	if err := runMigrations(store); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// GetItem returns the value stored under key, or storage.ErrNotFound.
func (d *DB) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM items WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", &wserrors.StorageError{Key: key, Op: "get", Err: err}
	}
	return value, nil
}

// SetItem writes value under key, replacing any previous value.
func (d *DB) SetItem(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO items (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return &wserrors.StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (d *DB) RemoveItem(ctx context.Context, key string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM items WHERE key = ?`, key)
	if err != nil {
		return &wserrors.StorageError{Key: key, Op: "remove", Err: err}
	}
	return nil
}
