// Package sqlitestore keeps sessions in a single SQLite file for local play
// without a Postgres server.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// DB wraps a SQLite connection holding session saves.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		day INTEGER NOT NULL,
		phase TEXT NOT NULL,
		mode TEXT NOT NULL,
		snapshot BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_credentials (
		session_id TEXT PRIMARY KEY,
		key_salt BLOB NOT NULL,
		key_hash BLOB NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		type TEXT NOT NULL,
		occurred_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, occurred_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SetMeta(context.Background(), "schema_version", schemaVersion)
}

// SetMeta records a key/value pair about the store itself.
func (db *DB) SetMeta(ctx context.Context, key, value string) error {
	_, err := conn(ctx, db.conn).ExecContext(ctx, "INSERT OR REPLACE INTO store_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta returns a meta value, or "" if the key is missing.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := sqlx.GetContext(ctx, conn(ctx, db.conn), &value, "SELECT value FROM store_meta WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
