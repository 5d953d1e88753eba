// Package sqlite keeps the dispatch history of idmbatch sessions in a local
// SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a throwaway in-memory history.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	link_offset INTEGER NOT NULL,
	size INTEGER NOT NULL,
	sent INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_session_id ON batches(session_id);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at);
`

// DB is the history database. Call Open before use and Close when done.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns a DB backed by the file at path, or by memory for MemoryPath.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragmas returns the connection settings applied on Open. A locked file is
// retried for up to five seconds; on-disk files use the write-ahead log.
func (db *DB) pragmas() []string {
	p := []string{"PRAGMA busy_timeout = 5000"}
	if db.path != MemoryPath {
		p = append(p, "PRAGMA journal_mode = WAL")
	}
	return p
}

// Open connects to the database and makes sure the batches table exists.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open history %s: %w", db.path, err)
	}
	// One connection: writes are serialized and an in-memory database is not
	// split across connections.
	conn.SetMaxOpenConns(1)

	if err := prepare(conn, append(db.pragmas(), schema)); err != nil {
		conn.Close()
		return fmt.Errorf("open history %s: %w", db.path, err)
	}
	db.db = conn
	return nil
}

func prepare(conn *sql.DB, stmts []string) error {
	if err := conn.Ping(); err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection. It is a no-op if Open was never called.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// QueryRowContext runs a query expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext runs a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext runs a statement without returning rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
