// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary
// cross-compiles without a C toolchain. Schema management goes through goose
// with the migration files embedded in the binary, so a deployment is a single
// executable that brings its own schema.
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/sakif/family-tree/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the shared *sql.DB pool and hands out the per-entity
// repositories. One DB is created at startup and injected everywhere; it is
// the application's single connection handle.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for tests.
//
// The pragmas use modernc's _pragma=name(value) query syntax; the
// mattn-style _journal_mode/_busy_timeout keys are silently ignored by this
// driver. WAL plus a 5s busy timeout lets concurrent writers queue instead
// of failing with "database is locked".
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == ":memory:" {
		// Each pool connection would otherwise get its own empty in-memory
		// database.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (db *DB) Users() repository.UserRepository     { return &UserRepo{conn: db.conn} }
func (db *DB) Trees() repository.TreeRepository     { return &TreeRepo{conn: db.conn} }
func (db *DB) Members() repository.MemberRepository { return &MemberRepo{conn: db.conn} }

// Close closes the connection pool. Callers defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}
