// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface.
//
// SQLite stores everything in a single file on disk (or in memory with
// ":memory:"). There is no separate server process, which makes it the
// default backend for local runs and tests.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aanand-mishra/student-records/internal/storage"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// schema is idempotent, so it is safe to run on every startup.
//
// AUTOINCREMENT (rather than a plain INTEGER PRIMARY KEY) stops SQLite
// from handing out the id of a deleted row again.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		age        INTEGER NOT NULL,
		class_name TEXT    NOT NULL
	)
`

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	storage.BaseStore
}

// New opens the SQLite database at path, creates the students table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and with
	// ":memory:" every extra connection would see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{BaseStore: storage.BaseStore{DB: db}}, nil
}
