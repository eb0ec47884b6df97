// Package postgres provides a Postgres-backed implementation of the
// storage.Storage interface.
package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// BIGSERIAL sequences never hand out the same value twice, even after
// the row holding it is deleted.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT    NOT NULL,
		age        INTEGER NOT NULL,
		class_name TEXT    NOT NULL
	)
`

type Postgres struct {
	storage.BaseStore
}

func New(dsn string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{BaseStore: storage.BaseStore{DB: db}}, nil
}
