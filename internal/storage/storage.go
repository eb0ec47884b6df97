// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to hold the student collection, plus a
// BaseStore with the SQL shared by every sqlx-backed implementation.
//
// Handlers and the records service only ever see the interface, so the
// SQLite and Postgres backends are interchangeable and tests can pass a
// mock instead of a real database.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrNotFound is returned (possibly wrapped) when no student has the
// requested id. Callers should test for it with errors.Is.
var ErrNotFound = errors.New("student not found")

// Storage is the database contract.
//
// Concurrent writes are serialized by the database itself; the contract
// is last-write-wins and carries no version column.
type Storage interface {
	// CreateStudent inserts a new student and returns the stored record,
	// including the database-assigned id.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if there is no such student.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces all fields of an existing student and
	// returns the stored record. Returns ErrNotFound for an unknown id.
	UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student permanently.
	// Returns ErrNotFound for an unknown id.
	DeleteStudentByID(ctx context.Context, id int64) error

	Close() error
}
