package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aanand-mishra/student-records/internal/types"
)

// BaseStore provides the CRUD queries shared by the SQL backends.
// Queries are written with ? placeholders and rebound to the driver's
// bindvar style (Postgres wants $1, $2, ...) before execution.
type BaseStore struct {
	DB *sqlx.DB
}

func (s *BaseStore) q(query string) string {
	return s.DB.Rebind(query)
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// CreateStudent inserts the row and reads it back in the same statement
// via RETURNING, so the caller gets exactly what was stored.
func (s *BaseStore) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	var created types.Student
	err := s.DB.GetContext(ctx, &created, s.q(`
		INSERT INTO students (name, age, class_name)
		VALUES (?, ?, ?)
		RETURNING id, name, age, class_name
	`), student.Name, student.Age, student.Class)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}
	return created, nil
}

func (s *BaseStore) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student
	err := s.DB.GetContext(ctx, &student, s.q(`
		SELECT id, name, age, class_name
		FROM students
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID: id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: select: %w", err)
	}
	return student, nil
}

func (s *BaseStore) GetStudents(ctx context.Context) ([]types.Student, error) {
	// Non-nil so an empty collection encodes as [] rather than null.
	students := make([]types.Student, 0)
	err := s.DB.SelectContext(ctx, &students, `
		SELECT id, name, age, class_name
		FROM students
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: select: %w", err)
	}
	return students, nil
}

func (s *BaseStore) UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	var updated types.Student
	err := s.DB.GetContext(ctx, &updated, s.q(`
		UPDATE students
		SET name = ?, age = ?, class_name = ?
		WHERE id = ?
		RETURNING id, name, age, class_name
	`), student.Name, student.Age, student.Class, id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: update: %w", err)
	}
	return updated, nil
}

func (s *BaseStore) DeleteStudentByID(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx, s.q("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("DeleteStudentByID: id %d: %w", id, ErrNotFound)
	}
	return nil
}
