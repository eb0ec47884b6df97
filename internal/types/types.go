// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, the records service and the sync client can all
// import types without depending on each other.
package types

import "strings"

// Student represents a student record in our system.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     controls how the field appears on the wire.
//     The class label travels as "class" to match the REST contract.
//
//  2. db:"..."       column names used by sqlx when scanning rows.
//
//  3. validate:"..." rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty,
//     so an age of 0 is rejected just like a missing one.
type Student struct {
	ID    int64  `json:"id"    db:"id"`
	Name  string `json:"name"  db:"name"       validate:"required"`
	Age   int    `json:"age"   db:"age"        validate:"required,gt=0"`
	Class string `json:"class" db:"class_name" validate:"required"`
}

// Normalize trims surrounding whitespace from the text fields so that a
// value made only of spaces fails the "required" check.
func (s *Student) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Class = strings.TrimSpace(s.Class)
}

// DeleteResult is the acknowledgment body returned by DELETE.
type DeleteResult struct {
	Success bool `json:"success"`
}
