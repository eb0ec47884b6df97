package records

import (
	"fmt"
	"strings"
)

// ValidationError reports a candidate record that cannot be stored.
// Problems holds one human-readable sentence per failing field.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// NotFoundError reports an operation on an id that does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("student %d not found", e.ID)
}

// InternalError hides a persistence failure behind a generic message.
// The cause stays reachable through errors.Unwrap for logging.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return "server error while " + e.Op
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
