// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may return any JSON shape (a student, a list, an
// acknowledgment). Error responses always look like:
//
//	{ "status": "error", "error": "field name is required" }
//
// Clients only rely on the "error" key, which carries the message to show
// the user.
package response

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body writes. Once
// WriteHeader is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError joins per-field problems into a single message:
//
//	{ "status": "error", "error": "field name is required, field age is required" }
func ValidationError(problems []string) Response {
	return Response{
		Status: StatusError,
		Error:  strings.Join(problems, ", "),
	}
}
