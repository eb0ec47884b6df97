// Package student contains all HTTP handlers related to the Student resource.
//
// Handlers are built by factory functions that take their dependencies
// and return an http.HandlerFunc closing over them:
//
//	router.HandleFunc("POST /api/students", student.New(svc))
//
// New(svc) runs once at startup; the returned func runs on every request.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// maxRequestBodySize caps POST/PUT bodies. A student is a few dozen bytes.
const maxRequestBodySize = 1 << 20

// Records is the slice of the records service the handlers need.
type Records interface {
	List(ctx context.Context) ([]types.Student, error)
	Get(ctx context.Context, id int64) (types.Student, error)
	Create(ctx context.Context, candidate types.Student) (types.Student, error)
	Update(ctx context.Context, id int64, candidate types.Student) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// RegisterRoutes wires every student route onto mux.
//
//	GET    /                    → liveness text
//	GET    /api/students        → list all students
//	POST   /api/students        → create a new student
//	GET    /api/students/{id}   → get one student by ID
//	PUT    /api/students/{id}   → replace a student
//	DELETE /api/students/{id}   → delete a student
func RegisterRoutes(mux *http.ServeMux, svc Records) {
	mux.HandleFunc("GET /{$}", Health())
	mux.HandleFunc("GET /api/students", GetList(svc))
	mux.HandleFunc("POST /api/students", New(svc))
	mux.HandleFunc("GET /api/students/{id}", GetByID(svc))
	mux.HandleFunc("PUT /api/students/{id}", Update(svc))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(svc))
}

// Health answers GET / so load balancers and humans can check the process.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Server is running correctly")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body:
//
//	{ "name": "An", "age": 10, "class": "5A" }
//
// Success response (201 Created), the stored record with its new id:
//
//	{ "id": 1, "name": "An", "age": 10, "class": "5A" }
//
// Error responses:
//
//	400 Bad Request: empty body, malformed JSON, wrong types, failed validation
//	500 Internal Server Error: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		candidate, err := decodeStudent(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		created, err := svc.Create(r.Context(), candidate)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/students/{id}
func GetByID(svc Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students
//
// Returns the whole collection in id order. An empty collection is [],
// never null. No filtering, sorting or paging happens server-side.
func GetList(svc Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student; the body is validated with
// the same rules as creation.
//
// Error responses:
//
//	400 Bad Request: invalid id, empty body, or validation failure
//	404 Not Found: no student with that id
//	500 Internal Server Error: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		candidate, err := decodeStudent(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, candidate)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "success": true }
func Delete(svc Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.DeleteResult{Success: true})
	}
}

// parseID extracts {id} from the path. On failure it has already written
// a 400 and the handler should return.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeStudent reads a candidate record from the body. Decoding problems
// come back as *records.ValidationError so they share the 400 path with
// field validation.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.Student, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var student types.Student
	err := json.NewDecoder(r.Body).Decode(&student)
	if err == nil {
		return student, nil
	}

	var (
		typeErr  *json.UnmarshalTypeError
		sizeErr  *http.MaxBytesError
		problems []string
	)
	switch {
	case errors.Is(err, io.EOF):
		problems = []string{"request body is empty"}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		problems = []string{fmt.Sprintf("field %s must be %s", typeErr.Field, describeKind(typeErr.Type))}
	case errors.As(err, &sizeErr):
		problems = []string{fmt.Sprintf("request body exceeds %d bytes", sizeErr.Limit)}
	default:
		problems = []string{"malformed JSON: " + err.Error()}
	}
	return types.Student{}, &records.ValidationError{Problems: problems}
}

func describeKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return "a " + t.Kind().String()
	}
}

// writeError maps the records error kinds onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalid  *records.ValidationError
		notFound *records.NotFoundError
		internal *records.InternalError
	)
	switch {
	case errors.As(err, &invalid):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(invalid.Problems))
	case errors.As(err, &notFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	case errors.As(err, &internal):
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(internal))
	default:
		slog.Error("unexpected handler error", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(errors.New("internal server error")))
	}
}
