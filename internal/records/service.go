// Package records is the Record Store: it owns the rules for what a valid
// student is and turns every storage outcome into one of three error
// kinds (ValidationError, NotFoundError, InternalError) that the HTTP
// layer maps onto status codes.
//
// Concurrent updates to the same id are last-write-wins. There is no
// version column; whichever write reaches the database last is kept.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

type Service struct {
	store    storage.Storage
	validate *validator.Validate
	log      *slog.Logger
}

// NewService wraps store. A nil logger falls back to slog.Default().
func NewService(store storage.Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	v := validator.New()
	// Report fields by their JSON names ("class", not "Class") so the
	// messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{store: store, validate: v, log: log}
}

func (s *Service) List(ctx context.Context) ([]types.Student, error) {
	students, err := s.store.GetStudents(ctx)
	if err != nil {
		return nil, s.fail("listing students", 0, err)
	}
	return students, nil
}

func (s *Service) Get(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.store.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, s.fail("getting student", id, err)
	}
	return student, nil
}

// Create validates candidate and stores it under a fresh id. Any id the
// caller put on the candidate is ignored.
func (s *Service) Create(ctx context.Context, candidate types.Student) (created types.Student, err error) {
	defer func() { observe("create", err) }()

	candidate.ID = 0
	if err := s.Validate(&candidate); err != nil {
		return types.Student{}, err
	}

	created, err = s.store.CreateStudent(ctx, candidate)
	if err != nil {
		return types.Student{}, s.fail("creating student", 0, err)
	}

	s.log.Info("student created", slog.Int64("id", created.ID))
	return created, nil
}

// Update re-validates candidate as if it were new and replaces every
// field of the stored record.
func (s *Service) Update(ctx context.Context, id int64, candidate types.Student) (updated types.Student, err error) {
	defer func() { observe("update", err) }()

	if err := s.Validate(&candidate); err != nil {
		return types.Student{}, err
	}

	updated, err = s.store.UpdateStudentByID(ctx, id, candidate)
	if err != nil {
		return types.Student{}, s.fail("updating student", id, err)
	}

	s.log.Info("student updated", slog.Int64("id", id))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete", err) }()

	if err := s.store.DeleteStudentByID(ctx, id); err != nil {
		return s.fail("deleting student", id, err)
	}

	s.log.Info("student deleted", slog.Int64("id", id))
	return nil
}

// Validate normalizes candidate in place and checks its validate tags.
// It returns a *ValidationError listing every failing field.
func (s *Service) Validate(candidate *types.Student) error {
	candidate.Normalize()

	err := s.validate.Struct(candidate)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &InternalError{Op: "validating student", Err: err}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		switch e.ActualTag() {
		case "required":
			problems = append(problems, fmt.Sprintf("field %s is required", e.Field()))
		case "gt":
			problems = append(problems, fmt.Sprintf("field %s must be greater than %s", e.Field(), e.Param()))
		default:
			problems = append(problems, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return &ValidationError{Problems: problems}
}

func (s *Service) fail(op string, id int64, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{ID: id}
	}

	s.log.Error("storage failure",
		slog.String("op", op),
		slog.String("error", err.Error()))
	return &InternalError{Op: op, Err: err}
}

func observe(op string, err error) {
	result := metrics.ResultOK
	var (
		invalid  *ValidationError
		notFound *NotFoundError
	)
	switch {
	case err == nil:
	case errors.As(err, &invalid):
		result = metrics.ResultInvalid
	case errors.As(err, &notFound):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
	}
	metrics.MutationsTotal.WithLabelValues(op, result).Inc()
}
