// Package mirror keeps a client-side copy of the student collection in
// step with the server.
//
// The mirror is a versionless cache. It is replaced wholesale by Load and
// afterwards patched only with records the server returned: a created
// record is prepended, an updated one replaces the entry with the same
// id, a deleted one is removed. Payloads built locally are never written
// into it, since only the server knows assigned ids and normalized
// values. A failed mutation leaves the mirror exactly as it was.
//
// Nothing stops two mutations of one record from overlapping; whichever
// response arrives last is what the mirror holds.
package mirror

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/types"
)

// API is the part of the HTTP client the mirror drives.
type API interface {
	List(ctx context.Context) ([]types.Student, error)
	Create(ctx context.Context, candidate client.Candidate) (types.Student, error)
	Update(ctx context.Context, id int64, candidate client.Candidate) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// State is the load state exposed to the presentation layer.
type State int

const (
	Loading State = iota
	Failed
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrUnknownStudent is returned for an id that is not in the mirror.
	ErrUnknownStudent = errors.New("no such student in the list")

	// ErrDeleteCancelled is returned when the confirmation step declines.
	ErrDeleteCancelled = errors.New("delete cancelled")
)

// RequestError is a failed server round trip. Its message is the one to
// show the user.
type RequestError struct {
	Action string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("error %s: %s", e.Action, client.Message(e.Err))
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ConfirmFunc asks the user whether to go ahead with deleting s.
type ConfirmFunc func(s types.Student) bool

type Collection struct {
	api API

	mu       sync.Mutex
	students []types.Student
	state    State
	loadErr  string

	editing   int64
	isEditing bool
}

// New returns an empty collection in the Loading state. Call Load next.
func New(api API) *Collection {
	return &Collection{api: api, state: Loading}
}

// Load fetches the full list and replaces the mirror with it. On failure
// the collection moves to Failed and keeps whatever it held before.
func (c *Collection) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = Loading
	c.loadErr = ""
	c.mu.Unlock()

	students, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = Failed
		c.loadErr = client.Message(err)
		return &RequestError{Action: "loading students", Err: err}
	}

	c.students = slices.Clone(students)
	c.state = Loaded
	if c.isEditing && c.indexOf(c.editing) < 0 {
		c.isEditing = false
	}
	return nil
}

func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the failure description while the state is Failed, "" otherwise.
func (c *Collection) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Students returns a copy of the mirror in its stored order.
func (c *Collection) Students() []types.Student {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.students)
}

func (c *Collection) Find(id int64) (types.Student, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.students[i], true
	}
	return types.Student{}, false
}

// SubmitCreate pre-checks the form, creates the record on the server and
// prepends the record the server returned.
func (c *Collection) SubmitCreate(ctx context.Context, in FormInput) (types.Student, error) {
	candidate, err := in.Candidate()
	if err != nil {
		return types.Student{}, err
	}

	created, err := c.api.Create(ctx, candidate)
	if err != nil {
		return types.Student{}, &RequestError{Action: "adding student", Err: err}
	}

	c.mu.Lock()
	c.students = slices.Insert(c.students, 0, created)
	c.mu.Unlock()

	return created, nil
}

// SubmitUpdate pre-checks the form, replaces the record on the server and
// swaps the returned record into the mirror. Edit mode for id ends only
// when the update succeeds.
func (c *Collection) SubmitUpdate(ctx context.Context, id int64, in FormInput) (types.Student, error) {
	candidate, err := in.Candidate()
	if err != nil {
		return types.Student{}, err
	}

	updated, err := c.api.Update(ctx, id, candidate)
	if err != nil {
		return types.Student{}, &RequestError{Action: "updating student", Err: err}
	}

	c.mu.Lock()
	if i := c.indexOf(updated.ID); i >= 0 {
		c.students[i] = updated
	}
	if c.isEditing && c.editing == id {
		c.isEditing = false
	}
	c.mu.Unlock()

	return updated, nil
}

// SubmitDelete asks confirm before sending anything; deleting is
// irreversible. The record leaves the mirror only after the server
// acknowledges the delete.
func (c *Collection) SubmitDelete(ctx context.Context, id int64, confirm ConfirmFunc) error {
	student, ok := c.Find(id)
	if !ok {
		return ErrUnknownStudent
	}
	if confirm == nil || !confirm(student) {
		return ErrDeleteCancelled
	}

	if err := c.api.Delete(ctx, id); err != nil {
		return &RequestError{Action: "deleting student", Err: err}
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.students = slices.Delete(c.students, i, i+1)
	}
	if c.isEditing && c.editing == id {
		c.isEditing = false
	}
	c.mu.Unlock()

	return nil
}

// Derive returns the records whose name contains search (ignoring case),
// sorted by name ignoring case. It builds a new slice and never touches
// the mirror or the network. Equal names keep their mirror order.
func (c *Collection) Derive(search string, ascending bool) []types.Student {
	needle := strings.ToLower(strings.TrimSpace(search))

	c.mu.Lock()
	view := make([]types.Student, 0, len(c.students))
	for _, s := range c.students {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			view = append(view, s)
		}
	}
	c.mu.Unlock()

	slices.SortStableFunc(view, func(a, b types.Student) int {
		order := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if !ascending {
			order = -order
		}
		return order
	})
	return view
}

// BeginEdit switches id into edit mode. Only one record is edited at a
// time; starting another edit drops the previous one.
func (c *Collection) BeginEdit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(id) < 0 {
		return ErrUnknownStudent
	}
	c.editing = id
	c.isEditing = true
	return nil
}

// CancelEdit returns to viewing. Unsaved input lives with the caller,
// which drops it.
func (c *Collection) CancelEdit() {
	c.mu.Lock()
	c.isEditing = false
	c.mu.Unlock()
}

// Editing reports which record, if any, is in edit mode.
func (c *Collection) Editing() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing, c.isEditing
}

// FormFor prefills an edit form from the mirrored record.
func (c *Collection) FormFor(id int64) (FormInput, bool) {
	s, ok := c.Find(id)
	if !ok {
		return FormInput{}, false
	}
	return FormFrom(s), true
}

// indexOf must be called with mu held.
func (c *Collection) indexOf(id int64) int {
	return slices.IndexFunc(c.students, func(s types.Student) bool {
		return s.ID == id
	})
}
