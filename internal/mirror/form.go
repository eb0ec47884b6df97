package mirror

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	// ErrIncompleteForm means a field was left blank. No request is sent.
	ErrIncompleteForm = errors.New("name, age and class are all required")

	// ErrAgeNotNumeric means the age field does not hold a whole number.
	ErrAgeNotNumeric = errors.New("age must be a whole number")
)

// FormInput is what a user typed, before any conversion.
type FormInput struct {
	Name  string
	Age   string
	Class string
}

// FormFrom prefills a form with an existing record, for editing.
func FormFrom(s types.Student) FormInput {
	return FormInput{
		Name:  s.Name,
		Age:   strconv.Itoa(s.Age),
		Class: s.Class,
	}
}

// Candidate runs the client-side pre-check and converts the form into a
// request body. The check only saves a round trip; the server validates
// again and has the final word.
func (f FormInput) Candidate() (client.Candidate, error) {
	name := strings.TrimSpace(f.Name)
	age := strings.TrimSpace(f.Age)
	class := strings.TrimSpace(f.Class)

	if name == "" || age == "" || class == "" {
		return client.Candidate{}, ErrIncompleteForm
	}

	n, err := strconv.Atoi(age)
	if err != nil {
		return client.Candidate{}, ErrAgeNotNumeric
	}

	return client.Candidate{Name: name, Age: n, Class: class}, nil
}
