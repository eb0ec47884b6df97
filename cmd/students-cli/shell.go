package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/mirror"
	"github.com/aanand-mishra/student-records/internal/types"
)

const shellHelp = `commands:
  ls               show students (current search and sort)
  find [TERM]      filter by name; no term clears the filter
  sort asc|desc    change sort direction
  add              add a student
  edit ID          edit a student (enter keeps a value, "-" cancels)
  rm ID            delete a student
  reload           fetch the list again
  help             show this text
  quit             leave the shell`

func shellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit students interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.collection()
			if err != nil {
				return err
			}
			return newShell(a, col).run(cmd.Context())
		},
	}
}

// shell is a line-oriented session over one mirror. The search term and
// sort direction are view state only; the mirror never sees them.
type shell struct {
	app       *app
	col       *mirror.Collection
	in        *bufio.Scanner
	search    string
	ascending bool
}

func newShell(a *app, col *mirror.Collection) *shell {
	return &shell{
		app:       a,
		col:       col,
		in:        bufio.NewScanner(a.in),
		ascending: true,
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.app.out, format, args...)
}

func (s *shell) run(ctx context.Context) error {
	s.printf("loading...\n")
	s.reload(ctx)

	for {
		line, ok := s.prompt("> ")
		if !ok {
			return nil
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "":
		case "ls":
			s.list()
		case "find":
			s.search = rest
			s.list()
		case "sort":
			switch rest {
			case "asc":
				s.ascending = true
			case "desc":
				s.ascending = false
			default:
				s.printf("usage: sort asc|desc\n")
				continue
			}
			s.list()
		case "add":
			s.add(ctx)
		case "edit":
			s.edit(ctx, rest)
		case "rm":
			s.remove(ctx, rest)
		case "reload":
			s.reload(ctx)
		case "help":
			s.printf("%s\n", shellHelp)
		case "quit", "exit":
			return nil
		default:
			s.printf("unknown command %q, try help\n", verb)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// prompt prints label and reads one trimmed line. ok is false at end of
// input.
func (s *shell) prompt(label string) (string, bool) {
	s.printf("%s", label)
	if !s.in.Scan() {
		s.printf("\n")
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *shell) reload(ctx context.Context) {
	if err := s.col.Load(ctx); err != nil {
		s.app.report(err)
		s.printf("error: %s\n", s.col.Err())
		return
	}
	s.list()
}

func (s *shell) list() {
	if s.col.State() == mirror.Failed {
		s.printf("error: %s\n", s.col.Err())
	}
	view := s.col.Derive(s.search, s.ascending)
	if s.search != "" {
		s.printf("matching %q:\n", s.search)
	}
	renderStudents(s.app.out, view, formatTable)
}

func (s *shell) add(ctx context.Context) {
	var form mirror.FormInput
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"name: ", &form.Name},
		{"age: ", &form.Age},
		{"class: ", &form.Class},
	} {
		v, ok := s.prompt(f.label)
		if !ok {
			return
		}
		*f.dst = v
	}

	created, err := s.col.SubmitCreate(ctx, form)
	if err != nil {
		s.fail(err)
		return
	}
	s.printf("added %s\n", describe(created))
}

// edit runs one pass of edit mode. Each prompt shows the current value;
// an empty answer keeps it and "-" abandons the edit.
func (s *shell) edit(ctx context.Context, arg string) {
	id, err := parseID(arg)
	if err != nil {
		s.printf("%s\n", err)
		return
	}
	if err := s.col.BeginEdit(id); err != nil {
		s.printf("student %d: %s\n", id, err)
		return
	}
	form, _ := s.col.FormFor(id)

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"name", &form.Name},
		{"age", &form.Age},
		{"class", &form.Class},
	} {
		v, ok := s.prompt(fmt.Sprintf("%s [%s]: ", f.name, *f.dst))
		if !ok || v == "-" {
			s.col.CancelEdit()
			s.printf("edit cancelled\n")
			return
		}
		if v != "" {
			*f.dst = v
		}
	}

	updated, err := s.col.SubmitUpdate(ctx, id, form)
	if err != nil {
		s.fail(err)
		// The shell keeps no pending form to retry with.
		s.col.CancelEdit()
		return
	}
	s.printf("updated %s\n", describe(updated))
}

func (s *shell) remove(ctx context.Context, arg string) {
	id, err := parseID(arg)
	if err != nil {
		s.printf("%s\n", err)
		return
	}

	err = s.col.SubmitDelete(ctx, id, func(st types.Student) bool {
		return askConfirm(s.in, s.app.out, st)
	})
	switch {
	case errors.Is(err, mirror.ErrDeleteCancelled):
		s.printf("cancelled\n")
	case err != nil:
		s.fail(err)
	default:
		s.printf("deleted student %d\n", id)
	}
}

func (s *shell) fail(err error) {
	s.app.report(err)
	s.printf("%s\n", err)
}
