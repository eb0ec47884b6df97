package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/mirror"
	"github.com/aanand-mishra/student-records/internal/types"
)

func listCmd(a *app) *cobra.Command {
	var (
		search string
		desc   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students sorted by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			col, err := a.collection()
			if err != nil {
				return err
			}
			if err := col.Load(cmd.Context()); err != nil {
				return a.report(err)
			}

			return renderStudents(a.out, col.Derive(search, !desc), format)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show names containing this text (case-insensitive)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort names Z to A")
	cmd.Flags().StringVarP(&output, "output", "o", string(formatTable), "Output format (table, json, yaml)")
	return cmd
}

// formFlags binds --name, --age and --class onto form.
func formFlags(cmd *cobra.Command, form *mirror.FormInput) {
	cmd.Flags().StringVar(&form.Name, "name", "", "Student name")
	cmd.Flags().StringVar(&form.Age, "age", "", "Student age")
	cmd.Flags().StringVar(&form.Class, "class", "", "Student class")
}

func addCmd(a *app) *cobra.Command {
	var form mirror.FormInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.collection()
			if err != nil {
				return err
			}

			created, err := col.SubmitCreate(cmd.Context(), form)
			if err != nil {
				return a.report(err)
			}

			fmt.Fprintf(a.out, "added %s\n", describe(created))
			return nil
		},
	}

	formFlags(cmd, &form)
	return cmd
}

func updateCmd(a *app) *cobra.Command {
	var form mirror.FormInput

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a student's fields; flags left out keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			col, err := a.collection()
			if err != nil {
				return err
			}
			if err := col.Load(cmd.Context()); err != nil {
				return a.report(err)
			}

			if err := col.BeginEdit(id); err != nil {
				return fmt.Errorf("student %d: %w", id, err)
			}
			current, _ := col.FormFor(id)
			if cmd.Flags().Changed("name") {
				current.Name = form.Name
			}
			if cmd.Flags().Changed("age") {
				current.Age = form.Age
			}
			if cmd.Flags().Changed("class") {
				current.Class = form.Class
			}

			updated, err := col.SubmitUpdate(cmd.Context(), id, current)
			if err != nil {
				return a.report(err)
			}

			fmt.Fprintf(a.out, "updated %s\n", describe(updated))
			return nil
		},
	}

	formFlags(cmd, &form)
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			col, err := a.collection()
			if err != nil {
				return err
			}
			if err := col.Load(cmd.Context()); err != nil {
				return a.report(err)
			}

			confirm := func(types.Student) bool { return true }
			if !assumeYes {
				in := bufio.NewScanner(a.in)
				confirm = func(s types.Student) bool {
					return askConfirm(in, a.out, s)
				}
			}

			err = col.SubmitDelete(cmd.Context(), id, confirm)
			switch {
			case errors.Is(err, mirror.ErrDeleteCancelled):
				fmt.Fprintln(a.out, "cancelled")
				return nil
			case errors.Is(err, mirror.ErrUnknownStudent):
				return fmt.Errorf("student %d: %w", id, err)
			case err != nil:
				return a.report(err)
			}

			fmt.Fprintf(a.out, "deleted student %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", arg)
	}
	return id, nil
}

func describe(s types.Student) string {
	return fmt.Sprintf("#%d %s (age %d, class %s)", s.ID, s.Name, s.Age, s.Class)
}
