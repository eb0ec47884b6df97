package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records/internal/types"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// renderStudents writes students in the given format. Machine formats
// always emit a list, even an empty one.
func renderStudents(w io.Writer, students []types.Student, format outputFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(students)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(students); err != nil {
			return err
		}
		return enc.Close()

	default:
		if len(students) == 0 {
			_, err := fmt.Fprintln(w, "no students")
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tAGE\tCLASS")
		for _, s := range students {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.ID, s.Name, s.Age, s.Class)
		}
		return tw.Flush()
	}
}

// askConfirm prompts before an irreversible delete. Anything but y/yes
// declines, and so does end of input.
func askConfirm(in *bufio.Scanner, out io.Writer, s types.Student) bool {
	fmt.Fprintf(out, "delete %s? [y/N] ", describe(s))
	if !in.Scan() {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
