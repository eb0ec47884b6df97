// Package main provides the students-cli binary, a command-line front end
// for the students API.
//
// It keeps a local mirror of the collection (internal/mirror) and drives
// it either through one-shot commands or an interactive shell:
//
//	STUDENTS_API_URL=http://localhost:5000 students-cli list --search an
//	students-cli --api-url http://localhost:5000 shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/mirror"
)

const (
	Version = "1.1.0"
	appName = "students-cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	apiURL   string
	logLevel string
	timeout  time.Duration

	log *slog.Logger
	in  io.Reader
	out io.Writer
}

// collection builds a fresh mirror over a client for the configured API.
func (a *app) collection() (*mirror.Collection, error) {
	c, err := client.New(a.apiURL, a.timeout)
	if err != nil {
		return nil, err
	}
	return mirror.New(c), nil
}

// report logs what the user does not see and returns err unchanged.
func (a *app) report(err error) error {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		a.log.Debug("request failed", slog.String("detail", transportErr.Detail()))
	}
	return err
}

func rootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Manage student records through the students API",
		Long: `students-cli lists, adds, edits and deletes student records held by
a students-api server.

The server location comes from --api-url or STUDENTS_API_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = setupLogger(a.logLevel)
			slog.SetDefault(a.log)

			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if a.apiURL == "" {
				a.apiURL = cfg.APIURL
			}
			a.timeout = cfg.Timeout
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Base URL of the students API (env STUDENTS_API_URL)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		listCmd(a),
		addCmd(a),
		updateCmd(a),
		deleteCmd(a),
		shellCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.out, "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func setupLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
