// Package cli implements portalctl, the operator command line for the
// credential registry and the submission store.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"input-portal/internal/app"
)

// test seams
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Opener builds the application for one command invocation.
type Opener func(ctx context.Context) (*app.App, error)

type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type runner struct {
	open    Opener
	streams Streams
	reader  *bufio.Reader
}

func NewRootCommand(open Opener, streams Streams, version string) *cobra.Command {
	r := &runner{open: open, streams: streams, reader: bufio.NewReader(streams.In)}

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operate the input portal stores",
		Long:          `portalctl manages portal users and writes submissions or raw uploads directly into the storage layout.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.AddCommand(
		r.bootstrapCmd(),
		r.setAdminPasswordCmd(),
		r.createUserCmd(),
		r.listUsersCmd(),
		r.submitCmd(),
		r.metricsCmd(),
		r.uploadCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of portalctl",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(streams.Out, "portalctl version %s\n", version)
			},
		},
	)
	return root
}

// withApp opens the application, runs fn and closes it.
func (r *runner) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

// readSecret reads without echo from a terminal, or one line otherwise.
func (r *runner) readSecret(prompt string) (string, error) {
	if f, ok := r.streams.In.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(r.streams.Err, prompt)
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(r.streams.Err)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := r.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *runner) readNewPassword() (password, confirm string, err error) {
	if password, err = r.readSecret("New password: "); err != nil {
		return "", "", err
	}
	if confirm, err = r.readSecret("Confirm password: "); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}
