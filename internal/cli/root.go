// Package cli implements the toolbox command-line front end.
//
// Converted data is the only thing written to stdout; status lines,
// warnings and errors go to stderr through UI, and debug logs go to stderr
// through slog.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/logging"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(err error) error { return &usageError{err: err} }

// app holds state shared by every subcommand.
type app struct {
	logLevel string
	color    string
	quiet    bool

	ui     *UI
	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "toolbox",
		Short: "Convert tabular data between text formats",
		Long: `toolbox converts flat, tabular data between CSV, JSON, JSON Lines, XML,
YAML, HTML tables, TSV, plain text tables, Markdown, KML, iCalendar, TOML,
Excel tab-separated text and SQL INSERT scripts.

Input is read from a file argument or stdin; output goes to stdout unless
--out is given. Run "toolbox formats" for the full list of names and aliases.

Environment Variables:
  NO_COLOR   Disable colored status output`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ParseColorMode(a.color)
			if err != nil {
				return usageErrorf(err)
			}
			a.ui = NewUI(cmd.ErrOrStderr(), mode, a.quiet)
			a.logger = logging.New(cmd.ErrOrStderr(), a.logLevel, "text")
			return nil
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level for diagnostics on stderr (debug, info, warn, error)")
	pf.StringVar(&a.color, "color", "auto", "color status output: auto, always, never")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress status lines (warnings and errors still print)")

	root.AddCommand(
		newConvertCmd(a),
		newExtractCmd(a),
		newFormatsCmd(a),
	)
	return root
}

// Execute runs the CLI with the given arguments and streams and returns the
// process exit code.
func Execute(ctx context.Context, version string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	reportError(NewUI(stderr, ColorAuto, false), err)

	var uerr *usageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	return ExitError
}

// reportError prints err, plus the mapped hint for conversion failures.
func reportError(ui *UI, err error) {
	ui.Error("%v", err)
	if core.Kind(err) != nil {
		msg := core.MapError(err)
		ui.Info("%s (%s)", msg.Action, msg.Code)
	}
}
