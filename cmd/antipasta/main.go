package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hesreallyhim/antipasta-sub000/internal/version"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// Process exit codes
const (
	exitOK         = 0
	exitSetupError = 1
	exitViolations = 2
)

// exitError carries a specific exit status out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "antipasta",
		Short: "Code quality metrics and threshold checks",
		Long: `antipasta collects code quality metrics for Python, JavaScript and
TypeScript files and checks them against configurable thresholds.

Metrics come from pluggable analyzers:
  • size: line counts for every supported language (built in)
  • radon: cyclomatic complexity, maintainability index, Halstead measures
  • complexipy: cognitive complexity

Missing analyzers are reported as warnings and their metrics are omitted.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// run executes the CLI and maps the outcome to a process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			reportError(stderr, exitErr.err, isVerbose(rootCmd))
		}
		return exitErr.code
	}

	reportError(stderr, err, isVerbose(rootCmd))
	return exitSetupError
}

// reportError prints a categorized error and, in verbose mode, recovery hints
func reportError(w io.Writer, err error, verbose bool) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error [%s]: %v\n", categorized.Category, err)
	if !verbose {
		return
	}
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  • %s\n", suggestion)
	}
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.PersistentFlags().GetBool("verbose")
	return verbose
}

// newLogger returns the diagnostic logger for a command. Warnings are always
// shown; --verbose adds debug output.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
