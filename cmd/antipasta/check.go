package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hesreallyhim/antipasta-sub000/app"
	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/analyzer"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// CheckCommand runs the quality gate
type CheckCommand struct {
	configFile   string
	directory    string
	outputFormat string
	outputPath   string
	quiet        bool
	noColor      bool
	noProgress   bool
	timeout      time.Duration

	overrideFlags
}

// overrideFlags are the configuration overrides shared by check and stats
type overrideFlags struct {
	thresholds   []string
	include      []string
	exclude      []string
	noGitignore  bool
	forceAnalyze bool
}

func (o *overrideFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.include, "include", "i", nil,
		"Force include files matching pattern even if ignored (repeatable)")
	cmd.Flags().StringArrayVarP(&o.exclude, "exclude", "e", nil,
		"Additional exclusion pattern (repeatable)")
	cmd.Flags().StringArrayVarP(&o.thresholds, "threshold", "t", nil,
		"Override threshold as metric_type=value, e.g. cyclomatic_complexity=15 (repeatable)")
	cmd.Flags().BoolVar(&o.noGitignore, "no-gitignore", false, "Disable .gitignore patterns")
	cmd.Flags().BoolVar(&o.forceAnalyze, "force-analyze", false, "Analyze all files, ignoring every exclusion")
}

// build parses the flags into a ConfigOverride. Malformed thresholds are config errors.
func (o *overrideFlags) build() (domain.ConfigOverride, error) {
	thresholds, err := config.ParseThresholdOverrides(o.thresholds)
	if err != nil {
		return domain.ConfigOverride{}, err
	}
	return domain.ConfigOverride{
		Thresholds:       thresholds,
		IncludePatterns:  o.include,
		ExcludePatterns:  o.exclude,
		DisableGitignore: o.noGitignore,
		ForceAnalyze:     o.forceAnalyze,
	}, nil
}

// NewCheckCommand creates a new check command
func NewCheckCommand() *CheckCommand {
	return &CheckCommand{
		directory:    ".",
		outputFormat: string(domain.OutputFormatText),
	}
}

// CreateCobraCommand creates the cobra command for the quality gate
func (c *CheckCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check code metrics against configured thresholds",
		Long: `Analyze files and report every metric that fails its threshold.

Thresholds come from .antipasta.yaml, [tool.antipasta] in pyproject.toml,
or the built-in defaults. Use --threshold to override single values.

Exit codes:
  • 0: No violations
  • 2: Violations found
  • 1: Configuration or setup error

Examples:
  # Check the current directory
  antipasta check

  # Check specific files with a custom config
  antipasta check -c .antipasta.yaml src/app.py src/util.py

  # Relax cyclomatic complexity for this run
  antipasta check --threshold cyclomatic_complexity=15 src/

  # Machine-readable output
  antipasta check -f json -o report.json`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCheck,
	}

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVarP(&c.directory, "directory", "d", ".", "Base directory for ignore patterns and config discovery")
	cmd.Flags().StringVarP(&c.outputFormat, "format", "f", "text", "Output format (text, json, yaml, csv)")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the report to a file")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Only show violations")
	cmd.Flags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().DurationVar(&c.timeout, "timeout", 0, "Abort analysis after this duration (0 means no limit)")
	c.overrideFlags.register(cmd)

	return cmd
}

func (c *CheckCommand) runCheck(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseOutputFormat(c.outputFormat)
	if err != nil {
		return err
	}
	override, err := c.overrideFlags.build()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{c.directory}
	}

	if !c.quiet {
		for _, msg := range config.OverrideMessages(override) {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
	}

	ctx, cancel := withTimeout(cmd.Context(), c.timeout)
	defer cancel()

	useCase, err := c.createCheckUseCase(cmd)
	if err != nil {
		return err
	}

	req := domain.CheckRequest{
		Paths:        paths,
		ConfigPath:   c.configFile,
		BaseDir:      c.directory,
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
		OutputPath:   c.outputPath,
		Quiet:        c.quiet,
		NoColor:      c.noColor || !service.IsInteractiveEnvironment(),
		ShowProgress: !c.noProgress && !c.quiet && service.IsInteractiveEnvironment(),
		Overrides:    override,
	}

	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return err
	}
	if !response.Summary.Success {
		return &exitError{code: exitViolations}
	}
	return nil
}

func (c *CheckCommand) createCheckUseCase(cmd *cobra.Command) (*app.CheckUseCase, error) {
	return app.NewCheckUseCaseBuilder().
		WithRegistry(analyzer.DefaultRegistry(nil)).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithLogger(newLogger(cmd)).
		Build()
}

// withTimeout bounds ctx when d is positive
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// NewCheckCmd creates and returns the check cobra command
func NewCheckCmd() *cobra.Command {
	return NewCheckCommand().CreateCobraCommand()
}
