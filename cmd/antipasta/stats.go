package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hesreallyhim/antipasta-sub000/app"
	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/analyzer"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// StatsCommand collects metric statistics without enforcing thresholds
type StatsCommand struct {
	configFile  string
	directory   string
	byDirectory bool
	byModule    bool
	depth       int
	pathStyle   string
	metrics     []string
	format      string
	outputPath  string
	noProgress  bool
	timeout     time.Duration

	overrideFlags
}

// NewStatsCommand creates a new stats command
func NewStatsCommand() *StatsCommand {
	return &StatsCommand{
		directory: ".",
		depth:     1,
		pathStyle: string(domain.PathStyleRelative),
		format:    string(domain.StatsFormatTable),
	}
}

// CreateCobraCommand creates the cobra command for statistics collection
func (c *StatsCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [patterns...]",
		Short: "Collect code metric statistics",
		Long: `Collect statistics for metrics across files, overall or grouped by
directory or module.

Patterns are globs relative to --directory and default to every supported
source file. Without -m only the line-count metrics are reported; -m selects
exactly the listed metrics. Accepted names are the family prefixes loc, cyc,
cog, hal, mai and all, or a full metric name such as halstead_volume.

Examples:
  # Overall statistics
  antipasta stats

  # Two directory levels with cyclomatic complexity
  antipasta stats --by-directory --depth 2 -m cyc

  # Per-module statistics for a package
  antipasta stats -d src --by-module -m all

  # Save every view as JSON and CSV
  antipasta stats --format all -o reports/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runStats,
	}

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVarP(&c.directory, "directory", "d", ".", "Directory to analyze")
	cmd.Flags().BoolVar(&c.byDirectory, "by-directory", false, "Group statistics by directory")
	cmd.Flags().BoolVar(&c.byModule, "by-module", false, "Group statistics by module")
	cmd.Flags().IntVar(&c.depth, "depth", 1, "Directory levels to show with --by-directory (0 for unlimited)")
	cmd.Flags().StringVar(&c.pathStyle, "path-style", "relative", "Directory path display (relative, parent, full)")
	cmd.Flags().StringArrayVarP(&c.metrics, "metric", "m", nil,
		"Metrics to include (repeatable): loc, cyc, cog, hal, mai, all, or a full metric name")
	cmd.Flags().StringVarP(&c.format, "format", "f", "table", "Output format (table, json, csv, all)")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Output file, or directory for --format all")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().DurationVar(&c.timeout, "timeout", 0, "Abort analysis after this duration (0 means no limit)")
	c.overrideFlags.register(cmd)

	cmd.MarkFlagsMutuallyExclusive("by-directory", "by-module")

	return cmd
}

func (c *StatsCommand) runStats(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseStatsFormat(c.format)
	if err != nil {
		return err
	}
	style, err := domain.ParsePathStyle(c.pathStyle)
	if err != nil {
		return err
	}
	override, err := c.overrideFlags.build()
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	explicit := changedFlags(cmd)
	if explicit["depth"] && !c.byDirectory {
		logger.Warn("--depth only applies to --by-directory and is ignored")
	}
	if explicit["path-style"] && !c.byDirectory {
		logger.Warn("--path-style only applies to --by-directory and is ignored")
	}

	grouping := domain.GroupingOverall
	switch {
	case c.byDirectory:
		grouping = domain.GroupingDirectory
	case c.byModule:
		grouping = domain.GroupingModule
	}

	ctx, cancel := withTimeout(cmd.Context(), c.timeout)
	defer cancel()

	useCase, err := app.NewStatsUseCaseBuilder().
		WithRegistry(analyzer.DefaultRegistry(nil)).
		WithStatusWriter(cmd.ErrOrStderr()).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	req := domain.StatsRequest{
		Patterns:     args,
		Directory:    c.directory,
		ConfigPath:   c.configFile,
		Grouping:     grouping,
		Depth:        c.depth,
		PathStyle:    style,
		Metrics:      c.metrics,
		Format:       format,
		OutputPath:   c.outputPath,
		ShowProgress: !c.noProgress && format == domain.StatsFormatTable && service.IsInteractiveEnvironment(),
		Overrides:    override,
	}
	if c.outputPath == "" {
		req.OutputWriter = cmd.OutOrStdout()
	}

	_, err = useCase.Execute(ctx, req)
	return err
}

// changedFlags returns the names of flags set on the command line
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

// NewStatsCmd creates and returns the stats cobra command
func NewStatsCmd() *cobra.Command {
	return NewStatsCommand().CreateCobraCommand()
}
