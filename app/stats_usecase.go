package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/detector"
	"github.com/hesreallyhim/antipasta-sub000/internal/version"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// StatsResult is what a stats run produced
type StatsResult struct {
	Report *domain.StatsReport
	// Files lists the paths written by --format all
	Files []string
}

// StatsUseCase collects metrics for files matching glob patterns and renders
// grouped statistics.
type StatsUseCase struct {
	fileReader domain.FileReader
	registry   domain.AnalyzerRegistry
	stats      domain.StatsAggregator
	formatter  *service.StatsFormatterImpl
	writer     domain.ReportWriter
	progress   domain.ProgressManager
	status     io.Writer
	logger     *slog.Logger
	loadConfig ConfigLoaderFunc
}

// Execute runs the stats pipeline
func (uc *StatsUseCase) Execute(ctx context.Context, req domain.StatsRequest) (*StatsResult, error) {
	req, err := normalizeStatsRequest(req)
	if err != nil {
		return nil, err
	}

	dir := req.Directory
	if dir == "" {
		dir = "."
	}

	cfg, err := loadEffectiveConfig(uc.loadConfig, req.ConfigPath, dir, req.Overrides)
	if err != nil {
		return nil, err
	}
	det, err := newDetector(cfg, dir, req.Overrides)
	if err != nil {
		return nil, err
	}

	files, err := readerFor(uc.fileReader, det).ExpandPatterns(dir, req.Patterns)
	if err != nil {
		return nil, err
	}

	breakdown := uc.breakdown(det, files)
	if req.Format == domain.StatsFormatTable {
		uc.printBreakdown(len(files), breakdown)
	}

	analyzable, skipped := det.Filter(files)
	if len(analyzable) == 0 {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("no analyzable files found in %s (%d matched, %d skipped)", dir, len(files), len(skipped)), nil)
	}

	selection, unknown := service.ParseMetricSelection(req.Metrics)
	warnings := service.UnknownMetricWarnings(unknown)
	for _, w := range warnings {
		uc.logger.Warn(w.Message)
	}

	aggregator := service.NewAggregator(det, uc.registry).
		WithProgress(uc.progressFor(req.ShowProgress)).
		WithLogger(uc.logger)
	result, err := aggregator.Aggregate(ctx, analyzable)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}

	report := uc.buildReport(req, dir, selection, result)
	report.Breakdown = breakdown
	report.Warnings = append(warnings, result.Warnings...)

	if req.Format == domain.StatsFormatAll {
		outDir := req.OutputPath
		if outDir == "" {
			outDir = "."
		}
		written, err := uc.formatter.WriteAll(ctx, report, outDir)
		if err != nil {
			return nil, err
		}
		for _, path := range written {
			fmt.Fprintf(uc.status, "Report written to %s\n", path)
		}
		return &StatsResult{Report: report, Files: written}, nil
	}

	err = uc.writer.Write(req.OutputWriter, req.OutputPath, func(w io.Writer) error {
		return uc.formatter.Write(report, req.Format, w)
	})
	if err != nil {
		return nil, err
	}
	return &StatsResult{Report: report}, nil
}

// buildReport aggregates once; the report is rendered any number of times.
// With --format all every grouping is computed so each view has data.
func (uc *StatsUseCase) buildReport(req domain.StatsRequest, dir string, selection domain.MetricSelection, result *domain.AggregationResult) *domain.StatsReport {
	grouping := req.Grouping
	report := &domain.StatsReport{
		Grouping:       grouping,
		Selection:      selection,
		EffectiveDepth: domain.EffectiveDepth(req.Depth),
		PathStyle:      req.PathStyle,
		BaseDir:        dir,
		Overall:        uc.stats.Overall(result.Reports, selection),
		GeneratedAt:    time.Now().Format(time.RFC3339),
		Version:        version.Version,
	}

	all := req.Format == domain.StatsFormatAll
	if all || grouping == domain.GroupingDirectory {
		report.ByDirectory = uc.stats.ByDirectory(result.Reports, selection, domain.DirectoryOptions{
			BaseDir:   dir,
			Depth:     req.Depth,
			PathStyle: req.PathStyle,
		})
	}
	if all || grouping == domain.GroupingModule {
		report.ByModule = uc.stats.ByModule(result.Reports, selection, detector.NewPackageResolver())
	}
	return report
}

// breakdown counts matched files per language and marks whether any
// analyzer is registered for it
func (uc *StatsUseCase) breakdown(det *detector.LanguageDetector, files []string) []domain.LanguageBreakdown {
	out := det.Breakdown(files)
	for i := range out {
		if out[i].Language != domain.LanguageUnknown && len(uc.registry.For(out[i].Language)) > 0 {
			out[i].Status = "supported"
		} else {
			out[i].Status = "not supported"
		}
	}
	return out
}

func (uc *StatsUseCase) printBreakdown(total int, breakdown []domain.LanguageBreakdown) {
	ignored := 0
	for _, b := range breakdown {
		ignored += b.Ignored
	}

	fmt.Fprintf(uc.status, "Found %d files matching patterns\n", total)
	if ignored > 0 {
		fmt.Fprintf(uc.status, "  - %d ignored (matching .gitignore or ignore patterns)\n", ignored)
	}
	for _, b := range breakdown {
		if b.Files == 0 {
			continue
		}
		fmt.Fprintf(uc.status, "  - %d %s files (%s)\n", b.Files, b.Language, b.Status)
	}
	fmt.Fprintln(uc.status)
}

// normalizeStatsRequest validates the request and resolves default format,
// path style and grouping
func normalizeStatsRequest(req domain.StatsRequest) (domain.StatsRequest, error) {
	format, err := domain.ParseStatsFormat(string(req.Format))
	if err != nil {
		return req, err
	}
	style, err := domain.ParsePathStyle(string(req.PathStyle))
	if err != nil {
		return req, err
	}
	req.Format = format
	req.PathStyle = style

	switch req.Grouping {
	case "":
		req.Grouping = domain.GroupingOverall
	case domain.GroupingOverall, domain.GroupingDirectory, domain.GroupingModule:
	default:
		return req, domain.NewInvalidInputError(fmt.Sprintf("unknown grouping: %s", req.Grouping), nil)
	}

	if req.OutputWriter == nil && req.OutputPath == "" && req.Format != domain.StatsFormatAll {
		return req, domain.NewInvalidInputError("output writer is required", nil)
	}
	return req, nil
}

func (uc *StatsUseCase) progressFor(show bool) domain.ProgressManager {
	if uc.progress != nil {
		return uc.progress
	}
	if show {
		return service.NewProgressManager("Collecting metrics")
	}
	return service.NewNoopProgressManager()
}

// StatsUseCaseBuilder provides a builder pattern for creating StatsUseCase
type StatsUseCaseBuilder struct {
	fileReader domain.FileReader
	registry   domain.AnalyzerRegistry
	stats      domain.StatsAggregator
	formatter  *service.StatsFormatterImpl
	writer     domain.ReportWriter
	progress   domain.ProgressManager
	status     io.Writer
	logger     *slog.Logger
	loadConfig ConfigLoaderFunc
}

// NewStatsUseCaseBuilder creates a new builder
func NewStatsUseCaseBuilder() *StatsUseCaseBuilder {
	return &StatsUseCaseBuilder{}
}

// WithFileReader sets the file reader. When unset, each run expands patterns
// with a reader built on its configured detector.
func (b *StatsUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *StatsUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithRegistry sets the analyzer registry
func (b *StatsUseCaseBuilder) WithRegistry(registry domain.AnalyzerRegistry) *StatsUseCaseBuilder {
	b.registry = registry
	return b
}

// WithStatsAggregator sets the stats aggregator
func (b *StatsUseCaseBuilder) WithStatsAggregator(stats domain.StatsAggregator) *StatsUseCaseBuilder {
	b.stats = stats
	return b
}

// WithFormatter sets the stats formatter
func (b *StatsUseCaseBuilder) WithFormatter(formatter *service.StatsFormatterImpl) *StatsUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *StatsUseCaseBuilder) WithOutputWriter(writer domain.ReportWriter) *StatsUseCaseBuilder {
	b.writer = writer
	return b
}

// WithProgress sets the progress manager
func (b *StatsUseCaseBuilder) WithProgress(progress domain.ProgressManager) *StatsUseCaseBuilder {
	b.progress = progress
	return b
}

// WithStatusWriter sets where the file breakdown and written paths are printed
func (b *StatsUseCaseBuilder) WithStatusWriter(status io.Writer) *StatsUseCaseBuilder {
	b.status = status
	return b
}

// WithLogger sets the logger
func (b *StatsUseCaseBuilder) WithLogger(logger *slog.Logger) *StatsUseCaseBuilder {
	b.logger = logger
	return b
}

// WithConfigLoader replaces config discovery
func (b *StatsUseCaseBuilder) WithConfigLoader(load ConfigLoaderFunc) *StatsUseCaseBuilder {
	b.loadConfig = load
	return b
}

// Build creates the StatsUseCase, filling optional dependencies with defaults
func (b *StatsUseCaseBuilder) Build() (*StatsUseCase, error) {
	if b.registry == nil {
		return nil, fmt.Errorf("analyzer registry is required")
	}

	uc := &StatsUseCase{
		fileReader: b.fileReader,
		registry:   b.registry,
		stats:      b.stats,
		formatter:  b.formatter,
		writer:     b.writer,
		progress:   b.progress,
		status:     b.status,
		logger:     b.logger,
		loadConfig: b.loadConfig,
	}
	if uc.stats == nil {
		uc.stats = service.NewStatsAggregator()
	}
	if uc.formatter == nil {
		uc.formatter = service.NewStatsFormatter()
	}
	if uc.status == nil {
		uc.status = os.Stderr
	}
	if uc.writer == nil {
		uc.writer = service.NewFileOutputWriter(uc.status)
	}
	if uc.logger == nil {
		uc.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return uc, nil
}
