package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/version"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// CheckUseCase orchestrates the quality gate: discover files, aggregate
// metrics, evaluate thresholds and write the report. It never decides the
// process exit status; callers read Summary.Success.
type CheckUseCase struct {
	fileReader domain.FileReader
	registry   domain.AnalyzerRegistry
	engine     domain.ViolationEngine
	formatter  domain.CheckOutputFormatter
	writer     domain.ReportWriter
	progress   domain.ProgressManager
	logger     *slog.Logger
	loadConfig ConfigLoaderFunc
}

// Execute runs the check and writes the formatted response
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	baseDir := req.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	// Configuration and pattern problems are fatal before any analysis
	cfg, err := loadEffectiveConfig(uc.loadConfig, req.ConfigPath, baseDir, req.Overrides)
	if err != nil {
		return nil, err
	}
	det, err := newDetector(cfg, baseDir, req.Overrides)
	if err != nil {
		return nil, err
	}

	files, skipped, err := ResolveFiles(readerFor(uc.fileReader, det), det, req.Paths)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("files resolved", "analyzable", len(files), "skipped", len(skipped))

	aggregator := service.NewAggregator(det, uc.registry).
		WithProgress(uc.progressFor(req.ShowProgress)).
		WithLogger(uc.logger)
	result, err := aggregator.Aggregate(ctx, files)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}

	violations := uc.engine.Evaluate(result.Reports, cfg.Thresholds())
	response := &domain.CheckResponse{
		Reports:     result.Reports,
		Violations:  violations,
		Summary:     uc.engine.Summarize(result.Reports, violations),
		Warnings:    result.Warnings,
		Skipped:     skipped,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}

	formatter := uc.formatter
	if formatter == nil {
		formatter = service.NewOutputFormatter(req.Quiet, req.NoColor)
	}
	err = uc.writer.Write(req.OutputWriter, req.OutputPath, func(w io.Writer) error {
		return formatter.Write(response, req.OutputFormat, w)
	})
	return response, err
}

func (uc *CheckUseCase) validateRequest(req domain.CheckRequest) error {
	if len(req.Paths) == 0 {
		return domain.NewInvalidInputError("no input paths specified", nil)
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return domain.NewInvalidInputError("output writer is required", nil)
	}
	if _, err := domain.ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}
	return nil
}

func (uc *CheckUseCase) progressFor(show bool) domain.ProgressManager {
	if uc.progress != nil {
		return uc.progress
	}
	if show {
		return service.NewProgressManager("Analyzing")
	}
	return service.NewNoopProgressManager()
}

// CheckUseCaseBuilder provides a builder pattern for creating CheckUseCase
type CheckUseCaseBuilder struct {
	fileReader domain.FileReader
	registry   domain.AnalyzerRegistry
	engine     domain.ViolationEngine
	formatter  domain.CheckOutputFormatter
	writer     domain.ReportWriter
	progress   domain.ProgressManager
	logger     *slog.Logger
	loadConfig ConfigLoaderFunc
}

// NewCheckUseCaseBuilder creates a new builder
func NewCheckUseCaseBuilder() *CheckUseCaseBuilder {
	return &CheckUseCaseBuilder{}
}

// WithFileReader sets the file reader. When unset, each run walks with a
// reader built on its configured detector.
func (b *CheckUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *CheckUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithRegistry sets the analyzer registry
func (b *CheckUseCaseBuilder) WithRegistry(registry domain.AnalyzerRegistry) *CheckUseCaseBuilder {
	b.registry = registry
	return b
}

// WithViolationEngine sets the violation engine
func (b *CheckUseCaseBuilder) WithViolationEngine(engine domain.ViolationEngine) *CheckUseCaseBuilder {
	b.engine = engine
	return b
}

// WithFormatter sets the output formatter. When unset, the request's quiet
// and color settings pick the default text formatter.
func (b *CheckUseCaseBuilder) WithFormatter(formatter domain.CheckOutputFormatter) *CheckUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *CheckUseCaseBuilder) WithOutputWriter(writer domain.ReportWriter) *CheckUseCaseBuilder {
	b.writer = writer
	return b
}

// WithProgress sets the progress manager
func (b *CheckUseCaseBuilder) WithProgress(progress domain.ProgressManager) *CheckUseCaseBuilder {
	b.progress = progress
	return b
}

// WithLogger sets the logger
func (b *CheckUseCaseBuilder) WithLogger(logger *slog.Logger) *CheckUseCaseBuilder {
	b.logger = logger
	return b
}

// WithConfigLoader replaces config discovery
func (b *CheckUseCaseBuilder) WithConfigLoader(load ConfigLoaderFunc) *CheckUseCaseBuilder {
	b.loadConfig = load
	return b
}

// Build creates the CheckUseCase with the configured dependencies
func (b *CheckUseCaseBuilder) Build() (*CheckUseCase, error) {
	if b.registry == nil {
		return nil, fmt.Errorf("analyzer registry is required")
	}

	uc := &CheckUseCase{
		fileReader: b.fileReader,
		registry:   b.registry,
		engine:     b.engine,
		formatter:  b.formatter,
		writer:     b.writer,
		progress:   b.progress,
		logger:     b.logger,
		loadConfig: b.loadConfig,
	}
	if uc.engine == nil {
		uc.engine = service.NewViolationEngine()
	}
	if uc.writer == nil {
		uc.writer = service.NewFileOutputWriter(os.Stderr)
	}
	if uc.logger == nil {
		uc.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return uc, nil
}
