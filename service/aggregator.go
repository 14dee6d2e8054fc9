package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// AggregatorImpl runs every registered analyzer over a file set and assembles
// one FileReport per input file.
type AggregatorImpl struct {
	detector domain.LanguageDetector
	registry domain.AnalyzerRegistry
	progress domain.ProgressManager
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. Progress and logging are silent by default.
func NewAggregator(detector domain.LanguageDetector, registry domain.AnalyzerRegistry) *AggregatorImpl {
	return &AggregatorImpl{
		detector: detector,
		registry: registry,
		progress: NewNoopProgressManager(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithProgress sets the progress manager
func (a *AggregatorImpl) WithProgress(pm domain.ProgressManager) *AggregatorImpl {
	if pm != nil {
		a.progress = pm
	}
	return a
}

// WithLogger sets the logger used for analyzer warnings
func (a *AggregatorImpl) WithLogger(logger *slog.Logger) *AggregatorImpl {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// metricKey identifies a result for first-wins deduplication
type metricKey struct {
	metric domain.MetricType
	scope  domain.Scope
}

// Aggregate analyzes files sequentially. The returned reports are in input
// order, one per file. Unavailable analyzers are reported once and skipped;
// analyzer failures are recorded on the file's report and do not stop the run.
func (a *AggregatorImpl) Aggregate(ctx context.Context, files []string) (*domain.AggregationResult, error) {
	result := &domain.AggregationResult{
		Reports: make([]domain.FileReport, 0, len(files)),
	}
	warned := make(map[string]bool)

	a.progress.Initialize(len(files))
	a.progress.Start()
	defer a.progress.Close()

	for i, file := range files {
		select {
		case <-ctx.Done():
			a.progress.Complete(false)
			return nil, fmt.Errorf("aggregation cancelled: %w", ctx.Err())
		default:
		}

		report := a.analyzeFile(ctx, file, result, warned)
		result.Reports = append(result.Reports, report)
		a.progress.Update(i+1, len(files))
	}

	a.progress.Complete(true)
	return result, nil
}

func (a *AggregatorImpl) analyzeFile(ctx context.Context, file string, result *domain.AggregationResult, warned map[string]bool) domain.FileReport {
	lang, ok := a.detector.DetectLanguage(file)
	if !ok {
		return domain.FileReport{Path: file, Language: domain.LanguageUnknown}
	}
	report := domain.FileReport{Path: file, Language: lang}
	if a.detector.ShouldIgnore(file) {
		return report
	}

	seen := make(map[metricKey]bool)
	var failures []string

	for _, analyzer := range a.registry.For(lang) {
		name := analyzer.Name()
		if !analyzer.IsAvailable() {
			a.warnUnavailable(ctx, name, result, warned)
			continue
		}

		metrics, err := analyzer.Analyze(ctx, file)
		if err != nil {
			if errors.Is(err, domain.ErrAnalyzerUnavailable) {
				a.warnUnavailable(ctx, name, result, warned)
				continue
			}
			code := errorCode(err)
			result.Warnings = append(result.Warnings, domain.Warning{
				File:     file,
				Analyzer: name,
				Code:     code,
				Message:  err.Error(),
			})
			a.logger.WarnContext(ctx, "analyzer failed", "file", file, "analyzer", name, "code", code, "error", err)
			failures = append(failures, name+": "+err.Error())
			continue
		}

		for _, m := range metrics {
			key := metricKey{metric: m.Type, scope: m.Scope}
			if seen[key] {
				continue
			}
			seen[key] = true
			report.Metrics = append(report.Metrics, m)
		}
	}

	report.Error = strings.Join(failures, "; ")
	return report
}

func (a *AggregatorImpl) warnUnavailable(ctx context.Context, name string, result *domain.AggregationResult, warned map[string]bool) {
	if warned[name] {
		return
	}
	warned[name] = true
	result.Warnings = append(result.Warnings, domain.Warning{
		Analyzer: name,
		Code:     domain.ErrCodeAnalyzerUnavailable,
		Message:  fmt.Sprintf("%s is not installed; its metrics are omitted", name),
	})
	a.logger.WarnContext(ctx, "analyzer unavailable", "analyzer", name)
}

// errorCode extracts the domain error code, defaulting to ANALYSIS_ERROR
func errorCode(err error) string {
	var de domain.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return domain.ErrCodeAnalysisError
}
