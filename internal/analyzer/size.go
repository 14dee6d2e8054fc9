package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/boyter/scc/v3/processor"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

var sccInitOnce sync.Once

// SizeAnalyzer counts physical, code, comment and blank lines with scc.
// It is in-process and therefore always available.
type SizeAnalyzer struct{}

// NewSizeAnalyzer creates a size analyzer, loading scc's language table once
func NewSizeAnalyzer() *SizeAnalyzer {
	sccInitOnce.Do(func() {
		processor.ProcessConstants()
	})
	return &SizeAnalyzer{}
}

// Name returns the analyzer identifier
func (a *SizeAnalyzer) Name() string {
	return "size"
}

// IsAvailable always reports true
func (a *SizeAnalyzer) IsAvailable() bool {
	return true
}

// Analyze returns file-scoped line counts
func (a *SizeAnalyzer) Analyze(ctx context.Context, path string) ([]domain.MetricResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	job := CountLines(filepath.Base(path), content)
	if job == nil {
		return nil, nil
	}

	return []domain.MetricResult{
		fileMetric(domain.MetricLinesOfCode, float64(job.Lines)),
		fileMetric(domain.MetricSourceLinesOfCode, float64(job.Code)),
		fileMetric(domain.MetricCommentLines, float64(job.Comment)),
		fileMetric(domain.MetricBlankLines, float64(job.Blank)),
	}, nil
}

// CountLines runs scc's counter over content. It returns nil for binary
// content and for files scc has no language definition for.
func CountLines(filename string, content []byte) *processor.FileJob {
	sccInitOnce.Do(func() {
		processor.ProcessConstants()
	})

	possible, _ := processor.DetectLanguage(filename)
	if len(possible) == 0 {
		return nil
	}

	job := &processor.FileJob{
		Filename:          filename,
		Content:           content,
		Bytes:             int64(len(content)),
		PossibleLanguages: possible,
	}
	job.Language = processor.DetermineLanguage(job.Filename, job.Language, job.PossibleLanguages, job.Content)
	if job.Language == "" {
		return nil
	}

	processor.CountStats(job)
	if job.Binary {
		return nil
	}
	return job
}

func fileMetric(mt domain.MetricType, value float64) domain.MetricResult {
	return domain.MetricResult{Type: mt, Value: value, Scope: domain.FileScope()}
}
