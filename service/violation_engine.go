package service

import (
	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ViolationEngineImpl compares metric results against resolved thresholds
type ViolationEngineImpl struct{}

// NewViolationEngine creates a violation engine
func NewViolationEngine() *ViolationEngineImpl {
	return &ViolationEngineImpl{}
}

// Evaluate returns one record per metric result whose comparison fails.
// Records follow report order and, within a report, metric order.
// Disabled or missing thresholds never produce violations.
func (e *ViolationEngineImpl) Evaluate(reports []domain.FileReport, thresholds *domain.Thresholds) []domain.ViolationRecord {
	var violations []domain.ViolationRecord

	for _, report := range reports {
		for _, m := range report.Metrics {
			th, ok := thresholds.Resolve(report.Language, m.Type)
			if !ok || !th.Enabled {
				continue
			}
			if th.Comparison.Compare(m.Value, th.Threshold) {
				continue
			}
			violations = append(violations, domain.ViolationRecord{
				File:       report.Path,
				Language:   report.Language,
				MetricType: m.Type,
				Scope:      m.Scope,
				Value:      m.Value,
				Threshold:  th.Threshold,
				Comparator: th.Comparison,
			})
		}
	}

	return violations
}

// Summarize counts files and violations. Success is true when no violation exists.
func (e *ViolationEngineImpl) Summarize(reports []domain.FileReport, violations []domain.ViolationRecord) domain.ViolationSummary {
	summary := domain.ViolationSummary{
		TotalFiles:       len(reports),
		TotalViolations:  len(violations),
		ViolationsByType: make(map[domain.MetricType]int),
		FilesByLanguage:  make(map[domain.Language]int),
		Success:          len(violations) == 0,
	}

	for _, r := range reports {
		summary.FilesByLanguage[r.Language]++
	}

	files := make(map[string]bool)
	for _, v := range violations {
		summary.ViolationsByType[v.MetricType]++
		files[v.File] = true
	}
	summary.FilesWithViolations = len(files)

	return summary
}
