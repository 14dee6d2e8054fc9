package domain

import (
	"fmt"
	"io"
)

// ViolationRecord describes one metric value that failed its threshold
type ViolationRecord struct {
	File       string     `json:"file" yaml:"file"`
	Language   Language   `json:"language" yaml:"language"`
	MetricType MetricType `json:"type" yaml:"type"`
	Scope      Scope      `json:"scope" yaml:"scope"`
	Value      float64    `json:"value" yaml:"value"`
	Threshold  float64    `json:"threshold" yaml:"threshold"`
	Comparator Comparator `json:"comparison" yaml:"comparison"`
}

// Message renders the violation as "path:line (func): Metric is v (threshold: <= t)"
func (v ViolationRecord) Message() string {
	location := v.File
	if v.Scope.IsFunction() {
		if v.Scope.Line > 0 {
			location = fmt.Sprintf("%s:%d", location, v.Scope.Line)
		}
		if v.Scope.Name != "" {
			location = fmt.Sprintf("%s (%s)", location, v.Scope.Name)
		}
	}
	return fmt.Sprintf("%s: %s is %.2f (threshold: %s %g)",
		location, v.MetricType.Title(), v.Value, v.Comparator, v.Threshold)
}

// ViolationSummary aggregates facts about a violation run. It carries no exit policy.
type ViolationSummary struct {
	TotalFiles          int                `json:"total_files" yaml:"total_files"`
	FilesWithViolations int                `json:"files_with_violations" yaml:"files_with_violations"`
	TotalViolations     int                `json:"total_violations" yaml:"total_violations"`
	ViolationsByType    map[MetricType]int `json:"violations_by_type" yaml:"violations_by_type"`
	FilesByLanguage     map[Language]int   `json:"files_by_language" yaml:"files_by_language"`
	Success             bool               `json:"success" yaml:"success"`
}

// CheckRequest represents a request for the quality gate
type CheckRequest struct {
	Paths        []string
	ConfigPath   string
	BaseDir      string
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	Quiet        bool
	NoColor      bool
	ShowProgress bool
	Overrides    ConfigOverride
}

// ConfigOverride carries command-line adjustments to a loaded configuration
type ConfigOverride struct {
	Thresholds       map[MetricType]float64
	IncludePatterns  []string
	ExcludePatterns  []string
	DisableGitignore bool
	ForceAnalyze     bool
}

// HasOverrides reports whether any override is set
func (o ConfigOverride) HasOverrides() bool {
	return len(o.Thresholds) > 0 || len(o.IncludePatterns) > 0 ||
		len(o.ExcludePatterns) > 0 || o.DisableGitignore || o.ForceAnalyze
}

// CheckResponse is the complete result of a check run
type CheckResponse struct {
	Reports    []FileReport      `json:"reports" yaml:"reports"`
	Violations []ViolationRecord `json:"violations" yaml:"violations"`
	Summary    ViolationSummary  `json:"summary" yaml:"summary"`
	Warnings   []Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Skipped    []string          `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// ViolationEngine evaluates reports against thresholds
type ViolationEngine interface {
	Evaluate(reports []FileReport, thresholds *Thresholds) []ViolationRecord
	Summarize(reports []FileReport, violations []ViolationRecord) ViolationSummary
}

// CheckOutputFormatter renders a check response
type CheckOutputFormatter interface {
	Write(response *CheckResponse, format OutputFormat, writer io.Writer) error
}
