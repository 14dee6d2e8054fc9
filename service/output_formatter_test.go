package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

func createTestCheckResponse(withViolations bool) *domain.CheckResponse {
	reports := []domain.FileReport{
		{Path: "src/app.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{
			cc("handler", 7, 12),
			fileValue(domain.MetricMaintainabilityIndex, 30),
		}},
		{Path: "src/util.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{
			cc("helper", 1, 2),
		}},
		{Path: "web/index.js", Language: domain.LanguageJavaScript},
	}

	th := domain.NewThresholds()
	if withViolations {
		th.SetDefault(domain.MetricThreshold{Type: domain.MetricCyclomaticComplexity, Threshold: 10, Comparison: domain.ComparatorLE, Enabled: true})
		th.SetDefault(domain.MetricThreshold{Type: domain.MetricMaintainabilityIndex, Threshold: 50, Comparison: domain.ComparatorGE, Enabled: true})
	}

	engine := NewViolationEngine()
	violations := engine.Evaluate(reports, th)
	return &domain.CheckResponse{
		Reports:     reports,
		Violations:  violations,
		Summary:     engine.Summarize(reports, violations),
		Warnings:    []domain.Warning{{Analyzer: "complexipy", Code: domain.ErrCodeAnalyzerUnavailable, Message: "complexipy is not installed; its metrics are omitted"}},
		Skipped:     []string{"README.md"},
		GeneratedAt: "2026-01-01T00:00:00Z",
		Version:     "test",
	}
}

func TestOutputFormatter_TextFailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false, true).Write(createTestCheckResponse(true), domain.OutputFormatText, &buf))
	out := buf.String()

	assert.Contains(t, out, "WARNINGS")
	assert.Contains(t, out, "[complexipy] complexipy is not installed")
	assert.Contains(t, out, "METRICS ANALYSIS SUMMARY")
	assert.Contains(t, out, "Total files analyzed: 3")
	assert.Contains(t, out, "Files with violations: 1")
	assert.Contains(t, out, "Total violations: 2")
	assert.Contains(t, out, "VIOLATIONS FOUND:")
	assert.Contains(t, out, "x src/app.py:7 (handler): Cyclomatic Complexity is 12.00 (threshold: <= 10)")
	assert.Contains(t, out, "x src/app.py: Maintainability Index is 30.00 (threshold: >= 50)")
	assert.Contains(t, out, "Code quality check FAILED")
	assert.NotContains(t, out, "\x1b[", "no color codes with noColor")

	// Violations by type follow canonical metric order
	assert.Less(t, strings.Index(out, "  - cyclomatic_complexity: 1"), strings.Index(out, "  - maintainability_index: 1"))
}

func TestOutputFormatter_TextPassed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false, true).Write(createTestCheckResponse(false), domain.OutputFormatText, &buf))
	out := buf.String()

	assert.Contains(t, out, "Total violations: 0")
	assert.Contains(t, out, "Code quality check PASSED")
	assert.NotContains(t, out, "VIOLATIONS FOUND")
}

func TestOutputFormatter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(true, true).Write(createTestCheckResponse(false), domain.OutputFormatText, &buf))
	assert.Empty(t, buf.String())

	buf.Reset()
	require.NoError(t, NewOutputFormatter(true, true).Write(createTestCheckResponse(true), domain.OutputFormatText, &buf))
	out := buf.String()
	assert.NotContains(t, out, "METRICS ANALYSIS SUMMARY")
	assert.Contains(t, out, "VIOLATIONS FOUND:")
	assert.Contains(t, out, "Code quality check FAILED")
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false, true).Write(createTestCheckResponse(true), domain.OutputFormatJSON, &buf))

	var doc struct {
		Summary domain.ViolationSummary `json:"summary"`
		Reports []struct {
			File       string `json:"file"`
			Language   string `json:"language"`
			Violations []struct {
				Type       string  `json:"type"`
				Message    string  `json:"message"`
				Value      float64 `json:"value"`
				Comparison string  `json:"comparison"`
			} `json:"violations"`
			Metrics []domain.MetricResult `json:"metrics"`
		} `json:"reports"`
		Skipped  []string         `json:"skipped"`
		Warnings []domain.Warning `json:"warnings"`
		Version  string           `json:"version"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.False(t, doc.Summary.Success)
	require.Len(t, doc.Reports, 3)
	assert.Equal(t, "src/app.py", doc.Reports[0].File)
	require.Len(t, doc.Reports[0].Violations, 2)
	assert.Equal(t, "cyclomatic_complexity", doc.Reports[0].Violations[0].Type)
	assert.Equal(t, "<=", doc.Reports[0].Violations[0].Comparison)
	assert.Empty(t, doc.Reports[1].Violations)
	assert.NotNil(t, doc.Reports[2].Metrics)
	assert.Equal(t, []string{"README.md"}, doc.Skipped)
	assert.Len(t, doc.Warnings, 1)
	assert.Equal(t, "test", doc.Version)

	// Empty collections serialize as arrays, not null
	assert.Contains(t, buf.String(), `"violations": []`)
}

func TestOutputFormatter_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false, true).Write(createTestCheckResponse(true), domain.OutputFormatYAML, &buf))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	summary := doc["summary"].(map[string]any)
	assert.Equal(t, 2, summary["total_violations"])
	assert.Equal(t, false, summary["success"])
	assert.Len(t, doc["reports"], 3)
}

func TestOutputFormatter_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter(false, true).Write(createTestCheckResponse(true), domain.OutputFormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"file", "language", "metric", "function", "line", "value", "threshold", "comparison"}, records[0])
	assert.Equal(t, []string{"src/app.py", "python", "cyclomatic_complexity", "handler", "7", "12", "10", "<="}, records[1])
	assert.Equal(t, []string{"src/app.py", "python", "maintainability_index", "", "", "30", "50", ">="}, records[2])
}

func TestOutputFormatter_UnsupportedFormat(t *testing.T) {
	err := NewOutputFormatter(false, true).Write(createTestCheckResponse(false), domain.OutputFormat("xml"), &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeUnsupportedFormat))
}
