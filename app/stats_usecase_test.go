package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

func statsFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSource(t, root, "a/x.py", "def f(): pass\ndef g(): pass\n")
	writeSource(t, root, "b/y.py", "def h(): pass\n")
	writeSource(t, root, "web/app.js", "function f() {}\n")
	return root
}

func newTestStatsUseCase(t *testing.T, status *bytes.Buffer) *StatsUseCase {
	t.Helper()
	uc, err := NewStatsUseCaseBuilder().
		WithFileReader(service.NewFileReader(mustDetector(t))).
		WithRegistry(stubRegistry(map[string][]domain.MetricResult{
			"x.py":   {ccResult("f", 1, 3), ccResult("g", 2, 5)},
			"y.py":   {ccResult("h", 1, 9)},
			"app.js": {{Type: domain.MetricLinesOfCode, Value: 1, Scope: domain.FileScope()}},
		})).
		WithConfigLoader(defaultConfigLoader).
		WithStatusWriter(status).
		Build()
	require.NoError(t, err)
	return uc
}

func TestStatsUseCase_ByDirectoryJSON(t *testing.T) {
	root := statsFixture(t)
	var out, status bytes.Buffer

	result, err := newTestStatsUseCase(t, &status).Execute(context.Background(), domain.StatsRequest{
		Patterns:     []string{"**/*.py"},
		Directory:    root,
		Grouping:     domain.GroupingDirectory,
		Depth:        1,
		Metrics:      []string{"cyc"},
		Format:       domain.StatsFormatJSON,
		OutputWriter: &out,
	})
	require.NoError(t, err)

	report := result.Report
	assert.Equal(t, 1, report.EffectiveDepth)
	require.Len(t, report.ByDirectory, 2)
	assert.Equal(t, "a", report.ByDirectory[0].Key)
	a := report.ByDirectory[0].Metrics[domain.MetricCyclomaticComplexity]
	assert.Equal(t, 4.0, a.Mean)
	assert.Equal(t, 3.0, a.Min)
	assert.Equal(t, 5.0, a.Max)
	assert.Equal(t, 9.0, report.ByDirectory[1].Metrics[domain.MetricCyclomaticComplexity].Mean)
	assert.Nil(t, report.ByModule)
	assert.Empty(t, status.String(), "breakdown is printed only for tables")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "by_directory")
	metrics := doc["metrics"].(map[string]any)
	assert.Len(t, metrics, 1)
	assert.Contains(t, metrics, "cyclomatic_complexity")
}

func TestStatsUseCase_DefaultSelectionAndBreakdown(t *testing.T) {
	root := statsFixture(t)
	writeSource(t, root, "tests/test_x.py", "def test(): pass\n")
	var out, status bytes.Buffer

	result, err := newTestStatsUseCase(t, &status).Execute(context.Background(), domain.StatsRequest{
		Directory:    root,
		OutputWriter: &out,
	})
	require.NoError(t, err)

	report := result.Report
	assert.True(t, report.Selection.Defaulted)
	assert.Equal(t, domain.GroupingOverall, report.Grouping)
	assert.Equal(t, 3, report.Overall.FileCount)
	assert.Contains(t, report.Overall.Metrics, domain.MetricLinesOfCode)
	assert.NotContains(t, report.Overall.Metrics, domain.MetricCyclomaticComplexity)

	assert.Contains(t, status.String(), "Found 4 files matching patterns")
	assert.Contains(t, status.String(), "1 ignored")
	assert.Contains(t, status.String(), "2 python files (supported)")
	assert.Contains(t, out.String(), "Files: 3")
}

func TestStatsUseCase_DefaultPatternsCoverEveryExtension(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "main.py", "x = 1\n")
	writeSource(t, root, "pkg/types.pyi", "def f() -> int: ...\n")
	writeSource(t, root, "src/util.mjs", "export const x = 1;\n")
	writeSource(t, root, "src/legacy.cjs", "module.exports = 1;\n")
	writeSource(t, root, "notes.txt", "not code\n")

	uc, err := NewStatsUseCaseBuilder().
		WithRegistry(stubRegistry(nil)).
		WithConfigLoader(defaultConfigLoader).
		WithStatusWriter(&bytes.Buffer{}).
		Build()
	require.NoError(t, err)

	result, err := uc.Execute(context.Background(), domain.StatsRequest{
		Directory:    root,
		Format:       domain.StatsFormatJSON,
		OutputWriter: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Report.Overall.FileCount)
}

func TestStatsUseCase_UnknownMetricWarns(t *testing.T) {
	root := statsFixture(t)

	result, err := newTestStatsUseCase(t, &bytes.Buffer{}).Execute(context.Background(), domain.StatsRequest{
		Directory:    root,
		Metrics:      []string{"cyc", "bogus"},
		Format:       domain.StatsFormatCSV,
		OutputWriter: &bytes.Buffer{},
	})
	require.NoError(t, err)
	require.Len(t, result.Report.Warnings, 1)
	assert.Contains(t, result.Report.Warnings[0].Message, "bogus")
	assert.Equal(t, []domain.MetricType{domain.MetricCyclomaticComplexity}, result.Report.Selection.Metrics)
}

func TestStatsUseCase_FormatAll(t *testing.T) {
	root := statsFixture(t)
	outDir := filepath.Join(t.TempDir(), "reports")
	var status bytes.Buffer

	result, err := newTestStatsUseCase(t, &status).Execute(context.Background(), domain.StatsRequest{
		Directory:  root,
		Metrics:    []string{"all"},
		Format:     domain.StatsFormatAll,
		OutputPath: outDir,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 9)
	assert.NotEmpty(t, result.Report.ByDirectory)
	assert.NotEmpty(t, result.Report.ByModule)

	for _, path := range result.Files {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
	assert.Contains(t, status.String(), "stats_overall.json")
}

func TestStatsUseCase_Errors(t *testing.T) {
	root := statsFixture(t)

	tests := []struct {
		name string
		req  domain.StatsRequest
		code string
	}{
		{"no analyzable files", domain.StatsRequest{Directory: root, Patterns: []string{"**/*.rb"}, OutputWriter: &bytes.Buffer{}}, domain.ErrCodeInvalidInput},
		{"bad pattern", domain.StatsRequest{Directory: root, Patterns: []string{"[a-"}, OutputWriter: &bytes.Buffer{}}, domain.ErrCodePatternError},
		{"bad format", domain.StatsRequest{Directory: root, Format: "xml", OutputWriter: &bytes.Buffer{}}, domain.ErrCodeUnsupportedFormat},
		{"bad path style", domain.StatsRequest{Directory: root, PathStyle: "short", OutputWriter: &bytes.Buffer{}}, domain.ErrCodeInvalidInput},
		{"bad grouping", domain.StatsRequest{Directory: root, Grouping: "weekly", OutputWriter: &bytes.Buffer{}}, domain.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestStatsUseCase(t, &bytes.Buffer{}).Execute(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domain.HasErrorCode(err, tt.code), "got %v", err)
		})
	}
}
