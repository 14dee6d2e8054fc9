package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

func sampleStatsReport(grouping domain.GroupingMode) *domain.StatsReport {
	selection := domain.MetricSelection{Metrics: []domain.MetricType{
		domain.MetricLinesOfCode,
		domain.MetricCyclomaticComplexity,
	}}
	reports := []domain.FileReport{
		{Path: "/p/a/x.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{
			fileValue(domain.MetricLinesOfCode, 1200), cc("f", 1, 3), cc("g", 9, 5),
		}},
		{Path: "/p/b/y.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{
			fileValue(domain.MetricLinesOfCode, 40), cc("h", 1, 9),
		}},
	}

	agg := NewStatsAggregator()
	report := &domain.StatsReport{
		Grouping:       grouping,
		Selection:      selection,
		EffectiveDepth: 1,
		BaseDir:        "/p",
		Overall:        agg.Overall(reports, selection),
		Version:        "test",
	}
	switch grouping {
	case domain.GroupingDirectory:
		report.ByDirectory = agg.ByDirectory(reports, selection, domain.DirectoryOptions{BaseDir: "/p", Depth: 1})
	case domain.GroupingModule:
		report.ByModule = agg.ByModule(reports, selection, mapResolver{"/p/a/x.py": "a", "/p/b/y.py": "b"})
	}
	return report
}

func TestStatsFormatter_JSONDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(sampleStatsReport(domain.GroupingDirectory), domain.StatsFormatJSON, &buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	files := doc["files"].(map[string]any)
	assert.Equal(t, 2.0, files["count"])
	assert.Equal(t, 1240.0, files["total_loc"])
	assert.Equal(t, 620.0, files["avg_loc"])
	assert.Equal(t, 3.0, doc["functions"].(map[string]any)["count"])

	metrics := doc["metrics"].(map[string]any)
	cyc := metrics["cyclomatic_complexity"].(map[string]any)
	assert.Equal(t, 3.0, cyc["count"])
	assert.Equal(t, 17.0, cyc["sum"])

	dirs := doc["by_directory"].([]any)
	require.Len(t, dirs, 2)
	first := dirs[0].(map[string]any)
	assert.Equal(t, "a", first["path"])
	assert.Equal(t, 1.0, first["file_count"])
	assert.Equal(t, 2.0, first["function_count"])
	assert.Equal(t, 1.0, doc["depth"])
	assert.NotContains(t, doc, "by_module")
}

func TestStatsFormatter_JSONWithoutLOC(t *testing.T) {
	report := sampleStatsReport(domain.GroupingOverall)
	delete(report.Overall.Metrics, domain.MetricLinesOfCode)

	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(report, domain.StatsFormatJSON, &buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	files := doc["files"].(map[string]any)
	assert.NotContains(t, files, "total_loc")
	assert.NotContains(t, doc, "by_directory")
}

func TestStatsFormatter_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(sampleStatsReport(domain.GroupingDirectory), domain.StatsFormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"path", "file_count", "function_count", "metric", "count", "sum", "mean", "min", "max", "stddev"}, records[0])
	assert.Equal(t, []string{"a", "1", "2", "lines_of_code", "1", "1200", "1200", "1200", "1200", "0"}, records[1])
	assert.Equal(t, []string{"a", "1", "2", "cyclomatic_complexity", "2", "8", "4", "3", "5"}, records[2][:9])
	assert.Equal(t, "b", records[3][0])
}

func TestStatsFormatter_CSVBucketWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	buckets := []domain.Bucket{{Key: "empty", Path: "empty", FileCount: 1}}
	selection := domain.MetricSelection{Metrics: []domain.MetricType{domain.MetricCognitiveComplexity}}
	require.NoError(t, writeStatsCSV(&buf, selection, buckets))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"empty", "1", "0", "", "", "", "", "", "", ""}, records[1])
}

func TestStatsFormatter_OverallTable(t *testing.T) {
	report := sampleStatsReport(domain.GroupingOverall)
	report.Selection.Metrics = append(report.Selection.Metrics, domain.MetricCognitiveComplexity)

	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(report, domain.StatsFormatTable, &buf))
	out := buf.String()

	assert.Contains(t, out, "Files: 2    Functions: 3")
	assert.Contains(t, strings.ToLower(out), "std dev")
	assert.Contains(t, out, "Lines Of Code")
	assert.Contains(t, out, "1,240")
	assert.Contains(t, out, "5.67")
	assert.Contains(t, out, "Cognitive Complexity")
	assert.Contains(t, out, "-")
}

func TestStatsFormatter_DirectoryTableTruncates(t *testing.T) {
	report := sampleStatsReport(domain.GroupingDirectory)
	long := "src/antipasta/very/deeply/nested/module/path"
	report.ByDirectory[0].Path = long

	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(report, domain.StatsFormatTable, &buf))
	out := buf.String()

	assert.Contains(t, out, TruncatePath(long, domain.DisplayPathWidth))
	assert.NotContains(t, out, long)
	assert.Contains(t, strings.ToLower(out), "avg cyclomatic complexity")
	assert.Contains(t, strings.ToLower(out), "total: 2")
}

func TestStatsFormatter_ModuleTableKeepsFullPath(t *testing.T) {
	report := sampleStatsReport(domain.GroupingModule)
	long := "antipasta.very.deeply.nested.module.path"
	report.ByModule[0].Path = long

	var buf bytes.Buffer
	require.NoError(t, NewStatsFormatter().Write(report, domain.StatsFormatTable, &buf))
	assert.Contains(t, buf.String(), long)
}

func TestStatsFormatter_UnsupportedFormat(t *testing.T) {
	err := NewStatsFormatter().Write(sampleStatsReport(domain.GroupingOverall), domain.StatsFormat("xml"), &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeUnsupportedFormat))
}

func TestStatsFormatter_WriteAll(t *testing.T) {
	report := sampleStatsReport(domain.GroupingDirectory)
	report.ByModule = NewStatsAggregator().ByModule(nil, report.Selection, mapResolver{})
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := NewStatsFormatter().WriteAll(context.Background(), report, dir)
	require.NoError(t, err)
	require.Len(t, paths, 9)

	for _, view := range AllStatsViews {
		for _, ext := range []string{"json", "csv", "txt"} {
			path := filepath.Join(dir, "stats_"+string(view)+"."+ext)
			assert.Contains(t, paths, path)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats_by_directory.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "by_directory")
	assert.NotContains(t, doc, "by_module")
}

func TestStatsFormatter_WriteAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatsFormatter().WriteAll(ctx, sampleStatsReport(domain.GroupingOverall), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewFor(t *testing.T) {
	assert.Equal(t, ViewOverall, ViewFor(domain.GroupingOverall))
	assert.Equal(t, ViewByDirectory, ViewFor(domain.GroupingDirectory))
	assert.Equal(t, ViewByModule, ViewFor(domain.GroupingModule))
}
