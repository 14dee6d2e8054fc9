package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricType(t *testing.T) {
	mt, err := ParseMetricType(" Cyclomatic_Complexity ")
	require.NoError(t, err)
	assert.Equal(t, MetricCyclomaticComplexity, mt)

	_, err = ParseMetricType("lines")
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeInvalidInput))
}

func TestMetricTypeTitle(t *testing.T) {
	assert.Equal(t, "Cyclomatic Complexity", MetricCyclomaticComplexity.Title())
	assert.Equal(t, "Halstead Bugs", MetricHalsteadBugs.Title())
}

func TestMetricFamiliesCoverAllMetrics(t *testing.T) {
	seen := make(map[MetricType]bool)
	for family, members := range MetricFamilies {
		if family == FamilyAll {
			continue
		}
		for _, m := range members {
			assert.False(t, seen[m], "metric %s appears in two families", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, len(AllMetricTypes))
	assert.Equal(t, AllMetricTypes, MetricFamilies[FamilyAll])
}

func TestScope(t *testing.T) {
	assert.False(t, FileScope().IsFunction())
	assert.Equal(t, "file", FileScope().String())

	fn := FunctionScope("handle", 42)
	assert.True(t, fn.IsFunction())
	assert.Equal(t, "handle:42", fn.String())
}

func TestFileReportAccessors(t *testing.T) {
	report := FileReport{
		Path:     "pkg/mod.py",
		Language: LanguagePython,
		Metrics: []MetricResult{
			{Type: MetricLinesOfCode, Value: 120, Scope: FileScope()},
			{Type: MetricCyclomaticComplexity, Value: 3, Scope: FunctionScope("a", 1)},
			{Type: MetricCyclomaticComplexity, Value: 7, Scope: FunctionScope("b", 10)},
			{Type: MetricCognitiveComplexity, Value: 2, Scope: FunctionScope("a", 1)},
		},
	}

	loc, ok := report.FileMetric(MetricLinesOfCode)
	require.True(t, ok)
	assert.Equal(t, 120.0, loc)

	_, ok = report.FileMetric(MetricCyclomaticComplexity)
	assert.False(t, ok, "function-scoped values are not file metrics")

	assert.Len(t, report.MetricsOfType(MetricCyclomaticComplexity), 2)
	assert.Equal(t, []Scope{FunctionScope("a", 1), FunctionScope("b", 10)}, report.FunctionNames())
}

func TestViolationRecordMessage(t *testing.T) {
	v := ViolationRecord{
		File:       "src/app.py",
		MetricType: MetricCyclomaticComplexity,
		Scope:      FunctionScope("run", 12),
		Value:      12,
		Threshold:  10,
		Comparator: ComparatorLE,
	}
	assert.Equal(t, "src/app.py:12 (run): Cyclomatic Complexity is 12.00 (threshold: <= 10)", v.Message())

	v.Scope = FileScope()
	v.MetricType = MetricMaintainabilityIndex
	v.Comparator = ComparatorGE
	v.Value = 42.5
	v.Threshold = 50
	assert.Equal(t, "src/app.py: Maintainability Index is 42.50 (threshold: >= 50)", v.Message())
}

func TestEffectiveDepth(t *testing.T) {
	assert.Equal(t, MaxDepth, EffectiveDepth(0))
	assert.Equal(t, MaxDepth, EffectiveDepth(-3))
	assert.Equal(t, 1, EffectiveDepth(1))
	assert.Equal(t, MaxDepth, EffectiveDepth(MaxDepth+100))
}

func TestParseEnums(t *testing.T) {
	style, err := ParsePathStyle("")
	require.NoError(t, err)
	assert.Equal(t, PathStyleRelative, style)

	_, err = ParsePathStyle("short")
	assert.Error(t, err)

	format, err := ParseStatsFormat("ALL")
	require.NoError(t, err)
	assert.Equal(t, StatsFormatAll, format)

	_, err = ParseStatsFormat("xml")
	assert.True(t, HasErrorCode(err, ErrCodeUnsupportedFormat))

	out, err := ParseOutputFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatYAML, out)
}

func TestDomainErrorChain(t *testing.T) {
	err := NewAnalyzerUnavailableError("radon")
	assert.True(t, errors.Is(err, ErrAnalyzerUnavailable))
	assert.True(t, HasErrorCode(err, ErrCodeAnalyzerUnavailable))
	assert.False(t, IsFatal(err))

	wrapped := fmt.Errorf("loading: %w", NewConfigError("bad threshold", NewPatternError("[", nil)))
	assert.True(t, IsFatal(wrapped))
	assert.True(t, HasErrorCode(wrapped, ErrCodePatternError))
	assert.Contains(t, wrapped.Error(), "[CONFIG_ERROR] bad threshold")
}
