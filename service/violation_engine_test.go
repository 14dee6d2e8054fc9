package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

func ccThresholds(limit float64, cmp domain.Comparator) *domain.Thresholds {
	th := domain.NewThresholds()
	th.SetDefault(domain.MetricThreshold{
		Type:       domain.MetricCyclomaticComplexity,
		Threshold:  limit,
		Comparison: cmp,
		Enabled:    true,
	})
	return th
}

func TestViolationEngine_SingleFunctionOverLimit(t *testing.T) {
	reports := []domain.FileReport{{
		Path:     "src/app.py",
		Language: domain.LanguagePython,
		Metrics:  []domain.MetricResult{cc("handler", 7, 12)},
	}}

	violations := NewViolationEngine().Evaluate(reports, ccThresholds(10, domain.ComparatorLE))

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, domain.MetricCyclomaticComplexity, v.MetricType)
	assert.Equal(t, 12.0, v.Value)
	assert.Equal(t, 10.0, v.Threshold)
	assert.Equal(t, domain.ComparatorLE, v.Comparator)
	assert.Equal(t, domain.FunctionScope("handler", 7), v.Scope)
	assert.Equal(t, "src/app.py:7 (handler): Cyclomatic Complexity is 12.00 (threshold: <= 10)", v.Message())
}

func TestViolationEngine_ExistsIffComparisonFails(t *testing.T) {
	values := []float64{0, 5, 9.5, 10, 10.5, 20}
	limits := []float64{0, 10}

	for _, cmp := range domain.AllComparators {
		for _, limit := range limits {
			for _, v := range values {
				reports := []domain.FileReport{{
					Path:     "a.py",
					Language: domain.LanguagePython,
					Metrics:  []domain.MetricResult{cc("f", 1, v)},
				}}
				got := NewViolationEngine().Evaluate(reports, ccThresholds(limit, cmp))
				want := !cmp.Compare(v, limit)
				assert.Equal(t, want, len(got) == 1, "value %v %s %v", v, cmp, limit)
				assert.LessOrEqual(t, len(got), 1)
			}
		}
	}
}

func TestViolationEngine_LanguageOverridesDefault(t *testing.T) {
	th := ccThresholds(10, domain.ComparatorLE)
	th.SetLanguage(domain.LanguageJavaScript, domain.MetricThreshold{
		Type:       domain.MetricCyclomaticComplexity,
		Threshold:  20,
		Comparison: domain.ComparatorLE,
		Enabled:    true,
	})

	reports := []domain.FileReport{
		{Path: "a.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{cc("f", 1, 15)}},
		{Path: "a.js", Language: domain.LanguageJavaScript, Metrics: []domain.MetricResult{cc("f", 1, 15)}},
	}

	violations := NewViolationEngine().Evaluate(reports, th)
	require.Len(t, violations, 1)
	assert.Equal(t, "a.py", violations[0].File)
}

func TestViolationEngine_DisabledAndMissingThresholds(t *testing.T) {
	th := domain.NewThresholds()
	th.SetDefault(domain.MetricThreshold{
		Type:       domain.MetricCognitiveComplexity,
		Threshold:  1,
		Comparison: domain.ComparatorLE,
		Enabled:    false,
	})

	reports := []domain.FileReport{{
		Path:     "a.py",
		Language: domain.LanguagePython,
		Metrics: []domain.MetricResult{
			{Type: domain.MetricCognitiveComplexity, Value: 50, Scope: domain.FunctionScope("f", 1)},
			fileValue(domain.MetricLinesOfCode, 5000),
		},
	}}

	assert.Empty(t, NewViolationEngine().Evaluate(reports, th))
	assert.Empty(t, NewViolationEngine().Evaluate(reports, nil))
}

func TestViolationEngine_Summarize(t *testing.T) {
	th := ccThresholds(10, domain.ComparatorLE)
	th.SetDefault(domain.MetricThreshold{
		Type:       domain.MetricMaintainabilityIndex,
		Threshold:  50,
		Comparison: domain.ComparatorGE,
		Enabled:    true,
	})

	reports := []domain.FileReport{
		{Path: "a.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{
			cc("f", 1, 11), cc("g", 9, 14), fileValue(domain.MetricMaintainabilityIndex, 40),
		}},
		{Path: "b.py", Language: domain.LanguagePython, Metrics: []domain.MetricResult{cc("h", 1, 2)}},
		{Path: "c.js", Language: domain.LanguageJavaScript},
	}

	engine := NewViolationEngine()
	violations := engine.Evaluate(reports, th)
	summary := engine.Summarize(reports, violations)

	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 1, summary.FilesWithViolations)
	assert.Equal(t, 3, summary.TotalViolations)
	assert.Equal(t, map[domain.MetricType]int{
		domain.MetricCyclomaticComplexity: 2,
		domain.MetricMaintainabilityIndex: 1,
	}, summary.ViolationsByType)
	assert.Equal(t, map[domain.Language]int{
		domain.LanguagePython:     2,
		domain.LanguageJavaScript: 1,
	}, summary.FilesByLanguage)
	assert.False(t, summary.Success)

	clean := engine.Summarize(reports, nil)
	assert.True(t, clean.Success)
	assert.Zero(t, clean.FilesWithViolations)
}
