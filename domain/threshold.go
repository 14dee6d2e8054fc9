package domain

import "fmt"

// Comparator is the operator a metric value must satisfy against its threshold
type Comparator string

const (
	ComparatorLT Comparator = "<"
	ComparatorLE Comparator = "<="
	ComparatorGT Comparator = ">"
	ComparatorGE Comparator = ">="
	ComparatorEQ Comparator = "=="
	ComparatorNE Comparator = "!="
)

// AllComparators lists the supported comparators
var AllComparators = []Comparator{
	ComparatorLT, ComparatorLE, ComparatorGT, ComparatorGE, ComparatorEQ, ComparatorNE,
}

// ParseComparator validates a comparator string
func ParseComparator(s string) (Comparator, error) {
	for _, c := range AllComparators {
		if string(c) == s {
			return c, nil
		}
	}
	return "", NewConfigError(fmt.Sprintf("unknown comparator: %q", s), nil)
}

// Compare reports whether value satisfies the comparator against threshold.
// Unknown comparators never pass.
func (c Comparator) Compare(value, threshold float64) bool {
	switch c {
	case ComparatorLT:
		return value < threshold
	case ComparatorLE:
		return value <= threshold
	case ComparatorGT:
		return value > threshold
	case ComparatorGE:
		return value >= threshold
	case ComparatorEQ:
		return value == threshold
	case ComparatorNE:
		return value != threshold
	default:
		return false
	}
}

// MetricThreshold is the resolved limit for one metric type
type MetricThreshold struct {
	Type       MetricType `json:"type" yaml:"type"`
	Threshold  float64    `json:"threshold" yaml:"threshold"`
	Comparison Comparator `json:"comparison" yaml:"comparison"`
	Enabled    bool       `json:"enabled" yaml:"enabled"`
}

// Thresholds resolves the applicable MetricThreshold for a language and metric.
// Language-specific entries take precedence over defaults.
type Thresholds struct {
	Defaults  map[MetricType]MetricThreshold
	Languages map[Language]map[MetricType]MetricThreshold
}

// NewThresholds creates an empty threshold set
func NewThresholds() *Thresholds {
	return &Thresholds{
		Defaults:  make(map[MetricType]MetricThreshold),
		Languages: make(map[Language]map[MetricType]MetricThreshold),
	}
}

// SetDefault registers a default threshold
func (t *Thresholds) SetDefault(mt MetricThreshold) {
	t.Defaults[mt.Type] = mt
}

// SetLanguage registers a language-specific threshold
func (t *Thresholds) SetLanguage(lang Language, mt MetricThreshold) {
	if t.Languages[lang] == nil {
		t.Languages[lang] = make(map[MetricType]MetricThreshold)
	}
	t.Languages[lang][mt.Type] = mt
}

// Resolve returns the threshold applicable to metric for lang
func (t *Thresholds) Resolve(lang Language, metric MetricType) (MetricThreshold, bool) {
	if t == nil {
		return MetricThreshold{}, false
	}
	if byMetric, ok := t.Languages[lang]; ok {
		if mt, ok := byMetric[metric]; ok {
			return mt, true
		}
	}
	mt, ok := t.Defaults[metric]
	return mt, ok
}
