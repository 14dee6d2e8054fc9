package domain

import (
	"fmt"
	"strings"
)

// MetricType identifies a single code-quality metric
type MetricType string

const (
	MetricCyclomaticComplexity MetricType = "cyclomatic_complexity"
	MetricCognitiveComplexity  MetricType = "cognitive_complexity"
	MetricMaintainabilityIndex MetricType = "maintainability_index"
	MetricHalsteadVolume       MetricType = "halstead_volume"
	MetricHalsteadDifficulty   MetricType = "halstead_difficulty"
	MetricHalsteadEffort       MetricType = "halstead_effort"
	MetricHalsteadTime         MetricType = "halstead_time"
	MetricHalsteadBugs         MetricType = "halstead_bugs"
	MetricLinesOfCode          MetricType = "lines_of_code"
	MetricLogicalLinesOfCode   MetricType = "logical_lines_of_code"
	MetricSourceLinesOfCode    MetricType = "source_lines_of_code"
	MetricCommentLines         MetricType = "comment_lines"
	MetricBlankLines           MetricType = "blank_lines"
)

// AllMetricTypes lists every metric in canonical display order.
var AllMetricTypes = []MetricType{
	MetricCyclomaticComplexity,
	MetricCognitiveComplexity,
	MetricMaintainabilityIndex,
	MetricHalsteadVolume,
	MetricHalsteadDifficulty,
	MetricHalsteadEffort,
	MetricHalsteadTime,
	MetricHalsteadBugs,
	MetricLinesOfCode,
	MetricLogicalLinesOfCode,
	MetricSourceLinesOfCode,
	MetricCommentLines,
	MetricBlankLines,
}

// ParseMetricType converts a metric name to a MetricType
func ParseMetricType(name string) (MetricType, error) {
	normalized := MetricType(strings.ToLower(strings.TrimSpace(name)))
	for _, mt := range AllMetricTypes {
		if mt == normalized {
			return mt, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown metric type: %s", name), nil)
}

// Title returns a human-readable label such as "Cyclomatic Complexity".
func (m MetricType) Title() string {
	words := strings.Split(string(m), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MetricFamily is a named group of metrics selectable as a unit.
type MetricFamily string

const (
	FamilyLOC             MetricFamily = "loc"
	FamilyCyclomatic      MetricFamily = "cyc"
	FamilyCognitive       MetricFamily = "cog"
	FamilyHalstead        MetricFamily = "hal"
	FamilyMaintainability MetricFamily = "mai"
	FamilyAll             MetricFamily = "all"
)

// MetricFamilies maps each family prefix to its member metrics.
var MetricFamilies = map[MetricFamily][]MetricType{
	FamilyLOC: {
		MetricLinesOfCode,
		MetricLogicalLinesOfCode,
		MetricSourceLinesOfCode,
		MetricCommentLines,
		MetricBlankLines,
	},
	FamilyCyclomatic: {MetricCyclomaticComplexity},
	FamilyCognitive:  {MetricCognitiveComplexity},
	FamilyHalstead: {
		MetricHalsteadVolume,
		MetricHalsteadDifficulty,
		MetricHalsteadEffort,
		MetricHalsteadTime,
		MetricHalsteadBugs,
	},
	FamilyMaintainability: {MetricMaintainabilityIndex},
	FamilyAll:             AllMetricTypes,
}

// ScopeKind distinguishes file-level from function-level measurements
type ScopeKind string

const (
	ScopeKindFile     ScopeKind = "file"
	ScopeKindFunction ScopeKind = "function"
)

// Scope is a tagged variant: either the whole file, or a named function
// starting at Line. Name and Line are meaningful only for function scope.
type Scope struct {
	Kind ScopeKind `json:"kind" yaml:"kind"`
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Line int       `json:"line,omitempty" yaml:"line,omitempty"`
}

// FileScope returns the file-level scope
func FileScope() Scope {
	return Scope{Kind: ScopeKindFile}
}

// FunctionScope returns a scope for the function name declared at line
func FunctionScope(name string, line int) Scope {
	return Scope{Kind: ScopeKindFunction, Name: name, Line: line}
}

// IsFunction reports whether the scope is a function
func (s Scope) IsFunction() bool {
	return s.Kind == ScopeKindFunction
}

func (s Scope) String() string {
	if s.IsFunction() {
		return fmt.Sprintf("%s:%d", s.Name, s.Line)
	}
	return string(ScopeKindFile)
}

// MetricResult is a single measured value
type MetricResult struct {
	Type    MetricType     `json:"type" yaml:"type"`
	Value   float64        `json:"value" yaml:"value"`
	Scope   Scope          `json:"scope" yaml:"scope"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Language is a language identifier produced by the detector
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageUnknown    Language = "unknown"
)

// FileReport holds every metric gathered for one file. Reports are produced
// once by the aggregator and must be treated as read-only afterwards.
type FileReport struct {
	Path     string         `json:"file" yaml:"file"`
	Language Language       `json:"language" yaml:"language"`
	Metrics  []MetricResult `json:"metrics" yaml:"metrics"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// MetricsOfType returns the results of the given type in report order
func (r FileReport) MetricsOfType(mt MetricType) []MetricResult {
	var out []MetricResult
	for _, m := range r.Metrics {
		if m.Type == mt {
			out = append(out, m)
		}
	}
	return out
}

// FileMetric returns the file-scoped value of mt if the report has one
func (r FileReport) FileMetric(mt MetricType) (float64, bool) {
	for _, m := range r.Metrics {
		if m.Type == mt && !m.Scope.IsFunction() {
			return m.Value, true
		}
	}
	return 0, false
}

// FunctionNames returns the distinct function scopes in the report, keyed by name and line
func (r FileReport) FunctionNames() []Scope {
	seen := make(map[Scope]bool)
	var out []Scope
	for _, m := range r.Metrics {
		if !m.Scope.IsFunction() {
			continue
		}
		key := Scope{Kind: ScopeKindFunction, Name: m.Scope.Name, Line: m.Scope.Line}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// Warning is a recoverable problem reported alongside partial results
type Warning struct {
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Analyzer string `json:"analyzer,omitempty" yaml:"analyzer,omitempty"`
	Code     string `json:"code" yaml:"code"`
	Message  string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	var b strings.Builder
	if w.File != "" {
		b.WriteString(w.File)
		b.WriteString(": ")
	}
	if w.Analyzer != "" {
		b.WriteString("[")
		b.WriteString(w.Analyzer)
		b.WriteString("] ")
	}
	b.WriteString(w.Message)
	return b.String()
}

// AggregationResult is the output of a single aggregator run
type AggregationResult struct {
	Reports  []FileReport
	Warnings []Warning
}
