package domain

import (
	"fmt"
	"io"
	"strings"
)

// MaxDepth bounds directory grouping when no explicit depth is requested
const MaxDepth = 20

// DisplayPathWidth is the column width for rendered bucket paths
const DisplayPathWidth = 30

// RootModuleKey groups files that do not belong to any package
const RootModuleKey = "<root>"

// EffectiveDepth translates a requested grouping depth into a concrete bound.
// Zero or negative means "unlimited" and becomes MaxDepth; larger values are capped.
func EffectiveDepth(requested int) int {
	if requested <= 0 || requested > MaxDepth {
		return MaxDepth
	}
	return requested
}

// GroupingMode selects how statistics are bucketed
type GroupingMode string

const (
	GroupingOverall   GroupingMode = "overall"
	GroupingDirectory GroupingMode = "directory"
	GroupingModule    GroupingMode = "module"
)

// PathStyle controls how directory bucket paths are displayed
type PathStyle string

const (
	PathStyleRelative PathStyle = "relative"
	PathStyleParent   PathStyle = "parent"
	PathStyleFull     PathStyle = "full"
)

// ParsePathStyle validates a path style name
func ParsePathStyle(s string) (PathStyle, error) {
	switch PathStyle(strings.ToLower(s)) {
	case PathStyleRelative, "":
		return PathStyleRelative, nil
	case PathStyleParent:
		return PathStyleParent, nil
	case PathStyleFull:
		return PathStyleFull, nil
	default:
		return "", NewInvalidInputError(fmt.Sprintf("unknown path style: %s", s), nil)
	}
}

// StatsFormat is the rendering target for statistics
type StatsFormat string

const (
	StatsFormatTable StatsFormat = "table"
	StatsFormatJSON  StatsFormat = "json"
	StatsFormatCSV   StatsFormat = "csv"
	StatsFormatAll   StatsFormat = "all"
)

// ParseStatsFormat validates a stats output format
func ParseStatsFormat(s string) (StatsFormat, error) {
	switch StatsFormat(strings.ToLower(s)) {
	case StatsFormatTable, "":
		return StatsFormatTable, nil
	case StatsFormatJSON:
		return StatsFormatJSON, nil
	case StatsFormatCSV:
		return StatsFormatCSV, nil
	case StatsFormatAll:
		return StatsFormatAll, nil
	default:
		return "", NewUnsupportedFormatError(s)
	}
}

// MetricSelection is the exact set of metrics a stats request reports on
type MetricSelection struct {
	Metrics   []MetricType
	Defaulted bool
}

// Includes reports whether mt is selected
func (s MetricSelection) Includes(mt MetricType) bool {
	for _, m := range s.Metrics {
		if m == mt {
			return true
		}
	}
	return false
}

// MetricStats summarises the values of one metric within a bucket
type MetricStats struct {
	Count  int     `json:"count" yaml:"count"`
	Sum    float64 `json:"sum" yaml:"sum"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// Bucket is one aggregation group
type Bucket struct {
	Key           string                     `json:"key" yaml:"key"`
	Path          string                     `json:"path" yaml:"path"`
	Depth         int                        `json:"depth" yaml:"depth"`
	FileCount     int                        `json:"file_count" yaml:"file_count"`
	FunctionCount int                        `json:"function_count" yaml:"function_count"`
	Metrics       map[MetricType]MetricStats `json:"metrics" yaml:"metrics"`
}

// StatsRequest represents a request for statistics collection
type StatsRequest struct {
	Patterns   []string
	Directory  string
	ConfigPath string

	Grouping  GroupingMode
	Depth     int
	PathStyle PathStyle
	Metrics   []string

	Format       StatsFormat
	OutputPath   string
	OutputWriter io.Writer
	ShowProgress bool
	Overrides    ConfigOverride
}

// StatsReport is one aggregation pass, renderable into several documents
type StatsReport struct {
	Grouping       GroupingMode
	Selection      MetricSelection
	EffectiveDepth int
	PathStyle      PathStyle
	BaseDir        string

	Overall     Bucket
	ByDirectory []Bucket
	ByModule    []Bucket

	Breakdown   []LanguageBreakdown
	Warnings    []Warning
	GeneratedAt string
	Version     string
}

// LanguageBreakdown counts analyzable and ignored files per language
type LanguageBreakdown struct {
	Language Language `json:"language" yaml:"language"`
	Files    int      `json:"files" yaml:"files"`
	Ignored  int      `json:"ignored" yaml:"ignored"`
	Status   string   `json:"status" yaml:"status"`
}

// DirectoryOptions configures directory grouping
type DirectoryOptions struct {
	BaseDir   string
	Depth     int
	PathStyle PathStyle
}

// ModuleResolver derives the module key for a file
type ModuleResolver interface {
	ModuleFor(path string, lang Language) string
}

// StatsAggregator groups reports into buckets
type StatsAggregator interface {
	Overall(reports []FileReport, selection MetricSelection) Bucket
	ByDirectory(reports []FileReport, selection MetricSelection, opts DirectoryOptions) []Bucket
	ByModule(reports []FileReport, selection MetricSelection, resolver ModuleResolver) []Bucket
}

// StatsFormatter renders a stats report
type StatsFormatter interface {
	Write(report *StatsReport, format StatsFormat, writer io.Writer) error
}
