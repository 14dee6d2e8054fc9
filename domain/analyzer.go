package domain

import "context"

// Analyzer extracts metrics from a single file. Analyze returns an error
// wrapping ErrAnalyzerUnavailable when the backing tool is missing.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, path string) ([]MetricResult, error)
	IsAvailable() bool
}

// AnalyzerRegistry maps a language to its ordered analyzers
type AnalyzerRegistry interface {
	For(lang Language) []Analyzer
	Languages() []Language
}

// LanguageDetector maps files to languages and applies ignore rules
type LanguageDetector interface {
	DetectLanguage(path string) (Language, bool)
	ShouldIgnore(path string) bool
	GroupByLanguage(files []string) (map[Language][]string, []string)
}

// Aggregator runs the registry over a file set
type Aggregator interface {
	Aggregate(ctx context.Context, files []string) (*AggregationResult, error)
}

// FileReader collects candidate source files from paths and glob patterns
type FileReader interface {
	// CollectSourceFiles expands files and directories, keeping first-seen order
	CollectSourceFiles(paths []string) ([]string, error)

	// ExpandPatterns resolves glob patterns relative to dir
	ExpandPatterns(dir string, patterns []string) ([]string, error)

	// ValidatePaths checks that every path exists
	ValidatePaths(paths []string) error
}
