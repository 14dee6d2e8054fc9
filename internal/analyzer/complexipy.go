package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ComplexipyAnalyzer reports per-function cognitive complexity for Python
// files using the complexipy tool.
type ComplexipyAnalyzer struct {
	tool *externalTool
}

// NewComplexipyAnalyzer creates a complexipy-backed analyzer
func NewComplexipyAnalyzer(runner CommandRunner) *ComplexipyAnalyzer {
	return &ComplexipyAnalyzer{tool: newExternalTool("complexipy", "complexipy", runner)}
}

// Name returns the analyzer identifier
func (a *ComplexipyAnalyzer) Name() string {
	return "complexipy"
}

// IsAvailable reports whether the complexipy executable is on PATH
func (a *ComplexipyAnalyzer) IsAvailable() bool {
	return a.tool.isAvailable()
}

type complexipyFunction struct {
	Complexity float64 `json:"complexity"`
	FileName   string  `json:"file_name"`
	Function   string  `json:"function_name"`
	Path       string  `json:"path"`
	LineStart  int     `json:"line_start"`
}

// Analyze runs complexipy in a scratch directory, where it writes its JSON
// report, and converts the entries to function-scoped results.
func (a *ComplexipyAnalyzer) Analyze(ctx context.Context, path string) ([]domain.MetricResult, error) {
	if !a.IsAvailable() {
		return nil, a.tool.unavailable()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, domain.NewInvalidInputError("cannot resolve "+path, err)
	}

	workDir, err := os.MkdirTemp("", "antipasta-complexipy-")
	if err != nil {
		return nil, domain.NewAnalysisError("failed to create complexipy work directory", err)
	}
	defer os.RemoveAll(workDir)

	if _, err := a.tool.runner.Run(ctx, workDir, "complexipy", absPath, "--output-json", "--quiet"); err != nil {
		return nil, domain.NewAnalysisError(fmt.Sprintf("complexipy failed for %s", path), err)
	}

	data, err := readComplexipyReport(workDir)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	return parseComplexipy(data, path)
}

// readComplexipyReport loads the JSON file complexipy wrote into dir
func readComplexipyReport(dir string) ([]byte, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "complexipy*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("complexipy produced no JSON report")
	}
	sort.Strings(matches)
	return os.ReadFile(matches[0])
}

func parseComplexipy(data []byte, path string) ([]domain.MetricResult, error) {
	var functions []complexipyFunction
	if err := json.Unmarshal(data, &functions); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	results := make([]domain.MetricResult, 0, len(functions))
	for _, fn := range functions {
		results = append(results, domain.MetricResult{
			Type:  domain.MetricCognitiveComplexity,
			Value: fn.Complexity,
			Scope: domain.FunctionScope(fn.Function, fn.LineStart),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scope.Line < results[j].Scope.Line
	})
	return results, nil
}
