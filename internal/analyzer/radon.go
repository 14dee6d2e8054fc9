package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// RadonAnalyzer shells out to radon for cyclomatic complexity, maintainability
// index, Halstead and raw line metrics of Python files.
type RadonAnalyzer struct {
	tool *externalTool
}

// NewRadonAnalyzer creates a radon-backed analyzer
func NewRadonAnalyzer(runner CommandRunner) *RadonAnalyzer {
	return &RadonAnalyzer{tool: newExternalTool("radon", "radon", runner)}
}

// Name returns the analyzer identifier
func (a *RadonAnalyzer) Name() string {
	return "radon"
}

// IsAvailable reports whether the radon executable is on PATH
func (a *RadonAnalyzer) IsAvailable() bool {
	return a.tool.isAvailable()
}

// Analyze runs the four radon subcommands against file. Radon is given the
// absolute path and reports keyed by it.
func (a *RadonAnalyzer) Analyze(ctx context.Context, file string) ([]domain.MetricResult, error) {
	if !a.IsAvailable() {
		return nil, a.tool.unavailable()
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return nil, domain.NewInvalidInputError("cannot resolve "+file, err)
	}

	ccOut, err := a.run(ctx, path, "cc", "-j", path)
	if err != nil {
		return nil, err
	}
	functions, lines, err := parseRadonCC(ccOut, path)
	if err != nil {
		return nil, err
	}

	miOut, err := a.run(ctx, path, "mi", "-j", path)
	if err != nil {
		return nil, err
	}
	mi, err := parseRadonMI(miOut, path)
	if err != nil {
		return nil, err
	}

	halOut, err := a.run(ctx, path, "hal", "-f", "-j", path)
	if err != nil {
		return nil, err
	}
	hal, err := parseRadonHal(halOut, path, lines)
	if err != nil {
		return nil, err
	}

	rawOut, err := a.run(ctx, path, "raw", "-j", path)
	if err != nil {
		return nil, err
	}
	raw, err := parseRadonRaw(rawOut, path)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MetricResult, 0, len(functions)+len(hal)+len(raw)+1)
	results = append(results, raw...)
	results = append(results, mi...)
	results = append(results, hal...)
	results = append(results, functions...)
	return results, nil
}

func (a *RadonAnalyzer) run(ctx context.Context, path string, args ...string) ([]byte, error) {
	out, err := a.tool.runner.Run(ctx, filepath.Dir(path), "radon", args...)
	if err != nil {
		return nil, domain.NewAnalysisError(fmt.Sprintf("radon %s failed for %s", args[0], path), err)
	}
	return out, nil
}

// radonEntry decodes the single per-file value radon emits, keyed by path
func radonEntry(data []byte, path string) (json.RawMessage, error) {
	var byFile map[string]json.RawMessage
	if err := json.Unmarshal(data, &byFile); err != nil {
		return nil, domain.NewParseError(path, err)
	}
	if entry, ok := byFile[path]; ok {
		return entry, radonError(entry, path)
	}
	for _, entry := range byFile {
		return entry, radonError(entry, path)
	}
	return nil, nil
}

func radonError(entry json.RawMessage, path string) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(entry, &e) == nil && e.Error != "" {
		return domain.NewParseError(path, fmt.Errorf("%s", e.Error))
	}
	return nil
}

type radonBlock struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Line       int          `json:"lineno"`
	EndLine    int          `json:"endline"`
	Complexity float64      `json:"complexity"`
	Rank       string       `json:"rank"`
	ClassName  string       `json:"classname"`
	Methods    []radonBlock `json:"methods"`
}

// parseRadonCC returns per-function cyclomatic complexity and a name to line index.
// Class blocks contribute their methods as Class.method.
func parseRadonCC(data []byte, path string) ([]domain.MetricResult, map[string]int, error) {
	entry, err := radonEntry(data, path)
	if err != nil || entry == nil {
		return nil, nil, err
	}

	var blocks []radonBlock
	if err := json.Unmarshal(entry, &blocks); err != nil {
		return nil, nil, domain.NewParseError(path, err)
	}

	var results []domain.MetricResult
	lines := make(map[string]int)
	seen := make(map[domain.Scope]bool)
	add := func(name string, b radonBlock) {
		scope := domain.FunctionScope(name, b.Line)
		if seen[scope] {
			return
		}
		seen[scope] = true
		lines[name] = b.Line
		results = append(results, domain.MetricResult{
			Type:  domain.MetricCyclomaticComplexity,
			Value: b.Complexity,
			Scope: scope,
			Details: map[string]any{
				"rank":     b.Rank,
				"end_line": b.EndLine,
			},
		})
	}

	for _, b := range blocks {
		switch b.Type {
		case "class":
			for _, m := range b.Methods {
				add(b.Name+"."+m.Name, m)
			}
		case "method":
			if b.ClassName != "" {
				add(b.ClassName+"."+b.Name, b)
			} else {
				add(b.Name, b)
			}
		default:
			add(b.Name, b)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scope.Line < results[j].Scope.Line
	})
	return results, lines, nil
}

func parseRadonMI(data []byte, path string) ([]domain.MetricResult, error) {
	entry, err := radonEntry(data, path)
	if err != nil || entry == nil {
		return nil, err
	}

	var mi struct {
		MI   *float64 `json:"mi"`
		Rank string   `json:"rank"`
	}
	if err := json.Unmarshal(entry, &mi); err != nil {
		return nil, domain.NewParseError(path, err)
	}
	if mi.MI == nil {
		return nil, nil
	}

	return []domain.MetricResult{{
		Type:    domain.MetricMaintainabilityIndex,
		Value:   *mi.MI,
		Scope:   domain.FileScope(),
		Details: map[string]any{"rank": mi.Rank},
	}}, nil
}

type halsteadReport struct {
	Volume     float64 `json:"volume"`
	Difficulty float64 `json:"difficulty"`
	Effort     float64 `json:"effort"`
	Time       float64 `json:"time"`
	Bugs       float64 `json:"bugs"`
}

// decodeHalstead accepts both the object form and the positional list form
// (h1, h2, N1, N2, vocabulary, length, calculated_length, volume, difficulty,
// effort, time, bugs) that different radon releases emit.
func decodeHalstead(raw json.RawMessage) (halsteadReport, error) {
	var report halsteadReport
	if err := json.Unmarshal(raw, &report); err == nil {
		return report, nil
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return report, err
	}
	if len(values) < 12 {
		return report, fmt.Errorf("halstead report has %d fields, want 12", len(values))
	}
	return halsteadReport{
		Volume:     values[7],
		Difficulty: values[8],
		Effort:     values[9],
		Time:       values[10],
		Bugs:       values[11],
	}, nil
}

func halsteadMetrics(h halsteadReport, scope domain.Scope) []domain.MetricResult {
	return []domain.MetricResult{
		{Type: domain.MetricHalsteadVolume, Value: h.Volume, Scope: scope},
		{Type: domain.MetricHalsteadDifficulty, Value: h.Difficulty, Scope: scope},
		{Type: domain.MetricHalsteadEffort, Value: h.Effort, Scope: scope},
		{Type: domain.MetricHalsteadTime, Value: h.Time, Scope: scope},
		{Type: domain.MetricHalsteadBugs, Value: h.Bugs, Scope: scope},
	}
}

// parseRadonHal returns file totals followed by per-function values.
// Functions are placed at the line cc reported for the same name.
func parseRadonHal(data []byte, path string, lines map[string]int) ([]domain.MetricResult, error) {
	entry, err := radonEntry(data, path)
	if err != nil || entry == nil {
		return nil, err
	}

	var hal struct {
		Total     json.RawMessage            `json:"total"`
		Functions map[string]json.RawMessage `json:"functions"`
	}
	if err := json.Unmarshal(entry, &hal); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	var results []domain.MetricResult
	if len(hal.Total) > 0 {
		total, err := decodeHalstead(hal.Total)
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}
		results = append(results, halsteadMetrics(total, domain.FileScope())...)
	}

	names := make([]string, 0, len(hal.Functions))
	for name := range hal.Functions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if lines[names[i]] != lines[names[j]] {
			return lines[names[i]] < lines[names[j]]
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		h, err := decodeHalstead(hal.Functions[name])
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}
		results = append(results, halsteadMetrics(h, domain.FunctionScope(name, lines[name]))...)
	}
	return results, nil
}

func parseRadonRaw(data []byte, path string) ([]domain.MetricResult, error) {
	entry, err := radonEntry(data, path)
	if err != nil || entry == nil {
		return nil, err
	}

	var raw struct {
		LOC      float64 `json:"loc"`
		LLOC     float64 `json:"lloc"`
		SLOC     float64 `json:"sloc"`
		Comments float64 `json:"comments"`
		Multi    float64 `json:"multi"`
		Blank    float64 `json:"blank"`
	}
	if err := json.Unmarshal(entry, &raw); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	return []domain.MetricResult{
		fileMetric(domain.MetricLinesOfCode, raw.LOC),
		fileMetric(domain.MetricLogicalLinesOfCode, raw.LLOC),
		fileMetric(domain.MetricSourceLinesOfCode, raw.SLOC),
		fileMetric(domain.MetricCommentLines, raw.Comments+raw.Multi),
		fileMetric(domain.MetricBlankLines, raw.Blank),
	}, nil
}
