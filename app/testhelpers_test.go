package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/analyzer"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
)

// stubAnalyzer returns canned results keyed by file basename
type stubAnalyzer struct {
	results map[string][]domain.MetricResult
}

func (s *stubAnalyzer) Name() string      { return "stub" }
func (s *stubAnalyzer) IsAvailable() bool { return true }

func (s *stubAnalyzer) Analyze(_ context.Context, path string) ([]domain.MetricResult, error) {
	return s.results[filepath.Base(path)], nil
}

func ccResult(name string, line int, value float64) domain.MetricResult {
	return domain.MetricResult{
		Type:  domain.MetricCyclomaticComplexity,
		Value: value,
		Scope: domain.FunctionScope(name, line),
	}
}

func stubRegistry(results map[string][]domain.MetricResult) *analyzer.Registry {
	stub := &stubAnalyzer{results: results}
	r := analyzer.NewRegistry()
	r.Register(domain.LanguagePython, stub)
	r.Register(domain.LanguageJavaScript, stub)
	return r
}

func defaultConfigLoader(string, string) (*config.Config, error) {
	return config.DefaultConfig(), nil
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
