package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/internal/version"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const locConfig = `
languages:
  - name: javascript
    metrics:
      - type: lines_of_code
        threshold: %d
        comparison: "<="
ignore_patterns: []
use_gitignore: false
`

func jsProject(t *testing.T, maxLines int) (string, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/app.js", "const a = 1;\nconst b = 2;\nconst c = 3;\nconst d = 4;\nconst e = 5;\n")
	cfg := writeFile(t, root, "quality.yaml", fmt.Sprintf(locConfig, maxLines))
	return root, cfg
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, version.Short())

	code, out, _ := runCLI(t, "version", "--short")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, version.Short()+"\n", out)

	code, out, _ = runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "antipasta")
}

func TestCheckExitCodes(t *testing.T) {
	t.Run("violations", func(t *testing.T) {
		root, cfg := jsProject(t, 2)
		code, out, _ := runCLI(t, "check", "-d", root, "-c", cfg, "--no-color", "--no-progress", filepath.Join(root, "src"))
		assert.Equal(t, exitViolations, code)
		assert.Contains(t, out, "app.js")
	})

	t.Run("clean", func(t *testing.T) {
		root, cfg := jsProject(t, 100)
		code, _, _ := runCLI(t, "check", "-d", root, "-c", cfg, "--no-color", "--no-progress", filepath.Join(root, "src"))
		assert.Equal(t, exitOK, code)
	})

	t.Run("threshold override", func(t *testing.T) {
		root, cfg := jsProject(t, 2)
		code, _, stderr := runCLI(t, "check", "-d", root, "-c", cfg, "--no-progress",
			"--threshold", "lines_of_code=50", filepath.Join(root, "src"))
		assert.Equal(t, exitOK, code)
		assert.Contains(t, stderr, "lines_of_code")
	})

	t.Run("json report", func(t *testing.T) {
		root, cfg := jsProject(t, 2)
		code, out, _ := runCLI(t, "check", "-d", root, "-c", cfg, "-f", "json", "--no-progress", filepath.Join(root, "src"))
		require.Equal(t, exitViolations, code)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Len(t, doc["violations"], 1)
	})

	t.Run("setup errors", func(t *testing.T) {
		root, cfg := jsProject(t, 2)
		tests := []struct {
			name string
			args []string
		}{
			{"missing config", []string{"check", "-c", filepath.Join(root, "nope.yaml"), root}},
			{"bad threshold", []string{"check", "-c", cfg, "--threshold", "unknown_metric=3", root}},
			{"bad format", []string{"check", "-c", cfg, "-f", "xml", root}},
			{"bad pattern", []string{"check", "-c", cfg, "--exclude", "src/[a-", root}},
			{"missing path", []string{"check", "-c", cfg, filepath.Join(root, "missing")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				code, out, stderr := runCLI(t, tt.args...)
				assert.Equal(t, exitSetupError, code)
				assert.Empty(t, out)
				assert.Contains(t, stderr, "Error [")
			})
		}
	})
}

func TestStatsCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/x.js", "let x = 1;\nlet y = 2;\n")
	writeFile(t, root, "b/y.js", "let z = 3;\n")

	code, out, _ := runCLI(t, "stats", "-d", root, "--by-directory", "--format", "json", "--no-progress", "--no-gitignore")
	require.Equal(t, exitOK, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	files := doc["files"].(map[string]any)
	assert.Equal(t, float64(2), files["count"])
	assert.Len(t, doc["by_directory"], 2)

	code, _, stderr := runCLI(t, "stats", "-d", root, "--by-directory", "--by-module")
	assert.Equal(t, exitSetupError, code)
	assert.NotEmpty(t, stderr)

	code, _, _ = runCLI(t, "stats", "-d", root, "--path-style", "diagonal")
	assert.Equal(t, exitSetupError, code)
}

func TestStatsMetricNames(t *testing.T) {
	usage := NewStatsCmd().Flags().Lookup("metric").Usage
	list := strings.TrimSuffix(usage[strings.Index(usage, ":")+1:], ", or a full metric name")
	for _, name := range strings.Split(list, ",") {
		_, unknown := service.ParseMetricSelection([]string{strings.TrimSpace(name)})
		assert.Empty(t, unknown, "advertised metric %q is rejected", name)
	}

	root := t.TempDir()
	writeFile(t, root, "a/x.js", "let x = 1;\n")

	tests := []struct {
		metric   string
		selected []any
		warns    bool
	}{
		{"cyc", []any{"cyclomatic_complexity"}, false},
		{"halstead_volume", []any{"halstead_volume"}, false},
		{"cc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			code, out, _ := runCLI(t, "stats", "-d", root, "-f", "json", "--no-progress", "-m", tt.metric)
			require.Equal(t, exitOK, code)

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &doc))
			if tt.selected == nil {
				assert.Nil(t, doc["selected_metrics"])
			} else {
				assert.Equal(t, tt.selected, doc["selected_metrics"])
			}
			_, hasWarnings := doc["warnings"]
			assert.Equal(t, tt.warns, hasWarnings)
		})
	}
}

func TestInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", ".antipasta.yaml")

	code, out, _ := runCLI(t, "init", "--config", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Configuration file created")
	assert.FileExists(t, path)

	code, _, stderr := runCLI(t, "init", "--config", path)
	assert.Equal(t, exitSetupError, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = runCLI(t, "init", "--config", path, "--force")
	assert.Equal(t, exitOK, code)

	code, out, _ = runCLI(t, "config", "validate", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Configuration file is valid")
	assert.Contains(t, out, "python")

	bad := writeFile(t, dir, "bad.yaml", "defaults:\n  max_cyclomatic_complexity: 500\n")
	code, _, stderr = runCLI(t, "config", "validate", bad)
	assert.Equal(t, exitSetupError, code)
	assert.Contains(t, stderr, "Error [")
}

func TestConfigView(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, ".antipasta.yaml", "ignore_patterns:\n  - \"migrations/**\"\nuse_gitignore: false\n")

	code, out, _ := runCLI(t, "config", "view", "-c", cfg)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "THRESHOLDS")
	assert.Contains(t, out, "IGNORE PATTERNS (1)")
	assert.Contains(t, out, "migrations/**")
	assert.Contains(t, out, "Using .gitignore: No")

	code, out, _ = runCLI(t, "config", "view", "-c", cfg, "-f", "json")
	require.Equal(t, exitOK, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["use_gitignore"])

	code, out, _ = runCLI(t, "config", "view", "-c", cfg, "-f", "raw")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "migrations/**")

	code, _, _ = runCLI(t, "config", "view", "-c", cfg, "-f", "toml")
	assert.Equal(t, exitSetupError, code)
}
