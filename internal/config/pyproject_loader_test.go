package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

func TestLoadPyprojectConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", `
[project]
name = "demo"

[tool.antipasta]
ignore_patterns = ["migrations/**"]
use_gitignore = false

[tool.antipasta.defaults]
max_cyclomatic_complexity = 15.0

[[tool.antipasta.languages]]
name = "python"
extensions = [".py"]

[[tool.antipasta.languages.metrics]]
type = "cyclomatic_complexity"
threshold = 12.0
comparison = "<"
`)
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg, found, err := LoadPyprojectConfig(sub)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, 15.0, cfg.Defaults.MaxCyclomaticComplexity)
	assert.Equal(t, domain.DefaultMaxHalsteadVolume, cfg.Defaults.MaxHalsteadVolume)
	assert.Equal(t, []string{"migrations/**"}, cfg.IgnorePatterns)
	assert.False(t, cfg.UseGitignore)

	cc, ok := cfg.Thresholds().Resolve(domain.LanguagePython, domain.MetricCyclomaticComplexity)
	require.True(t, ok)
	assert.Equal(t, 12.0, cc.Threshold)
	assert.Equal(t, domain.ComparatorLT, cc.Comparison)
}

func TestLoadPyprojectConfigWithoutSection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", "[tool.black]\nline-length = 100\n")

	_, found, err := LoadPyprojectConfig(root)
	require.NoError(t, err)
	assert.False(t, found)

	cfg, err := LoadConfig("", root)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "falls back to defaults")
}

func TestLoadPyprojectConfigInvalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", "[tool.antipasta.defaults]\nmin_maintainability_index = 120.0\n")

	_, _, err := LoadPyprojectConfig(root)
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeConfigError))
}

func TestLoadConfigExplicitPyproject(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "pyproject.toml", "[tool.other]\nx = 1\n")

	_, err := LoadConfig(path, root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no [tool.antipasta] section")
}
