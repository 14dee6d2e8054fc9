package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// PyprojectToml represents the structure of pyproject.toml
type PyprojectToml struct {
	Tool ToolConfig `toml:"tool"`
}

// ToolConfig represents the [tool] section
type ToolConfig struct {
	Antipasta *Config `toml:"antipasta"`
}

// LoadPyprojectConfig loads [tool.antipasta] from the nearest pyproject.toml.
// found is false when there is no pyproject.toml or it has no antipasta section.
func LoadPyprojectConfig(startDir string) (*Config, bool, error) {
	configPath, err := findPyprojectToml(startDir)
	if err != nil {
		return nil, false, nil
	}
	return loadPyprojectFile(configPath)
}

func loadPyprojectFile(configPath string) (*Config, bool, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, false, domain.NewConfigError(fmt.Sprintf("failed to read %s", configPath), err)
	}

	pyproject := PyprojectToml{Tool: ToolConfig{Antipasta: baseConfig()}}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, false, domain.NewConfigError(fmt.Sprintf("failed to parse %s", configPath), err)
	}

	if !hasAntipastaSection(data) {
		return nil, false, nil
	}

	cfg := pyproject.Tool.Antipasta
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// hasAntipastaSection reports whether the document declares [tool.antipasta]
func hasAntipastaSection(data []byte) bool {
	var probe struct {
		Tool map[string]any `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe.Tool["antipasta"]
	return ok
}

// findPyprojectToml walks up the directory tree to find pyproject.toml
func findPyprojectToml(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		configPath := filepath.Join(dir, "pyproject.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
