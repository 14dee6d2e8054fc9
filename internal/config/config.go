package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// Config is the top-level antipasta configuration
type Config struct {
	Defaults       DefaultsConfig   `mapstructure:"defaults" yaml:"defaults" toml:"defaults" json:"defaults"`
	Languages      []LanguageConfig `mapstructure:"languages" yaml:"languages" toml:"languages" json:"languages" validate:"dive"`
	IgnorePatterns []string         `mapstructure:"ignore_patterns" yaml:"ignore_patterns" toml:"ignore_patterns" json:"ignore_patterns"`
	UseGitignore   bool             `mapstructure:"use_gitignore" yaml:"use_gitignore" toml:"use_gitignore" json:"use_gitignore"`
}

// DefaultsConfig holds thresholds applied to every language that does not override them
type DefaultsConfig struct {
	MaxCyclomaticComplexity float64 `mapstructure:"max_cyclomatic_complexity" yaml:"max_cyclomatic_complexity" toml:"max_cyclomatic_complexity" json:"max_cyclomatic_complexity" validate:"gte=1,lte=50"`
	MaxCognitiveComplexity  float64 `mapstructure:"max_cognitive_complexity" yaml:"max_cognitive_complexity" toml:"max_cognitive_complexity" json:"max_cognitive_complexity" validate:"gte=1,lte=100"`
	MinMaintainabilityIndex float64 `mapstructure:"min_maintainability_index" yaml:"min_maintainability_index" toml:"min_maintainability_index" json:"min_maintainability_index" validate:"gte=0,lte=100"`
	MaxHalsteadVolume       float64 `mapstructure:"max_halstead_volume" yaml:"max_halstead_volume" toml:"max_halstead_volume" json:"max_halstead_volume" validate:"gte=0,lte=100000"`
	MaxHalsteadDifficulty   float64 `mapstructure:"max_halstead_difficulty" yaml:"max_halstead_difficulty" toml:"max_halstead_difficulty" json:"max_halstead_difficulty" validate:"gte=0,lte=100"`
	MaxHalsteadEffort       float64 `mapstructure:"max_halstead_effort" yaml:"max_halstead_effort" toml:"max_halstead_effort" json:"max_halstead_effort" validate:"gte=0,lte=1000000"`
}

// LanguageConfig holds per-language extensions and metric thresholds
type LanguageConfig struct {
	Name       string         `mapstructure:"name" yaml:"name" toml:"name" json:"name" validate:"required"`
	Extensions []string       `mapstructure:"extensions" yaml:"extensions,omitempty" toml:"extensions" json:"extensions,omitempty" validate:"dive,startswith=."`
	Metrics    []MetricConfig `mapstructure:"metrics" yaml:"metrics" toml:"metrics" json:"metrics" validate:"dive"`
}

// MetricConfig is one threshold entry in a language block
type MetricConfig struct {
	Type       string  `mapstructure:"type" yaml:"type" toml:"type" json:"type" validate:"required,metric_type"`
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold" toml:"threshold" json:"threshold"`
	Comparison string  `mapstructure:"comparison" yaml:"comparison" toml:"comparison" json:"comparison" validate:"omitempty,comparator"`
	Enabled    *bool   `mapstructure:"enabled" yaml:"enabled,omitempty" toml:"enabled" json:"enabled,omitempty"`
}

// IsEnabled reports whether the metric is enabled; unset means enabled
func (m MetricConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ComparisonOrDefault returns the comparator, defaulting to "<="
func (m MetricConfig) ComparisonOrDefault() domain.Comparator {
	if m.Comparison == "" {
		return domain.ComparatorLE
	}
	return domain.Comparator(m.Comparison)
}

// DefaultIgnorePatterns excludes test files from the quality gate
var DefaultIgnorePatterns = []string{"**/test_*.py", "**/*_test.py", "**/tests/**"}

// ConfigFileCandidates are searched, in order, in each directory while walking up
var ConfigFileCandidates = []string{
	".antipasta.yaml",
	".antipasta.yml",
	".antipasta.toml",
	".antipasta.json",
	"antipasta.yaml",
	"antipasta.yml",
}

// DefaultDefaults returns the built-in default thresholds
func DefaultDefaults() DefaultsConfig {
	return DefaultsConfig{
		MaxCyclomaticComplexity: domain.DefaultMaxCyclomaticComplexity,
		MaxCognitiveComplexity:  domain.DefaultMaxCognitiveComplexity,
		MinMaintainabilityIndex: domain.DefaultMinMaintainabilityIndex,
		MaxHalsteadVolume:       domain.DefaultMaxHalsteadVolume,
		MaxHalsteadDifficulty:   domain.DefaultMaxHalsteadDifficulty,
		MaxHalsteadEffort:       domain.DefaultMaxHalsteadEffort,
	}
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	disabled := false
	return &Config{
		Defaults: DefaultDefaults(),
		Languages: []LanguageConfig{
			{
				Name:       string(domain.LanguagePython),
				Extensions: []string{".py"},
				Metrics: []MetricConfig{
					{Type: string(domain.MetricCyclomaticComplexity), Threshold: domain.DefaultMaxCyclomaticComplexity, Comparison: "<="},
					{Type: string(domain.MetricMaintainabilityIndex), Threshold: domain.DefaultMinMaintainabilityIndex, Comparison: ">="},
					{Type: string(domain.MetricHalsteadVolume), Threshold: domain.DefaultMaxHalsteadVolume, Comparison: "<="},
					{Type: string(domain.MetricHalsteadDifficulty), Threshold: domain.DefaultMaxHalsteadDifficulty, Comparison: "<="},
					{Type: string(domain.MetricHalsteadEffort), Threshold: domain.DefaultMaxHalsteadEffort, Comparison: "<="},
					// complexipy is optional, so cognitive complexity is opt-in
					{Type: string(domain.MetricCognitiveComplexity), Threshold: domain.DefaultMaxCognitiveComplexity, Comparison: "<=", Enabled: &disabled},
				},
			},
		},
		IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
		UseGitignore:   true,
	}
}

// baseConfig is the starting point when a config file is present: the file
// decides languages and ignore patterns, defaults fill the rest.
func baseConfig() *Config {
	return &Config{
		Defaults:     DefaultDefaults(),
		UseGitignore: true,
	}
}

// LoadConfig loads configuration from file, or discovers one by walking up from startDir.
// With no path and nothing discovered the default configuration is returned.
func LoadConfig(configPath, startDir string) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile(startDir)
	}

	if configPath == "" {
		if cfg, found, err := LoadPyprojectConfig(startDir); err != nil {
			return nil, err
		} else if found {
			return cfg, nil
		}
		return DefaultConfig(), nil
	}

	if filepath.Base(configPath) == "pyproject.toml" {
		cfg, found, err := loadPyprojectFile(configPath)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, domain.NewConfigError(fmt.Sprintf("no [tool.antipasta] section in %s", configPath), nil)
		}
		return cfg, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("configuration file not found: %s", configPath), err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
	}

	cfg := baseConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, domain.NewConfigError("failed to unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile walks up from startDir looking for a known config file name
func FindConfigFile(startDir string) string {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		for _, candidate := range ConfigFileCandidates {
			path := filepath.Join(dir, candidate)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Validate validates the configuration values. All failures are config errors.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	for _, lang := range c.Languages {
		for _, metric := range lang.Metrics {
			mt := domain.MetricType(metric.Type)
			if err := ValidateThreshold(mt, metric.Threshold); err != nil {
				return domain.NewConfigError(
					fmt.Sprintf("languages[%s]: invalid threshold for %s", lang.Name, metric.Type), err)
			}
		}
	}

	return nil
}

// LanguageConfigFor returns the configuration block for lang, if any
func (c *Config) LanguageConfigFor(lang domain.Language) (LanguageConfig, bool) {
	for _, lc := range c.Languages {
		if strings.EqualFold(lc.Name, string(lang)) {
			return lc, true
		}
	}
	return LanguageConfig{}, false
}

// ExtraExtensions returns extension -> language pairs declared in the config
func (c *Config) ExtraExtensions() map[string]domain.Language {
	out := make(map[string]domain.Language)
	for _, lc := range c.Languages {
		for _, ext := range lc.Extensions {
			out[strings.ToLower(ext)] = domain.Language(strings.ToLower(lc.Name))
		}
	}
	return out
}

// Thresholds converts the configuration into a resolved threshold set.
// Defaults apply to every language; language blocks override them per metric.
func (c *Config) Thresholds() *domain.Thresholds {
	th := domain.NewThresholds()

	d := c.Defaults
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricCyclomaticComplexity, Threshold: d.MaxCyclomaticComplexity, Comparison: domain.ComparatorLE, Enabled: true})
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricMaintainabilityIndex, Threshold: d.MinMaintainabilityIndex, Comparison: domain.ComparatorGE, Enabled: true})
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricHalsteadVolume, Threshold: d.MaxHalsteadVolume, Comparison: domain.ComparatorLE, Enabled: true})
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricHalsteadDifficulty, Threshold: d.MaxHalsteadDifficulty, Comparison: domain.ComparatorLE, Enabled: true})
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricHalsteadEffort, Threshold: d.MaxHalsteadEffort, Comparison: domain.ComparatorLE, Enabled: true})
	th.SetDefault(domain.MetricThreshold{Type: domain.MetricCognitiveComplexity, Threshold: d.MaxCognitiveComplexity, Comparison: domain.ComparatorLE, Enabled: false})

	for _, lc := range c.Languages {
		lang := domain.Language(strings.ToLower(lc.Name))
		for _, m := range lc.Metrics {
			th.SetLanguage(lang, domain.MetricThreshold{
				Type:       domain.MetricType(m.Type),
				Threshold:  m.Threshold,
				Comparison: m.ComparisonOrDefault(),
				Enabled:    m.IsEnabled(),
			})
		}
	}

	return th
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	out := &Config{
		Defaults:       c.Defaults,
		IgnorePatterns: append([]string(nil), c.IgnorePatterns...),
		UseGitignore:   c.UseGitignore,
	}
	for _, lc := range c.Languages {
		copied := LanguageConfig{
			Name:       lc.Name,
			Extensions: append([]string(nil), lc.Extensions...),
		}
		for _, m := range lc.Metrics {
			mc := m
			if m.Enabled != nil {
				enabled := *m.Enabled
				mc.Enabled = &enabled
			}
			copied.Metrics = append(copied.Metrics, mc)
		}
		out.Languages = append(out.Languages, copied)
	}
	return out
}
