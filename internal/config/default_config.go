package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.yaml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the domain package.
type DefaultConfigValues struct {
	MaxCyclomatic         float64
	MaxCognitive          float64
	MinMaintainability    float64
	MaxHalsteadVolume     float64
	MaxHalsteadDifficulty float64
	MaxHalsteadEffort     float64

	CyclomaticRange      string
	CognitiveRange       string
	MaintainabilityRange string

	IgnorePatterns []string
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		MaxCyclomatic:         domain.DefaultMaxCyclomaticComplexity,
		MaxCognitive:          domain.DefaultMaxCognitiveComplexity,
		MinMaintainability:    domain.DefaultMinMaintainabilityIndex,
		MaxHalsteadVolume:     domain.DefaultMaxHalsteadVolume,
		MaxHalsteadDifficulty: domain.DefaultMaxHalsteadDifficulty,
		MaxHalsteadEffort:     domain.DefaultMaxHalsteadEffort,

		CyclomaticRange:      RangeDescription(domain.MetricCyclomaticComplexity),
		CognitiveRange:       RangeDescription(domain.MetricCognitiveComplexity),
		MaintainabilityRange: RangeDescription(domain.MetricMaintainabilityIndex),

		IgnorePatterns: DefaultIgnorePatterns,
	}
}

// GenerateDefaultConfigYAML renders the default config template with domain values
func GenerateDefaultConfigYAML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// LoadDefaultConfigFromYAML parses the rendered template back into a Config
func LoadDefaultConfigFromYAML() (*Config, error) {
	rendered, err := GenerateDefaultConfigYAML()
	if err != nil {
		return nil, err
	}

	cfg := baseConfig()
	if err := yaml.Unmarshal([]byte(rendered), cfg); err != nil {
		return nil, domain.NewConfigError("failed to parse default config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MarshalYAML renders cfg as YAML, used by "config view"
func MarshalYAML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, domain.NewOutputError("failed to encode configuration", err)
	}
	if err := enc.Close(); err != nil {
		return nil, domain.NewOutputError("failed to encode configuration", err)
	}
	return buf.Bytes(), nil
}
