package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ParseThresholdOverride parses "metric_type=value" and validates the value range
func ParseThresholdOverride(s string) (domain.MetricType, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, domain.NewConfigError(
			fmt.Sprintf("invalid threshold format: %s (expected metric_type=value)", s), nil)
	}

	mt, err := domain.ParseMetricType(name)
	if err != nil {
		return "", 0, domain.NewConfigError(fmt.Sprintf("invalid threshold override %q", s), err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, domain.NewConfigError(
			fmt.Sprintf("invalid threshold value: %s (must be a number)", strings.TrimSpace(raw)), err)
	}

	if err := ValidateThreshold(mt, value); err != nil {
		return "", 0, err
	}
	return mt, value, nil
}

// ParseThresholdOverrides parses repeated --threshold flags
func ParseThresholdOverrides(values []string) (map[domain.MetricType]float64, error) {
	out := make(map[domain.MetricType]float64, len(values))
	for _, v := range values {
		mt, value, err := ParseThresholdOverride(v)
		if err != nil {
			return nil, err
		}
		out[mt] = value
	}
	return out, nil
}

// defaultsSetters maps metric types to the DefaultsConfig field they override
var defaultsSetters = map[domain.MetricType]func(*DefaultsConfig, float64){
	domain.MetricCyclomaticComplexity: func(d *DefaultsConfig, v float64) { d.MaxCyclomaticComplexity = v },
	domain.MetricCognitiveComplexity:  func(d *DefaultsConfig, v float64) { d.MaxCognitiveComplexity = v },
	domain.MetricMaintainabilityIndex: func(d *DefaultsConfig, v float64) { d.MinMaintainabilityIndex = v },
	domain.MetricHalsteadVolume:       func(d *DefaultsConfig, v float64) { d.MaxHalsteadVolume = v },
	domain.MetricHalsteadDifficulty:   func(d *DefaultsConfig, v float64) { d.MaxHalsteadDifficulty = v },
	domain.MetricHalsteadEffort:       func(d *DefaultsConfig, v float64) { d.MaxHalsteadEffort = v },
}

// ApplyOverride returns a copy of cfg with the command-line override applied.
// The original configuration is left untouched.
func ApplyOverride(cfg *Config, o domain.ConfigOverride) (*Config, error) {
	out := cfg.Clone()

	for _, p := range append(append([]string(nil), o.IncludePatterns...), o.ExcludePatterns...) {
		if !doublestar.ValidatePattern(p) {
			return nil, domain.NewPatternError(p, nil)
		}
	}

	if o.DisableGitignore {
		out.UseGitignore = false
	}

	if o.ForceAnalyze {
		out.IgnorePatterns = nil
	} else {
		for _, p := range o.ExcludePatterns {
			if !contains(out.IgnorePatterns, p) {
				out.IgnorePatterns = append(out.IgnorePatterns, p)
			}
		}
	}

	for mt, value := range o.Thresholds {
		if err := ValidateThreshold(mt, value); err != nil {
			return nil, err
		}
		if set, ok := defaultsSetters[mt]; ok {
			set(&out.Defaults, value)
		}
		for i := range out.Languages {
			for j := range out.Languages[i].Metrics {
				if domain.MetricType(out.Languages[i].Metrics[j].Type) == mt {
					out.Languages[i].Metrics[j].Threshold = value
				}
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// OverrideMessages describes the applied overrides for display, in a stable order
func OverrideMessages(o domain.ConfigOverride) []string {
	var msgs []string
	if o.ForceAnalyze {
		msgs = append(msgs, "Force analyzing all files (ignoring exclusions)")
	}
	if o.DisableGitignore {
		msgs = append(msgs, "Ignoring .gitignore patterns")
	}
	if len(o.IncludePatterns) > 0 {
		msgs = append(msgs, "Force including: "+strings.Join(o.IncludePatterns, ", "))
	}
	if len(o.ExcludePatterns) > 0 {
		msgs = append(msgs, "Additional exclusions: "+strings.Join(o.ExcludePatterns, ", "))
	}

	keys := make([]string, 0, len(o.Thresholds))
	for mt := range o.Thresholds {
		keys = append(keys, string(mt))
	}
	sort.Strings(keys)
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("Threshold override: %s = %g", k, o.Thresholds[domain.MetricType(k)]))
	}
	return msgs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
