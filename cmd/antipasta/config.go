package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
)

// ConfigCommand groups configuration subcommands
type ConfigCommand struct {
	configFile string
	directory  string
	viewFormat string
}

// NewConfigCommand creates a new config command
func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{
		directory:  ".",
		viewFormat: "summary",
	}
}

// CreateCobraCommand creates the config command tree
func (c *ConfigCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file. With no argument the file discovered
from the current directory is validated.

Examples:
  antipasta config validate
  antipasta config validate .antipasta.yaml
  antipasta config validate pyproject.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runValidate,
	}

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Show the configuration antipasta would use, after discovery and defaults.

Formats:
  • summary: human-readable overview (default)
  • yaml: configuration as YAML
  • json: configuration as JSON
  • raw: the configuration file as written`,
		Args: cobra.NoArgs,
		RunE: c.runView,
	}
	viewCmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	viewCmd.Flags().StringVarP(&c.directory, "directory", "d", ".", "Directory to discover configuration from")
	viewCmd.Flags().StringVarP(&c.viewFormat, "format", "f", "summary", "Display format (summary, yaml, json, raw)")

	cmd.AddCommand(validateCmd, viewCmd)
	return cmd
}

func (c *ConfigCommand) runValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		path = config.FindConfigFile(".")
	}
	if path == "" {
		return domain.NewConfigError("no configuration file found; run 'antipasta init' to create one", nil)
	}

	cfg, err := config.LoadConfig(path, filepath.Dir(path))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file is valid: %s\n", path)
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Languages: %s\n", languageNames(cfg))
	fmt.Fprintf(out, "Ignore patterns: %d\n", len(cfg.IgnorePatterns))
	fmt.Fprintf(out, "Using .gitignore: %s\n", yesNo(cfg.UseGitignore))
	return nil
}

func (c *ConfigCommand) runView(cmd *cobra.Command, args []string) error {
	path := c.configFile
	if path == "" {
		path = config.FindConfigFile(c.directory)
	}

	cfg, err := config.LoadConfig(path, c.directory)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(c.viewFormat) {
	case "summary":
		writeConfigSummary(out, path, cfg)
		return nil
	case "yaml":
		data, err := config.MarshalYAML(cfg)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return domain.NewOutputError("failed to encode configuration", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "raw":
		if path == "" {
			return domain.NewConfigError("no configuration file found; showing raw content requires a file", nil)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.NewConfigError(fmt.Sprintf("failed to read %s", path), err)
		}
		_, err = out.Write(data)
		return err
	default:
		return domain.NewUnsupportedFormatError(c.viewFormat)
	}
}

// writeConfigSummary prints the effective thresholds, languages and ignore rules
func writeConfigSummary(w io.Writer, path string, cfg *config.Config) {
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(w, "Configuration: %s\n\n", source)

	d := cfg.Defaults
	fmt.Fprintln(w, "THRESHOLDS")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "  %-28s %g\n", "Max cyclomatic complexity", d.MaxCyclomaticComplexity)
	fmt.Fprintf(w, "  %-28s %g\n", "Max cognitive complexity", d.MaxCognitiveComplexity)
	fmt.Fprintf(w, "  %-28s %g\n", "Min maintainability index", d.MinMaintainabilityIndex)
	fmt.Fprintf(w, "  %-28s %g\n", "Max Halstead volume", d.MaxHalsteadVolume)
	fmt.Fprintf(w, "  %-28s %g\n", "Max Halstead difficulty", d.MaxHalsteadDifficulty)
	fmt.Fprintf(w, "  %-28s %g\n", "Max Halstead effort", d.MaxHalsteadEffort)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LANGUAGES")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	if len(cfg.Languages) == 0 {
		fmt.Fprintln(w, "  (none configured)")
	}
	for _, lc := range cfg.Languages {
		fmt.Fprintf(w, "  %s", lc.Name)
		if len(lc.Extensions) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(lc.Extensions, ", "))
		}
		fmt.Fprintln(w)
		for _, m := range lc.Metrics {
			state := ""
			if !m.IsEnabled() {
				state = " [disabled]"
			}
			fmt.Fprintf(w, "    %-26s %s %g%s\n", m.Type, m.ComparisonOrDefault(), m.Threshold, state)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "IGNORE PATTERNS (%d)\n", len(cfg.IgnorePatterns))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, p := range cfg.IgnorePatterns {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Using .gitignore: %s\n", yesNo(cfg.UseGitignore))
}

func languageNames(cfg *config.Config) string {
	if len(cfg.Languages) == 0 {
		return "none"
	}
	names := make([]string, 0, len(cfg.Languages))
	for _, lc := range cfg.Languages {
		names = append(names, lc.Name)
	}
	return strings.Join(names, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// NewConfigCmd creates and returns the config cobra command
func NewConfigCmd() *cobra.Command {
	return NewConfigCommand().CreateCobraCommand()
}
