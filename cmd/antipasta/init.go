package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: ".antipasta.yaml",
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize antipasta configuration file",
		Long: `Create a .antipasta.yaml file with the default thresholds, ignore
patterns and comments describing each setting.

Examples:
  # Create .antipasta.yaml in the current directory
  antipasta init

  # Write to a custom location
  antipasta init --config configs/quality.yaml

  # Overwrite an existing file
  antipasta init --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVar(&i.force, "force", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", ".antipasta.yaml", "Configuration file path")

	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return domain.NewInvalidInputError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath), nil)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create directory %s", configDir), err)
	}

	content, err := config.GenerateDefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return domain.NewOutputError("failed to write configuration file", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created: %s\n", relPath)
	fmt.Fprintf(out, "\nNext steps:\n")
	fmt.Fprintf(out, "  1. Adjust thresholds in %s\n", relPath)
	fmt.Fprintf(out, "  2. Run 'antipasta config validate %s'\n", relPath)
	fmt.Fprintf(out, "  3. Run 'antipasta check' to enforce them\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
