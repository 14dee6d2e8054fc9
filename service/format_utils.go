package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
)

// FormatUtils provides shared text formatting with optional color
type FormatUtils struct {
	noColor bool
}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils(noColor bool) *FormatUtils {
	return &FormatUtils{noColor: noColor}
}

func (f *FormatUtils) paint(c *color.Color, s string) string {
	if f.noColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Red renders s in red
func (f *FormatUtils) Red(s string) string {
	return f.paint(color.New(color.FgRed), s)
}

// Green renders s in green
func (f *FormatUtils) Green(s string) string {
	return f.paint(color.New(color.FgGreen), s)
}

// Yellow renders s in yellow
func (f *FormatUtils) Yellow(s string) string {
	return f.paint(color.New(color.FgYellow), s)
}

// Bold renders s in bold
func (f *FormatUtils) Bold(s string) string {
	return f.paint(color.New(color.Bold), s)
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(f.Bold(title) + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(strings.ToUpper(title) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatWarningsSection lists recoverable problems
func (f *FormatUtils) FormatWarningsSection(warnings []domain.Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("Warnings"))
	for _, w := range warnings {
		builder.WriteString(strings.Repeat(" ", SectionPadding))
		builder.WriteString(f.Yellow("! " + w.String()))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	return builder.String()
}
