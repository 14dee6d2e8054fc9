package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// OutputFormatterImpl renders check results
type OutputFormatterImpl struct {
	quiet   bool
	noColor bool
}

// NewOutputFormatter creates a check output formatter. Quiet text output
// prints only violations and the final verdict.
func NewOutputFormatter(quiet, noColor bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{quiet: quiet, noColor: noColor}
}

// Write writes the formatted response to the writer
func (f *OutputFormatterImpl) Write(response *domain.CheckResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		if _, err := io.WriteString(writer, f.formatText(response)); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	case domain.OutputFormatJSON:
		return WriteJSON(writer, newCheckDocument(response))
	case domain.OutputFormatYAML:
		return WriteYAML(writer, newCheckDocument(response))
	case domain.OutputFormatCSV:
		return writeViolationsCSV(writer, response.Violations)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

const rule = 70

func (f *OutputFormatterImpl) formatText(response *domain.CheckResponse) string {
	var b strings.Builder
	utils := NewFormatUtils(f.noColor)
	summary := response.Summary

	if !f.quiet {
		b.WriteString(utils.FormatWarningsSection(response.Warnings))

		b.WriteString(strings.Repeat("=", rule) + "\n")
		b.WriteString(utils.Bold("METRICS ANALYSIS SUMMARY") + "\n")
		b.WriteString(strings.Repeat("=", rule) + "\n")
		fmt.Fprintf(&b, "Total files analyzed: %d\n", summary.TotalFiles)
		fmt.Fprintf(&b, "Files with violations: %d\n", summary.FilesWithViolations)
		fmt.Fprintf(&b, "Total violations: %d\n", summary.TotalViolations)

		if len(summary.ViolationsByType) > 0 {
			b.WriteString("\nViolations by type:\n")
			for _, mt := range sortedMetricCounts(summary.ViolationsByType) {
				fmt.Fprintf(&b, "  - %s: %d\n", mt, summary.ViolationsByType[mt])
			}
		}
	}

	if len(response.Violations) > 0 {
		b.WriteString("\n" + strings.Repeat("-", rule) + "\n")
		b.WriteString("VIOLATIONS FOUND:\n")
		b.WriteString(strings.Repeat("-", rule) + "\n")
		for _, v := range response.Violations {
			b.WriteString(utils.Red("x "+v.Message()) + "\n")
		}
		b.WriteString("\n" + utils.Red("Code quality check FAILED") + "\n")
	} else if !f.quiet {
		b.WriteString("\n" + utils.Green("Code quality check PASSED") + "\n")
	}

	return b.String()
}

// sortedMetricCounts orders metrics canonically
func sortedMetricCounts(counts map[domain.MetricType]int) []domain.MetricType {
	order := make(map[domain.MetricType]int, len(domain.AllMetricTypes))
	for i, mt := range domain.AllMetricTypes {
		order[mt] = i
	}
	keys := make([]domain.MetricType, 0, len(counts))
	for mt := range counts {
		keys = append(keys, mt)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}

type checkDocument struct {
	Summary     domain.ViolationSummary `json:"summary" yaml:"summary"`
	Reports     []reportDocument        `json:"reports" yaml:"reports"`
	Warnings    []domain.Warning        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Skipped     []string                `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	GeneratedAt string                  `json:"generated_at" yaml:"generated_at"`
	Version     string                  `json:"version" yaml:"version"`
}

type reportDocument struct {
	File       string                `json:"file" yaml:"file"`
	Language   domain.Language       `json:"language" yaml:"language"`
	Metrics    []domain.MetricResult `json:"metrics" yaml:"metrics"`
	Violations []violationDocument   `json:"violations" yaml:"violations"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type violationDocument struct {
	Type       domain.MetricType `json:"type" yaml:"type"`
	Message    string            `json:"message" yaml:"message"`
	Scope      domain.Scope      `json:"scope" yaml:"scope"`
	Value      float64           `json:"value" yaml:"value"`
	Threshold  float64           `json:"threshold" yaml:"threshold"`
	Comparison domain.Comparator `json:"comparison" yaml:"comparison"`
}

func newCheckDocument(response *domain.CheckResponse) checkDocument {
	byFile := make(map[string][]violationDocument)
	for _, v := range response.Violations {
		byFile[v.File] = append(byFile[v.File], violationDocument{
			Type:       v.MetricType,
			Message:    v.Message(),
			Scope:      v.Scope,
			Value:      v.Value,
			Threshold:  v.Threshold,
			Comparison: v.Comparator,
		})
	}

	reports := make([]reportDocument, 0, len(response.Reports))
	for _, r := range response.Reports {
		metrics := r.Metrics
		if metrics == nil {
			metrics = []domain.MetricResult{}
		}
		violations := byFile[r.Path]
		if violations == nil {
			violations = []violationDocument{}
		}
		reports = append(reports, reportDocument{
			File:       r.Path,
			Language:   r.Language,
			Metrics:    metrics,
			Violations: violations,
			Error:      r.Error,
		})
	}

	return checkDocument{
		Summary:     response.Summary,
		Reports:     reports,
		Warnings:    response.Warnings,
		Skipped:     response.Skipped,
		GeneratedAt: response.GeneratedAt,
		Version:     response.Version,
	}
}

func writeViolationsCSV(w io.Writer, violations []domain.ViolationRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"file", "language", "metric", "function", "line", "value", "threshold", "comparison"}
	if err := cw.Write(header); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}

	for _, v := range violations {
		line := ""
		if v.Scope.Line > 0 {
			line = strconv.Itoa(v.Scope.Line)
		}
		row := []string{
			v.File,
			string(v.Language),
			string(v.MetricType),
			v.Scope.Name,
			line,
			formatFloat(v.Value),
			formatFloat(v.Threshold),
			string(v.Comparator),
		}
		if err := cw.Write(row); err != nil {
			return domain.NewOutputError("failed to write CSV row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return domain.NewOutputError("CSV writer error", err)
	}
	return nil
}
