package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// StatsView selects which part of a stats report is rendered
type StatsView string

const (
	ViewOverall     StatsView = "overall"
	ViewByDirectory StatsView = "by_directory"
	ViewByModule    StatsView = "by_module"
)

// AllStatsViews lists the views written by --format all
var AllStatsViews = []StatsView{ViewOverall, ViewByDirectory, ViewByModule}

// StatsFormatterImpl renders a StatsReport as a table, JSON or CSV.
// Rendering never recomputes statistics.
type StatsFormatterImpl struct{}

// NewStatsFormatter creates a stats formatter
func NewStatsFormatter() *StatsFormatterImpl {
	return &StatsFormatterImpl{}
}

// ViewFor returns the view matching a grouping mode
func ViewFor(grouping domain.GroupingMode) StatsView {
	switch grouping {
	case domain.GroupingDirectory:
		return ViewByDirectory
	case domain.GroupingModule:
		return ViewByModule
	default:
		return ViewOverall
	}
}

// Write renders the view selected by the report's grouping mode.
// JSON always carries the overall section alongside any grouped buckets.
func (f *StatsFormatterImpl) Write(report *domain.StatsReport, format domain.StatsFormat, writer io.Writer) error {
	switch format {
	case domain.StatsFormatJSON:
		return WriteJSON(writer, newStatsDocument(report, ""))
	case domain.StatsFormatTable, domain.StatsFormatCSV:
		return f.WriteView(report, ViewFor(report.Grouping), format, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteView renders a single view in the given format
func (f *StatsFormatterImpl) WriteView(report *domain.StatsReport, view StatsView, format domain.StatsFormat, writer io.Writer) error {
	switch format {
	case domain.StatsFormatJSON:
		return WriteJSON(writer, newStatsDocument(report, view))
	case domain.StatsFormatCSV:
		return writeStatsCSV(writer, report.Selection, viewBuckets(report, view))
	case domain.StatsFormatTable:
		var text string
		if view == ViewOverall {
			text = renderOverallTable(report)
		} else {
			text = renderBucketTable(report, viewBuckets(report, view), view == ViewByDirectory)
		}
		if _, err := io.WriteString(writer, text); err != nil {
			return domain.NewOutputError("failed to write table", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteAll writes every view in every format into dir, one file per pair:
// stats_<view>.json, stats_<view>.csv and stats_<view>.txt.
func (f *StatsFormatterImpl) WriteAll(ctx context.Context, report *domain.StatsReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.NewOutputError("failed to create output directory: "+dir, err)
	}

	type job struct {
		view   StatsView
		format domain.StatsFormat
		path   string
	}
	extensions := map[domain.StatsFormat]string{
		domain.StatsFormatJSON:  "json",
		domain.StatsFormatCSV:   "csv",
		domain.StatsFormatTable: "txt",
	}

	var jobs []job
	for _, view := range AllStatsViews {
		for _, format := range []domain.StatsFormat{domain.StatsFormatJSON, domain.StatsFormatCSV, domain.StatsFormatTable} {
			name := fmt.Sprintf("stats_%s.%s", view, extensions[format])
			jobs = append(jobs, job{view: view, format: format, path: filepath.Join(dir, name)})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := os.Create(j.path)
			if err != nil {
				return domain.NewOutputError("failed to create "+j.path, err)
			}
			defer file.Close()
			return f.WriteView(report, j.view, j.format, file)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(jobs))
	for i, j := range jobs {
		paths[i] = j.path
	}
	return paths, nil
}

func viewBuckets(report *domain.StatsReport, view StatsView) []domain.Bucket {
	switch view {
	case ViewByDirectory:
		return report.ByDirectory
	case ViewByModule:
		return report.ByModule
	default:
		return []domain.Bucket{report.Overall}
	}
}

// statsDocument is the JSON shape of a stats report
type statsDocument struct {
	Files       filesSection        `json:"files"`
	Functions   functionsSection    `json:"functions"`
	Metrics     metricsSection      `json:"metrics"`
	ByDirectory []bucketDocument    `json:"by_directory,omitempty"`
	ByModule    []bucketDocument    `json:"by_module,omitempty"`
	Selected    []domain.MetricType `json:"selected_metrics"`
	Depth       int                 `json:"depth,omitempty"`
	Warnings    []domain.Warning    `json:"warnings,omitempty"`
	GeneratedAt string              `json:"generated_at,omitempty"`
	Version     string              `json:"version,omitempty"`
}

type filesSection struct {
	Count    int      `json:"count"`
	TotalLOC *float64 `json:"total_loc,omitempty"`
	AvgLOC   *float64 `json:"avg_loc,omitempty"`
}

type functionsSection struct {
	Count int `json:"count"`
}

type metricsSection map[domain.MetricType]domain.MetricStats

type bucketDocument struct {
	Path          string         `json:"path"`
	Depth         int            `json:"depth"`
	FileCount     int            `json:"file_count"`
	FunctionCount int            `json:"function_count"`
	Metrics       metricsSection `json:"metrics"`
}

// newStatsDocument builds the JSON document. An empty view includes every
// grouped section present on the report.
func newStatsDocument(report *domain.StatsReport, view StatsView) statsDocument {
	doc := statsDocument{
		Files:       filesSection{Count: report.Overall.FileCount},
		Functions:   functionsSection{Count: report.Overall.FunctionCount},
		Metrics:     metricsSection(report.Overall.Metrics),
		Selected:    report.Selection.Metrics,
		Warnings:    report.Warnings,
		GeneratedAt: report.GeneratedAt,
		Version:     report.Version,
	}
	if doc.Metrics == nil {
		doc.Metrics = metricsSection{}
	}
	if loc, ok := report.Overall.Metrics[domain.MetricLinesOfCode]; ok {
		total, avg := loc.Sum, loc.Mean
		doc.Files.TotalLOC = &total
		doc.Files.AvgLOC = &avg
	}

	if view == "" || view == ViewByDirectory {
		doc.ByDirectory = bucketDocuments(report.ByDirectory)
		if len(doc.ByDirectory) > 0 {
			doc.Depth = report.EffectiveDepth
		}
	}
	if view == "" || view == ViewByModule {
		doc.ByModule = bucketDocuments(report.ByModule)
	}
	return doc
}

func bucketDocuments(buckets []domain.Bucket) []bucketDocument {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]bucketDocument, 0, len(buckets))
	for _, b := range buckets {
		metrics := metricsSection(b.Metrics)
		if metrics == nil {
			metrics = metricsSection{}
		}
		out = append(out, bucketDocument{
			Path:          b.Path,
			Depth:         b.Depth,
			FileCount:     b.FileCount,
			FunctionCount: b.FunctionCount,
			Metrics:       metrics,
		})
	}
	return out
}

// writeStatsCSV writes one row per bucket and selected metric. Buckets with
// no values for any selected metric still get a single row.
func writeStatsCSV(w io.Writer, selection domain.MetricSelection, buckets []domain.Bucket) error {
	cw := csv.NewWriter(w)
	header := []string{"path", "file_count", "function_count", "metric", "count", "sum", "mean", "min", "max", "stddev"}
	if err := cw.Write(header); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}

	for _, b := range buckets {
		base := []string{b.Path, strconv.Itoa(b.FileCount), strconv.Itoa(b.FunctionCount)}
		wrote := false
		for _, mt := range selection.Metrics {
			s, ok := b.Metrics[mt]
			if !ok {
				continue
			}
			row := append(append([]string(nil), base...),
				string(mt),
				strconv.Itoa(s.Count),
				formatFloat(s.Sum),
				formatFloat(s.Mean),
				formatFloat(s.Min),
				formatFloat(s.Max),
				formatFloat(s.StdDev),
			)
			if err := cw.Write(row); err != nil {
				return domain.NewOutputError("failed to write CSV row", err)
			}
			wrote = true
		}
		if !wrote {
			row := append(base, "", "", "", "", "", "", "")
			if err := cw.Write(row); err != nil {
				return domain.NewOutputError("failed to write CSV row", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return domain.NewOutputError("CSV writer error", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// humanFloat formats a value for tables with thousands separators
func humanFloat(v float64) string {
	if v == float64(int64(v)) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

func newStatsTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

func renderOverallTable(report *domain.StatsReport) string {
	var b strings.Builder
	overall := report.Overall
	fmt.Fprintf(&b, "Files: %s    Functions: %s\n\n",
		humanize.Comma(int64(overall.FileCount)), humanize.Comma(int64(overall.FunctionCount)))

	tbl := newStatsTable()
	tbl.AppendHeader(table.Row{"Metric", "Count", "Total", "Mean", "Min", "Max", "Std Dev"})
	for _, mt := range report.Selection.Metrics {
		s, ok := overall.Metrics[mt]
		if !ok {
			tbl.AppendRow(table.Row{mt.Title(), "-", "-", "-", "-", "-", "-"})
			continue
		}
		tbl.AppendRow(table.Row{
			mt.Title(),
			humanize.Comma(int64(s.Count)),
			humanFloat(s.Sum),
			humanFloat(s.Mean),
			humanFloat(s.Min),
			humanFloat(s.Max),
			humanFloat(s.StdDev),
		})
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n")
	return b.String()
}

// renderBucketTable lists buckets with the mean of each selected metric.
// Directory paths are truncated from the front to the display width.
func renderBucketTable(report *domain.StatsReport, buckets []domain.Bucket, truncate bool) string {
	tbl := newStatsTable()

	header := table.Row{"Location", "Files", "Functions"}
	for _, mt := range report.Selection.Metrics {
		header = append(header, "Avg "+mt.Title())
	}
	tbl.AppendHeader(header)

	for _, bucket := range buckets {
		path := bucket.Path
		if truncate {
			path = TruncatePath(path, domain.DisplayPathWidth)
		}
		row := table.Row{path, humanize.Comma(int64(bucket.FileCount)), humanize.Comma(int64(bucket.FunctionCount))}
		for _, mt := range report.Selection.Metrics {
			if s, ok := bucket.Metrics[mt]; ok {
				row = append(row, humanFloat(s.Mean))
			} else {
				row = append(row, "-")
			}
		}
		tbl.AppendRow(row)
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(buckets))})

	return tbl.Render() + "\n"
}
