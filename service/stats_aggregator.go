package service

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ParseMetricSelection expands family prefixes (loc, cyc, cog, hal, mai, all)
// and full metric names into an ordered, duplicate-free selection. Unknown
// names are returned separately. An empty request selects the loc family.
func ParseMetricSelection(names []string) (domain.MetricSelection, []string) {
	if len(names) == 0 {
		return domain.MetricSelection{
			Metrics:   append([]domain.MetricType(nil), domain.MetricFamilies[domain.FamilyLOC]...),
			Defaulted: true,
		}, nil
	}

	var selection domain.MetricSelection
	var unknown []string
	seen := make(map[domain.MetricType]bool)
	add := func(mt domain.MetricType) {
		if !seen[mt] {
			seen[mt] = true
			selection.Metrics = append(selection.Metrics, mt)
		}
	}

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if family, ok := domain.MetricFamilies[domain.MetricFamily(name)]; ok {
			for _, mt := range family {
				add(mt)
			}
			continue
		}
		mt, err := domain.ParseMetricType(name)
		if err != nil {
			unknown = append(unknown, raw)
			continue
		}
		add(mt)
	}

	return selection, unknown
}

// UnknownMetricWarnings turns unrecognized metric names into warnings
func UnknownMetricWarnings(unknown []string) []domain.Warning {
	var warnings []domain.Warning
	for _, name := range unknown {
		warnings = append(warnings, domain.Warning{
			Code:    domain.ErrCodeInvalidInput,
			Message: fmt.Sprintf("unknown metric %q; available prefixes: loc, cyc, cog, hal, mai, all", name),
		})
	}
	return warnings
}

// StatsAggregatorImpl groups file reports into statistical buckets
type StatsAggregatorImpl struct{}

// NewStatsAggregator creates a stats aggregator
func NewStatsAggregator() *StatsAggregatorImpl {
	return &StatsAggregatorImpl{}
}

// Overall computes a single bucket spanning every report
func (s *StatsAggregatorImpl) Overall(reports []domain.FileReport, selection domain.MetricSelection) domain.Bucket {
	b := newBucketBuilder(string(domain.GroupingOverall), 0)
	for i := range reports {
		b.add(&reports[i], selection)
	}
	return b.build()
}

// ByDirectory buckets reports by ancestor directory relative to the base.
// The requested depth is resolved once here; a file contributes to every
// ancestor bucket from depth 1 down to the effective depth. The "." bucket
// exists only when some file sits directly in the base and then spans all files.
func (s *StatsAggregatorImpl) ByDirectory(reports []domain.FileReport, selection domain.MetricSelection, opts domain.DirectoryOptions) []domain.Bucket {
	depth := domain.EffectiveDepth(opts.Depth)
	base := commonBase(reports, opts.BaseDir)

	builders := make(map[string]*bucketBuilder)
	get := func(key string, d int) *bucketBuilder {
		b, ok := builders[key]
		if !ok {
			b = newBucketBuilder(key, d)
			builders[key] = b
		}
		return b
	}

	rootHasFiles := false
	for i := range reports {
		parts := relativeDirParts(base, reports[i].Path)
		if len(parts) == 0 {
			rootHasFiles = true
		}
		limit := len(parts)
		if limit > depth {
			limit = depth
		}
		for d := 1; d <= limit; d++ {
			get(strings.Join(parts[:d], "/"), d).add(&reports[i], selection)
		}
	}

	if rootHasFiles {
		root := get(".", 0)
		for i := range reports {
			root.add(&reports[i], selection)
		}
	}

	keys := make([]string, 0, len(builders))
	for k := range builders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessPath(keys[i], keys[j]) })

	buckets := make([]domain.Bucket, 0, len(keys))
	for _, k := range keys {
		bucket := builders[k].build()
		bucket.Path = RenderPath(k, base, opts.PathStyle)
		buckets = append(buckets, bucket)
	}
	return buckets
}

// ByModule buckets reports by the key the resolver derives for each file.
// Dotted keys also contribute to their ancestor packages, bounded by MaxDepth.
func (s *StatsAggregatorImpl) ByModule(reports []domain.FileReport, selection domain.MetricSelection, resolver domain.ModuleResolver) []domain.Bucket {
	builders := make(map[string]*bucketBuilder)

	for i := range reports {
		key := resolver.ModuleFor(reports[i].Path, reports[i].Language)
		for _, k := range moduleAncestors(key) {
			b, ok := builders[k]
			if !ok {
				b = newBucketBuilder(k, strings.Count(k, ".")+1)
				builders[k] = b
			}
			b.add(&reports[i], selection)
		}
	}

	keys := make([]string, 0, len(builders))
	for k := range builders {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]domain.Bucket, 0, len(keys))
	for _, k := range keys {
		bucket := builders[k].build()
		bucket.Path = k
		buckets = append(buckets, bucket)
	}
	return buckets
}

// moduleAncestors returns a.b.c as [a, a.b, a.b.c]. Scoped npm names and the
// root key are kept whole.
func moduleAncestors(key string) []string {
	if key == domain.RootModuleKey || strings.HasPrefix(key, "@") || !strings.Contains(key, ".") {
		return []string{key}
	}
	parts := strings.Split(key, ".")
	if len(parts) > domain.MaxDepth {
		parts = parts[:domain.MaxDepth]
	}
	out := make([]string, 0, len(parts))
	for i := range parts {
		out = append(out, strings.Join(parts[:i+1], "."))
	}
	return out
}

// RenderPath formats a bucket key for display. The key is relative to base.
func RenderPath(key, base string, style domain.PathStyle) string {
	switch style {
	case domain.PathStyleFull:
		if key == "." {
			return filepath.ToSlash(base)
		}
		return filepath.ToSlash(filepath.Join(base, filepath.FromSlash(key)))
	case domain.PathStyleParent:
		parts := strings.Split(key, "/")
		if len(parts) > 2 {
			parts = parts[len(parts)-2:]
		}
		return strings.Join(parts, "/")
	default:
		return key
	}
}

// TruncatePath shortens path to width runes by dropping leading characters
// and prefixing "...".
func TruncatePath(path string, width int) string {
	runes := []rune(path)
	if width <= 3 || len(runes) <= width {
		return path
	}
	return "..." + string(runes[len(runes)-(width-3):])
}

// commonBase returns base when every report lies under it, otherwise the
// deepest directory shared by all reports.
func commonBase(reports []domain.FileReport, base string) string {
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
		inside := true
		for _, r := range reports {
			if !isUnder(base, absPath(filepath.Dir(r.Path))) {
				inside = false
				break
			}
		}
		if inside {
			return base
		}
	}

	var common string
	for i, r := range reports {
		dir := absPath(filepath.Dir(r.Path))
		if i == 0 {
			common = dir
			continue
		}
		for !isUnder(common, dir) {
			parent := filepath.Dir(common)
			if parent == common {
				break
			}
			common = parent
		}
	}
	return common
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func isUnder(base, dir string) bool {
	rel, err := filepath.Rel(base, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// relativeDirParts splits the file's directory, relative to base, into components
func relativeDirParts(base, path string) []string {
	rel, err := filepath.Rel(base, absPath(filepath.Dir(path)))
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// lessPath orders paths component-wise so parents precede their children
func lessPath(a, b string) bool {
	if a == "." || b == "." {
		return a == "." && b != "."
	}
	pa, pb := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

// bucketBuilder accumulates files and selected metric values for one bucket
type bucketBuilder struct {
	key       string
	depth     int
	files     map[string]bool
	functions int
	values    map[domain.MetricType][]float64
}

func newBucketBuilder(key string, depth int) *bucketBuilder {
	return &bucketBuilder{
		key:    key,
		depth:  depth,
		files:  make(map[string]bool),
		values: make(map[domain.MetricType][]float64),
	}
}

func (b *bucketBuilder) add(report *domain.FileReport, selection domain.MetricSelection) {
	if b.files[report.Path] {
		return
	}
	b.files[report.Path] = true
	b.functions += len(report.FunctionNames())

	for _, m := range report.Metrics {
		if selection.Includes(m.Type) {
			b.values[m.Type] = append(b.values[m.Type], m.Value)
		}
	}
}

func (b *bucketBuilder) build() domain.Bucket {
	bucket := domain.Bucket{
		Key:           b.key,
		Path:          b.key,
		Depth:         b.depth,
		FileCount:     len(b.files),
		FunctionCount: b.functions,
		Metrics:       make(map[domain.MetricType]domain.MetricStats, len(b.values)),
	}
	for mt, values := range b.values {
		bucket.Metrics[mt] = describe(values)
	}
	return bucket
}

// describe computes count, sum, mean, min, max and sample standard deviation
func describe(values []float64) domain.MetricStats {
	if len(values) == 0 {
		return domain.MetricStats{}
	}

	s := domain.MetricStats{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}
	for _, v := range values {
		s.Sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}

	if len(values) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	} else {
		s.Mean = values[0]
	}
	return s
}
