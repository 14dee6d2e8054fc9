package detector

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/src-d/enry/v2"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ExtensionMap maps lowercase file extensions to languages
var ExtensionMap = map[string]domain.Language{
	".py":    domain.LanguagePython,
	".pyw":   domain.LanguagePython,
	".pyi":   domain.LanguagePython,
	".ipynb": domain.LanguagePython,
	".js":    domain.LanguageJavaScript,
	".mjs":   domain.LanguageJavaScript,
	".cjs":   domain.LanguageJavaScript,
	".jsx":   domain.LanguageJavaScript,
	".ts":    domain.LanguageTypeScript,
	".tsx":   domain.LanguageTypeScript,
	".mts":   domain.LanguageTypeScript,
	".cts":   domain.LanguageTypeScript,
}

// enryLanguages maps linguist names to supported languages
var enryLanguages = map[string]domain.Language{
	"Python":     domain.LanguagePython,
	"JavaScript": domain.LanguageJavaScript,
	"TypeScript": domain.LanguageTypeScript,
	"TSX":        domain.LanguageTypeScript,
}

// shebangProbeSize is how much of an extensionless file is read to find a shebang
const shebangProbeSize = 256

// Options configures a LanguageDetector
type Options struct {
	// BaseDir anchors ignore patterns; files outside it are matched by name only
	BaseDir string

	// IgnorePatterns are gitignore-style patterns
	IgnorePatterns []string

	// IncludePatterns force-include files that would otherwise be ignored
	IncludePatterns []string

	// UseGitignore adds patterns from <BaseDir>/.gitignore
	UseGitignore bool

	// ForceAnalyze disables every ignore pattern
	ForceAnalyze bool

	// Extensions adds or overrides extension mappings
	Extensions map[string]domain.Language
}

// LanguageDetector maps files to languages and applies ignore rules.
// It holds no global state; every instance carries its own patterns.
type LanguageDetector struct {
	baseDir    string
	extensions map[string]domain.Language
	patterns   []string
	matcher    *ignore.GitIgnore
	includes   []string
	force      bool
}

// New creates a detector. Malformed patterns are reported as pattern errors.
func New(opts Options) (*LanguageDetector, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, domain.NewInvalidInputError("cannot resolve base directory", err)
	}

	extensions := make(map[string]domain.Language, len(ExtensionMap)+len(opts.Extensions))
	for ext, lang := range ExtensionMap {
		extensions[ext] = lang
	}
	for ext, lang := range opts.Extensions {
		extensions[strings.ToLower(ext)] = lang
	}

	patterns := append([]string(nil), opts.IgnorePatterns...)
	if opts.UseGitignore && !opts.ForceAnalyze {
		lines, err := ReadGitignore(filepath.Join(absBase, ".gitignore"))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, lines...)
	}

	for _, p := range patterns {
		if err := ValidatePattern(p); err != nil {
			return nil, err
		}
	}
	for _, p := range opts.IncludePatterns {
		if err := ValidatePattern(p); err != nil {
			return nil, err
		}
	}

	d := &LanguageDetector{
		baseDir:    absBase,
		extensions: extensions,
		patterns:   patterns,
		includes:   append([]string(nil), opts.IncludePatterns...),
		force:      opts.ForceAnalyze,
	}
	if !opts.ForceAnalyze && len(patterns) > 0 {
		d.matcher = ignore.CompileIgnoreLines(patterns...)
	}
	return d, nil
}

// ValidatePattern rejects glob patterns that cannot be compiled
func ValidatePattern(pattern string) error {
	p := strings.TrimPrefix(strings.TrimSpace(pattern), "!")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	if !doublestar.ValidatePattern(p) {
		return domain.NewPatternError(pattern, nil)
	}
	return nil
}

// ReadGitignore returns the non-comment, non-blank lines of a .gitignore file.
// A missing file yields no patterns.
func ReadGitignore(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.NewInvalidInputError("failed to read "+path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// BaseDir returns the absolute base directory
func (d *LanguageDetector) BaseDir() string {
	return d.baseDir
}

// Patterns returns the effective ignore patterns
func (d *LanguageDetector) Patterns() []string {
	return append([]string(nil), d.patterns...)
}

// SourcePatterns returns one recursive glob per known extension, sorted
func (d *LanguageDetector) SourcePatterns() []string {
	patterns := make([]string, 0, len(d.extensions))
	for ext := range d.extensions {
		patterns = append(patterns, "**/*"+ext)
	}
	sort.Strings(patterns)
	return patterns
}

// DetectLanguage maps a file to a supported language. It does not apply ignore rules.
func (d *LanguageDetector) DetectLanguage(path string) (domain.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := d.extensions[ext]; ok {
		return lang, true
	}

	if ext != "" {
		if name, safe := enry.GetLanguageByExtension(path); safe {
			if lang, ok := enryLanguages[name]; ok {
				return lang, true
			}
		}
		return domain.LanguageUnknown, false
	}

	if name, safe := enry.GetLanguageByShebang(readHead(path)); safe {
		if lang, ok := enryLanguages[name]; ok {
			return lang, true
		}
	}
	return domain.LanguageUnknown, false
}

func readHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, shebangProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil
	}
	return buf[:n]
}

// matchPath returns the path used for pattern matching: base-relative inside
// the base directory, the bare filename outside it.
func (d *LanguageDetector) matchPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(d.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// ShouldIgnore reports whether path is excluded by the ignore patterns
func (d *LanguageDetector) ShouldIgnore(path string) bool {
	if d.force {
		return false
	}
	candidate := d.matchPath(path)
	if d.isForceIncluded(candidate) {
		return false
	}
	if d.matcher == nil {
		return false
	}
	return d.matcher.MatchesPath(candidate)
}

func (d *LanguageDetector) isForceIncluded(candidate string) bool {
	for _, p := range d.includes {
		if ok, _ := doublestar.Match(p, candidate); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, filepath.Base(candidate)); ok {
			return true
		}
	}
	return false
}

// GroupByLanguage partitions files into per-language buckets, preserving input
// order within each bucket. Ignored files and files of unknown language are
// returned, in order, as skipped.
func (d *LanguageDetector) GroupByLanguage(files []string) (map[domain.Language][]string, []string) {
	groups := make(map[domain.Language][]string)
	var skipped []string

	for _, f := range files {
		if d.ShouldIgnore(f) {
			skipped = append(skipped, f)
			continue
		}
		lang, ok := d.DetectLanguage(f)
		if !ok {
			skipped = append(skipped, f)
			continue
		}
		groups[lang] = append(groups[lang], f)
	}

	return groups, skipped
}

// Filter returns the analyzable files in input order together with the skipped ones
func (d *LanguageDetector) Filter(files []string) (analyzable, skipped []string) {
	for _, f := range files {
		if d.ShouldIgnore(f) {
			skipped = append(skipped, f)
			continue
		}
		if _, ok := d.DetectLanguage(f); !ok {
			skipped = append(skipped, f)
			continue
		}
		analyzable = append(analyzable, f)
	}
	return analyzable, skipped
}

// Breakdown counts analyzable and ignored files per detected language
func (d *LanguageDetector) Breakdown(files []string) []domain.LanguageBreakdown {
	counts := make(map[domain.Language]*domain.LanguageBreakdown)
	var order []domain.Language

	for _, f := range files {
		lang, ok := d.DetectLanguage(f)
		if !ok {
			lang = domain.LanguageUnknown
		}
		b, exists := counts[lang]
		if !exists {
			b = &domain.LanguageBreakdown{Language: lang}
			counts[lang] = b
			order = append(order, lang)
		}
		if d.ShouldIgnore(f) {
			b.Ignored++
		} else {
			b.Files++
		}
	}

	out := make([]domain.LanguageBreakdown, 0, len(order))
	for _, lang := range order {
		out = append(out, *counts[lang])
	}
	return out
}
