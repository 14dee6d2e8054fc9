package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/src-d/enry/v2"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// sourceDetector is the part of the language detector the file reader needs
type sourceDetector interface {
	DetectLanguage(path string) (domain.Language, bool)

	// SourcePatterns are the globs expanded when no pattern is given
	SourcePatterns() []string
}

// FileReaderImpl collects source files from paths and glob patterns
type FileReaderImpl struct {
	detector sourceDetector
}

// NewFileReader creates a new file reader service
func NewFileReader(detector sourceDetector) *FileReaderImpl {
	return &FileReaderImpl{detector: detector}
}

// CollectSourceFiles expands files and directories into source files.
// Explicit file arguments are kept as given; directories are walked.
// The result is deduplicated and keeps first-seen order.
func (f *FileReaderImpl) CollectSourceFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		dirFiles, err := f.collectFromDirectory(path)
		if err != nil {
			return nil, err
		}
		for _, df := range dirFiles {
			add(df)
		}
	}

	return files, nil
}

// ExpandPatterns resolves glob patterns relative to dir, sorted and deduplicated.
// Without patterns every extension the detector knows is matched.
func (f *FileReaderImpl) ExpandPatterns(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = f.detector.SourcePatterns()
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, domain.NewPatternError(pattern, nil)
		}
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, domain.NewPatternError(pattern, err)
		}
		for _, m := range matches {
			if skipPath(m) {
				continue
			}
			full := filepath.Join(dir, filepath.FromSlash(m))
			if !seen[full] {
				seen[full] = true
				files = append(files, full)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// collectFromDirectory walks dirPath and returns detectable source files in lexical order
func (f *FileReaderImpl) collectFromDirectory(dirPath string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			return nil
		}

		if path != dirPath && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != dirPath && f.shouldSkipDirectory(path, dirPath) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are not followed, so cyclic trees terminate
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if _, ok := f.detector.DetectLanguage(path); ok {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// shouldSkipDirectory checks if a directory should be skipped entirely
func (f *FileReaderImpl) shouldSkipDirectory(path, root string) bool {
	if skippedDirName(filepath.Base(path)) {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return enry.IsVendor(filepath.ToSlash(rel) + "/")
}

func skippedDirName(name string) bool {
	name = strings.ToLower(name)
	switch name {
	case "__pycache__", "venv", "env", "build", "dist", "node_modules", ".tox":
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".egg-info")
}

// skipPath filters glob matches that are hidden or live in skipped directories
func skipPath(slashPath string) bool {
	parts := strings.Split(slashPath, "/")
	if strings.HasPrefix(parts[len(parts)-1], ".") {
		return true
	}
	for _, part := range parts[:len(parts)-1] {
		if skippedDirName(part) {
			return true
		}
	}
	return enry.IsVendor(slashPath)
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
