package app

import (
	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
	"github.com/hesreallyhim/antipasta-sub000/internal/detector"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// fileFilter splits a file list into analyzable and skipped files
type fileFilter interface {
	Filter(files []string) (analyzable, skipped []string)
}

// ResolveFiles collects source files from the given paths and splits them
// into the files to analyze and the files the filter skips.
//
// Parameters:
//   - fileReader: expands directories into candidate files
//   - filter: applies ignore rules and language detection
//   - paths: files or directories given by the caller
//
// An empty collection is an input error; a collection where every file is
// skipped is not.
func ResolveFiles(fileReader domain.FileReader, filter fileFilter, paths []string) ([]string, []string, error) {
	files, err := fileReader.CollectSourceFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, domain.NewInvalidInputError("no files found to analyze", nil)
	}

	analyzable, skipped := filter.Filter(files)
	return analyzable, skipped, nil
}

// loadEffectiveConfig loads the configuration discovered from baseDir (or the
// explicit path) and applies the command-line override on a copy.
func loadEffectiveConfig(load ConfigLoaderFunc, configPath, baseDir string, override domain.ConfigOverride) (*config.Config, error) {
	if load == nil {
		load = config.LoadConfig
	}
	cfg, err := load(configPath, baseDir)
	if err != nil {
		return nil, err
	}
	if !override.HasOverrides() {
		return cfg, nil
	}
	return config.ApplyOverride(cfg, override)
}

// newDetector builds a detector for one run from the effective configuration
func newDetector(cfg *config.Config, baseDir string, override domain.ConfigOverride) (*detector.LanguageDetector, error) {
	return detector.New(detector.Options{
		BaseDir:         baseDir,
		IgnorePatterns:  cfg.IgnorePatterns,
		IncludePatterns: override.IncludePatterns,
		UseGitignore:    cfg.UseGitignore,
		ForceAnalyze:    override.ForceAnalyze,
		Extensions:      cfg.ExtraExtensions(),
	})
}

// readerFor returns the injected reader, or one that walks with the run's
// detector so configured extensions are collected.
func readerFor(fixed domain.FileReader, det *detector.LanguageDetector) domain.FileReader {
	if fixed != nil {
		return fixed
	}
	return service.NewFileReader(det)
}

// ConfigLoaderFunc loads a configuration from an explicit path, or discovers
// one starting at startDir when the path is empty.
type ConfigLoaderFunc func(configPath, startDir string) (*config.Config, error)
