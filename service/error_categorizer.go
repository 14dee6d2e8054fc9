package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns map[domain.ErrorCategory][]string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns initializes error pattern mappings
func initializeErrorPatterns() map[domain.ErrorCategory][]string {
	return map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"invalid input",
			"no files found",
			"no source files",
			"path",
			"directory",
			"file not found",
			"cannot access",
			"permission denied",
		},
		domain.ErrorCategoryPattern: {
			"invalid pattern",
			"glob",
		},
		domain.ErrorCategoryConfig: {
			"config",
			"configuration",
			"invalid format",
			"invalid settings",
			"missing configuration",
			"toml",
			"yaml",
			"threshold",
		},
		domain.ErrorCategoryTimeout: {
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
			"exceeded",
		},
		domain.ErrorCategoryOutput: {
			"write",
			"output",
			"format",
			"cannot create",
			"failed to generate",
			"report generation",
		},
		domain.ErrorCategoryProcessing: {
			"parse",
			"syntax",
			"analysis",
			"process",
			"failed to analyze",
			"radon",
			"complexipy",
			"not installed",
		},
	}
}

var categoryOrder = []domain.ErrorCategory{
	domain.ErrorCategoryPattern,
	domain.ErrorCategoryConfig,
	domain.ErrorCategoryTimeout,
	domain.ErrorCategoryInput,
	domain.ErrorCategoryProcessing,
	domain.ErrorCategoryOutput,
}

// categoryFromCode maps domain error codes to categories
func categoryFromCode(err error) (domain.ErrorCategory, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrorCategoryTimeout, true
	}
	var de domain.DomainError
	if !errors.As(err, &de) {
		return "", false
	}
	switch de.Code {
	case domain.ErrCodePatternError:
		return domain.ErrorCategoryPattern, true
	case domain.ErrCodeConfigError:
		return domain.ErrorCategoryConfig, true
	case domain.ErrCodeInvalidInput, domain.ErrCodeFileNotFound:
		return domain.ErrorCategoryInput, true
	case domain.ErrCodeOutputError, domain.ErrCodeUnsupportedFormat:
		return domain.ErrorCategoryOutput, true
	case domain.ErrCodeParseError, domain.ErrCodeAnalysisError, domain.ErrCodeAnalyzerUnavailable:
		return domain.ErrorCategoryProcessing, true
	}
	return "", false
}

// Categorize determines the category of an error
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if category, ok := categoryFromCode(err); ok {
		return &domain.CategorizedError{
			Category: category,
			Message:  ec.getCategoryMessage(category),
			Original: err,
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Checked in a fixed order so overlapping keywords resolve the same way every run
	for _, category := range categoryOrder {
		patterns := ec.patterns[category]
		if containsAnyPattern(errMsg, patterns) {
			message := ec.getCategoryMessage(category)
			return &domain.CategorizedError{
				Category: category,
				Message:  message,
				Original: err,
			}
		}
	}

	// Default to unknown category
	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the paths exist and contain Python, JavaScript or TypeScript files",
			"Use --force-analyze if every file was excluded by ignore patterns",
			"Ensure you have read permissions for the target files",
		},
		domain.ErrorCategoryConfig: {
			"Run: antipasta config validate to see which field is wrong",
			"Run: antipasta init to generate a valid .antipasta.yaml",
			"Check threshold overrides use the form metric=value",
		},
		domain.ErrorCategoryPattern: {
			"Check brackets and braces are balanced in glob patterns",
			"Quote patterns in the shell so it does not expand them",
		},
		domain.ErrorCategoryTimeout: {
			"Analyze a smaller set of files",
			"Check whether an external analyzer is hanging on a large file",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output location",
			"Use a supported --format value",
		},
		domain.ErrorCategoryProcessing: {
			"Some files may have syntax errors",
			"Install radon and complexipy for full Python metrics: pip install radon complexipy",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process input files or directories",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryPattern:    "Malformed glob or ignore pattern",
		domain.ErrorCategoryTimeout:    "Analysis timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error during code analysis processing",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
