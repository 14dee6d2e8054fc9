package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

func TestNewErrorCategorizer(t *testing.T) {
	categorizer := NewErrorCategorizer()
	assert.NotNil(t, categorizer)
	assert.IsType(t, &ErrorCategorizerImpl{}, categorizer)
}

func TestCategorize_DomainCodes(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		name string
		err  error
		want domain.ErrorCategory
	}{
		{"pattern", domain.NewPatternError("src/[a-", nil), domain.ErrorCategoryPattern},
		{"config", domain.NewConfigError("bad threshold", nil), domain.ErrorCategoryConfig},
		{"missing file", domain.NewFileNotFoundError("x.py", nil), domain.ErrorCategoryInput},
		{"format", domain.NewUnsupportedFormatError("xml"), domain.ErrorCategoryOutput},
		{"analyzer", domain.NewAnalyzerUnavailableError("radon"), domain.ErrorCategoryProcessing},
		{"wrapped", fmt.Errorf("load: %w", domain.NewConfigError("oops", nil)), domain.ErrorCategoryConfig},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), domain.ErrorCategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.err, got.Original)
		})
	}
}

func TestCategorize_Messages(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		msg  string
		want domain.ErrorCategory
	}{
		{"no files found in directory", domain.ErrorCategoryInput},
		{"PERMISSION DENIED", domain.ErrorCategoryInput},
		{"failed to parse YAML document", domain.ErrorCategoryConfig},
		{"operation timed out", domain.ErrorCategoryTimeout},
		{"radon crashed", domain.ErrorCategoryProcessing},
		{"failed to write report", domain.ErrorCategoryOutput},
		{"invalid pattern in --include", domain.ErrorCategoryPattern},
		{"something odd", domain.ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, categorizer.Categorize(errors.New(tt.msg)).Category)
		})
	}
}

func TestCategorize_Nil(t *testing.T) {
	assert.Nil(t, NewErrorCategorizer().Categorize(nil))
}

func TestGetRecoverySuggestions(t *testing.T) {
	categorizer := NewErrorCategorizer()

	for _, category := range []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryPattern,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryUnknown,
	} {
		assert.NotEmpty(t, categorizer.GetRecoverySuggestions(category), category)
	}
	assert.Equal(t, []string{"Check the error message for more details"},
		categorizer.GetRecoverySuggestions("Nonexistent"))
}
