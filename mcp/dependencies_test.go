package mcp

import (
	"io"
	"log/slog"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// NewTestDependencies builds dependencies around a caller-supplied registry.
func NewTestDependencies(registry domain.AnalyzerRegistry, configPath string) *Dependencies {
	return &Dependencies{
		registry:   registry,
		configPath: configPath,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
