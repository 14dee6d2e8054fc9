package mcp

import (
	"io"
	"log/slog"

	"github.com/hesreallyhim/antipasta-sub000/app"
	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/analyzer"
	"github.com/hesreallyhim/antipasta-sub000/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	registry   domain.AnalyzerRegistry
	configPath string
	logger     *slog.Logger
}

// NewDependencies constructs the dependency set with the default analyzer registry.
// An empty configPath triggers discovery from each request's path.
func NewDependencies(configPath string, logger *slog.Logger) *Dependencies {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dependencies{
		registry:   analyzer.DefaultRegistry(nil),
		configPath: configPath,
		logger:     logger,
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildCheckUseCase assembles a fresh CheckUseCase. Status output is discarded
// because stdout carries the JSON-RPC stream.
func (d *Dependencies) BuildCheckUseCase() (*app.CheckUseCase, error) {
	return app.NewCheckUseCaseBuilder().
		WithRegistry(d.registry).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		WithLogger(d.logger).
		Build()
}

// BuildStatsUseCase assembles a fresh StatsUseCase.
func (d *Dependencies) BuildStatsUseCase() (*app.StatsUseCase, error) {
	return app.NewStatsUseCaseBuilder().
		WithRegistry(d.registry).
		WithStatusWriter(io.Discard).
		WithLogger(d.logger).
		Build()
}
