package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hesreallyhim/antipasta-sub000/domain"
	"github.com/hesreallyhim/antipasta-sub000/internal/config"
)

// maxListedViolations bounds the violation messages returned in summary mode
const maxListedViolations = 50

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleCheckQuality handles the check_quality tool
func (h *HandlerSet) HandleCheckQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, errResult := requirePath(args)
	if errResult != nil {
		return errResult, nil
	}

	thresholds, err := config.ParseThresholdOverrides(stringSlice(args, "thresholds"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	useCase, err := h.deps.BuildCheckUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create check: %v", err)), nil
	}

	var buf bytes.Buffer
	req := domain.CheckRequest{
		Paths:        []string{path},
		ConfigPath:   h.configPath(args),
		BaseDir:      baseDirFor(path),
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &buf,
		Overrides: domain.ConfigOverride{
			Thresholds:      thresholds,
			ExcludePatterns: stringSlice(args, "exclude"),
		},
	}

	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	if outputMode(args) == "full" {
		return mcp.NewToolResultText(buf.String()), nil
	}
	return jsonResult(formatCheckSummary(response))
}

// HandleCollectStats handles the collect_stats tool
func (h *HandlerSet) HandleCollectStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, errResult := requirePath(args)
	if errResult != nil {
		return errResult, nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("path must be a directory: %s", path)), nil
	}

	grouping := domain.GroupingOverall
	if g, ok := args["group_by"].(string); ok && g != "" {
		grouping = domain.GroupingMode(g)
	}
	depth := 1
	if d, ok := args["depth"].(float64); ok {
		depth = int(d)
	}
	pathStyle := domain.PathStyleRelative
	if s, ok := args["path_style"].(string); ok && s != "" {
		pathStyle = domain.PathStyle(s)
	}

	useCase, err := h.deps.BuildStatsUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create stats: %v", err)), nil
	}

	var buf bytes.Buffer
	req := domain.StatsRequest{
		Patterns:     stringSlice(args, "patterns"),
		Directory:    path,
		ConfigPath:   h.configPath(args),
		Grouping:     grouping,
		Depth:        depth,
		PathStyle:    pathStyle,
		Metrics:      stringSlice(args, "metrics"),
		Format:       domain.StatsFormatJSON,
		OutputWriter: &buf,
		Overrides: domain.ConfigOverride{
			ExcludePatterns: stringSlice(args, "exclude"),
		},
	}

	if _, err := useCase.Execute(ctx, req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *HandlerSet) configPath(args map[string]interface{}) string {
	if p, ok := args["config"].(string); ok && p != "" {
		return p
	}
	return h.deps.ConfigPath()
}

func requirePath(args map[string]interface{}) (string, *mcp.CallToolResult) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", mcp.NewToolResultError("path parameter is required and must be a string")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path))
	}
	return path, nil
}

// baseDirFor anchors ignore patterns and config discovery at the analyzed directory
func baseDirFor(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func outputMode(args map[string]interface{}) string {
	if om, ok := args["output_mode"].(string); ok {
		return om
	}
	return "summary"
}

func stringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func formatCheckSummary(response *domain.CheckResponse) map[string]interface{} {
	messages := make([]string, 0, len(response.Violations))
	for i, v := range response.Violations {
		if i >= maxListedViolations {
			break
		}
		messages = append(messages, v.Message())
	}

	warnings := make([]string, 0, len(response.Warnings))
	for _, w := range response.Warnings {
		warnings = append(warnings, w.String())
	}

	return map[string]interface{}{
		"success":               response.Summary.Success,
		"total_files":           response.Summary.TotalFiles,
		"files_with_violations": response.Summary.FilesWithViolations,
		"total_violations":      response.Summary.TotalViolations,
		"violations_by_type":    response.Summary.ViolationsByType,
		"violations":            messages,
		"warnings":              warnings,
	}
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
