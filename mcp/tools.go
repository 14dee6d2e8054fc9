package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all antipasta MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	s.AddTool(mcp.NewTool("check_quality",
		mcp.WithDescription("Check code metrics (complexity, maintainability, Halstead, size) against configured thresholds and list violations"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File or directory to check")),
		mcp.WithString("config",
			mcp.Description("Configuration file path (default: discovered from path)")),
		mcp.WithArray("thresholds",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Threshold overrides as metric=value, e.g. cyclomatic_complexity=15")),
		mcp.WithArray("exclude",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Additional gitignore-style exclusion patterns")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary: counts and violation messages; full: complete report (default: summary)")),
	), h.HandleCheckQuality)

	s.AddTool(mcp.NewTool("collect_stats",
		mcp.WithDescription("Collect metric statistics (count, mean, min, max, stddev) overall, per directory or per module"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory to analyze")),
		mcp.WithArray("patterns",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Glob patterns relative to path (default: all supported source files)")),
		mcp.WithArray("metrics",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Metrics to include: loc, sloc, lloc, cyc, cog, mai, vol, dif, eff, all, or a prefix")),
		mcp.WithString("group_by",
			mcp.Enum("overall", "directory", "module"),
			mcp.Description("Grouping mode (default: overall)")),
		mcp.WithNumber("depth",
			mcp.Description("Directory levels for group_by=directory, 0 for unlimited (default: 1)")),
		mcp.WithString("path_style",
			mcp.Enum("relative", "parent", "full"),
			mcp.Description("Directory path display (default: relative)")),
		mcp.WithString("config",
			mcp.Description("Configuration file path (default: discovered from path)")),
		mcp.WithArray("exclude",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Additional gitignore-style exclusion patterns")),
	), h.HandleCollectStats)
}
