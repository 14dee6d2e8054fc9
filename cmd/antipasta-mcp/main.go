package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hesreallyhim/antipasta-sub000/internal/version"
	"github.com/hesreallyhim/antipasta-sub000/mcp"
)

const serverName = "antipasta"

func main() {
	configPath := flag.String("config", "", "Configuration file path (default: discovered per request)")
	flag.Parse()

	// stdout carries JSON-RPC, so diagnostics go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	handlers := mcp.NewHandlerSet(mcp.NewDependencies(*configPath, logger))
	mcp.RegisterTools(server, handlers)

	logger.Info("starting MCP server", "name", serverName, "version", version.Short(),
		"tools", []string{"check_quality", "collect_stats"})

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
