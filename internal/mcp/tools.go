// ABOUTME: MCP tool registration for the menu agent server
// ABOUTME: Exposes every registry tool with its reflected JSON schema
package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/menu-agent/internal/tools"
)

const (
	ServerName   = "menu-agent"
	Instructions = "Restaurant menu and knowledge-base tools. Use get_specials and get_item_price for the menu; search_docs and ask_with_context to look up documents."
)

// NewServer creates an MCP server advertising tool support
func NewServer(version string) *mcpserver.MCPServer {
	return mcpserver.NewMCPServer(ServerName, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(Instructions),
	)
}

// RegisterTools registers all registry tools with the server
func RegisterTools(server *mcpserver.MCPServer, registry *tools.Registry, logger *slog.Logger) (*Handlers, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	handlers := &Handlers{registry: registry, logger: logger}

	for _, t := range registry.Tools() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("encoding schema for %s: %w", t.Name(), err)
		}
		server.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), handlers.Call)
	}

	return handlers, nil
}
