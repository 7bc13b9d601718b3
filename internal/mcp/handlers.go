// ABOUTME: MCP tool handler that forwards calls to the tool registry
// ABOUTME: Tool failures become error results instead of protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/menu-agent/internal/tools"
)

// Handlers dispatches MCP tool calls
type Handlers struct {
	registry *tools.Registry
	logger   *slog.Logger
}

// Call handles any registered tool by name
func (h *Handlers) Call(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name

	args, err := json.Marshal(request.GetRawArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	callID := "mcp_" + uuid.New().String()[:8]
	out, err := h.registry.Call(ctx, callID, name, args)
	if err != nil {
		h.logger.Warn("mcp tool call failed", "tool", name, "call_id", callID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
	}

	h.logger.Debug("mcp tool call", "tool", name, "call_id", callID)
	return mcp.NewToolResultText(out), nil
}
