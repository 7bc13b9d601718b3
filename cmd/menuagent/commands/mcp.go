// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the menu and knowledge tools to MCP clients via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/menu-agent/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server exposing the agent tools",
		Long: `Start MCP server exposing the agent tools

Runs the menu agent's tools as an MCP (Model Context Protocol) server over
stdio, so any MCP client can call get_specials, get_item_price and, when
search is configured, search_docs and ask_with_context.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by an MCP client)
  menuagent mcp

  # Configure in an MCP client config:
  # {
  #   "mcpServers": {
  #     "menu-agent": {
  #       "command": "menuagent",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	registry, err := a.newRegistry(true)
	if err != nil {
		return fmt.Errorf("building tools: %w", err)
	}

	server := mcp.NewServer(versionInfo.Version)
	if _, err := mcp.RegisterTools(server, registry, a.logger); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	a.logger.Info("MCP server starting on stdio", "tools", registry.Len())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
