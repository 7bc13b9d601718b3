// ABOUTME: CLI command listing the tools the agent is given
// ABOUTME: Shows names and descriptions, or full parameter schemas as JSON
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// toolInfo is the JSON shape of one listed tool
type toolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// NewToolsCmd creates the tools command
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools registered with the agent",
		Long: `List the tools the agent can call.

The menu tools are always present. The knowledge tools are listed when
AZURE_SEARCH_ENDPOINT is set. Use --format json to see parameter schemas.`,
		Args: cobra.NoArgs,
		RunE: runTools,
	}

	return cmd
}

func runTools(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(cmd.Context()))

	registry, err := a.newRegistry(true)
	if err != nil {
		return fmt.Errorf("building tools: %w", err)
	}

	if jsonOutput() {
		infos := make([]toolInfo, 0, registry.Len())
		for _, t := range registry.Tools() {
			infos = append(infos, toolInfo{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
		}
		return writeJSON(cmd.OutOrStdout(), infos)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t-----------\n")
	for _, t := range registry.Tools() {
		fmt.Fprintf(w, "%s\t%s\n", t.Name(), truncate(t.Description(), 70))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d tool(s)\n", registry.Len())
	}
	return nil
}
