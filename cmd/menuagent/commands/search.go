// ABOUTME: CLI command to preview knowledge-base search results
// ABOUTME: Prints the same text the search_docs tool returns to the agent
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Preview the top matching documents",
		Long: `Search the document index and preview the top matches.

Shows up to 3 documents, each with its file name and the first 500 words
of its text. Documents whose payload cannot be parsed are reported inline.

Examples:
  menuagent search "soup special"
  menuagent search --format json "chai tea"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(cmd.Context()))

	kb, err := a.newKnowledgeBase()
	if err != nil {
		return fmt.Errorf("initializing search: %w", err)
	}

	query := args[0]
	result, err := kb.SearchDocs(cmd.Context(), query)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), queryResult{Query: query, Result: result})
	}

	if result == "" {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No documents found for query: %s\n", query)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
