// ABOUTME: CLI command to build a retrieval-augmented prompt for a question
// ABOUTME: Prints the same text the ask_with_context tool returns to the agent
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Build a context prompt from matching documents",
		Long: `Retrieve up to 5 matching documents and wrap their full text in a prompt
that asks a language model to answer the question from them.

Documents with unreadable payloads or no text are left out. When nothing
usable is found the fixed "No relevant documents found." message is printed.

Examples:
  menuagent ask "What is the special drink?"
  menuagent ask --format json "Is there a vegetarian soup?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
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
	result, err := kb.AskWithContext(cmd.Context(), query)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), queryResult{Query: query, Result: result})
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
