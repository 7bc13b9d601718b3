// ABOUTME: Chat command runs a scripted conversation with the hosted agent
// ABOUTME: Creates the agent with local tools, plays the turns, and releases the thread
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/menu-agent/internal/agent"
	"github.com/harper/menu-agent/internal/llm"
)

var (
	chatTurns        []string
	chatDeleteAgent  bool
	chatNoKnowledge  bool
	chatName         string
	chatInstructions string
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a conversation with the restaurant agent",
		Long: `Run a conversation with the restaurant agent.

Creates the agent on the configured service with the menu tools
(get_specials, get_item_price) and, when a search endpoint is configured,
the knowledge tools (search_docs, ask_with_context). Each turn is sent in
order on one thread, which is deleted when the conversation ends.

Without --turn the built-in script is used:
  ` + strings.Join(agent.DefaultScript, " / ") + `

Examples:
  menuagent chat
  menuagent chat --turn "What is the special salad?" --turn "How much is it?"
  menuagent chat --format json --delete-agent`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringArrayVar(&chatTurns, "turn", nil, "User message to send (repeatable, replaces the default script)")
	cmd.Flags().BoolVar(&chatDeleteAgent, "delete-agent", false, "Delete the agent definition when the conversation ends")
	cmd.Flags().BoolVar(&chatNoKnowledge, "no-knowledge", false, "Do not register the knowledge-base tools")
	cmd.Flags().StringVar(&chatName, "name", agent.DefaultName, "Agent name")
	cmd.Flags().StringVar(&chatInstructions, "instructions", agent.DefaultInstructions, "Agent instructions")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	if missing := a.cfg.MissingAgentSettings(); len(missing) > 0 {
		a.logger.Warn("agent service not fully configured", "missing", strings.Join(missing, ","))
	}

	client, err := llm.NewClient(llm.ConfigFrom(a.cfg))
	if err != nil {
		return fmt.Errorf("creating agent client: %w", err)
	}

	registry, err := a.newRegistry(!chatNoKnowledge)
	if err != nil {
		return fmt.Errorf("building tools: %w", err)
	}

	ag, err := agent.Create(ctx, client, agent.Definition{
		Model:        a.cfg.Deployment,
		Name:         chatName,
		Instructions: chatInstructions,
	}, registry, agent.Options{
		PollInterval: a.cfg.PollInterval,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}
	a.logger.Info("agent ready", "agent_id", ag.ID(), "tools", registry.Len())

	if chatDeleteAgent {
		defer func() {
			if err := ag.Delete(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn("agent delete failed", "agent_id", ag.ID(), "error", err)
			}
		}()
	}

	turns := chatTurns
	if len(turns) == 0 {
		turns = agent.DefaultScript
	}

	driver := &agent.Driver{
		Agent:  ag,
		Out:    cmd.OutOrStdout(),
		JSON:   jsonOutput(),
		Logger: a.logger,
	}
	return driver.Run(ctx, turns)
}
