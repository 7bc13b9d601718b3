// ABOUTME: Root command and global flags for the menu agent CLI
// ABOUTME: Wires subcommands and validates verbosity and output format
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	envFiles     []string
)

const banner = `
 ┌┬┐┌─┐┌┐┌┬ ┬  ┌─┐┌─┐┌─┐┌┐┌┌┬┐
 │││├┤ ││││ │  ├─┤│ ┬├┤ │││ │
 ┴ ┴└─┘┘└┘└─┘  ┴ ┴└─┘└─┘┘└┘ ┴ `

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menuagent",
		Short: "Restaurant menu agent with knowledge-base search",
		Long: banner + `

Talk to a hosted restaurant agent that can look up today's specials and
item prices, and search a document index for grounding context.

Configuration is read from the environment after loading variables.env
and .env (or the files given with --env-file).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(outputFormat)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text, json")
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load (default variables.env, .env)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewChatCmd(),
		NewSearchCmd(),
		NewAskCmd(),
		NewToolsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func validateFormat(format string) error {
	switch format {
	case "auto", "text", "json":
		return nil
	}
	return fmt.Errorf("invalid --format %q: must be auto, text or json", format)
}
