// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for embed, search, stats, and version subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	quiet        bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scentmatch",
		Short: "Multi-resolution fragrance embeddings and progressive search",
		Long: `ScentMatch embeddings service.

Generates matryoshka-style multi-resolution embeddings for catalog items
from a single provider call, caches them by content hash, and runs
progressive coarse-to-fine similarity search over the stored vectors.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	cmd.AddCommand(NewEmbedCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
