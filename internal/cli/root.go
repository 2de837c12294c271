// Package cli defines the datadealmonitor command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datadealmonitor",
		Short: "Monitor external sources for data-deal intent signals",
		Long: `datadealmonitor harvests posts, issues, dataset discussions, and papers
from Reddit, GitHub, Hugging Face, and AlphaXiv, scores each new signal
against a multi-dimensional intent rubric, and raises tiered Slack
notifications for qualifying leads. Every URL is processed at most once.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewWatchCmd())
	return cmd
}
