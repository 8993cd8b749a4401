// Package cli holds the officialgames command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "officialgames",
		Short:        "Moderated channel mini-games bot",
		Long:         `officialgames runs timed chat mini-games (Blood Sweat Tears, Last Post Wins, Yes or No) in a moderated Telegram channel, started by popular vote.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
