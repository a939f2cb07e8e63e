// Package cli wires the lexidex commands: a long-running HTTP service and a
// one-shot query runner sharing the same table loading path.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexidex/lexidex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "lexidex",
	Short:   "lexidex - word embedding centroid query service",
	Long:    "lexidex loads a word→vector table and answers \"which words are closest to the centroid of these words\" queries.",
	Version: version.Version,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
}
