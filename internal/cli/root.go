// Package cli implements the HealthQuest command-line interface using Cobra.
// Each subcommand maps to one engine operation; serve runs the HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/api"
)

var rootCmd = &cobra.Command{
	Use:   "healthquest",
	Short: "HealthQuest: habit points for healthy kids",
	Long: `HealthQuest turns daily diet and exercise habits into points.
Log what you ate and how you moved, complete the day, keep your streak,
and spend points on rewards.

Data lives in $HEALTHQUEST_HOME (default ~/.healthquest).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ephemeral keeps state in memory for the lifetime of one command.
var ephemeral bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep all state in memory (nothing is saved)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	api.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
