package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scalp",
	Short: "Earnings gap scalp signals",
	Long: `Earnings gap scalp signal pipeline.

Collects the day's earnings reporters, prices the opening gap, asks the
sentiment model for a read on each report, then scores, classifies and
ranks the candidates.

Usage:
  go run ./cmd/scalp [command]

Examples:
  go run ./cmd/scalp run --dry-run
  go run ./cmd/scalp score candidates.json
  go run ./cmd/scalp api
  go run ./cmd/scalp scheduler start
  go run ./cmd/scalp strategy check config/strategy/earnings_gap_v1.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy YAML (default: STRATEGY_PATH or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
