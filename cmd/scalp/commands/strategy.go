package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Strategy parameter tools",
}

var strategyCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a strategy YAML and print its hash",
	Long: `Loads and validates a strategy file. Without a path the built-in
defaults are checked.

Example:
  go run ./cmd/scalp strategy check config/strategy/earnings_gap_v1.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStrategyCheck,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyCheckCmd)
}

func runStrategyCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path, source := "", "built-in defaults"
	if len(args) == 1 {
		path, source = args[0], args[0]
	}

	cfg, snapshot, err := strategyconfig.LoadSnapshot(path)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}

	printHeader(out, "Strategy check", [][2]string{
		{"Source", source},
		{"Strategy", cfg.Meta.StrategyID},
		{"Version", cfg.Meta.Version},
		{"Min Score", fmt.Sprintf("%.0f", cfg.Classification.MinScore)},
		{"Top N", fmt.Sprintf("%d", cfg.Selection.TopN)},
		{"Hash", snapshot.ConfigHash[:12]},
	})

	for _, w := range strategyconfig.Warn(cfg) {
		fmt.Fprintf(out, "⚠️  %s: %s\n", w.Code, w.Message)
	}
	fmt.Fprintln(out, "✅ valid")
	return nil
}
