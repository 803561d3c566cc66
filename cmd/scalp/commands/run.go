package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scan now",
	Long: `Collects today's earnings reporters and runs the full pipeline once.

Flags:
  --date       trading date (YYYY-MM-DD, default: today in SCAN_TIMEZONE)
  --limit      number of recommendations (default: strategy top_n)
  --dry-run    skip saving and notifications
  --json       print the report as JSON

Example:
  go run ./cmd/scalp run
  go run ./cmd/scalp run --date 2025-07-29 --dry-run`,
	RunE: runScan,
}

var (
	runDate   string
	runLimit  int
	runDryRun bool
	runJSON   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "trading date (YYYY-MM-DD)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "number of recommendations")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "skip save and notify")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := brain.ResolveTradingDay(runDate, time.Now(), a.cfg.Location())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.engine.Run(ctx, brain.RunConfig{
		Day:    day,
		Limit:  runLimit,
		DryRun: runDryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	}

	printHeader(out, "Earnings gap scan", [][2]string{
		{"Run ID", result.RunID},
		{"Date", day.Format("2006-01-02")},
		{"Dry Run", fmt.Sprintf("%v", runDryRun)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	})
	printReport(out, result.Report)
	printDiagnostics(out, result.Diagnostics)

	if result.SaveErr != nil {
		fmt.Fprintf(out, "\n❌ save failed: %v\n", result.SaveErr)
	}
	if result.NotifyErr != nil {
		fmt.Fprintf(out, "\n❌ notify failed: %v\n", result.NotifyErr)
	}
	return nil
}
