package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/internal/scheduler"
	"github.com/kcpatrick93/earning-scalp-bot/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler management",
	Long: `Starts the scheduler or inspects its jobs.

Subcommands:
  start   - run the scheduler until interrupted
  list    - registered jobs and their next run
  run     - run a job now, in the foreground

Example:
  go run ./cmd/scalp scheduler start
  go run ./cmd/scalp scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler with the daily_scan job
(SCAN_SCHEDULE, default weekdays 09:45 in SCAN_TIMEZONE).

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers every job against the wired app
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, a.cfg.Location())
	if err := sched.AddJob(jobs.NewDailyScanJob(a.engine, a.cfg, a.log)); err != nil {
		return nil, fmt.Errorf("add job: %w", err)
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Scan.Enabled {
		return fmt.Errorf("scheduled scans disabled (SCAN_ENABLED=false)")
	}

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}
	sched.Start()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n✅ Scheduler started successfully")
	printJobs(cmd, sched)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")
	printJobs(cmd, sched)

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	printJobs(cmd, sched)
	return nil
}

func printJobs(cmd *cobra.Command, sched *scheduler.Scheduler) {
	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		next, _ := sched.NextRun(name)
		fmt.Fprint(out, formatJobStats(stats[name], next))
	}
}

// formatJobStats renders one job with its run counts and last scan
func formatJobStats(st scheduler.JobStats, next time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - %s (%s)", st.JobName, st.Schedule)
	if !next.IsZero() {
		fmt.Fprintf(&b, " next %s", next.Format("2006-01-02 15:04:05 MST"))
	}
	b.WriteString("\n")

	if st.TotalRuns > 0 {
		fmt.Fprintf(&b, "      runs %d (✅ %d / ❌ %d)\n", st.TotalRuns, st.SuccessCount, st.FailureCount)
	}
	if st.LastOutcome != nil {
		fmt.Fprintf(&b, "      last %s\n", st.LastOutcome)
	}
	if st.LastError != "" {
		fmt.Fprintf(&b, "      last error: %s\n", st.LastError)
	}
	return b.String()
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running job: %s\n", jobName)
	result, err := sched.RunNow(ctx, jobName)
	if err != nil {
		return err
	}
	printJobs(cmd, sched)

	if !result.Success {
		return fmt.Errorf("run job %s: %s", jobName, result.Error)
	}
	fmt.Fprintln(out, "\n✅ Job completed")
	return nil
}
