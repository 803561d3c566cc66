package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/internal/api"
	"github.com/kcpatrick93/earning-scalp-bot/internal/api/handlers"
	"github.com/kcpatrick93/earning-scalp-bot/internal/scheduler"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server with the websocket report stream.

Endpoints:
  GET  /health                        - Health check
  GET  /api/reports/latest            - Latest stored report
  GET  /api/reports?date=YYYY-MM-DD   - Reports for a trading date
  POST /api/scan                      - Start a scan in the background
  POST /api/score                     - Score posted candidates (no network)
  GET  /ws/reports                    - Websocket stream of finished reports

Example:
  go run ./cmd/scalp api
  go run ./cmd/scalp api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "also run the daily scan schedule")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	baseCtx, cancelScans := context.WithCancel(context.Background())
	defer cancelScans()

	reportHandler := handlers.NewReportHandler(handlers.ReportHandlerConfig{
		Repository:  a.repo,
		Scanner:     a.engine,
		Pipeline:    a.pipeline,
		Location:    a.cfg.Location(),
		BaseContext: baseCtx,
	}, log)

	router := api.NewRouter(reportHandler, a.hub, log)
	server := api.New(a.cfg, log, router)

	var sched *scheduler.Scheduler
	if apiWithScheduler && a.cfg.Scan.Enabled {
		sched, err = newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	cancelScans()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
