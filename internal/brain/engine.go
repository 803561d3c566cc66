package brain

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/s0_data/collector"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// ErrScanInProgress is returned when a scan is already running
var ErrScanInProgress = errors.New("scan already in progress")

// CandidateCollector supplies the raw candidates for a day
type CandidateCollector interface {
	Collect(ctx context.Context, day time.Time, cfg collector.Config) ([]contracts.RawCandidate, []collector.FetchResult, error)
}

// Engine runs one full scan: collect → pipeline → save → notify
// ⭐ SSOT: 스캔 조율은 여기서만
type Engine struct {
	collector CandidateCollector
	pipeline  *Pipeline
	repo      contracts.ReportRepository // nil이면 저장 생략
	notifier  contracts.Notifier         // nil이면 전송 생략
	strategy  contracts.DecisionSnapshot
	workers   int
	logger    *logger.Logger
	now       func() time.Time

	running atomic.Bool
}

// EngineConfig holds the engine's collaborators
type EngineConfig struct {
	Collector  CandidateCollector
	Pipeline   *Pipeline
	Repository contracts.ReportRepository
	Notifier   contracts.Notifier
	Strategy   *contracts.DecisionSnapshot // stored with every saved report
	Workers    int
}

// NewEngine creates a new engine
func NewEngine(cfg EngineConfig, log *logger.Logger) *Engine {
	e := &Engine{
		collector: cfg.Collector,
		pipeline:  cfg.Pipeline,
		repo:      cfg.Repository,
		notifier:  cfg.Notifier,
		workers:   cfg.Workers,
		logger:    log,
		now:       time.Now,
	}
	if cfg.Strategy != nil {
		e.strategy = *cfg.Strategy
	}
	return e
}

// RunConfig holds configuration for a scan
type RunConfig struct {
	Day    time.Time
	RunID  string // empty = new UUID
	Limit  int    // <= 0 uses the strategy top N
	DryRun bool   // If true, skip save and notify
}

// RunResult holds the results of a scan
type RunResult struct {
	RunID           string
	Day             time.Time
	Success         bool
	Error           error
	CompletedStages []string
	Report          contracts.RunReport
	Diagnostics     Diagnostics
	Fetches         []collector.FetchResult
	SaveErr         error
	NotifyErr       error
	Duration        time.Duration
}

// Scan runs today's scan with default settings
func (e *Engine) Scan(ctx context.Context, day time.Time) (*RunResult, error) {
	return e.Run(ctx, RunConfig{Day: day})
}

// Run executes one scan.
// A failing collector resolves to an empty candidate set; save and notify
// failures are recorded on the result without failing the run.
func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer e.running.Store(false)

	return e.run(ctx, cfg)
}

// Start claims the engine and runs the scan in the background.
// ErrScanInProgress is returned synchronously; done (optional) receives the outcome.
func (e *Engine) Start(ctx context.Context, cfg RunConfig, done func(*RunResult, error)) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrScanInProgress
	}

	go func() {
		res, err := func() (*RunResult, error) {
			defer e.running.Store(false)
			return e.run(ctx, cfg)
		}()
		// 해제 후 콜백: done 안에서 바로 다음 스캔 가능
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (e *Engine) run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	result := &RunResult{
		RunID:           cfg.RunID,
		Day:             cfg.Day,
		CompletedStages: make([]string, 0, 4),
	}
	log := e.logger.WithRun(cfg.RunID)

	log.WithFields(map[string]interface{}{
		"day":     cfg.Day.Format("2006-01-02"),
		"dry_run": cfg.DryRun,
	}).Info("Starting scan")

	// S0: Collect
	raws, fetches, err := e.collector.Collect(ctx, cfg.Day, collector.Config{Workers: e.workers})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Error = fmt.Errorf("collect cancelled: %w", ctxErr)
			return result, result.Error
		}
		log.WithError(err).Error("Collection failed, continuing with no candidates")
		raws = nil
	}
	result.Fetches = fetches
	result.CompletedStages = append(result.CompletedStages, "S0:Collect")

	// S1 ~ S5: Pure pipeline
	result.Report, result.Diagnostics = e.pipeline.RunWithLimit(raws, cfg.Limit, e.now())
	result.CompletedStages = append(result.CompletedStages, "S1-S5:Pipeline")

	for _, rej := range result.Diagnostics.Rejections {
		log.WithFields(map[string]interface{}{
			"symbol": rej.Symbol,
			"reason": rej.Reason,
		}).Info("Candidate rejected")
	}

	if !cfg.DryRun {
		// Save
		if e.repo != nil {
			stored := &contracts.StoredReport{
				RunID:       cfg.RunID,
				Strategy:    e.strategy,
				TradingDate: cfg.Day,
				Report:      result.Report,
			}
			if err := e.repo.Save(ctx, stored); err != nil {
				result.SaveErr = err
				log.WithError(err).Error("Failed to save report")
			} else {
				result.CompletedStages = append(result.CompletedStages, "Save")
			}
		}

		// Notify
		if e.notifier != nil {
			if err := e.notifier.Publish(ctx, &result.Report); err != nil {
				result.NotifyErr = err
				log.WithError(err).Error("Failed to publish report")
			} else {
				result.CompletedStages = append(result.CompletedStages, "Notify")
			}
		}
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	log.WithFields(map[string]interface{}{
		"considered": result.Report.Considered,
		"normalized": result.Report.Normalized,
		"qualified":  result.Report.Qualified,
		"selected":   result.Report.Selected,
		"symbols":    result.Report.Symbols(),
		"duration":   result.Duration.String(),
	}).Info("Scan completed")

	return result, nil
}
