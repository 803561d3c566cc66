package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
	"github.com/kcpatrick93/earning-scalp-bot/internal/scheduler"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Scanner runs one scan for a trading day
type Scanner interface {
	Scan(ctx context.Context, day time.Time) (*brain.RunResult, error)
}

// DailyScanJob runs the earnings gap scan after the open
// ⭐ SSOT: 일일 스캔 스케줄은 이 Job에서만
type DailyScanJob struct {
	scanner  Scanner
	schedule string
	loc      *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewDailyScanJob creates a new daily scan job
func NewDailyScanJob(scanner Scanner, cfg *config.Config, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		scanner:  scanner,
		schedule: cfg.Scan.Schedule,
		loc:      cfg.Location(),
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule (default weekdays 09:45 New York)
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan for today's date in the market time zone
func (j *DailyScanJob) Run(ctx context.Context) (*scheduler.Outcome, error) {
	day := brain.TradingDay(j.now(), j.loc)
	j.logger.WithField("day", day.Format(brain.DateLayout)).Info("Starting scheduled scan")

	res, err := j.scanner.Scan(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily scan: %w", err)
	}

	return &scheduler.Outcome{
		RunID:      res.RunID,
		TradingDay: day.Format(brain.DateLayout),
		Considered: res.Report.Considered,
		Qualified:  res.Report.Qualified,
		Selected:   res.Report.Selected,
		Symbols:    res.Report.Symbols(),
	}, nil
}
