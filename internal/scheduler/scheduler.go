package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	// Stop()에서 취소되어 실행 중인 작업에 전달
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
	jobTimeout time.Duration
}

// New creates a new scheduler. Schedules are six-field cron expressions
// (with seconds) evaluated in loc.
func New(log *logger.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:     log,
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: 1,
		retryDelay: 1 * time.Minute,
		jobTimeout: 10 * time.Minute,
	}
}

// WithRetry configures retries after a failed run
func (s *Scheduler) WithRetry(maxRetries int, delay time.Duration) *Scheduler {
	s.maxRetries = maxRetries
	s.retryDelay = delay
	return s
}

// WithJobTimeout bounds each attempt
func (s *Scheduler) WithJobTimeout(d time.Duration) *Scheduler {
	s.jobTimeout = d
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	// Check if job already exists
	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	// Add job to cron
	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	// Store job
	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[jobName]
	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(id)
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	delete(s.history, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler, cancels running jobs and waits for them
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	s.cancel()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns the next activation time of a job (zero before Start)
func (s *Scheduler) NextRun(jobName string) (time.Time, error) {
	s.mu.RLock()
	id, exists := s.entries[jobName]
	s.mu.RUnlock()

	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", jobName)
	}
	return s.cron.Entry(id).Next, nil
}

// RunJob runs a specific job immediately (outside of schedule)
func (s *Scheduler) RunJob(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJob(s.ctx, job)
	}()
	return nil
}

// RunNow runs a job in the foreground and returns its recorded result.
// Cancelling ctx (or Stop) aborts the attempt and any pending retry.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.runJob(ctx, job), nil
}

// runJob executes a job with retry logic and records the result.
// cron.Stop() waits for scheduled runs; RunJob tracks its own goroutine in wg
func (s *Scheduler) runJob(parent context.Context, job Job) JobResult {
	jobName := job.Name()
	result := JobResult{JobName: jobName, StartTime: time.Now()}
	log := s.logger.WithField("job", jobName)

	log.Info("Job started")

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
		outcome, err := job.Run(ctx)
		cancel()
		result.Outcome = outcome
		if err == nil {
			result.Success = true
			break
		}

		lastErr = err
		log.WithFields(map[string]interface{}{
			"attempt": result.Attempts,
			"error":   err.Error(),
		}).Warn("Job execution failed")

		// 마지막 시도 후에는 대기하지 않음
		if attempt < s.maxRetries {
			select {
			case <-parent.Done():
				attempt = s.maxRetries
			case <-time.After(s.retryDelay):
			}
		}
	}

	result.Duration = time.Since(result.StartTime)
	if !result.Success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.Add(result)
	}
	s.mu.Unlock()

	fields := map[string]interface{}{
		"duration": result.Duration,
		"attempts": result.Attempts,
	}
	if o := result.Outcome; o != nil {
		fields["run_id"] = o.RunID
		fields["selected"] = o.Selected
	}
	if result.Success {
		log.WithFields(fields).Info("Job completed successfully")
	} else {
		fields["error"] = result.Error
		log.WithFields(fields).Error("Job failed after all retries")
	}

	return result
}

// GetJobHistory returns a copy of the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return &JobHistory{Results: append([]JobResult(nil), history.Results...)}, nil
}

// GetAllJobs returns all registered jobs, sorted by name
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.history))
	for jobName, history := range s.history {
		stats[jobName] = history.stats(jobName, s.jobs[jobName].Schedule())
	}
	return stats
}
