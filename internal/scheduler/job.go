package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Job is one cron-scheduled unit of work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule is a six-field cron expression (seconds first) or a
	// descriptor such as "@daily". e.g. "0 45 9 * * MON-FRI"
	Schedule() string

	// Run executes one attempt. The outcome, even on error, is kept on the
	// run's JobResult.
	Run(ctx context.Context) (*Outcome, error)
}

// Outcome summarizes what a scan run produced
type Outcome struct {
	RunID      string   `json:"run_id"`
	TradingDay string   `json:"trading_day"`
	Considered int      `json:"considered"`
	Qualified  int      `json:"qualified"`
	Selected   int      `json:"selected"`
	Symbols    []string `json:"symbols,omitempty"`
}

func (o *Outcome) String() string {
	if o == nil {
		return "-"
	}
	s := fmt.Sprintf("%s run %s: considered %d, qualified %d, selected %d",
		o.TradingDay, shortID(o.RunID), o.Considered, o.Qualified, o.Selected)
	if len(o.Symbols) > 0 {
		s += " [" + strings.Join(o.Symbols, " ") + "]"
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// JobResult is one scheduled (or manual) run, after retries
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Outcome   *Outcome      `json:"outcome,omitempty"` // 마지막 시도의 결과
}

// historyLimit caps results kept per job
const historyLimit = 100

// JobHistory keeps a job's most recent results, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historyLimit; over > 0 {
		h.Results = h.Results[over:]
	}
}

// Latest returns the most recent result
func (h *JobHistory) Latest() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// LastOutcome is the outcome of the most recent successful run
func (h *JobHistory) LastOutcome() *Outcome {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success && h.Results[i].Outcome != nil {
			return h.Results[i].Outcome
		}
	}
	return nil
}

// stats folds the history into JobStats
func (h *JobHistory) stats(name, schedule string) JobStats {
	st := JobStats{
		JobName:     name,
		Schedule:    schedule,
		TotalRuns:   len(h.Results),
		LastOutcome: h.LastOutcome(),
	}

	for _, r := range h.Results {
		started := r.StartTime
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &started
		} else {
			st.FailureCount++
			st.LastFailure = &started
			st.LastError = r.Error
		}
		st.LastRun = &started
	}
	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
	}
	return st
}

// JobStats summarizes a job's history
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	LastOutcome  *Outcome   `json:"last_outcome,omitempty"`
}
