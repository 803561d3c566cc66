package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	failures int32
	runs     int32
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }

func (j *testJob) Run(ctx context.Context) (*Outcome, error) {
	n := atomic.AddInt32(&j.runs, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return nil, errors.New("transient")
	}
	return &Outcome{RunID: fmt.Sprintf("run-%d", n), TradingDay: "2025-07-29", Considered: 6, Selected: 4}, nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop(), time.UTC)

	require.NoError(t, s.AddJob(&testJob{name: "scan", schedule: "0 45 9 * * MON-FRI"}))
	assert.Error(t, s.AddJob(&testJob{name: "scan", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&testJob{name: "bad", schedule: "not a schedule"}))
	assert.Equal(t, []string{"scan"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("scan"))
	assert.Error(t, s.RemoveJob("scan"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.GetJobStats())
}

func TestRunJob_RetriesThenSucceeds(t *testing.T) {
	s := New(logger.Nop(), time.UTC).WithRetry(2, time.Millisecond)
	job := &testJob{name: "scan", schedule: "@daily", failures: 1}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))
	require.Eventually(t, func() bool {
		h, _ := s.GetJobHistory("scan")
		return len(h.Results) == 1
	}, time.Second, 5*time.Millisecond)

	stats := s.GetJobStats()["scan"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.runs))
	assert.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastOutcome)
	assert.Equal(t, "run-2", stats.LastOutcome.RunID)

	h, _ := s.GetJobHistory("scan")
	assert.Equal(t, 2, h.Results[0].Attempts)
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := New(logger.Nop(), time.UTC).WithRetry(1, time.Millisecond)
	job := &testJob{name: "scan", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	result := s.runJob(context.Background(), job)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Nil(t, result.Outcome)

	h, err := s.GetJobHistory("scan")
	require.NoError(t, err)
	require.Len(t, h.Results, 1)
	assert.Equal(t, "transient", h.Results[0].Error)

	stats := s.GetJobStats()["scan"]
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Equal(t, "transient", stats.LastError)
	assert.Nil(t, stats.LastOutcome)
	assert.Error(t, s.RunJob("missing"))
}

func TestRunNow(t *testing.T) {
	s := New(logger.Nop(), time.UTC).WithRetry(0, time.Millisecond)
	require.NoError(t, s.AddJob(&testJob{name: "scan", schedule: "@daily"}))

	result, err := s.RunNow(context.Background(), "scan")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "2025-07-29 run run-1: considered 6, qualified 0, selected 4", result.Outcome.String())

	_, err = s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunNow_CancelledSkipsRetryWait(t *testing.T) {
	s := New(logger.Nop(), time.UTC).WithRetry(3, time.Hour)
	require.NoError(t, s.AddJob(&testJob{name: "scan", schedule: "@daily", failures: 10}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result, err := s.RunNow(ctx, "scan")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestNextRun_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := New(logger.Nop(), ny)
	require.NoError(t, s.AddJob(&testJob{name: "scan", schedule: "0 45 9 * * *"}))
	s.Start()
	defer s.Stop()

	var next time.Time
	require.Eventually(t, func() bool {
		next, err = s.NextRun("scan")
		return err == nil && !next.IsZero()
	}, time.Second, 5*time.Millisecond)
	local := next.In(ny)
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 45, local.Minute())
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Nil(t, h.LastOutcome())

	for i := 0; i < 105; i++ {
		r := JobResult{Success: i%2 == 0, Attempts: i}
		if r.Success {
			r.Outcome = &Outcome{RunID: fmt.Sprintf("run-%d", i)}
		}
		h.Add(r)
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 5, h.Results[0].Attempts, "oldest dropped first")

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 104, latest.Attempts)

	// 실패한 실행이 마지막이어도 직전 성공 결과 유지
	h.Add(JobResult{Success: false, Outcome: &Outcome{RunID: "partial"}})
	assert.Equal(t, "run-104", h.LastOutcome().RunID)

	st := h.stats("scan", "@daily")
	assert.Equal(t, historyLimit, st.TotalRuns)
	assert.InDelta(t, 0.5, st.SuccessRate, 0.01)
	assert.NotNil(t, st.LastFailure)
}

func TestOutcome_String(t *testing.T) {
	var none *Outcome
	assert.Equal(t, "-", none.String())

	o := &Outcome{RunID: "2b1f1c0e-5a4e", TradingDay: "2025-07-29", Considered: 6, Qualified: 4, Selected: 2, Symbols: []string{"MRK", "UNH"}}
	assert.Equal(t, "2025-07-29 run 2b1f1c0e: considered 6, qualified 4, selected 2 [MRK UNH]", o.String())
}
