package brain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/s0_data/collector"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

type fakeCollector struct {
	raws  []contracts.RawCandidate
	err   error
	block chan struct{}
}

func (f *fakeCollector) Collect(ctx context.Context, _ time.Time, _ collector.Config) ([]contracts.RawCandidate, []collector.FetchResult, error) {
	if f.block != nil {
		<-f.block
	}
	return f.raws, nil, f.err
}

type memRepo struct {
	mu     sync.Mutex
	saved  []contracts.StoredReport
	failed bool
}

func (m *memRepo) Save(_ context.Context, s *contracts.StoredReport) error {
	if m.failed {
		return errors.New("db down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *s)
	return nil
}

func (m *memRepo) Latest(context.Context) (*contracts.StoredReport, error) {
	return nil, contracts.ErrNotFound
}

func (m *memRepo) ByDate(context.Context, time.Time) ([]contracts.StoredReport, error) {
	return nil, nil
}

type countingNotifier struct {
	reports []*contracts.RunReport
}

func (c *countingNotifier) Name() string { return "counting" }

func (c *countingNotifier) Publish(_ context.Context, r *contracts.RunReport) error {
	c.reports = append(c.reports, r)
	return nil
}

var testSnapshot = contracts.DecisionSnapshot{
	ConfigHash: "abc",
	StrategyID: "earnings_gap_v1",
	Version:    "1.0.0",
	ConfigYAML: "meta: {}",
}

func newEngine(col CandidateCollector, repo contracts.ReportRepository, n contracts.Notifier) *Engine {
	e := NewEngine(EngineConfig{
		Collector:  col,
		Pipeline:   NewPipeline(strategyconfig.Default()),
		Repository: repo,
		Notifier:   n,
		Strategy:   &testSnapshot,
		Workers:    2,
	}, logger.Nop())
	e.now = func() time.Time { return runAt }
	return e
}

func TestEngine_Scan(t *testing.T) {
	repo := &memRepo{}
	n := &countingNotifier{}
	e := newEngine(&fakeCollector{raws: []contracts.RawCandidate{mrk(), unh()}}, repo, n)

	day := time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC)
	res, err := e.Scan(context.Background(), day)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"MRK", "UNH"}, res.Report.Symbols())
	assert.Equal(t, runAt, res.Report.GeneratedAt)
	assert.Equal(t, []string{"S0:Collect", "S1-S5:Pipeline", "Save", "Notify"}, res.CompletedStages)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, res.RunID, repo.saved[0].RunID)
	assert.Equal(t, testSnapshot, repo.saved[0].Strategy)
	assert.Equal(t, day, repo.saved[0].TradingDate)
	require.Len(t, n.reports, 1)
}

func TestEngine_CollectorFailureIsEmptyRun(t *testing.T) {
	n := &countingNotifier{}
	e := newEngine(&fakeCollector{err: errors.New("calendar down")}, nil, n)

	res, err := e.Run(context.Background(), RunConfig{Day: runAt, RunID: "fixed"})
	require.NoError(t, err)

	assert.Equal(t, "fixed", res.RunID)
	assert.True(t, res.Report.Empty())
	assert.Zero(t, res.Report.Considered)
	require.Len(t, n.reports, 1, "empty reports are still published")
}

func TestEngine_SaveFailureStillNotifies(t *testing.T) {
	n := &countingNotifier{}
	e := newEngine(&fakeCollector{raws: []contracts.RawCandidate{mrk()}}, &memRepo{failed: true}, n)

	res, err := e.Scan(context.Background(), runAt)
	require.NoError(t, err)
	assert.Error(t, res.SaveErr)
	assert.Len(t, n.reports, 1)
	assert.NotContains(t, res.CompletedStages, "Save")
}

func TestEngine_DryRun(t *testing.T) {
	repo := &memRepo{}
	n := &countingNotifier{}
	e := newEngine(&fakeCollector{raws: []contracts.RawCandidate{mrk()}}, repo, n)

	res, err := e.Run(context.Background(), RunConfig{Day: runAt, DryRun: true, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Report.Recommendations, 1)
	assert.Empty(t, repo.saved)
	assert.Empty(t, n.reports)
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newEngine(&fakeCollector{err: context.Canceled}, nil, nil)

	_, err := e.Scan(ctx, runAt)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RejectsConcurrentScan(t *testing.T) {
	block := make(chan struct{})
	e := newEngine(&fakeCollector{block: block}, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Scan(context.Background(), runAt)
		done <- err
	}()

	require.Eventually(t, func() bool { return e.running.Load() }, time.Second, time.Millisecond)
	_, err := e.Scan(context.Background(), runAt)
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(block)
	assert.NoError(t, <-done)
}

func TestEngine_StartClaimsSynchronously(t *testing.T) {
	block := make(chan struct{})
	e := newEngine(&fakeCollector{block: block}, nil, nil)

	done := make(chan *RunResult, 1)
	require.NoError(t, e.Start(context.Background(), RunConfig{Day: runAt, RunID: "first"}, func(res *RunResult, err error) {
		assert.NoError(t, err)
		done <- res
	}))

	// 첫 스캔이 아직 수집 중이어도 즉시 거절
	assert.ErrorIs(t, e.Start(context.Background(), RunConfig{Day: runAt}, nil), ErrScanInProgress)
	_, err := e.Run(context.Background(), RunConfig{Day: runAt})
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(block)
	res := <-done
	assert.Equal(t, "first", res.RunID)

	// 완료 후 다시 시작 가능
	require.NoError(t, e.Start(context.Background(), RunConfig{Day: runAt}, nil))
	require.Eventually(t, func() bool { return !e.running.Load() }, time.Second, time.Millisecond)
}

func TestEngine_ConcurrentStartsAdmitOne(t *testing.T) {
	block := make(chan struct{})
	e := newEngine(&fakeCollector{block: block}, nil, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.Start(context.Background(), RunConfig{Day: runAt}, nil)
		}()
	}
	wg.Wait()
	close(errs)

	var started, rejected int
	for err := range errs {
		if err == nil {
			started++
		} else {
			assert.ErrorIs(t, err, ErrScanInProgress)
			rejected++
		}
	}
	assert.Equal(t, 1, started)
	assert.Equal(t, 7, rejected)

	close(block)
	require.Eventually(t, func() bool { return !e.running.Load() }, time.Second, time.Millisecond)
}
