package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/redis"
)

type fakeProvider struct {
	name  string
	quote *contracts.Quote
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Quote(_ context.Context, symbol string) (*contracts.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

func TestFallback_FirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "a", quote: &contracts.Quote{PreviousClose: 162.5, CurrentPrice: 165.8, MarketCap: 1e9}}
	second := &fakeProvider{name: "b", quote: &contracts.Quote{PreviousClose: 1, CurrentPrice: 2}}

	q, err := NewFallback(logger.Nop(), first, second).Quote(context.Background(), "MRK")
	require.NoError(t, err)
	assert.Equal(t, 165.8, q.CurrentPrice)
	assert.Equal(t, 1e9, q.MarketCap)
	assert.Equal(t, 0, second.calls)
}

func TestFallback_SkipsFailuresAndInvalid(t *testing.T) {
	failing := &fakeProvider{name: "finnhub", err: errors.New("boom")}
	empty := &fakeProvider{name: "alphavantage", quote: &contracts.Quote{PreviousClose: 282.12}}
	good := &fakeProvider{name: "polygon", quote: &contracts.Quote{PreviousClose: 282.12, CurrentPrice: 269.08}}

	start := time.Now()
	q, err := NewFallback(logger.Nop(), failing, empty, good).
		WithPause(10*time.Millisecond).
		Quote(context.Background(), "UNH")
	require.NoError(t, err)

	assert.Equal(t, 269.08, q.CurrentPrice)
	assert.Equal(t, 255e9, q.MarketCap, "static market cap fills the gap")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestFallback_AllFail(t *testing.T) {
	a := &fakeProvider{name: "a", err: contracts.ErrNoQuote}
	b := &fakeProvider{name: "b", err: errors.New("timeout")}

	_, err := NewFallback(logger.Nop(), a, b).Quote(context.Background(), "ZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNoQuote)
	assert.Contains(t, err.Error(), "b: timeout")
}

func TestFallback_NoProviders(t *testing.T) {
	_, err := NewFallback(logger.Nop()).Quote(context.Background(), "MRK")
	assert.ErrorIs(t, err, contracts.ErrNoQuote)
}

func TestFallback_ContextCancelledDuringPause(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", quote: &contracts.Quote{PreviousClose: 1, CurrentPrice: 2}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewFallback(logger.Nop(), a, b).WithPause(time.Second).Quote(ctx, "MRK")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, b.calls)
}

func TestFallback_DisabledCacheIsTransparent(t *testing.T) {
	p := &fakeProvider{name: "a", quote: &contracts.Quote{PreviousClose: 1, CurrentPrice: 2}}
	f := NewFallback(logger.Nop(), p).WithCache(redis.NewCache(redis.Disabled(), "test"), time.Minute)

	for i := 0; i < 2; i++ {
		_, err := f.Quote(context.Background(), "BA")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.calls)
}

func TestDefaultMarketCaps(t *testing.T) {
	caps := DefaultMarketCaps()
	assert.Len(t, caps, 5)
	assert.Equal(t, 52e9, caps["SPOT"])

	caps["SPOT"] = 0
	assert.Equal(t, 52e9, DefaultMarketCaps()["SPOT"], "table is copied per call")
}
