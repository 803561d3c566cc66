package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/redis"
)

// Fallback tries quote providers in order until one returns usable prices
// ⭐ SSOT: 시세 공급자 우선순위 (Finnhub → Alpha Vantage → Polygon)
type Fallback struct {
	providers  []contracts.QuoteSource
	logger     *logger.Logger
	cache      *redis.Cache
	cacheTTL   time.Duration
	pause      time.Duration
	marketCaps map[string]float64
}

// NewFallback creates a fallback chain over providers (order matters)
func NewFallback(log *logger.Logger, providers ...contracts.QuoteSource) *Fallback {
	return &Fallback{
		providers:  providers,
		logger:     log,
		cacheTTL:   redis.TTLQuote,
		marketCaps: DefaultMarketCaps(),
	}
}

// WithCache caches successful quotes
func (f *Fallback) WithCache(cache *redis.Cache, ttl time.Duration) *Fallback {
	f.cache = cache
	if ttl > 0 {
		f.cacheTTL = ttl
	}
	return f
}

// WithPause sets the wait between a failed provider and the next one
func (f *Fallback) WithPause(d time.Duration) *Fallback {
	f.pause = d
	return f
}

// WithMarketCaps replaces the static market cap table
func (f *Fallback) WithMarketCaps(caps map[string]float64) *Fallback {
	f.marketCaps = caps
	return f
}

// Name implements contracts.QuoteSource
func (f *Fallback) Name() string {
	return "quotes"
}

// Quote returns the first valid quote among the providers
func (f *Fallback) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	log := f.logger.WithSymbol(symbol)

	if f.cache != nil {
		var cached contracts.Quote
		found, err := f.cache.Get(ctx, redis.QuoteKey(symbol), &cached)
		if err != nil {
			log.WithError(err).Warn("Quote cache read failed")
		}
		if found && cached.Valid() {
			return &cached, nil
		}
	}

	var errs []error
	for i, p := range f.providers {
		if i > 0 && f.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.pause):
			}
		}

		q, err := p.Quote(ctx, symbol)
		if err == nil && !q.Valid() {
			err = contracts.ErrNoQuote
		}
		if err != nil {
			log.WithField("provider", p.Name()).WithError(err).Debug("Quote provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		if q.MarketCap <= 0 {
			q.MarketCap = f.marketCaps[symbol]
		}

		if f.cache != nil {
			if err := f.cache.Set(ctx, redis.QuoteKey(symbol), q, f.cacheTTL); err != nil {
				log.WithError(err).Warn("Quote cache write failed")
			}
		}

		log.WithField("provider", p.Name()).Debug("Got quote")
		return q, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no quote providers configured for %s: %w", symbol, contracts.ErrNoQuote)
	}
	return nil, fmt.Errorf("all quote providers failed for %s: %w", symbol, errors.Join(errs...))
}
