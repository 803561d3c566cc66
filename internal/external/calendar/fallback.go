package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/redis"
)

// Fallback asks calendar sources in order; the first non-empty answer wins
// ⭐ SSOT: 실적 일정 소스 우선순위 (Finnhub → Yahoo → watchlist)
type Fallback struct {
	sources []contracts.CalendarSource
	logger  *logger.Logger
	cache   *redis.Cache
}

// NewFallback creates a fallback chain over sources (order matters)
func NewFallback(log *logger.Logger, sources ...contracts.CalendarSource) *Fallback {
	return &Fallback{sources: sources, logger: log}
}

// WithCache caches the winning list per day
func (f *Fallback) WithCache(cache *redis.Cache) *Fallback {
	f.cache = cache
	return f
}

// Name implements contracts.CalendarSource
func (f *Fallback) Name() string {
	return "calendar"
}

// Fetch implements contracts.CalendarSource
func (f *Fallback) Fetch(ctx context.Context, day time.Time) ([]contracts.EarningsEvent, error) {
	key := redis.CalendarKey(f.Name(), day)
	if f.cache != nil {
		var cached []contracts.EarningsEvent
		if found, err := f.cache.Get(ctx, key, &cached); err == nil && found && len(cached) > 0 {
			return cached, nil
		}
	}

	var errs []error
	for _, src := range f.sources {
		events, err := src.Fetch(ctx, day)
		if err != nil {
			f.logger.WithField("source", src.Name()).WithError(err).Warn("Calendar source failed")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		events = dedupe(events)
		if len(events) == 0 {
			f.logger.WithField("source", src.Name()).Debug("Calendar source returned nothing")
			continue
		}

		if f.cache != nil {
			if err := f.cache.Set(ctx, key, events, redis.TTLCalendar); err != nil {
				f.logger.WithError(err).Warn("Calendar cache write failed")
			}
		}

		f.logger.WithFields(map[string]interface{}{
			"source": src.Name(),
			"count":  len(events),
		}).Info("Earnings calendar loaded")
		return events, nil
	}

	// 모든 소스가 비어 있으면 빈 목록 (에러 아님)
	if len(errs) == len(f.sources) && len(errs) > 0 {
		return nil, fmt.Errorf("all calendar sources failed: %w", errors.Join(errs...))
	}
	return nil, nil
}

// dedupe upper-cases symbols and keeps the first event per symbol
func dedupe(events []contracts.EarningsEvent) []contracts.EarningsEvent {
	seen := make(map[string]bool, len(events))
	out := make([]contracts.EarningsEvent, 0, len(events))
	for _, e := range events {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if e.Symbol == "" || seen[e.Symbol] {
			continue
		}
		seen[e.Symbol] = true
		out = append(out, e)
	}
	return out
}
