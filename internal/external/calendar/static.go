package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// Static reports a fixed watchlist as the day's reporting companies
type Static struct {
	symbols []string
}

// NewStatic creates a watchlist source
func NewStatic(symbols []string) *Static {
	return &Static{symbols: symbols}
}

// Name implements contracts.CalendarSource
func (s *Static) Name() string {
	return "watchlist"
}

// Fetch implements contracts.CalendarSource
func (s *Static) Fetch(_ context.Context, day time.Time) ([]contracts.EarningsEvent, error) {
	events := make([]contracts.EarningsEvent, 0, len(s.symbols))
	for _, sym := range s.symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		events = append(events, contracts.EarningsEvent{
			Symbol: sym,
			Date:   day,
			Source: s.Name(),
		})
	}
	return events, nil
}
