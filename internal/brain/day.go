package brain

import (
	"fmt"
	"time"
)

// DateLayout is the trading date format used by the CLI and API
const DateLayout = "2006-01-02"

// TradingDay is midnight of t's calendar date in loc, expressed in UTC
// ⭐ SSOT: 거래일 정규화는 여기서만
func TradingDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveTradingDay parses YYYY-MM-DD as a date in loc. Empty means the
// trading day containing now.
func ResolveTradingDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return TradingDay(now, loc), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return TradingDay(t, loc), nil
}
