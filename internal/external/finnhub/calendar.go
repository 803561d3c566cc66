package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// calendarResponse is the /calendar/earnings payload
type calendarResponse struct {
	EarningsCalendar []calendarItem `json:"earningsCalendar"`
}

type calendarItem struct {
	Date            string   `json:"date"`
	EPSActual       *float64 `json:"epsActual"`
	EPSEstimate     *float64 `json:"epsEstimate"`
	Hour            string   `json:"hour"` // bmo, amc, dmh
	Quarter         int      `json:"quarter"`
	RevenueActual   *float64 `json:"revenueActual"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
	Symbol          string   `json:"symbol"`
	Year            int      `json:"year"`
}

// Fetch implements contracts.CalendarSource for a single day
func (c *Client) Fetch(ctx context.Context, day time.Time) ([]contracts.EarningsEvent, error) {
	return c.EarningsCalendar(ctx, day, day)
}

// EarningsCalendar lists earnings releases between from and to (inclusive)
func (c *Client) EarningsCalendar(ctx context.Context, from, to time.Time) ([]contracts.EarningsEvent, error) {
	params := url.Values{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}

	var resp calendarResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/calendar/earnings", params), &resp); err != nil {
		return nil, fmt.Errorf("finnhub earnings calendar: %w", err)
	}

	events := make([]contracts.EarningsEvent, 0, len(resp.EarningsCalendar))
	for _, item := range resp.EarningsCalendar {
		symbol := strings.ToUpper(strings.TrimSpace(item.Symbol))
		if symbol == "" {
			continue
		}

		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			date = from
		}

		events = append(events, contracts.EarningsEvent{
			Symbol:      symbol,
			Date:        date,
			Hour:        strings.ToLower(item.Hour),
			EPSActual:   item.EPSActual,
			EPSEstimate: item.EPSEstimate,
			Source:      SourceName,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"from":  params.Get("from"),
		"to":    params.Get("to"),
		"count": len(events),
	}).Debug("Fetched earnings calendar")
	return events, nil
}
