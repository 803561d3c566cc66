package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Collector joins calendar, quote and sentiment data into raw candidates
// ⭐ SSOT: 외부 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	calendar  contracts.CalendarSource
	quotes    contracts.QuoteSource
	sentiment contracts.SentimentSource // nil이면 감성 분석 생략
	logger    *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent symbols
}

// NewCollector creates a new Collector instance
func NewCollector(
	calendar contracts.CalendarSource,
	quotes contracts.QuoteSource,
	sentiment contracts.SentimentSource,
	log *logger.Logger,
) *Collector {
	return &Collector{
		calendar:  calendar,
		quotes:    quotes,
		sentiment: sentiment,
		logger:    log.WithField("module", "collector"),
	}
}

// FetchResult records what happened to one symbol
type FetchResult struct {
	Symbol       string
	QuoteSource  string
	QuoteErr     error
	SentimentErr error
}

// Collect builds one RawCandidate per calendar event for day.
// Only a calendar failure or cancellation is an error; per-symbol failures
// leave fields empty for the normalizer to judge.
func (c *Collector) Collect(ctx context.Context, day time.Time, cfg Config) ([]contracts.RawCandidate, []FetchResult, error) {
	events, err := c.calendar.Fetch(ctx, day)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch earnings calendar: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"day":     day.Format("2006-01-02"),
		"events":  len(events),
		"workers": workers,
	}).Info("Starting candidate collection")

	raws := make([]contracts.RawCandidate, len(events))
	results := make([]FetchResult, len(events))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, ev := range events {
		g.Go(func() error {
			if ctx.Err() != nil {
				raws[i] = baseCandidate(ev)
				results[i] = FetchResult{Symbol: ev.Symbol, QuoteErr: ctx.Err()}
				return nil
			}
			// 각 고루틴은 자기 슬롯에만 기록
			raws[i], results[i] = c.collectOne(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	quoted, judged := 0, 0
	for _, r := range results {
		if r.QuoteErr == nil {
			quoted++
		}
		if r.QuoteErr == nil && r.SentimentErr == nil && c.sentiment != nil {
			judged++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"total":  len(raws),
		"quoted": quoted,
		"judged": judged,
	}).Info("Candidate collection completed")

	return raws, results, nil
}

// collectOne fetches the quote, then sentiment only when prices exist
func (c *Collector) collectOne(ctx context.Context, ev contracts.EarningsEvent) (contracts.RawCandidate, FetchResult) {
	raw := baseCandidate(ev)
	res := FetchResult{Symbol: ev.Symbol}
	log := c.logger.WithSymbol(ev.Symbol)

	q, err := c.quotes.Quote(ctx, ev.Symbol)
	if err != nil {
		log.WithError(err).Warn("No quote, passing candidate without prices")
		res.QuoteErr = err
		return raw, res
	}

	res.QuoteSource = q.Source
	raw.PreviousClose = contracts.NumberOf(q.PreviousClose)
	raw.CurrentPrice = contracts.NumberOf(q.CurrentPrice)
	if q.MarketCap > 0 {
		raw.MarketCap = contracts.NumberOf(q.MarketCap)
	}
	if q.Volume > 0 {
		raw.Volume = contracts.IntNumber(q.Volume)
	}

	if c.sentiment == nil {
		return raw, res
	}

	req := contracts.SentimentRequest{
		Symbol:        ev.Symbol,
		CompanyName:   ev.CompanyName,
		PreviousClose: q.PreviousClose,
		CurrentPrice:  q.CurrentPrice,
		Window:        string(raw.EarningsWindow),
	}
	if s, ok := ev.Surprise(); ok {
		req.EarningsSurprise = &s
	}

	j, err := c.sentiment.Analyze(ctx, req)
	if err != nil {
		log.WithError(err).Warn("Sentiment unavailable")
		res.SentimentErr = err
		return raw, res
	}

	raw.Sentiment = contracts.Text(j.Sentiment)
	raw.Direction = contracts.Text(j.Direction)
	raw.Confidence = contracts.Number(j.Confidence)
	raw.Result = contracts.Text(j.Result)
	return raw, res
}

// baseCandidate carries the calendar fields
func baseCandidate(ev contracts.EarningsEvent) contracts.RawCandidate {
	raw := contracts.RawCandidate{
		Symbol:         ev.Symbol,
		CompanyName:    ev.CompanyName,
		EarningsWindow: contracts.Text(windowFor(ev.Hour)),
	}
	if s, ok := ev.Surprise(); ok {
		raw.EarningsSurprise = contracts.NumberOf(s)
	}
	return raw
}

// windowFor maps calendar hour codes; anything else is left empty (UNKNOWN)
func windowFor(hour string) contracts.EarningsWindow {
	switch hour {
	case "bmo":
		return contracts.WindowBeforeOpen
	case "amc":
		return contracts.WindowAfterClose
	default:
		return ""
	}
}
