package finnhub

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// quoteResponse is the /quote payload
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// profileResponse is the /stock/profile2 payload (market cap in millions)
type profileResponse struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	MarketCapitalization float64 `json:"marketCapitalization"`
}

// Quote fetches the current price and previous close for a symbol.
// Unknown symbols come back as all zeros, reported as contracts.ErrNoQuote.
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	var resp quoteResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/quote", url.Values{"symbol": {symbol}}), &resp); err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}

	if resp.Current <= 0 || resp.PreviousClose <= 0 {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, contracts.ErrNoQuote)
	}

	q := &contracts.Quote{
		Symbol:        symbol,
		PreviousClose: resp.PreviousClose,
		CurrentPrice:  resp.Current,
		Source:        SourceName,
		FetchedAt:     c.now().UTC(),
	}

	// 시가총액은 실패해도 시세는 반환
	if mcap, err := c.MarketCap(ctx, symbol); err == nil {
		q.MarketCap = mcap
	} else {
		c.logger.WithSymbol(symbol).WithError(err).Debug("Finnhub market cap unavailable")
	}

	return q, nil
}

// MarketCap returns the company market capitalization in dollars
func (c *Client) MarketCap(ctx context.Context, symbol string) (float64, error) {
	var resp profileResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/stock/profile2", url.Values{"symbol": {symbol}}), &resp); err != nil {
		return 0, fmt.Errorf("finnhub profile %s: %w", symbol, err)
	}
	if resp.MarketCapitalization <= 0 {
		return 0, fmt.Errorf("finnhub profile %s: no market cap", symbol)
	}
	return resp.MarketCapitalization * 1_000_000, nil
}
