package polygon

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// SourceName identifies Polygon.io in quotes and logs
const SourceName = "polygon"

// Client handles communication with Polygon.io (free tier: 5 calls/min)
// ⭐ SSOT: Polygon API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Polygon.io client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.PolygonConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		now:        time.Now,
	}
}

// Name implements contracts.QuoteSource
func (c *Client) Name() string {
	return SourceName
}

type prevAggResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
	} `json:"results"`
}

type lastTradeResponse struct {
	Status string `json:"status"`
	Last   struct {
		Price float64 `json:"price"`
	} `json:"last"`
}

// Quote combines the previous-day aggregate (close) with the last trade (current price)
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	params := url.Values{"adjusted": {"true"}, "apikey": {c.apiKey}}

	var prev prevAggResponse
	prevURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	if err := c.httpClient.GetJSON(ctx, prevURL, &prev); err != nil {
		return nil, fmt.Errorf("polygon prev close %s: %w", symbol, err)
	}

	// 무료 플랜은 DELAYED 상태로 응답
	if (prev.Status != "OK" && prev.Status != "DELAYED") || len(prev.Results) == 0 || prev.Results[0].Close <= 0 {
		return nil, fmt.Errorf("polygon prev close %s: %w", symbol, contracts.ErrNoQuote)
	}

	var last lastTradeResponse
	lastURL := fmt.Sprintf("%s/v1/last/stocks/%s?%s", c.baseURL, url.PathEscape(symbol), url.Values{"apikey": {c.apiKey}}.Encode())
	if err := c.httpClient.GetJSON(ctx, lastURL, &last); err != nil {
		return nil, fmt.Errorf("polygon last trade %s: %w", symbol, err)
	}
	if last.Last.Price <= 0 {
		return nil, fmt.Errorf("polygon last trade %s: %w", symbol, contracts.ErrNoQuote)
	}

	return &contracts.Quote{
		Symbol:        symbol,
		PreviousClose: prev.Results[0].Close,
		CurrentPrice:  last.Last.Price,
		Volume:        int64(prev.Results[0].Volume),
		Source:        SourceName,
		FetchedAt:     c.now().UTC(),
	}, nil
}
