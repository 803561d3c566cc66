package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// SourceName identifies Alpha Vantage in quotes and logs
const SourceName = "alphavantage"

// ErrThrottled is returned when the API answers with a quota notice instead of data
var ErrThrottled = errors.New("alphavantage: request quota exceeded")

// Client handles communication with Alpha Vantage (free tier: 25 calls/day)
// ⭐ SSOT: Alpha Vantage API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Alpha Vantage client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.AlphaVantageConfig) *Client {
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

// globalQuoteResponse is the GLOBAL_QUOTE payload. All values are strings.
type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
}

// Quote fetches the latest price and previous close via GLOBAL_QUOTE
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	params := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}

	var resp globalQuoteResponse
	if err := c.httpClient.GetJSON(ctx, fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode()), &resp); err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}

	// 쿼터 초과 시 200 + Note/Information 반환
	if len(resp.GlobalQuote) == 0 {
		if resp.Note != "" || resp.Information != "" {
			return nil, ErrThrottled
		}
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, contracts.ErrNoQuote)
	}

	price := parseField(resp.GlobalQuote, "05. price")
	prevClose := parseField(resp.GlobalQuote, "08. previous close")
	if price <= 0 || prevClose <= 0 {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, contracts.ErrNoQuote)
	}

	return &contracts.Quote{
		Symbol:        symbol,
		PreviousClose: prevClose,
		CurrentPrice:  price,
		Volume:        int64(parseField(resp.GlobalQuote, "06. volume")),
		Source:        SourceName,
		FetchedAt:     c.now().UTC(),
	}, nil
}

// parseField reads a numeric string field, 0 when missing or malformed
func parseField(fields map[string]string, key string) float64 {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
