package finnhub

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// SourceName identifies Finnhub in quotes, events and logs
const SourceName = "finnhub"

// Client handles communication with the Finnhub REST API
// ⭐ SSOT: Finnhub API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Finnhub client.
// The free tier allows 60 calls/min, so httpClient should carry a limiter.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.FinnhubConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		now:        time.Now,
	}
}

// Name implements contracts.QuoteSource and contracts.CalendarSource
func (c *Client) Name() string {
	return SourceName
}

// endpoint builds a request URL with the API token attached
func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}
