package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.Nop()
	c := NewClient(httputil.New(cfg, log).DisableRetry(), log, config.FinnhubConfig{
		APIKey:  "test-token",
		BaseURL: server.URL,
	})
	c.now = func() time.Time { return time.Date(2025, 7, 29, 13, 45, 0, 0, time.UTC) }
	return c
}

func TestQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		assert.Equal(t, "MRK", r.URL.Query().Get("symbol"))

		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(`{"c":165.8,"d":3.3,"dp":2.03,"h":166,"l":163,"o":164,"pc":162.5,"t":1753796700}`))
		case "/stock/profile2":
			w.Write([]byte(`{"name":"Merck & Co Inc","ticker":"MRK","marketCapitalization":320000}`))
		default:
			http.NotFound(w, r)
		}
	})

	q, err := c.Quote(context.Background(), "MRK")
	require.NoError(t, err)
	assert.Equal(t, 162.5, q.PreviousClose)
	assert.Equal(t, 165.8, q.CurrentPrice)
	assert.Equal(t, 320e9, q.MarketCap)
	assert.Equal(t, SourceName, q.Source)
	assert.True(t, q.Valid())
}

func TestQuote_ProfileFailureKeepsPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quote" {
			w.Write([]byte(`{"c":269.08,"pc":282.12}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})

	q, err := c.Quote(context.Background(), "UNH")
	require.NoError(t, err)
	assert.Zero(t, q.MarketCap)
	assert.Equal(t, 282.12, q.PreviousClose)
}

func TestQuote_UnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	_, err := c.Quote(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, contracts.ErrNoQuote))
}

func TestQuote_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Quote(context.Background(), "MRK")
	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.NotContains(t, err.Error(), "test-token")
}

func TestEarningsCalendar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/earnings", r.URL.Path)
		assert.Equal(t, "2025-07-29", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-07-29", r.URL.Query().Get("to"))
		w.Write([]byte(`{"earningsCalendar":[
			{"date":"2025-07-29","epsActual":2.13,"epsEstimate":2.01,"hour":"bmo","quarter":2,"symbol":"MRK","year":2025},
			{"date":"2025-07-29","epsActual":null,"epsEstimate":1.4,"hour":"AMC","quarter":2,"symbol":"spot","year":2025},
			{"date":"2025-07-29","hour":"","symbol":" "}
		]}`))
	})

	day := time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC)
	events, err := c.Fetch(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "MRK", events[0].Symbol)
	assert.Equal(t, "bmo", events[0].Hour)
	surprise, ok := events[0].Surprise()
	assert.True(t, ok)
	assert.InDelta(t, 0.12, surprise, 1e-9)

	assert.Equal(t, "SPOT", events[1].Symbol)
	assert.Equal(t, "amc", events[1].Hour)
	_, ok = events[1].Surprise()
	assert.False(t, ok)
	assert.Equal(t, day, events[1].Date)
}
