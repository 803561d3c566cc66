package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kcpatrick93/earning-scalp-bot/internal/api/ws"
	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/data/repos"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/alphavantage"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/calendar"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/claude"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/finnhub"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/polygon"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/quotes"
	"github.com/kcpatrick93/earning-scalp-bot/internal/external/telegram"
	"github.com/kcpatrick93/earning-scalp-bot/internal/notify"
	"github.com/kcpatrick93/earning-scalp-bot/internal/s0_data/collector"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/database"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/redis"
)

// app holds every wired component for one process
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	pipeline *brain.Pipeline
	engine   *brain.Engine
	repo     contracts.ReportRepository // nil이면 저장 비활성
	hub      *ws.Hub

	closers []func()
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadConfig loads env config and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyPath != "" {
		cfg.Scan.StrategyPath = strategyPath
	}
	return cfg, logger.New(cfg), nil
}

// loadStrategy loads the strategy YAML (or the defaults) with its audit snapshot
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, *contracts.DecisionSnapshot, error) {
	strategy, snapshot, err := strategyconfig.LoadSnapshot(cfg.Scan.StrategyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load strategy: %w", err)
	}
	return strategy, snapshot, nil
}

// newApp wires collaborators from config. withHub adds the websocket sink.
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(withHub bool) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	strategy, snapshot, err := loadStrategy(cfg)
	if err != nil {
		return nil, err
	}
	a.strategy = strategy
	a.pipeline = brain.NewPipeline(strategy)
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// Redis (cache + shared rate limits); disabled → no-op
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	cache := redis.NewCache(rdb, "scalp")
	limiter := redis.NewRateLimiter(rdb, "scalp")

	// Sources
	cal := buildCalendar(cfg, log, cache, limiter)
	quoteSource := buildQuotes(cfg, log, cache, limiter)

	var sentiment contracts.SentimentSource
	if cfg.Anthropic.Enabled() {
		sentiment = claude.NewAnalyzer(cfg.Anthropic, log)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, candidates will carry no sentiment")
	}

	col := collector.NewCollector(cal, quoteSource, sentiment, log)

	// Storage
	db, err := database.New(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info("DATABASE_URL not set, reports will not be stored")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		a.closers = append(a.closers, db.Close)
		repo := repos.NewReportRepository(db.Pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.repo = repo
	}

	// Sinks
	var sinks []contracts.Notifier
	if cfg.Telegram.Enabled() {
		sinks = append(sinks, telegram.NewNotifier(httputil.New(cfg, log), log, cfg.Telegram, cfg.Location()))
	}
	if withHub {
		a.hub = ws.NewHub(log)
		a.closers = append(a.closers, a.hub.Close)
		sinks = append(sinks, a.hub)
	}
	var notifier contracts.Notifier
	if len(sinks) > 0 {
		notifier = notify.NewMulti(log, sinks...)
	}

	a.engine = brain.NewEngine(brain.EngineConfig{
		Collector:  col,
		Pipeline:   a.pipeline,
		Repository: a.repo,
		Notifier:   notifier,
		Strategy:   snapshot,
		Workers:    cfg.Scan.Concurrency,
	}, log)

	return a, nil
}

// buildCalendar chains Finnhub → Yahoo → static watchlist
func buildCalendar(cfg *config.Config, log *logger.Logger, cache *redis.Cache, limiter *redis.RateLimiter) contracts.CalendarSource {
	var sources []contracts.CalendarSource

	if cfg.Finnhub.APIKey != "" {
		sources = append(sources, finnhub.NewClient(finnhubHTTP(cfg, log, limiter), log, cfg.Finnhub))
	}

	yahooHTTP := httputil.New(cfg, log).WithUserAgent(cfg.Calendar.UserAgent)
	sources = append(sources, calendar.NewYahooScraper(yahooHTTP, log, cfg.Calendar))

	if len(cfg.Calendar.Watchlist) > 0 {
		sources = append(sources, calendar.NewStatic(cfg.Calendar.Watchlist))
	}

	return calendar.NewFallback(log, sources...).WithCache(cache)
}

// buildQuotes chains Finnhub → Alpha Vantage → Polygon for configured keys
func buildQuotes(cfg *config.Config, log *logger.Logger, cache *redis.Cache, limiter *redis.RateLimiter) contracts.QuoteSource {
	var providers []contracts.QuoteSource

	if cfg.Finnhub.APIKey != "" {
		providers = append(providers, finnhub.NewClient(finnhubHTTP(cfg, log, limiter), log, cfg.Finnhub))
	}
	if cfg.AlphaVantage.APIKey != "" {
		httpClient := httputil.NewWithTimeout(cfg, log, cfg.Quotes.Timeout).
			WithRateLimiter(limiter, redis.AlphaVantageRateLimit)
		providers = append(providers, alphavantage.NewClient(httpClient, log, cfg.AlphaVantage))
	}
	if cfg.Polygon.APIKey != "" {
		httpClient := httputil.NewWithTimeout(cfg, log, cfg.Quotes.Timeout).
			WithRateLimiter(limiter, redis.PolygonRateLimit)
		providers = append(providers, polygon.NewClient(httpClient, log, cfg.Polygon))
	}
	if len(providers) == 0 {
		log.Warn("No quote provider key set, every candidate will be unpriced")
	}

	return quotes.NewFallback(log, providers...).
		WithCache(cache, cfg.Quotes.CacheTTL).
		WithPause(cfg.Quotes.ProviderPause).
		WithMarketCaps(quotes.DefaultMarketCaps())
}

// finnhubHTTP paces Finnhub in-process and, with Redis, across processes
func finnhubHTTP(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *httputil.Client {
	rps := cfg.Finnhub.RequestsPerSecond
	if rps < 1 {
		rps = 1
	}
	return httputil.NewWithTimeout(cfg, log, cfg.Quotes.Timeout).
		WithLimiter(rate.NewLimiter(rate.Limit(rps), rps)).
		WithRateLimiter(limiter, redis.FinnhubRateLimit)
}
