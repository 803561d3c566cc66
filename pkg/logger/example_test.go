package logger_test

import (
	"errors"

	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Scan started")
	log.Warnf("Quote provider %s throttled, trying next", "alphavantage")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Per-run and per-symbol context
	runLog := log.WithRun("6f1c0a52-2d7e-4b55-9a53-0d7f0c1d9e21")
	runLog.WithSymbol("MRK").WithFields(map[string]interface{}{
		"gap_percent": 2.0,
		"score":       100,
		"signal":      "STRONG_BUY",
	}).Info("Candidate selected")
	// {"level":"info","env":"production","run_id":"6f1c...","symbol":"MRK","gap_percent":2,"score":100,"signal":"STRONG_BUY","message":"Candidate selected",...}
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("no quote data")
	log.WithError(err).
		WithFields(map[string]interface{}{
			"symbol":   "SPOT",
			"provider": "polygon",
		}).
		Error("Quote fetch failed")
}
