package s2_signals

import (
	"fmt"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// Classifier maps a scored candidate to a Signal
// ⭐ SSOT: 시그널 분류 규칙 (첫 번째 매칭 우선)
type Classifier struct {
	cfg strategyconfig.Classification
}

// NewClassifier creates a classifier with immutable parameters
func NewClassifier(cfg strategyconfig.Classification) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify applies the minimum-score gate, then the first matching rule.
// NEUTRAL sentiment never produces a signal.
func (c *Classifier) Classify(cand contracts.CanonicalCandidate, score float64) contracts.Signal {
	if score < c.cfg.MinScore {
		return noSignal("score %.0f below gate %.0f", score, c.cfg.MinScore)
	}

	dir := cand.Direction
	if dir == contracts.DirectionAbsent {
		if c.cfg.RequireDirection {
			return noSignal("no direction judgment")
		}
		dir = cand.GapDirection
	}

	gap := cand.GapPercent
	switch {
	case cand.Sentiment == contracts.SentimentPositive && dir == contracts.DirectionUp && gap > c.cfg.StrongGap:
		return signal(contracts.SignalStrongBuy, "positive, UP, gap %+.1f%% > %.1f%%", cand.GapPercentDisplay, c.cfg.StrongGap)
	case cand.Sentiment == contracts.SentimentPositive && dir == contracts.DirectionUp && gap > c.cfg.MinGap:
		return signal(contracts.SignalBuy, "positive, UP, gap %+.1f%% > %.1f%%", cand.GapPercentDisplay, c.cfg.MinGap)
	case cand.Sentiment == contracts.SentimentNegative && dir == contracts.DirectionDown && gap < -c.cfg.StrongGap:
		return signal(contracts.SignalStrongShort, "negative, DOWN, gap %+.1f%% < -%.1f%%", cand.GapPercentDisplay, c.cfg.StrongGap)
	case cand.Sentiment == contracts.SentimentNegative && dir == contracts.DirectionDown && gap < -c.cfg.MinGap:
		return signal(contracts.SignalShort, "negative, DOWN, gap %+.1f%% < -%.1f%%", cand.GapPercentDisplay, c.cfg.MinGap)
	}

	sentiment := string(cand.Sentiment)
	if sentiment == "" {
		sentiment = "no"
	}
	return noSignal("%s sentiment, %s, gap %+.1f%% match no rule", sentiment, dir, cand.GapPercentDisplay)
}

func signal(t contracts.SignalType, format string, args ...interface{}) contracts.Signal {
	return contracts.Signal{Type: t, Reason: fmt.Sprintf(format, args...)}
}

func noSignal(format string, args ...interface{}) contracts.Signal {
	return signal(contracts.SignalNone, format, args...)
}
