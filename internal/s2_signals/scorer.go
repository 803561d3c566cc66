package s2_signals

import (
	"fmt"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// Scorer computes the opportunity score of a canonical candidate
// ⭐ SSOT: 점수 계산은 여기서만 (순수 함수, 로그 없음)
type Scorer struct {
	cfg strategyconfig.Scoring
}

// NewScorer creates a scorer with immutable parameters
func NewScorer(cfg strategyconfig.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the candidate with a score in [ScoreMin, ScoreMax] and the
// ordered list of terms that produced it.
func (s *Scorer) Score(c contracts.CanonicalCandidate) contracts.ScoredCandidate {
	out := contracts.ScoredCandidate{CanonicalCandidate: c}
	bands := s.cfg.BandsFor(string(c.EarningsWindow))
	absGap := c.AbsGap()

	// Hard floor: 나머지 항목 계산 안 함
	if absGap < bands.Floor {
		out.Score = s.cfg.ScoreMin
		out.Reasons = []string{fmt.Sprintf("gap %.2f%% below floor %.2f%%: score %.0f", absGap, bands.Floor, s.cfg.ScoreMin)}
		return out
	}

	score := float64(c.Confidence) * s.cfg.ConfidenceMultiplier
	reasons := []string{fmt.Sprintf("base: confidence %d x %.0f = %.0f", c.Confidence, s.cfg.ConfidenceMultiplier, score)}

	add := func(delta float64, format string, args ...interface{}) {
		if delta == 0 {
			return
		}
		score += delta
		reasons = append(reasons, fmt.Sprintf("%+.0f ", delta)+fmt.Sprintf(format, args...))
	}

	// 1. Gap bands
	switch {
	case absGap < bands.Meaningful:
		add(bands.WeakPenalty, "weak gap %.2f%%", absGap)
	case absGap < bands.Tradable:
		// neutral band
	case absGap <= bands.Excessive:
		add(bands.TradableBonus, "tradable gap %.2f%%", absGap)
	default:
		if bands.StackExcessive {
			add(bands.TradableBonus, "tradable gap %.2f%%", absGap)
		}
		add(bands.ExcessivePenalty, "excessive gap %.2f%% > %.2f%%", absGap, bands.Excessive)
	}

	// 2. Direction alignment (direction 없으면 항목 없음)
	if c.Direction != contracts.DirectionAbsent {
		if c.DirectionAligned() {
			add(s.cfg.Alignment.Aligned, "direction %s matches gap", c.Direction)
		} else {
			add(s.cfg.Alignment.Misaligned, "direction %s against gap %s", c.Direction, c.GapDirection)
		}
	}

	// 3. Sentiment coherence
	if c.Sentiment != contracts.SentimentAbsent {
		dir := c.EffectiveDirection()
		switch {
		case c.Sentiment == contracts.SentimentNeutral:
			add(s.cfg.Coherence.Neutral, "neutral sentiment")
		case c.Sentiment == contracts.SentimentPositive && dir == contracts.DirectionUp,
			c.Sentiment == contracts.SentimentNegative && dir == contracts.DirectionDown:
			add(s.cfg.Coherence.Coherent, "%s sentiment coherent with %s", c.Sentiment, dir)
		default:
			add(s.cfg.Coherence.Conflict, "%s sentiment conflicts with %s", c.Sentiment, dir)
		}
	}

	// 4. Size / volume / surprise (기본값 0 → 비활성)
	if c.MarketCap > 0 && c.MarketCap < s.cfg.Size.MinMarketCap {
		add(s.cfg.Size.SmallCap, "small cap %.0f", c.MarketCap)
	}
	if c.Volume > 0 && c.Volume < s.cfg.Volume.MinVolume {
		add(s.cfg.Volume.LowVolume, "low volume %d", c.Volume)
	}
	if c.HasSurprise && c.EarningsSurprise != 0 {
		surpriseUp := c.EarningsSurprise > 0
		if surpriseUp == (c.GapDirection == contracts.DirectionUp) {
			add(s.cfg.Surprise.Agree, "surprise %+.2f agrees with gap", c.EarningsSurprise)
		} else {
			add(s.cfg.Surprise.Conflict, "surprise %+.2f conflicts with gap", c.EarningsSurprise)
		}
	}

	out.Score = clamp(score, s.cfg.ScoreMin, s.cfg.ScoreMax)
	out.Reasons = reasons
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
