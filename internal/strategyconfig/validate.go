package strategyconfig

import (
	"fmt"
	"time"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// knownWindows are the keys accepted in scoring.window_overrides.
var knownWindows = map[string]bool{
	"BEFORE_OPEN": true,
	"AFTER_CLOSE": true,
	"UNKNOWN":     true,
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	// === Normalization ===
	n := cfg.Normalization
	if n.ConfidenceMin < 0 || n.ConfidenceMin > n.ConfidenceMax {
		return ValidationError{"normalization", "must satisfy 0 <= confidence_min <= confidence_max"}
	}
	if n.DefaultConfidence < n.ConfidenceMin || n.DefaultConfidence > n.ConfidenceMax {
		return ValidationError{"normalization.default_confidence", fmt.Sprintf("must be in [%d, %d]", n.ConfidenceMin, n.ConfidenceMax)}
	}
	if n.GapDisplayDigits < 0 || n.GapDisplayDigits > 4 {
		return ValidationError{"normalization.gap_display_digits", "must be in [0, 4]"}
	}
	if n.SymbolRule == "" {
		return ValidationError{"normalization.symbol_rule", "required"}
	}

	// === Scoring ===
	s := cfg.Scoring
	if s.ConfidenceMultiplier <= 0 {
		return ValidationError{"scoring.confidence_multiplier", "must be > 0"}
	}
	if s.ScoreMin >= s.ScoreMax {
		return ValidationError{"scoring", "score_min must be < score_max"}
	}
	if err := validateBands("scoring.gap", s.Gap); err != nil {
		return err
	}
	for window, bands := range s.WindowOverrides {
		if !knownWindows[window] {
			return ValidationError{"scoring.window_overrides", fmt.Sprintf("unknown window %q", window)}
		}
		if err := validateBands("scoring.window_overrides."+window, bands); err != nil {
			return err
		}
	}
	if s.Size.MinMarketCap < 0 {
		return ValidationError{"scoring.size.min_market_cap", "must be >= 0"}
	}
	if s.Volume.MinVolume < 0 {
		return ValidationError{"scoring.volume.min_volume", "must be >= 0"}
	}

	// === Classification ===
	c := cfg.Classification
	if c.MinScore < s.ScoreMin || c.MinScore > s.ScoreMax {
		return ValidationError{"classification.min_score", fmt.Sprintf("must be in [%.0f, %.0f]", s.ScoreMin, s.ScoreMax)}
	}
	if c.MinGap < 0 || c.StrongGap < c.MinGap {
		return ValidationError{"classification", "must satisfy 0 <= min_gap <= strong_gap"}
	}

	// === Selection ===
	if cfg.Selection.TopN < 1 {
		return ValidationError{"selection.top_n", "must be >= 1"}
	}

	return nil
}

// validateBands 구간 경계: 0 <= floor <= meaningful <= tradable <= excessive
func validateBands(field string, b GapBands) error {
	if b.Floor < 0 {
		return ValidationError{field + ".floor", "must be >= 0"}
	}
	if b.Floor > b.Meaningful || b.Meaningful > b.Tradable || b.Tradable > b.Excessive {
		return ValidationError{field, "must satisfy floor <= meaningful <= tradable <= excessive"}
	}
	return nil
}

// Warn returns recommended-but-not-required violations (경고만).
func Warn(cfg *Config) []Warning {
	var out []Warning

	if cfg.Scoring.Gap.StackExcessive {
		out = append(out, Warning{
			Code:    "GAP_STACKING",
			Message: "stack_excessive adds the tradable bonus to gaps above the excessive bound",
		})
	}
	if !cfg.Classification.RequireDirection {
		out = append(out, Warning{
			Code:    "DIRECTION_OPTIONAL",
			Message: "signals may be emitted without an explicit direction judgment",
		})
	}
	maxBase := float64(cfg.Normalization.ConfidenceMax) * cfg.Scoring.ConfidenceMultiplier
	if maxBase+cfg.Scoring.Gap.TradableBonus+cfg.Scoring.Alignment.Aligned+cfg.Scoring.Coherence.Coherent < cfg.Classification.MinScore {
		out = append(out, Warning{
			Code:    "GATE_UNREACHABLE",
			Message: fmt.Sprintf("min_score %.0f cannot be reached", cfg.Classification.MinScore),
		})
	}

	return out
}
