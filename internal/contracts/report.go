package contracts

import "time"

// RunReport is the output of one pipeline run. Every notification sink and
// the report store consume this exact shape.
// ⭐ SSOT: 최종 결과 (모든 sink 공통)
type RunReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Considered      int              `json:"considered"` // raw candidates supplied
	Normalized      int              `json:"normalized"` // passed the normalizer
	Qualified       int              `json:"qualified"`  // score >= minimum gate
	Selected        int              `json:"selected"`   // len(Recommendations)
	Recommendations []Recommendation `json:"recommendations"`
}

// Empty reports whether the run produced no recommendation.
func (r *RunReport) Empty() bool {
	return len(r.Recommendations) == 0
}

// Symbols returns the selected symbols in rank order.
func (r *RunReport) Symbols() []string {
	out := make([]string, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		out = append(out, rec.Symbol)
	}
	return out
}

// DecisionSnapshot pins the strategy a run was scored with, so a stored
// report can be reproduced later.
// 재현성용: 해시 + 원본 YAML
type DecisionSnapshot struct {
	ConfigHash string `json:"config_hash"`
	StrategyID string `json:"strategy_id"`
	Version    string `json:"version"`
	ConfigYAML string `json:"config_yaml,omitempty"`
}

// StoredReport is a persisted run.
type StoredReport struct {
	RunID       string           `json:"run_id"`
	Strategy    DecisionSnapshot `json:"strategy"`
	TradingDate time.Time        `json:"trading_date"`
	Report      RunReport        `json:"report"`
	CreatedAt   time.Time        `json:"created_at"`
}
