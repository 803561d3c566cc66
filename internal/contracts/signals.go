package contracts

// SignalType is the actionable call for a scored candidate.
type SignalType string

const (
	SignalStrongBuy   SignalType = "STRONG_BUY"
	SignalBuy         SignalType = "BUY"
	SignalStrongShort SignalType = "STRONG_SHORT"
	SignalShort       SignalType = "SHORT"
	SignalNone        SignalType = "NO_SIGNAL"
)

// IsActionable reports whether the signal can be traded.
func (s SignalType) IsActionable() bool {
	return s != SignalNone && s != ""
}

// IsLong reports whether the signal is a buy.
func (s SignalType) IsLong() bool {
	return s == SignalStrongBuy || s == SignalBuy
}

// Signal is a classification with the rule that produced it.
type Signal struct {
	Type   SignalType `json:"type"`
	Reason string     `json:"reason"`
}

// ScoredCandidate is a canonical candidate with its opportunity score.
// ⭐ SSOT: S2 점수 결과
type ScoredCandidate struct {
	CanonicalCandidate
	Score   float64  `json:"score"`   // 0 ~ 100
	Reasons []string `json:"reasons"` // 적용된 항목 순서대로
}

// Recommendation is a classified candidate. Rank is 1-based and only set by the ranker.
// ⭐ SSOT: S3 → S4 추천 결과
type Recommendation struct {
	ScoredCandidate
	Signal Signal `json:"signal"`
	Rank   int    `json:"rank"`
}
