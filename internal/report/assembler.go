package report

import (
	"fmt"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// CheckCounts verifies considered >= normalized >= qualified >= selected >= 0.
func CheckCounts(considered, normalized, qualified, selected int) error {
	if selected < 0 || qualified < selected || normalized < qualified || considered < normalized {
		return fmt.Errorf("inconsistent counts: considered=%d normalized=%d qualified=%d selected=%d",
			considered, normalized, qualified, selected)
	}
	return nil
}

// Assemble builds the RunReport. It is pure: the caller supplies the timestamp.
// Inconsistent counts are a programming error and panic.
// ⭐ SSOT: S5 결과 조립
func Assemble(considered, normalized, qualified int, ranked []contracts.Recommendation, at time.Time) contracts.RunReport {
	if err := CheckCounts(considered, normalized, qualified, len(ranked)); err != nil {
		panic(err)
	}

	recs := make([]contracts.Recommendation, len(ranked))
	copy(recs, ranked)

	return contracts.RunReport{
		GeneratedAt:     at.UTC(),
		Considered:      considered,
		Normalized:      normalized,
		Qualified:       qualified,
		Selected:        len(recs),
		Recommendations: recs,
	}
}
