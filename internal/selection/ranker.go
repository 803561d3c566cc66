package selection

import (
	"sort"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// Ranker implements S4: filter, sort and truncate to top N
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	defaultLimit int
}

// NewRanker creates a new ranker
func NewRanker(cfg strategyconfig.Selection) *Ranker {
	return &Ranker{defaultLimit: cfg.TopN}
}

// Rank drops NO_SIGNAL entries, sorts by score descending (ties by symbol
// ascending) and keeps at most limit entries. limit <= 0 uses the configured
// top N. The input slice is not modified.
func (r *Ranker) Rank(recs []contracts.Recommendation, limit int) []contracts.Recommendation {
	if limit <= 0 {
		limit = r.defaultLimit
	}

	ranked := make([]contracts.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if !rec.Signal.Type.IsActionable() {
			continue
		}
		ranked = append(ranked, rec)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	// Assign ranks (1-based)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}
