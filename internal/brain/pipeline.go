package brain

import (
	"sort"
	"time"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/report"
	"github.com/kcpatrick93/earning-scalp-bot/internal/s1_normalize"
	"github.com/kcpatrick93/earning-scalp-bot/internal/s2_signals"
	"github.com/kcpatrick93/earning-scalp-bot/internal/selection"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// Pipeline runs S1 → S5 synchronously with no I/O and no clock reads
// ⭐ SSOT: 순수 파이프라인 (정규화 → 점수 → 분류 → 랭킹 → 조립)
type Pipeline struct {
	normalizer *s1_normalize.Normalizer
	scorer     *s2_signals.Scorer
	classifier *s2_signals.Classifier
	ranker     *selection.Ranker
	minScore   float64
}

// Diagnostics is everything a run observed that does not belong in the report.
type Diagnostics struct {
	Rejections []*contracts.Rejection     `json:"rejections"`
	Issues     []contracts.FieldIssue     `json:"issues"`
	Evaluated  []contracts.Recommendation `json:"evaluated"` // NO_SIGNAL 포함, 점수 내림차순
}

// NewPipeline wires the stages from one strategy config
func NewPipeline(cfg *strategyconfig.Config) *Pipeline {
	return &Pipeline{
		normalizer: s1_normalize.New(cfg.Normalization),
		scorer:     s2_signals.NewScorer(cfg.Scoring),
		classifier: s2_signals.NewClassifier(cfg.Classification),
		ranker:     selection.NewRanker(cfg.Selection),
		minScore:   cfg.Classification.MinScore,
	}
}

// Run scores raws and returns the report for the configured top N.
func (p *Pipeline) Run(raws []contracts.RawCandidate, at time.Time) (contracts.RunReport, Diagnostics) {
	return p.RunWithLimit(raws, 0, at)
}

// RunWithLimit is Run with an explicit top N (limit <= 0 uses the configured value).
func (p *Pipeline) RunWithLimit(raws []contracts.RawCandidate, limit int, at time.Time) (contracts.RunReport, Diagnostics) {
	var diag Diagnostics

	// S1: Normalize
	canonical, rejections := p.normalizer.NormalizeAll(raws)
	diag.Rejections = rejections

	// S2 + S3: Score and classify
	evaluated := make([]contracts.Recommendation, 0, len(canonical))
	qualified := 0
	for _, c := range canonical {
		diag.Issues = append(diag.Issues, c.Issues...)

		scored := p.scorer.Score(c)
		if scored.Score >= p.minScore {
			qualified++
		}
		evaluated = append(evaluated, contracts.Recommendation{
			ScoredCandidate: scored,
			Signal:          p.classifier.Classify(c, scored.Score),
		})
	}

	// S4: Rank
	ranked := p.ranker.Rank(evaluated, limit)

	sort.SliceStable(evaluated, func(i, j int) bool {
		if evaluated[i].Score != evaluated[j].Score {
			return evaluated[i].Score > evaluated[j].Score
		}
		return evaluated[i].Symbol < evaluated[j].Symbol
	})
	diag.Evaluated = evaluated

	// S5: Assemble
	return report.Assemble(len(raws), len(canonical), qualified, ranked, at), diag
}
