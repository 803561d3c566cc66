package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

func TestAssemble(t *testing.T) {
	at := time.Date(2025, 7, 29, 9, 45, 0, 0, time.FixedZone("EDT", -4*3600))
	ranked := []contracts.Recommendation{
		{ScoredCandidate: contracts.ScoredCandidate{CanonicalCandidate: contracts.CanonicalCandidate{Symbol: "MRK"}, Score: 100}, Rank: 1},
		{ScoredCandidate: contracts.ScoredCandidate{CanonicalCandidate: contracts.CanonicalCandidate{Symbol: "UNH"}, Score: 88}, Rank: 2},
	}

	r := Assemble(5, 4, 3, ranked, at)

	assert.Equal(t, at.UTC(), r.GeneratedAt)
	assert.Equal(t, 5, r.Considered)
	assert.Equal(t, 4, r.Normalized)
	assert.Equal(t, 3, r.Qualified)
	assert.Equal(t, 2, r.Selected)
	require.Len(t, r.Recommendations, 2)

	// 복사본이어야 함
	ranked[0].Score = 1
	assert.Equal(t, 100.0, r.Recommendations[0].Score)
}

func TestAssemble_Empty(t *testing.T) {
	r := Assemble(0, 0, 0, nil, time.Unix(0, 0))

	assert.True(t, r.Empty())
	assert.NotNil(t, r.Recommendations)
	assert.Zero(t, r.Selected)
}

func TestAssemble_InconsistentCountsPanic(t *testing.T) {
	one := []contracts.Recommendation{{Rank: 1}}

	assert.Panics(t, func() { Assemble(1, 2, 0, nil, time.Now()) })
	assert.Panics(t, func() { Assemble(3, 2, 3, nil, time.Now()) })
	assert.Panics(t, func() { Assemble(3, 2, 0, one, time.Now()) })
	assert.NotPanics(t, func() { Assemble(3, 2, 1, one, time.Now()) })
}

func TestCheckCounts(t *testing.T) {
	assert.NoError(t, CheckCounts(0, 0, 0, 0))
	assert.NoError(t, CheckCounts(10, 10, 10, 5))
	assert.Error(t, CheckCounts(1, 1, 1, -1))
}
