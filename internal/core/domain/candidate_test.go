package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  MatchTier
	}{
		{"perfect", 1.0, TierHigh},
		{"high boundary", 0.90, TierHigh},
		{"just below high", 0.899, TierMedium},
		{"medium boundary", 0.75, TierMedium},
		{"just below medium", 0.749, TierLow},
		{"floor", 0.60, TierLow},
		{"below floor", 0.599, TierNone},
		{"zero", 0.0, TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForScore(tt.score))
		})
	}
}

func TestMentionLink_Top(t *testing.T) {
	link := MentionLink{
		Candidates: []CandidateLink{
			{RecordID: "AUTH:baldwin-i", Score: 0.95, Tier: TierHigh},
			{RecordID: "AUTH:baldwin-ii", Score: 0.7, Tier: TierLow},
		},
	}

	top := link.Top()
	assert.NotNil(t, top)
	assert.Equal(t, "AUTH:baldwin-i", top.RecordID)

	empty := MentionLink{}
	assert.Nil(t, empty.Top())
}

func TestBundle_Count(t *testing.T) {
	b := Bundle{
		Links: []MentionLink{
			{Status: TierHigh},
			{Status: TierHigh},
			{Status: TierMedium},
			{Status: TierLow},
			{Status: TierNone},
		},
	}

	c := b.Count()
	assert.Equal(t, 2, c.High)
	assert.Equal(t, 1, c.Medium)
	assert.Equal(t, 1, c.Low)
	assert.Equal(t, 1, c.NoMatch)
}
