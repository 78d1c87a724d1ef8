package domain

// MatchTier is the discrete confidence band of a candidate link.
type MatchTier string

const (
	// TierHigh covers scores >= 0.90.
	TierHigh MatchTier = "high"
	// TierMedium covers scores in [0.75, 0.90).
	TierMedium MatchTier = "medium"
	// TierLow covers scores in [0.60, 0.75).
	TierLow MatchTier = "low"
	// TierNone means no candidate cleared the minimum floor.
	TierNone MatchTier = "no_match"
)

// Tier band boundaries. The three bands are the load-bearing contract of
// the scorer; the intermediate weights are tunable, these are not.
const (
	// ScoreFloor is the minimum score for a candidate to be kept at all.
	ScoreFloor = 0.60
	// MediumThreshold splits low from medium (display only).
	MediumThreshold = 0.75
	// HighThreshold marks a high-confidence link.
	HighThreshold = 0.90
)

// TierForScore maps a score onto its tier band.
func TierForScore(score float64) MatchTier {
	switch {
	case score >= HighThreshold:
		return TierHigh
	case score >= MediumThreshold:
		return TierMedium
	case score >= ScoreFloor:
		return TierLow
	default:
		return TierNone
	}
}

// MatchMethod records how a candidate link was established.
type MatchMethod string

const (
	// MethodExact means identifier equality or normalised-name equality.
	MethodExact MatchMethod = "exact"
	// MethodFuzzy means token-overlap or containment matching on names.
	MethodFuzzy MatchMethod = "fuzzy"
	// MethodContextual means contextual signals (dates, roles, relations)
	// carried a name that alone would have fallen below the floor.
	MethodContextual MatchMethod = "contextual"
)

// CandidateLink is a scored, tiered proposed link between one Mention and
// one ReferenceRecord. Owned by the document bundle; immutable once computed.
type CandidateLink struct {
	// RecordID is the namespaced reference record identifier.
	RecordID string

	// Label is the record's preferred label, carried for display.
	Label string

	// Score is the similarity score in [0, 1].
	Score float64

	// Tier is the band Score falls into.
	Tier MatchTier

	// Method records how the link was established.
	Method MatchMethod

	// Evidence is a short human-readable justification
	// ("exact match: 'balduinus' ↔ 'Baldwin I'").
	Evidence string
}

// Alignment classifies one contextual attribute comparison.
type Alignment string

const (
	// AlignMatch: both sides present, normalised forms equal.
	AlignMatch Alignment = "match"
	// AlignMismatch: both sides present, normalised forms differ.
	AlignMismatch Alignment = "mismatch"
	// AlignPartial: exactly one side present.
	AlignPartial Alignment = "partial"
)

// ComparisonRow is one attribute comparison between a mention and a
// candidate record. Advisory; display only.
type ComparisonRow struct {
	// Attribute names the compared attribute: "date", "place" or "role".
	Attribute string

	// Extracted is the mention-side value.
	Extracted string

	// Reference is the record-side value.
	Reference string

	// Result is the classification of the comparison.
	Result Alignment
}
