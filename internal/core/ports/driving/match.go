package driving

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// MatchService scores mentions against reference records and annotates
// candidates with contextual comparisons. Scoring and alignment are
// independently computable from the same inputs: alignment output never
// feeds back into a stored score.
type MatchService interface {
	// Score computes the similarity of one mention against one record.
	Score(mention domain.Mention, record domain.ReferenceRecord) (float64, domain.MatchTier, domain.MatchMethod)

	// Rank scores a mention against every record, discards sub-floor
	// results and returns the remainder best first. An empty result is
	// the valid no_match terminal state.
	Rank(mention domain.Mention, records []domain.ReferenceRecord) []domain.CandidateLink

	// Align compares the mention's contextual attributes against a
	// record's known attributes. Advisory; display only.
	Align(mention domain.Mention, record domain.ReferenceRecord) []domain.ComparisonRow

	// Discover looks up open-world candidates for a mention whose bundle
	// candidate list is empty. Returns ranked links against the fetched
	// records.
	Discover(ctx context.Context, mention domain.Mention, limit int) ([]domain.CandidateLink, error)
}

// ExportService exposes the accepted-decision signal consumed by the
// structured-document and linked-data exporters.
type ExportService interface {
	// Export resolves, for every mention of a document, its top candidate
	// and whether the link passes the acceptance gate: locally accepted,
	// or community accept tally >= domain.CommunityAcceptThreshold.
	Export(ctx context.Context, docID string) ([]ExportEntry, error)
}

// ExportEntry is the per-mention export signal.
type ExportEntry struct {
	// Person is the mention surface name.
	Person string

	// Group mirrors the mention's collective flag.
	Group bool

	// Top is the highest-ranked candidate, nil for no_match mentions.
	Top *domain.CandidateLink

	// Accepted is the sole inclusion gate for downstream export.
	Accepted bool

	// Conflicted reports community disagreement on the top candidate.
	Conflicted bool
}
