package driven

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// AuthorityIndex provides the curated authority records, preprocessed into
// match-ready form. Read-only; owned by the reference collaborator.
type AuthorityIndex interface {
	// Records returns all authority records.
	Records(ctx context.Context) ([]domain.ReferenceRecord, error)
}

// CandidateSource is an open-world lookup for mentions the authority file
// could not match, keyed by mention name.
type CandidateSource interface {
	// Lookup returns up to limit candidate records for a person name,
	// best first. An empty result is a valid outcome, not an error.
	Lookup(ctx context.Context, name string, limit int) ([]domain.ReferenceRecord, error)
}
