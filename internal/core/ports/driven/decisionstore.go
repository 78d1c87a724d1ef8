package driven

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// DecisionStore persists the local reviewer's decisions and entity flags.
// The store is single-writer (the owning client); reviewer identity is
// implicit. Toggle and supersede semantics live in the review service —
// the store only upserts and deletes.
type DecisionStore interface {
	// SaveDecision stores or overwrites the decision for its triple.
	SaveDecision(ctx context.Context, d domain.Decision) error

	// GetDecision retrieves the live decision for a triple.
	// Returns domain.ErrNotFound when the triple is unset.
	GetDecision(ctx context.Context, key domain.DecisionKey) (*domain.Decision, error)

	// DeleteDecision removes the decision for a triple. Deleting an
	// absent decision is not an error.
	DeleteDecision(ctx context.Context, key domain.DecisionKey) error

	// ListDecisions returns all live decisions for a document.
	ListDecisions(ctx context.Context, docID string) ([]domain.Decision, error)

	// SaveFlag sets an entity flag on a mention.
	SaveFlag(ctx context.Context, f domain.EntityFlag) error

	// HasFlag reports whether a flag kind is set on a mention.
	HasFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) (bool, error)

	// DeleteFlag clears an entity flag. Clearing an absent flag is not
	// an error.
	DeleteFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) error

	// ListFlags returns all set flags for a document.
	ListFlags(ctx context.Context, docID string) ([]domain.EntityFlag, error)
}
