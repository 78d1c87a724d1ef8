package driven

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// BundleStore reads the ingestion pipeline's per-document output. Bundles
// are immutable from the core's perspective: re-scoring requires the
// pipeline to write a new bundle, not a mutation here.
type BundleStore interface {
	// List returns the ids of all available documents.
	List(ctx context.Context) ([]string, error)

	// Get loads one document bundle.
	// Returns domain.ErrNoBundle for unknown ids.
	Get(ctx context.Context, docID string) (*domain.Bundle, error)

	// Watch emits the id of any document whose bundle file changes, until
	// ctx is cancelled.
	Watch(ctx context.Context) (<-chan string, error)
}
