package driven

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// AggregationClient talks to the shared remote decision service. The remote
// service is the long-lived owner of the union of all reviewers' decisions;
// every call is scoped by the acting reviewer's client id so that repeated
// submissions upsert rather than duplicate.
type AggregationClient interface {
	// PushDecision upserts the reviewer's decision for one triple.
	PushDecision(ctx context.Context, d domain.Decision) error

	// DeleteDecision removes the reviewer's decision for one triple.
	// Deleting an absent decision must succeed (idempotent delete): a
	// toggle-off may race an in-flight create without cancellation.
	DeleteDecision(ctx context.Context, key domain.DecisionKey, reviewer domain.Reviewer) error

	// FetchDecisions returns the full decision history for a document,
	// across all reviewers.
	FetchDecisions(ctx context.Context, docID string) ([]domain.Decision, error)
}
