package driving

import (
	"context"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// ReviewService is the reviewer-facing state machine over decisions and
// entity flags, plus the community tally view. Every mutation applies to
// durable local storage synchronously and is then propagated to the remote
// aggregation service asynchronously; the returned outcome reflects the
// local transition only.
type ReviewService interface {
	// Decide toggles or supersedes the reviewer's decision on a triple.
	// Same kind as the live decision → toggle-off (Outcome.Cleared);
	// different kind → supersede in place; unset → set.
	Decide(ctx context.Context, key domain.DecisionKey, kind domain.DecisionKind, comment string) (*Outcome, error)

	// MyDecision returns the reviewer's live decision for a triple, or
	// nil when unset.
	MyDecision(ctx context.Context, key domain.DecisionKey) (*domain.Decision, error)

	// ToggleFlag toggles an entity flag on a mention. Returns the new
	// state of the flag.
	ToggleFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) (bool, error)

	// Flags returns all set entity flags for a document.
	Flags(ctx context.Context, docID string) ([]domain.EntityFlag, error)

	// PushStatus reports whether a mutation on the triple has reached the
	// remote service. Triples with no mutation this session report SyncOK.
	PushStatus(key domain.DecisionKey) domain.PushStatus

	// Drain blocks until all in-flight pushes have completed. Called on
	// shutdown so a short-lived CLI invocation does not lose its push.
	Drain()

	// Refresh pulls the full community decision history for a document
	// and rebuilds the tally index from it.
	Refresh(ctx context.Context, docID string) error

	// Tally returns the community tally for a triple, including the
	// reviewer's own optimistically applied vote.
	Tally(key domain.DecisionKey) domain.Tally

	// Conflicts returns the keys of all conflicted triples for a
	// document, and the number of mentions with at least one conflict.
	Conflicts(docID string) ([]domain.DecisionKey, int)
}

// Outcome describes the local state transition produced by Decide.
type Outcome struct {
	// Key is the affected triple.
	Key domain.DecisionKey

	// Kind is the decision kind now in effect; meaningless when Cleared.
	Kind domain.DecisionKind

	// Cleared is true when the action toggled the decision off.
	Cleared bool
}
