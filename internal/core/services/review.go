package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driving"
	"github.com/outremer-kg/recon-cli/internal/logger"
)

// Ensure Review implements the interface.
var _ driving.ReviewService = (*Review)(nil)

// pushTimeout bounds one remote propagation attempt. A push is detached
// from the caller's context: the local mutation has already been applied
// and must not be reverted by the caller going away.
const pushTimeout = 30 * time.Second

// Review owns the per-triple decision state machine and the asynchronous
// propagation of local mutations to the remote aggregation service.
//
// Ordering contract: the durable local write always completes before the
// network call is issued, so the reviewer's own reads see their latest
// action regardless of sync outcome. Sync failures surface through
// PushStatus and never touch local state.
type Review struct {
	store    driven.DecisionStore
	remote   driven.AggregationClient // may be nil (offline installation)
	index    *TallyIndex
	reviewer domain.Reviewer

	mu       sync.RWMutex
	statuses map[domain.DecisionKey]domain.PushStatus

	// lastPush chains pushes per triple: each new push waits for the
	// previous one on the same key, so a supersede or toggle-off can
	// never overtake the mutation it replaces.
	lastPush map[domain.DecisionKey]chan struct{}

	pushes sync.WaitGroup

	// now is stubbed in tests.
	now func() time.Time
}

// NewReview creates the review service for one local reviewer.
func NewReview(store driven.DecisionStore, remote driven.AggregationClient, index *TallyIndex, reviewer domain.Reviewer) *Review {
	return &Review{
		store:    store,
		remote:   remote,
		index:    index,
		reviewer: reviewer,
		statuses: make(map[domain.DecisionKey]domain.PushStatus),
		lastPush: make(map[domain.DecisionKey]chan struct{}),
		now:      time.Now,
	}
}

// Decide applies one reviewer action to a triple: set from unset, toggle
// off on the same kind, supersede in place on a different kind. The local
// store and tally index are updated synchronously; the remote call is
// dispatched fire-and-forget afterwards.
func (r *Review) Decide(ctx context.Context, key domain.DecisionKey, kind domain.DecisionKind, comment string) (*driving.Outcome, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: decision kind %q", domain.ErrUnknownKind, kind)
	}
	if key.DocID == "" || key.Person == "" || key.RecordKey == "" {
		return nil, fmt.Errorf("%w: incomplete decision key", domain.ErrInvalidInput)
	}

	existing, err := r.store.GetDecision(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get decision: %w", err)
	}

	// Toggle-off: same action again deletes the record.
	if existing != nil && existing.Kind == kind {
		if err := r.store.DeleteDecision(ctx, key); err != nil {
			return nil, fmt.Errorf("delete decision: %w", err)
		}
		prev := existing.Kind
		r.index.Apply(key, &prev, nil, r.reviewer.Label())
		r.dispatch(key, nil)
		return &driving.Outcome{Key: key, Cleared: true}, nil
	}

	// Set or supersede in place.
	d := domain.Decision{
		DecisionKey: key,
		Kind:        kind,
		Comment:     comment,
		Reviewer:    r.reviewer,
		DecidedAt:   r.now().UTC(),
	}
	if err := r.store.SaveDecision(ctx, d); err != nil {
		return nil, fmt.Errorf("save decision: %w", err)
	}
	var prev *domain.DecisionKind
	if existing != nil {
		prev = &existing.Kind
	}
	r.index.Apply(key, prev, &kind, r.reviewer.Label())
	r.dispatch(key, &d)
	return &driving.Outcome{Key: key, Kind: kind}, nil
}

// MyDecision returns the reviewer's live decision for a triple, nil when
// unset.
func (r *Review) MyDecision(ctx context.Context, key domain.DecisionKey) (*domain.Decision, error) {
	d, err := r.store.GetDecision(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

// ToggleFlag toggles one entity flag on a mention and returns its new
// state. Flags are independent binary toggles and stay local: the shared
// tally covers candidate decisions only.
func (r *Review) ToggleFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("%w: flag kind %q", domain.ErrUnknownKind, kind)
	}

	set, err := r.store.HasFlag(ctx, docID, person, kind)
	if err != nil {
		return false, fmt.Errorf("check flag: %w", err)
	}
	if set {
		if err := r.store.DeleteFlag(ctx, docID, person, kind); err != nil {
			return false, fmt.Errorf("delete flag: %w", err)
		}
		return false, nil
	}
	f := domain.EntityFlag{
		DocID:     docID,
		Person:    person,
		Kind:      kind,
		FlaggedAt: r.now().UTC(),
	}
	if err := r.store.SaveFlag(ctx, f); err != nil {
		return false, fmt.Errorf("save flag: %w", err)
	}
	return true, nil
}

// Flags returns all set entity flags for a document.
func (r *Review) Flags(ctx context.Context, docID string) ([]domain.EntityFlag, error) {
	return r.store.ListFlags(ctx, docID)
}

// dispatch issues the remote call for one local mutation. d == nil means
// delete (toggle-off). The call never blocks the caller: status moves
// pending → ok|error and a failure leaves local state untouched. Pushes
// for the same triple run FIFO in mutation order.
func (r *Review) dispatch(key domain.DecisionKey, d *domain.Decision) {
	done := make(chan struct{})

	r.mu.Lock()
	r.statuses[key] = domain.PushStatus{Key: key, State: domain.SyncPending}
	prev := r.lastPush[key]
	r.lastPush[key] = done
	r.mu.Unlock()

	r.pushes.Add(1)
	go func() {
		defer r.pushes.Done()
		defer close(done)

		if prev != nil {
			<-prev
		}

		if r.remote == nil {
			r.finishStatus(key, done, domain.PushStatus{
				Key:   key,
				State: domain.SyncError,
				Err:   domain.ErrRemoteUnavailable.Error(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		var err error
		if d == nil {
			err = r.remote.DeleteDecision(ctx, key, r.reviewer)
		} else {
			err = r.remote.PushDecision(ctx, *d)
		}
		if err != nil {
			logger.Warn("Push failed for %s/%s/%s: %v", key.DocID, key.Person, key.RecordKey, err)
			r.finishStatus(key, done, domain.PushStatus{Key: key, State: domain.SyncError, Err: err.Error()})
			return
		}
		r.finishStatus(key, done, domain.PushStatus{Key: key, State: domain.SyncOK})
	}()
}

// PushStatus reports the sync state of the last mutation on a triple.
// Triples untouched this session report SyncOK.
func (r *Review) PushStatus(key domain.DecisionKey) domain.PushStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.statuses[key]; ok {
		return s
	}
	return domain.PushStatus{Key: key, State: domain.SyncOK}
}

// Drain blocks until all in-flight pushes have completed.
func (r *Review) Drain() {
	r.pushes.Wait()
}

// Refresh pulls the community decision history for a document and rebuilds
// the tally index wholesale. The pulled history is authoritative for
// community state; the local store remains authoritative for the
// reviewer's own vote.
func (r *Review) Refresh(ctx context.Context, docID string) error {
	if r.remote == nil {
		return domain.ErrRemoteUnavailable
	}
	decisions, err := r.remote.FetchDecisions(ctx, docID)
	if err != nil {
		return fmt.Errorf("fetch decisions: %w", err)
	}
	r.index.Rebuild(docID, decisions)
	logger.Info("Refreshed %s: %d community decisions", docID, len(decisions))
	return nil
}

// Tally returns the community tally for a triple.
func (r *Review) Tally(key domain.DecisionKey) domain.Tally {
	return r.index.Get(key)
}

// Conflicts returns the conflicted triples for a document and the count of
// mentions with at least one conflict.
func (r *Review) Conflicts(docID string) ([]domain.DecisionKey, int) {
	return r.index.Conflicts(docID)
}

// finishStatus records a push outcome unless a newer mutation on the same
// triple has been queued since; the newer push's outcome supersedes.
func (r *Review) finishStatus(key domain.DecisionKey, done chan struct{}, s domain.PushStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastPush[key] != done {
		return
	}
	r.statuses[key] = s
}
