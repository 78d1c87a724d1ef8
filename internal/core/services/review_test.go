package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outremer-kg/recon-cli/internal/adapters/driven/storage/memory"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// fakeRemote records calls to the aggregation service and can be told to
// fail.
type fakeRemote struct {
	mu      sync.Mutex
	pushes  []domain.Decision
	deletes []domain.DecisionKey
	ops     []string
	history []domain.Decision

	pushErr  error
	fetchErr error

	// gate, when set, stalls the next remote call until closed.
	gate chan struct{}
}

func (f *fakeRemote) PushDecision(_ context.Context, d domain.Decision) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, d)
	f.ops = append(f.ops, "push:"+string(d.Kind))
	return nil
}

func (f *fakeRemote) DeleteDecision(_ context.Context, key domain.DecisionKey, _ domain.Reviewer) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.deletes = append(f.deletes, key)
	f.ops = append(f.ops, "delete")
	return nil
}

func (f *fakeRemote) wait() {
	f.mu.Lock()
	gate := f.gate
	f.gate = nil
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeRemote) FetchDecisions(_ context.Context, _ string) ([]domain.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, f.fetchErr
}

func (f *fakeRemote) pushed() []domain.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Decision(nil), f.pushes...)
}

func (f *fakeRemote) deleted() []domain.DecisionKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.DecisionKey(nil), f.deletes...)
}

func (f *fakeRemote) order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

var testReviewer = domain.Reviewer{ClientID: "0d9f2a61-77c4-4b1e-aaaa-000000000000", Name: "alice"}

func newTestReview(remote *fakeRemote) (*Review, *memory.DecisionStore) {
	store := memory.NewDecisionStore()
	var r *Review
	if remote == nil {
		r = NewReview(store, nil, NewTallyIndex(), testReviewer)
	} else {
		r = NewReview(store, remote, NewTallyIndex(), testReviewer)
	}
	r.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return r, store
}

func testKey() domain.DecisionKey {
	return domain.DecisionKey{DocID: "doc-1", Person: "Baldwin", RecordKey: "AUTH:baldwin-i"}
}

func TestReview_Decide_SetFromUnset(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	out, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "clear containment")
	require.NoError(t, err)
	assert.False(t, out.Cleared)
	assert.Equal(t, domain.DecisionAccept, out.Kind)

	// Local read sees the decision immediately.
	d, err := r.MyDecision(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, domain.DecisionAccept, d.Kind)
	assert.Equal(t, "clear containment", d.Comment)
	assert.Equal(t, testReviewer, d.Reviewer)

	// Own vote is visible in the tally without a round-trip.
	assert.Equal(t, 1, r.Tally(testKey()).Accepts)

	r.Drain()
	require.Len(t, remote.pushed(), 1)
	assert.Equal(t, domain.SyncOK, r.PushStatus(testKey()).State)
}

func TestReview_Decide_ToggleOff(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionReject, "")
	require.NoError(t, err)

	out, err := r.Decide(ctx, testKey(), domain.DecisionReject, "")
	require.NoError(t, err)
	assert.True(t, out.Cleared)

	d, err := r.MyDecision(ctx, testKey())
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.True(t, r.Tally(testKey()).Empty())

	r.Drain()
	assert.Equal(t, []domain.DecisionKey{testKey()}, remote.deleted())
}

func TestReview_Decide_Supersede(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	out, err := r.Decide(ctx, testKey(), domain.DecisionReject, "second thoughts")
	require.NoError(t, err)
	assert.False(t, out.Cleared)
	assert.Equal(t, domain.DecisionReject, out.Kind)

	d, err := r.MyDecision(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, domain.DecisionReject, d.Kind)

	// The superseded accept left the tally; no phantom conflict.
	tally := r.Tally(testKey())
	assert.Equal(t, 0, tally.Accepts)
	assert.Equal(t, 1, tally.Rejects)
	assert.False(t, tally.Conflict())

	r.Drain()
	pushes := remote.pushed()
	require.Len(t, pushes, 2)
	assert.Equal(t, domain.DecisionReject, pushes[1].Kind)
}

func TestReview_Decide_SupersedePushesInMutationOrder(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{gate: gate}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	// The accept's push is stalled on the wire when the reject lands.
	// The reject must queue behind it, or the service ends up holding
	// the stale accept.
	_, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	_, err = r.Decide(ctx, testKey(), domain.DecisionReject, "")
	require.NoError(t, err)

	close(gate)
	r.Drain()

	assert.Equal(t, []string{"push:accept", "push:reject"}, remote.order())
	assert.Equal(t, domain.SyncOK, r.PushStatus(testKey()).State)
}

func TestReview_Decide_ToggleOffQueuedBehindCreate(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{gate: gate}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	out, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	require.True(t, out.Cleared)

	close(gate)
	r.Drain()

	assert.Equal(t, []string{"push:accept", "delete"}, remote.order())
}

func TestReview_Decide_Validation(t *testing.T) {
	r, _ := newTestReview(&fakeRemote{})
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionKind("endorse"), "")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = r.Decide(ctx, domain.DecisionKey{DocID: "doc-1"}, domain.DecisionAccept, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReview_Decide_PushFailureKeepsLocalState(t *testing.T) {
	remote := &fakeRemote{pushErr: errors.New("503 service unavailable")}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	r.Drain()

	status := r.PushStatus(testKey())
	assert.Equal(t, domain.SyncError, status.State)
	assert.Contains(t, status.Err, "503")

	// The failed push never reverts the local decision or the tally.
	d, err := r.MyDecision(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1, r.Tally(testKey()).Accepts)
}

func TestReview_Decide_OfflineInstallation(t *testing.T) {
	r, _ := newTestReview(nil)
	ctx := context.Background()

	_, err := r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	r.Drain()

	status := r.PushStatus(testKey())
	assert.Equal(t, domain.SyncError, status.State)

	d, err := r.MyDecision(ctx, testKey())
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestReview_PushStatus_UntouchedTriple(t *testing.T) {
	r, _ := newTestReview(&fakeRemote{})
	assert.Equal(t, domain.SyncOK, r.PushStatus(testKey()).State)
}

func TestReview_Refresh(t *testing.T) {
	remote := &fakeRemote{history: []domain.Decision{
		decision("doc-1", "Baldwin", "AUTH:baldwin-i", domain.DecisionAccept, "bob"),
		decision("doc-1", "Baldwin", "AUTH:baldwin-i", domain.DecisionReject, "carol"),
	}}
	r, _ := newTestReview(remote)

	require.NoError(t, r.Refresh(context.Background(), "doc-1"))

	tally := r.Tally(testKey())
	assert.Equal(t, 1, tally.Accepts)
	assert.Equal(t, 1, tally.Rejects)
	assert.True(t, tally.Conflict())

	keys, mentions := r.Conflicts("doc-1")
	assert.Len(t, keys, 1)
	assert.Equal(t, 1, mentions)
}

func TestReview_Refresh_Offline(t *testing.T) {
	r, _ := newTestReview(nil)
	err := r.Refresh(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestReview_Refresh_FetchError(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("timeout")}
	r, _ := newTestReview(remote)
	err := r.Refresh(context.Background(), "doc-1")
	assert.Error(t, err)
}

func TestReview_ToggleFlag(t *testing.T) {
	r, _ := newTestReview(&fakeRemote{})
	ctx := context.Background()

	set, err := r.ToggleFlag(ctx, "doc-1", "the Templars", domain.FlagGroup)
	require.NoError(t, err)
	assert.True(t, set)

	// Kinds toggle independently.
	set, err = r.ToggleFlag(ctx, "doc-1", "the Templars", domain.FlagNotPerson)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = r.ToggleFlag(ctx, "doc-1", "the Templars", domain.FlagGroup)
	require.NoError(t, err)
	assert.False(t, set)

	flags, err := r.Flags(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.FlagNotPerson, flags[0].Kind)
}

func TestReview_ToggleFlag_UnknownKind(t *testing.T) {
	r, _ := newTestReview(&fakeRemote{})
	_, err := r.ToggleFlag(context.Background(), "doc-1", "Baldwin", domain.EntityFlagKind("suspicious"))
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestReview_FlagsIndependentOfDecisions(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReview(remote)
	ctx := context.Background()

	_, err := r.ToggleFlag(ctx, "doc-1", "Baldwin", domain.FlagWrongEra)
	require.NoError(t, err)
	_, err = r.Decide(ctx, testKey(), domain.DecisionAccept, "")
	require.NoError(t, err)
	r.Drain()

	// Flags stay local: only the decision reached the remote.
	assert.Len(t, remote.pushed(), 1)

	flags, err := r.Flags(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, flags, 1)
}
