package services

import (
	"sync"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// TallyIndex aggregates all reviewers' decisions per (document, mention,
// candidate) triple. It is rebuilt wholesale from a pulled decision history
// (O(n) over one document's decisions) and patched in place when the local
// reviewer acts, so the caller's view reflects their vote without waiting
// for a round-trip.
type TallyIndex struct {
	mu      sync.RWMutex
	tallies map[domain.DecisionKey]*domain.Tally
}

// NewTallyIndex creates an empty index.
func NewTallyIndex() *TallyIndex {
	return &TallyIndex{
		tallies: make(map[domain.DecisionKey]*domain.Tally),
	}
}

// Rebuild replaces the index contents for one document with the given
// decision history. Other documents' tallies are untouched.
func (x *TallyIndex) Rebuild(docID string, decisions []domain.Decision) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for key := range x.tallies {
		if key.DocID == docID {
			delete(x.tallies, key)
		}
	}
	for i := range decisions {
		d := &decisions[i]
		t, ok := x.tallies[d.DecisionKey]
		if !ok {
			t = &domain.Tally{}
			x.tallies[d.DecisionKey] = t
		}
		t.Add(d.Kind, d.Reviewer.Label())
	}
}

// Apply patches the index for one local mutation: prev is the superseded
// kind (nil when the triple was unset), next the new kind (nil on
// toggle-off).
func (x *TallyIndex) Apply(key domain.DecisionKey, prev, next *domain.DecisionKind, reviewer string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	t, ok := x.tallies[key]
	if !ok {
		if next == nil {
			return
		}
		t = &domain.Tally{}
		x.tallies[key] = t
	}
	if prev != nil {
		t.Remove(*prev, reviewer)
	}
	if next != nil {
		t.Add(*next, reviewer)
	}
	if t.Empty() {
		delete(x.tallies, key)
	}
}

// Get returns a copy of the tally for a triple; a zero tally when unseen.
func (x *TallyIndex) Get(key domain.DecisionKey) domain.Tally {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if t, ok := x.tallies[key]; ok {
		return *t
	}
	return domain.Tally{}
}

// Conflicts returns the conflicted triples for a document and the number
// of distinct mentions with at least one conflicting candidate.
func (x *TallyIndex) Conflicts(docID string) ([]domain.DecisionKey, int) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var keys []domain.DecisionKey
	mentions := make(map[string]struct{})
	for key, t := range x.tallies {
		if key.DocID != docID || !t.Conflict() {
			continue
		}
		keys = append(keys, key)
		mentions[key.Person] = struct{}{}
	}
	return keys, len(mentions)
}
