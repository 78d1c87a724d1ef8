// Package memory provides in-memory implementations of the driven storage
// ports, used in tests and as a fail-closed fallback when the SQLite store
// cannot be opened.
package memory

import (
	"context"
	"sync"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
)

// Ensure DecisionStore implements the interface.
var _ driven.DecisionStore = (*DecisionStore)(nil)

type flagKey struct {
	docID  string
	person string
	kind   domain.EntityFlagKind
}

// DecisionStore is an in-memory implementation of driven.DecisionStore.
type DecisionStore struct {
	mu        sync.RWMutex
	decisions map[domain.DecisionKey]domain.Decision
	flags     map[flagKey]domain.EntityFlag
}

// NewDecisionStore creates a new in-memory decision store.
func NewDecisionStore() *DecisionStore {
	return &DecisionStore{
		decisions: make(map[domain.DecisionKey]domain.Decision),
		flags:     make(map[flagKey]domain.EntityFlag),
	}
}

// SaveDecision stores or overwrites the decision for its triple.
func (s *DecisionStore) SaveDecision(_ context.Context, d domain.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[d.DecisionKey] = d
	return nil
}

// GetDecision retrieves the live decision for a triple.
func (s *DecisionStore) GetDecision(_ context.Context, key domain.DecisionKey) (*domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

// DeleteDecision removes the decision for a triple.
func (s *DecisionStore) DeleteDecision(_ context.Context, key domain.DecisionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.decisions, key)
	return nil
}

// ListDecisions returns all live decisions for a document.
func (s *DecisionStore) ListDecisions(_ context.Context, docID string) ([]domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Decision
	for key, d := range s.decisions {
		if key.DocID == docID {
			out = append(out, d)
		}
	}
	return out, nil
}

// SaveFlag sets an entity flag on a mention.
func (s *DecisionStore) SaveFlag(_ context.Context, f domain.EntityFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flagKey{f.DocID, f.Person, f.Kind}] = f
	return nil
}

// HasFlag reports whether a flag kind is set on a mention.
func (s *DecisionStore) HasFlag(_ context.Context, docID, person string, kind domain.EntityFlagKind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.flags[flagKey{docID, person, kind}]
	return ok, nil
}

// DeleteFlag clears an entity flag.
func (s *DecisionStore) DeleteFlag(_ context.Context, docID, person string, kind domain.EntityFlagKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, flagKey{docID, person, kind})
	return nil
}

// ListFlags returns all set flags for a document.
func (s *DecisionStore) ListFlags(_ context.Context, docID string) ([]domain.EntityFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EntityFlag
	for key, f := range s.flags {
		if key.docID == docID {
			out = append(out, f)
		}
	}
	return out, nil
}
