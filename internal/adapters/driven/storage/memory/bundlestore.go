package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
)

// Ensure BundleStore implements the interface.
var _ driven.BundleStore = (*BundleStore)(nil)

// BundleStore is an in-memory implementation of driven.BundleStore.
type BundleStore struct {
	mu      sync.RWMutex
	bundles map[string]domain.Bundle
}

// NewBundleStore creates a new in-memory bundle store.
func NewBundleStore() *BundleStore {
	return &BundleStore{bundles: make(map[string]domain.Bundle)}
}

// Put adds or replaces a bundle.
func (s *BundleStore) Put(b domain.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[b.DocID] = b
}

// List returns the ids of all available documents, sorted.
func (s *BundleStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.bundles))
	for id := range s.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Get loads one document bundle.
func (s *BundleStore) Get(_ context.Context, docID string) (*domain.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[docID]
	if !ok {
		return nil, domain.ErrNoBundle
	}
	return &b, nil
}

// Watch is a no-op for the in-memory store: the channel stays open until
// ctx is cancelled and never emits.
func (s *BundleStore) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
