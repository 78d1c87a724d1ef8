package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driving"
)

// Ensure Exporter implements the interface.
var _ driving.ExportService = (*Exporter)(nil)

// Exporter resolves the per-mention acceptance signal that gates every
// downstream structured-document and linked-data export: a mention's top
// candidate is included iff the local reviewer accepted it or the
// community accept tally has reached the threshold.
type Exporter struct {
	bundles driven.BundleStore
	store   driven.DecisionStore
	index   *TallyIndex
}

// NewExporter creates an exporter over the given stores and tally index.
func NewExporter(bundles driven.BundleStore, store driven.DecisionStore, index *TallyIndex) *Exporter {
	return &Exporter{bundles: bundles, store: store, index: index}
}

// Export resolves the acceptance signal for every mention of a document.
// Mentions without candidates appear with a nil Top: no_match is a valid
// terminal state, not an error.
func (e *Exporter) Export(ctx context.Context, docID string) ([]driving.ExportEntry, error) {
	bundle, err := e.bundles.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	entries := make([]driving.ExportEntry, 0, len(bundle.Links))
	for i := range bundle.Links {
		link := &bundle.Links[i]
		entry := driving.ExportEntry{
			Person: link.Mention.Name,
			Group:  link.Mention.Group,
		}
		if top := link.Top(); top != nil {
			entry.Top = top
			key := domain.DecisionKey{
				DocID:     docID,
				Person:    link.Mention.Name,
				RecordKey: top.RecordID,
			}
			accepted, err := e.locallyAccepted(ctx, key)
			if err != nil {
				return nil, err
			}
			tally := e.index.Get(key)
			entry.Accepted = accepted || tally.Accepts >= domain.CommunityAcceptThreshold
			entry.Conflicted = tally.Conflict()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Exporter) locallyAccepted(ctx context.Context, key domain.DecisionKey) (bool, error) {
	d, err := e.store.GetDecision(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get decision: %w", err)
	}
	return d.Kind == domain.DecisionAccept, nil
}
