package cli

import (
	"context"
	"sync"

	"github.com/outremer-kg/recon-cli/internal/adapters/driven/storage/memory"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/services"
)

// stubRemote is an in-memory aggregation service for command tests.
type stubRemote struct {
	mu      sync.Mutex
	history []domain.Decision
	pushed  int
}

func (r *stubRemote) PushDecision(_ context.Context, d domain.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed++
	r.history = append(r.history, d)
	return nil
}

func (r *stubRemote) DeleteDecision(_ context.Context, key domain.DecisionKey, _ domain.Reviewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.history[:0]
	for _, d := range r.history {
		if d.DecisionKey != key {
			kept = append(kept, d)
		}
	}
	r.history = kept
	return nil
}

func (r *stubRemote) FetchDecisions(_ context.Context, docID string) ([]domain.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Decision
	for _, d := range r.history {
		if d.DocID == docID {
			out = append(out, d)
		}
	}
	return out, nil
}

func testBundle() domain.Bundle {
	return domain.Bundle{
		DocID:      "chronicle-a",
		SourceFile: "chronicle-a.txt",
		Links: []domain.MentionLink{
			{
				Mention: domain.Mention{
					DocID: "chronicle-a",
					Name:  "Baldwin of Boulogne",
					Date:  "1098",
					Role:  "count",
				},
				Candidates: []domain.CandidateLink{
					{
						RecordID: "AUTH:baldwin-i",
						Label:    "Baldwin I of Jerusalem",
						Score:    0.95,
						Tier:     domain.TierHigh,
						Method:   domain.MethodExact,
						Evidence: `exact match: "Baldwin of Boulogne" ↔ "Baldwin I of Jerusalem"`,
					},
					{
						RecordID: "AUTH:baldwin-ii",
						Label:    "Baldwin II of Jerusalem",
						Score:    0.71,
						Tier:     domain.TierLow,
						Method:   domain.MethodFuzzy,
					},
				},
				Status: domain.TierHigh,
			},
			{
				Mention: domain.Mention{
					DocID: "chronicle-a",
					Name:  "the Hospitallers",
					Group: true,
				},
				Status: domain.TierNone,
			},
		},
	}
}

// decisionFixture builds a remote rejection on the fixture bundle's top
// candidate, attributed to another reviewer.
func decisionFixture(clientID, name string) domain.Decision {
	return domain.Decision{
		DecisionKey: domain.DecisionKey{
			DocID:     "chronicle-a",
			Person:    "Baldwin of Boulogne",
			RecordKey: "AUTH:baldwin-i",
		},
		Kind:     domain.DecisionReject,
		Reviewer: domain.Reviewer{ClientID: clientID, Name: name},
	}
}

// rewireReview replaces the review service with one backed by the given
// remote, sharing fresh local state.
func rewireReview(remote *stubRemote) {
	reviewService = services.NewReview(
		memory.NewDecisionStore(), remote, services.NewTallyIndex(), currentReviewer)
}

// setupTestServices wires the commands to in-memory adapters and returns a
// cleanup that restores the unwired state, so bootstrap stays untriggered.
func setupTestServices() func() {
	bundles := memory.NewBundleStore()
	bundles.Put(testBundle())

	remote := &stubRemote{}
	decisions := memory.NewDecisionStore()
	index := services.NewTallyIndex()
	reviewer := domain.Reviewer{ClientID: "test-client-id", Name: "tester"}

	configStore = memory.NewConfigStore()
	bundleStore = bundles
	reviewService = services.NewReview(decisions, remote, index, reviewer)
	matchService = services.NewMatcher(nil)
	exportService = services.NewExporter(bundles, decisions, index)
	currentReviewer = reviewer

	return func() {
		configStore = nil
		bundleStore = nil
		authorityIndex = nil
		reviewService = nil
		matchService = nil
		exportService = nil
		currentReviewer = domain.Reviewer{}
	}
}
