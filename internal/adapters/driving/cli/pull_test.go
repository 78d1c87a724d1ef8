package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outremer-kg/recon-cli/internal/adapters/driven/storage/memory"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/services"
)

func TestPullCmd_Use(t *testing.T) {
	assert.Equal(t, "pull [doc-id]", pullCmd.Use)
}

func TestPullCmd_ReportsConflicts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// Two reviewers disagree on the top candidate.
	remote := &stubRemote{history: []domain.Decision{
		{
			DecisionKey: domain.DecisionKey{DocID: "chronicle-a", Person: "Baldwin of Boulogne", RecordKey: "AUTH:baldwin-i"},
			Kind:        domain.DecisionAccept,
			Reviewer:    domain.Reviewer{ClientID: "c1", Name: "alice"},
			DecidedAt:   time.Now(),
		},
		{
			DecisionKey: domain.DecisionKey{DocID: "chronicle-a", Person: "Baldwin of Boulogne", RecordKey: "AUTH:baldwin-i"},
			Kind:        domain.DecisionReject,
			Reviewer:    domain.Reviewer{ClientID: "c2", Name: "bob"},
			DecidedAt:   time.Now(),
		},
	}}
	index := services.NewTallyIndex()
	reviewService = services.NewReview(memory.NewDecisionStore(), remote, index, currentReviewer)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"pull", "chronicle-a"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Pulled community decisions for chronicle-a")
	assert.Contains(t, buf.String(), "1 conflicted candidates across 1 mentions")
}

func TestPullCmd_NoRemoteConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// Offline installation: no aggregation client wired.
	reviewService = services.NewReview(memory.NewDecisionStore(), nil, services.NewTallyIndex(), currentReviewer)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"pull", "chronicle-a"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no aggregation service configured")
}
