package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictsCmd_Use(t *testing.T) {
	assert.Equal(t, "conflicts [doc-id]", conflictsCmd.Use)
}

func TestConflictsCmd_NoConflicts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"conflicts", "chronicle-a"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No conflicts.")
}

func TestConflictsCmd_ListsSides(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	// Seed the remote with a rejection, pull it, then accept locally to
	// create a conflict from this reviewer's optimistic tally patch.
	remote := &stubRemote{}
	require.NoError(t, remote.PushDecision(context.Background(), decisionFixture("bob-client", "bob")))
	rewireReview(remote)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"pull", "chronicle-a"})
	require.NoError(t, rootCmd.Execute())
	rootCmd.SetArgs([]string{"accept", "chronicle-a", "Baldwin of Boulogne", "AUTH:baldwin-i"})
	require.NoError(t, rootCmd.Execute())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"conflicts", "chronicle-a"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "1 conflicted candidates across 1 mentions")
	assert.Contains(t, out, "Baldwin of Boulogne ↔ AUTH:baldwin-i")
	assert.Contains(t, out, "accept (1): tester")
	assert.Contains(t, out, "reject (1): bob")
}
