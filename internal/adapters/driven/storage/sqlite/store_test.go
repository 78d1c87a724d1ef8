package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testDecision() domain.Decision {
	return domain.Decision{
		DecisionKey: domain.DecisionKey{
			DocID:     "william-of-tyre-03",
			Person:    "Baldwin",
			RecordKey: "AUTH:baldwin-i",
		},
		Kind:    domain.DecisionAccept,
		Comment: "containment plus matching floruit",
		Reviewer: domain.Reviewer{
			ClientID: "3d1c2b6a-0f4e-4a57-9a51-2f9f6b1f0001",
			Name:     "alice",
		},
		DecidedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "decisions.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Reopen(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	d := testDecision()
	require.NoError(t, store.SaveDecision(context.Background(), d))
	require.NoError(t, store.Close())

	// Migrations are idempotent and data survives a reopen.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetDecision(context.Background(), d.DecisionKey)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionAccept, got.Kind)
}

func TestNewStore_CorruptDatabaseQuarantined(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "decisions.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("not a sqlite file"), 0600))

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	// The damaged file is kept for inspection; a fresh store works.
	assert.FileExists(t, dbPath+".corrupt")
	require.NoError(t, store.SaveDecision(context.Background(), testDecision()))
}

func TestStore_SaveAndGetDecision(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	d := testDecision()

	require.NoError(t, store.SaveDecision(ctx, d))

	got, err := store.GetDecision(ctx, d.DecisionKey)
	require.NoError(t, err)
	assert.Equal(t, d.Kind, got.Kind)
	assert.Equal(t, d.Comment, got.Comment)
	assert.Equal(t, d.Reviewer, got.Reviewer)
	assert.True(t, d.DecidedAt.Equal(got.DecidedAt))
}

func TestStore_SaveDecision_OverwritesInPlace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	d := testDecision()

	require.NoError(t, store.SaveDecision(ctx, d))

	d.Kind = domain.DecisionReject
	d.Comment = ""
	d.DecidedAt = d.DecidedAt.Add(time.Hour)
	require.NoError(t, store.SaveDecision(ctx, d))

	got, err := store.GetDecision(ctx, d.DecisionKey)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionReject, got.Kind)
	assert.Empty(t, got.Comment)

	// One row per triple, always.
	list, err := store.ListDecisions(ctx, d.DocID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_SaveDecision_IncompleteKey(t *testing.T) {
	store := setupTestStore(t)

	err := store.SaveDecision(context.Background(), domain.Decision{
		DecisionKey: domain.DecisionKey{DocID: "doc-1"},
		Kind:        domain.DecisionAccept,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_GetDecision_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetDecision(context.Background(), domain.DecisionKey{
		DocID: "doc-1", Person: "nobody", RecordKey: "AUTH:none",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteDecision(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	d := testDecision()

	require.NoError(t, store.SaveDecision(ctx, d))
	require.NoError(t, store.DeleteDecision(ctx, d.DecisionKey))

	_, err := store.GetDecision(ctx, d.DecisionKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Idempotent: deleting again succeeds.
	assert.NoError(t, store.DeleteDecision(ctx, d.DecisionKey))
}

func TestStore_ListDecisions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := testDecision()
	b := testDecision()
	b.Person = "Melisende"
	b.RecordKey = "AUTH:melisende"
	b.Kind = domain.DecisionFlag
	other := testDecision()
	other.DocID = "other-doc"

	require.NoError(t, store.SaveDecision(ctx, a))
	require.NoError(t, store.SaveDecision(ctx, b))
	require.NoError(t, store.SaveDecision(ctx, other))

	list, err := store.ListDecisions(ctx, a.DocID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Baldwin", list[0].Person)
	assert.Equal(t, "Melisende", list[1].Person)
}

func TestStore_ListDecisions_Empty(t *testing.T) {
	store := setupTestStore(t)

	list, err := store.ListDecisions(context.Background(), "no-such-doc")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_Flags(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	f := domain.EntityFlag{
		DocID:     "william-of-tyre-03",
		Person:    "the Templars",
		Kind:      domain.FlagGroup,
		FlaggedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}

	set, err := store.HasFlag(ctx, f.DocID, f.Person, f.Kind)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, store.SaveFlag(ctx, f))

	set, err = store.HasFlag(ctx, f.DocID, f.Person, f.Kind)
	require.NoError(t, err)
	assert.True(t, set)

	// Kinds are independent toggles.
	set, err = store.HasFlag(ctx, f.DocID, f.Person, domain.FlagNotPerson)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, store.DeleteFlag(ctx, f.DocID, f.Person, f.Kind))
	set, err = store.HasFlag(ctx, f.DocID, f.Person, f.Kind)
	require.NoError(t, err)
	assert.False(t, set)

	// Idempotent delete.
	assert.NoError(t, store.DeleteFlag(ctx, f.DocID, f.Person, f.Kind))
}

func TestStore_ListFlags(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, f := range []domain.EntityFlag{
		{DocID: "doc-1", Person: "the Templars", Kind: domain.FlagGroup, FlaggedAt: now},
		{DocID: "doc-1", Person: "Anno Domini", Kind: domain.FlagNotPerson, FlaggedAt: now},
		{DocID: "doc-2", Person: "Napoleon", Kind: domain.FlagWrongEra, FlaggedAt: now},
	} {
		require.NoError(t, store.SaveFlag(ctx, f))
	}

	flags, err := store.ListFlags(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "Anno Domini", flags[0].Person)
	assert.Equal(t, "the Templars", flags[1].Person)
}

func TestStore_SaveFlag_Incomplete(t *testing.T) {
	store := setupTestStore(t)

	err := store.SaveFlag(context.Background(), domain.EntityFlag{DocID: "doc-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
