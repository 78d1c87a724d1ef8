package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".outremer", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("reviewer.name", "alice"))

	val, ok := store.Get("reviewer.name")
	assert.True(t, ok)
	assert.Equal(t, "alice", val)

	_, ok = store.Get("no.such.key")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("remote.base_url", "https://decisions.example.org/api"))
	require.NoError(t, store.Set("match.top_k", 3))
	require.NoError(t, store.Set("remote.enabled", true))

	assert.Equal(t, "https://decisions.example.org/api", store.GetString("remote.base_url"))
	assert.Equal(t, 3, store.GetInt("match.top_k"))
	assert.True(t, store.GetBool("remote.enabled"))

	// Missing keys yield zero values.
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))

	// Wrong types yield zero values, never panics.
	assert.Empty(t, store.GetString("match.top_k"))
	assert.Zero(t, store.GetInt("remote.base_url"))
	assert.False(t, store.GetBool("remote.base_url"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("reviewer.name", "alice"))
	require.NoError(t, store.Set("match.top_k", 3))

	// A fresh store over the same directory sees the persisted values.
	// TOML integers come back as int64.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "alice", reopened.GetString("reviewer.name"))
	assert.Equal(t, 3, reopened.GetInt("match.top_k"))
}

func TestConfigStore_Load_NestedTOMLFlattened(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[reviewer]
name = "alice"

[remote]
base_url = "https://decisions.example.org/api"
enabled = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "alice", store.GetString("reviewer.name"))
	assert.Equal(t, "https://decisions.example.org/api", store.GetString("remote.base_url"))
	assert.True(t, store.GetBool("remote.enabled"))
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_Load_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("reviewer.name", "alice"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("reviewer.name", "alice"))
	require.NoError(t, store.Set("reviewer.name", "alicia"))
	assert.Equal(t, "alicia", store.GetString("reviewer.name"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("reviewer.name", "alice")
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("reviewer.name")
		}()
	}
	wg.Wait()
}

func TestLoadReviewer_GeneratesStableClientID(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	reviewer, err := LoadReviewer(store)
	require.NoError(t, err)
	assert.NotEmpty(t, reviewer.ClientID)
	assert.Empty(t, reviewer.Name)

	// The generated id is persisted and stable across reloads.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	again, err := LoadReviewer(reopened)
	require.NoError(t, err)
	assert.Equal(t, reviewer.ClientID, again.ClientID)
}

func TestLoadReviewer_ReadsName(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyReviewerName, "alice"))

	reviewer, err := LoadReviewer(store)
	require.NoError(t, err)
	assert.Equal(t, "alice", reviewer.Name)
}
