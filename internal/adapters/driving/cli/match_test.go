package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCmd_Use(t *testing.T) {
	assert.Equal(t, "match [doc-id] [person]", matchCmd.Use)
}

func TestMatchCmd_HasLimitFlag(t *testing.T) {
	flag := matchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestMatchCmd_ShowsCandidates(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"match", "chronicle-a", "Baldwin of Boulogne"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `Candidates for "Baldwin of Boulogne"`)
	assert.Contains(t, out, "Baldwin I of Jerusalem (0.95, high)")
	assert.Contains(t, out, "AUTH:baldwin-i")
	assert.Contains(t, out, "Baldwin II of Jerusalem (0.71, low)")
	assert.Contains(t, out, "exact match")
}

func TestMatchCmd_CaseInsensitiveLookup(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"match", "chronicle-a", "baldwin of boulogne"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Baldwin I of Jerusalem")
}

func TestMatchCmd_NoCandidates(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"match", "chronicle-a", "the Hospitallers"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `No candidates for "the Hospitallers"`)
}

func TestMatchCmd_UnknownMention(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"match", "chronicle-a", "Tancred"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no mention "Tancred" in document "chronicle-a"`)
}

func TestMatchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"match", "--json", "chronicle-a", "Baldwin of Boulogne"})
	defer func() {
		rootCmd.SetArgs(nil)
		matchJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"RecordID": "AUTH:baldwin-i"`)
}
