package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"free-chat-client/internal/session"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	ts := session.NewTokenStore(path)

	require.NoError(t, ts.Save("tok-abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, err := ts.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestTokenStoreLoadMissingFile(t *testing.T) {
	ts := session.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	token, err := ts.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenStoreClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	ts := session.NewTokenStore(path)

	require.NoError(t, ts.Save("tok"))
	require.NoError(t, ts.Clear())
	require.NoError(t, ts.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTokenStoreSaveOverwrites(t *testing.T) {
	ts := session.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	require.NoError(t, ts.Save("old"))
	require.NoError(t, ts.Save("new"))

	token, err := ts.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}
