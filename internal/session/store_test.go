package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := NewFileStore(path)

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Persisted{}, p)

	want := Persisted{AdminToken: "jwt", RememberedEmail: "admin@cc.pk"}
	require.NoError(t, s.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "adminToken: jwt")
	assert.Contains(t, string(data), "adminRememberedEmail: admin@cc.pk")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_EmptyStateRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	s := NewFileStore(path)
	require.NoError(t, s.Save(Persisted{AdminToken: "jwt"}))
	require.NoError(t, s.Save(Persisted{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	require.NoError(t, s.Save(Persisted{}))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adminToken: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}
