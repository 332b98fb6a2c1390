package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

func TestSession_LoadsPersistedState(t *testing.T) {
	store := &MemoryStore{state: Persisted{AdminToken: "jwt", RememberedEmail: "admin@cc.pk"}}
	s, err := New(store)
	require.NoError(t, err)
	assert.Equal(t, "jwt", s.Token())
	assert.Equal(t, "admin@cc.pk", s.RememberedEmail())
	// A loaded token is not trusted until a profile validates it.
	assert.False(t, s.Authenticated())
}

func TestSession_TokenLifecycle(t *testing.T) {
	store := &MemoryStore{}
	s, err := New(store)
	require.NoError(t, err)

	require.NoError(t, s.SetToken("jwt"))
	s.SetUser(&models.Profile{ID: "u1", Email: "admin@cc.pk", Role: models.RoleAdmin, Token: "jwt"})
	assert.True(t, s.Authenticated())
	assert.Empty(t, s.User().Token)

	p, _ := store.Load()
	assert.Equal(t, "jwt", p.AdminToken)

	require.NoError(t, s.ClearToken())
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
	p, _ = store.Load()
	assert.Empty(t, p.AdminToken)
}

func TestSession_NonAdminNotAuthenticated(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("jwt"))
	s.SetUser(&models.Profile{Role: "customer"})
	assert.False(t, s.Authenticated())
}

func TestSession_SetTokenForgetsUser(t *testing.T) {
	s, _ := New(nil)
	require.NoError(t, s.SetToken("a"))
	s.SetUser(&models.Profile{Role: models.RoleAdmin})
	require.NoError(t, s.SetToken("b"))
	assert.Nil(t, s.User())
}

func TestSession_UserIsCopy(t *testing.T) {
	s, _ := New(nil)
	s.SetUser(&models.Profile{Name: "Ayesha", Role: models.RoleAdmin})
	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Ayesha", s.User().Name)
}

func TestSession_Remember(t *testing.T) {
	store := &MemoryStore{}
	s, _ := New(store)
	require.NoError(t, s.Remember("admin@cc.pk"))
	p, _ := store.Load()
	assert.Equal(t, "admin@cc.pk", p.RememberedEmail)

	require.NoError(t, s.Remember(""))
	p, _ = store.Load()
	assert.Empty(t, p.RememberedEmail)
}
