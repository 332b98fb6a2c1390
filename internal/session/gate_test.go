package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

type fakeBackend struct {
	mu         sync.Mutex
	probeErr   error
	probes     int
	profile    *models.Profile
	profileErr error
	login      *models.Profile
	loginErr   error
	resetEmail string
	resetPass  string
}

func (f *fakeBackend) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.probeErr
}

func (f *fakeBackend) Profile(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.profileErr
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.login, f.loginErr
}

func (f *fakeBackend) ResetPassword(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmail, f.resetPass = email, password
	return nil
}

func (f *fakeBackend) setProbe(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeErr = err
}

func (f *fakeBackend) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

var errDown = &storefront.NetworkError{Method: "GET", Path: "/", Err: errors.New("connection refused")}

func admin() *models.Profile {
	return &models.Profile{ID: "u1", Email: "admin@cc.pk", Role: models.RoleAdmin}
}

func newGate(t *testing.T, token string, b *fakeBackend) (*Gate, *MemoryStore) {
	t.Helper()
	store := &MemoryStore{state: Persisted{AdminToken: token}}
	s, err := New(store)
	require.NoError(t, err)
	return NewGate(s, b, time.Hour, nil), store
}

func TestGate_Boot(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		backend   *fakeBackend
		want      Phase
		wantToken string
	}{
		{"no token", "", &fakeBackend{}, PhaseUnauthenticated, ""},
		{"valid admin token", "jwt", &fakeBackend{profile: admin()}, PhaseAuthenticated, "jwt"},
		{"expired token", "jwt", &fakeBackend{profileErr: &storefront.APIError{Status: 401, Message: "Token expired", FromServer: true}}, PhaseUnauthenticated, ""},
		{"customer token", "jwt", &fakeBackend{profile: &models.Profile{Role: "customer"}}, PhaseUnauthenticated, ""},
		{"profile network error", "jwt", &fakeBackend{profileErr: errDown}, PhaseUnauthenticated, ""},
		{"backend down", "jwt", &fakeBackend{probeErr: errDown}, PhaseUnreachable, "jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, store := newGate(t, tc.token, tc.backend)
			_ = g.Retry(context.Background())
			assert.Equal(t, tc.want, g.Phase())
			p, _ := store.Load()
			assert.Equal(t, tc.wantToken, p.AdminToken)
		})
	}
}

func TestGate_UnreachableResumesInterruptedPhase(t *testing.T) {
	b := &fakeBackend{probeErr: errDown, profile: admin()}
	g, _ := newGate(t, "jwt", b)

	require.Error(t, g.Retry(context.Background()))
	assert.Equal(t, PhaseUnreachable, g.Phase())
	assert.False(t, g.Healthy())

	// Recovery resumes the boot sequence that never ran.
	b.setProbe(nil)
	require.NoError(t, g.Retry(context.Background()))
	assert.Equal(t, PhaseAuthenticated, g.Phase())
	snap := g.Snapshot()
	assert.True(t, snap.Health.Reachable)
	require.NotNil(t, snap.Health.LastCheckedAt)
	require.NotNil(t, snap.User)
	assert.Equal(t, "admin@cc.pk", snap.User.Email)

	// Losing the backend while authenticated hides content; recovery restores it.
	b.setProbe(errDown)
	_ = g.Retry(context.Background())
	assert.Equal(t, PhaseUnreachable, g.Phase())
	b.setProbe(nil)
	require.NoError(t, g.Retry(context.Background()))
	assert.Equal(t, PhaseAuthenticated, g.Phase())
}

func TestGate_LogoutWhileUnreachable(t *testing.T) {
	b := &fakeBackend{profile: admin()}
	g, _ := newGate(t, "jwt", b)
	require.NoError(t, g.Retry(context.Background()))

	b.setProbe(errDown)
	_ = g.Retry(context.Background())
	g.Logout()
	assert.Equal(t, PhaseUnreachable, g.Phase())

	b.setProbe(nil)
	require.NoError(t, g.Retry(context.Background()))
	assert.Equal(t, PhaseUnauthenticated, g.Phase())
}

func TestGate_Login(t *testing.T) {
	b := &fakeBackend{
		login:   &models.Profile{ID: "u1", Email: "admin@cc.pk", Role: models.RoleAdmin, Token: "jwt"},
		profile: admin(),
	}
	g, store := newGate(t, "", b)
	require.NoError(t, g.Retry(context.Background()))
	require.Equal(t, PhaseUnauthenticated, g.Phase())

	p, err := g.Login(context.Background(), " admin@cc.pk ", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Empty(t, p.Token)
	assert.Equal(t, PhaseAuthenticated, g.Phase())
	assert.True(t, g.Session().Authenticated())

	saved, _ := store.Load()
	assert.Equal(t, "jwt", saved.AdminToken)
	assert.Equal(t, "admin@cc.pk", saved.RememberedEmail)

	g.Logout()
	assert.Equal(t, PhaseUnauthenticated, g.Phase())
	saved, _ = store.Load()
	assert.Empty(t, saved.AdminToken)
	assert.Equal(t, "admin@cc.pk", saved.RememberedEmail)
}

func TestGate_LoginWithoutRememberForgetsEmail(t *testing.T) {
	b := &fakeBackend{login: &models.Profile{Role: models.RoleAdmin, Token: "jwt"}, profile: admin()}
	g, store := newGate(t, "", b)
	store.state.RememberedEmail = "old@cc.pk"
	require.NoError(t, g.Retry(context.Background()))

	_, err := g.Login(context.Background(), "admin@cc.pk", "secret", false)
	require.NoError(t, err)
	saved, _ := store.Load()
	assert.Empty(t, saved.RememberedEmail)
}

func TestGate_LoginRejectsNonAdmin(t *testing.T) {
	b := &fakeBackend{login: &models.Profile{Role: "customer", Token: "jwt"}}
	g, store := newGate(t, "", b)
	require.NoError(t, g.Retry(context.Background()))

	_, err := g.Login(context.Background(), "shopper@cc.pk", "secret", true)
	assert.Equal(t, "Access denied. Admin privileges required.", storefront.UserMessage(err, ""))
	assert.Equal(t, PhaseUnauthenticated, g.Phase())
	saved, _ := store.Load()
	assert.Empty(t, saved.AdminToken)
	assert.Empty(t, saved.RememberedEmail)
}

func TestGate_LoginServerError(t *testing.T) {
	b := &fakeBackend{loginErr: &storefront.APIError{Status: 401, Message: "Invalid email or password", FromServer: true}}
	g, _ := newGate(t, "", b)
	require.NoError(t, g.Retry(context.Background()))

	_, err := g.Login(context.Background(), "admin@cc.pk", "wrong", false)
	assert.Equal(t, "Invalid email or password", storefront.UserMessage(err, "Login failed"))
	assert.Equal(t, PhaseUnauthenticated, g.Phase())
}

func TestGate_LoginValidation(t *testing.T) {
	g, _ := newGate(t, "", &fakeBackend{})
	_, err := g.Login(context.Background(), "", "secret", false)
	assert.Equal(t, "Email is required", storefront.UserMessage(err, ""))
	_, err = g.Login(context.Background(), "admin@cc.pk", "", false)
	assert.Equal(t, "Password is required", storefront.UserMessage(err, ""))
}

func TestGate_LoginRefusedWhileUnreachable(t *testing.T) {
	g, _ := newGate(t, "", &fakeBackend{probeErr: errDown})
	_ = g.Retry(context.Background())
	_, err := g.Login(context.Background(), "admin@cc.pk", "secret", false)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestGate_ResetPassword(t *testing.T) {
	tests := []struct {
		name, password, confirm, want string
	}{
		{"mismatch", "secret1", "secret2", "Passwords do not match"},
		{"too short", "abc", "abc", "Password must be at least 6 characters long"},
		{"ok", "secret1", "secret1", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{}
			g, _ := newGate(t, "", b)
			err := g.ResetPassword(context.Background(), "admin@cc.pk", tc.password, tc.confirm)
			if tc.want == "" {
				require.NoError(t, err)
				assert.Equal(t, "admin@cc.pk", b.resetEmail)
				assert.Equal(t, tc.password, b.resetPass)
				return
			}
			assert.Equal(t, tc.want, storefront.UserMessage(err, ""))
			assert.Empty(t, b.resetPass)
		})
	}
}

func TestGate_SubscribeTransitions(t *testing.T) {
	g, _ := newGate(t, "jwt", &fakeBackend{profile: admin()})
	events, cancel := g.Subscribe()
	defer cancel()

	require.NoError(t, g.Retry(context.Background()))
	var phases []Phase
	for len(events) > 0 {
		phases = append(phases, (<-events).Phase)
	}
	assert.Equal(t, []Phase{PhaseAuthLoading, PhaseValidating, PhaseAuthenticated}, phases)
}

func TestGate_AuthenticatedStaysStableWhileReachable(t *testing.T) {
	b := &fakeBackend{profile: admin()}
	g, _ := newGate(t, "jwt", b)
	require.NoError(t, g.Retry(context.Background()))
	require.Equal(t, PhaseAuthenticated, g.Phase())

	events, cancel := g.Subscribe()
	defer cancel()
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Retry(context.Background()))
		assert.Equal(t, PhaseAuthenticated, g.Phase())
	}

	var phases []Phase
	for len(events) > 0 {
		phases = append(phases, (<-events).Phase)
	}
	for _, p := range []Phase{PhaseCheckingHealth, PhaseAuthLoading, PhaseValidating} {
		assert.NotContains(t, phases, p)
	}
	assert.Empty(t, phases)
	require.NotNil(t, g.Snapshot().User)
}

func TestGate_RunProbesPeriodically(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := &fakeBackend{}
	s, err := New(nil)
	require.NoError(t, err)
	g := NewGate(s, b, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	assert.Eventually(t, func() bool { return b.probeCount() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseUnauthenticated, g.Phase())

	// Failures keep retrying on the same interval and recover on their own.
	b.setProbe(errDown)
	assert.Eventually(t, func() bool { return g.Phase() == PhaseUnreachable }, time.Second, 5*time.Millisecond)
	b.setProbe(nil)
	assert.Eventually(t, func() bool { return g.Phase() == PhaseUnauthenticated }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
