package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

// Phase is a state of the gate.
type Phase string

const (
	PhaseCheckingHealth  Phase = "CHECKING_HEALTH"
	PhaseAuthLoading     Phase = "AUTH_LOADING"
	PhaseValidating      Phase = "VALIDATING"
	PhaseAuthenticated   Phase = "AUTHENTICATED"
	PhaseUnauthenticated Phase = "UNAUTHENTICATED"
	PhaseUnreachable     Phase = "BACKEND_UNREACHABLE"
)

// DefaultProbeInterval is the period of both silent re-checks and automatic
// retries while the backend is unreachable.
const DefaultProbeInterval = 30 * time.Second

const minPasswordLength = 6

// ErrUnreachable is returned by operations refused while the backend is down.
var ErrUnreachable = errors.New("backend unreachable")

// Backend is the part of the storefront API the gate talks to.
type Backend interface {
	Probe(ctx context.Context) error
	Profile(ctx context.Context) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*models.Profile, error)
	ResetPassword(ctx context.Context, email, password string) error
}

// HealthState is the outcome of the latest probe.
type HealthState struct {
	Reachable     bool       `json:"reachable"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

// Snapshot is a consistent view of the gate.
type Snapshot struct {
	Phase           Phase           `json:"phase"`
	Health          HealthState     `json:"health"`
	User            *models.Profile `json:"user,omitempty"`
	RememberedEmail string          `json:"remembered_email,omitempty"`
}

// Event is a phase transition delivered to subscribers.
type Event struct {
	Type  string `json:"type"`
	Phase Phase  `json:"phase"`
	From  Phase  `json:"from"`
}

// Gate decides whether protected content may be shown. It starts in
// CHECKING_HEALTH, authenticates once the backend answers, and drops to
// BACKEND_UNREACHABLE from any phase when a probe fails, resuming the
// interrupted phase when the backend comes back.
type Gate struct {
	mu       sync.Mutex
	phase    Phase
	resume   Phase
	health   HealthState
	booting  bool
	session  *Session
	backend  Backend
	interval time.Duration
	now      func() time.Time
	subs     map[int]chan Event
	nextSub  int
	logger   *zap.Logger
}

// NewGate creates a gate over session and backend. interval <= 0 uses
// DefaultProbeInterval.
func NewGate(s *Session, backend Backend, interval time.Duration, logger *zap.Logger) *Gate {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		phase:    PhaseCheckingHealth,
		session:  s,
		backend:  backend,
		interval: interval,
		now:      time.Now,
		subs:     make(map[int]chan Event),
		logger:   logger,
	}
}

// Session returns the credential state the gate guards.
func (g *Gate) Session() *Session { return g.session }

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Healthy reports whether the latest probe reached the backend.
func (g *Gate) Healthy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.health.Reachable
}

// Snapshot returns the gate state for rendering.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	snap := Snapshot{Phase: g.phase, Health: g.health}
	g.mu.Unlock()
	snap.User = g.session.User()
	snap.RememberedEmail = g.session.RememberedEmail()
	return snap
}

// Run performs the boot sequence and then probes once per interval until ctx
// is done. While the backend is unreachable the scheduled probe keeps
// retrying on the same interval.
func (g *Gate) Run(ctx context.Context) error {
	g.check(ctx)

	timer := time.NewTimer(g.interval)
	defer timer.Stop()
	backoff := retry.NewConstant(g.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := g.check(ctx); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			return ctx.Err()
		}
		timer.Reset(g.interval)
	}
}

// Retry probes immediately, as the retry button of the unreachable screen does.
func (g *Gate) Retry(ctx context.Context) error {
	return g.check(ctx)
}

// check runs one probe and applies its outcome. Successful probes while
// already authenticated change nothing visible.
func (g *Gate) check(ctx context.Context) error {
	err := g.backend.Probe(ctx)

	g.mu.Lock()
	if err != nil {
		g.health.Reachable = false
		if g.phase != PhaseUnreachable {
			g.resume = g.phase
			g.setPhaseLocked(PhaseUnreachable)
		}
		g.mu.Unlock()
		return err
	}

	now := g.now()
	g.health = HealthState{Reachable: true, LastCheckedAt: &now}
	if g.phase == PhaseUnreachable {
		g.setPhaseLocked(g.resume)
	}
	boot := g.phase == PhaseCheckingHealth && !g.booting
	if boot {
		g.booting = true
	}
	g.mu.Unlock()

	if boot {
		g.authenticate(ctx)
		g.mu.Lock()
		g.booting = false
		g.mu.Unlock()
	}
	return nil
}

// authenticate validates a persisted credential, if any.
func (g *Gate) authenticate(ctx context.Context) {
	g.enter(PhaseAuthLoading)
	if g.session.Token() == "" {
		g.enter(PhaseUnauthenticated)
		return
	}

	g.enter(PhaseValidating)
	p, err := g.backend.Profile(ctx)
	if err == nil && !p.IsAdmin() {
		err = &storefront.AuthorizationError{Role: p.Role}
	}
	if err != nil {
		g.logger.Warn("failed to load user", zap.Error(err))
		g.discard()
		g.enter(PhaseUnauthenticated)
		return
	}
	g.session.SetUser(p)
	g.enter(PhaseAuthenticated)
}

// Login submits credentials. The returned token is persisted, validated by a
// profile fetch, and accepted only for administrators.
func (g *Gate) Login(ctx context.Context, email, password string, remember bool) (*models.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, storefront.Invalid("email", "Email is required")
	}
	if password == "" {
		return nil, storefront.Invalid("password", "Password is required")
	}
	if g.Phase() == PhaseUnreachable {
		return nil, ErrUnreachable
	}

	p, err := g.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		g.discard()
		g.enter(PhaseUnauthenticated)
		return nil, &storefront.AuthorizationError{Role: p.Role}
	}
	if err := g.session.SetToken(p.Token); err != nil {
		return nil, err
	}

	g.enter(PhaseValidating)
	profile, err := g.backend.Profile(ctx)
	if err == nil && !profile.IsAdmin() {
		err = &storefront.AuthorizationError{Role: profile.Role}
	}
	if err != nil {
		g.discard()
		g.enter(PhaseUnauthenticated)
		return nil, err
	}
	g.session.SetUser(profile)

	rememberEmail := ""
	if remember {
		rememberEmail = email
	}
	if err := g.session.Remember(rememberEmail); err != nil {
		g.logger.Warn("failed to persist remembered email", zap.Error(err))
	}

	g.enter(PhaseAuthenticated)
	g.logger.Info("admin signed in", zap.String("email", profile.Email))
	return g.session.User(), nil
}

// Logout discards the credential. It always ends unauthenticated.
func (g *Gate) Logout() {
	g.discard()
	g.enter(PhaseUnauthenticated)
}

// ResetPassword validates the new password pair and submits it.
func (g *Gate) ResetPassword(ctx context.Context, email, password, confirm string) error {
	if strings.TrimSpace(email) == "" {
		return storefront.Invalid("email", "Email is required")
	}
	if password != confirm {
		return storefront.Invalid("confirmPassword", "Passwords do not match")
	}
	if len(password) < minPasswordLength {
		return storefront.Invalid("newPassword", "Password must be at least %d characters long", minPasswordLength)
	}
	return g.backend.ResetPassword(ctx, strings.TrimSpace(email), password)
}

// Subscribe returns a channel of phase transitions and a cancel function.
func (g *Gate) Subscribe() (<-chan Event, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	ch := make(chan Event, 16)
	g.subs[id] = ch
	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if sub, ok := g.subs[id]; ok {
			delete(g.subs, id)
			close(sub)
		}
	}
}

func (g *Gate) discard() {
	if err := g.session.ClearToken(); err != nil {
		g.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
}

// enter moves to p. While unreachable the move is recorded as the phase to
// resume instead, so protected content never shows without a reachable backend.
func (g *Gate) enter(p Phase) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseUnreachable {
		g.resume = p
		return
	}
	g.setPhaseLocked(p)
}

func (g *Gate) setPhaseLocked(p Phase) {
	if g.phase == p {
		return
	}
	from := g.phase
	g.phase = p
	g.logger.Debug("gate transition", zap.String("from", string(from)), zap.String("to", string(p)))
	ev := Event{Type: "gate.phase", Phase: p, From: from}
	for _, ch := range g.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
