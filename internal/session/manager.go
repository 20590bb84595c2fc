// Package session owns the client-side authentication state: the current
// user, their bearer token, and the transitions between authenticated and
// unauthenticated. It persists credentials across restarts through a two-tier
// store and exposes subscribe/notify semantics for UI layers.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"aegis/internal/session/credstore"
	"aegis/internal/session/metrics"
	dErrors "aegis/pkg/domain-errors"
)

// Listener receives the full session snapshot on every state transition.
type Listener func(Snapshot)

type subscriber struct {
	id int
	fn Listener
}

// Manager is the auth state machine. It is the sole writer of the session
// snapshot; an operation mutex serializes Bootstrap/Login/Logout/Refresh so a
// watchdog tick firing mid-login cannot interleave state mutations.
type Manager struct {
	directory Directory
	creds     *credstore.Credentials
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	device    string

	// opMu serializes whole operations including their directory calls.
	// mu guards the snapshot and subscriber list only.
	opMu sync.Mutex
	mu   sync.Mutex

	state       Snapshot
	subscribers []subscriber
	nextSubID   int
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithClock overrides the wall clock used for credential expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDeviceName sets the device display name sent with login requests.
func WithDeviceName(name string) Option {
	return func(m *Manager) {
		m.device = name
	}
}

// New constructs a Manager in the bootstrapping state: unauthenticated with
// IsLoading true until Bootstrap settles it.
func New(directory Directory, creds *credstore.Credentials, opts ...Option) *Manager {
	m := &Manager{
		directory: directory,
		creds:     creds,
		now:       time.Now,
		state:     Snapshot{IsLoading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Bootstrap resolves a previously stored credential into a live session. A
// missing, expired, or remotely rejected credential results in a clean
// unauthenticated state; failures are absorbed, never surfaced, so a corrupt
// stored credential cannot crash startup. IsLoading is false on every exit
// path.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	cred, ok := m.creds.Load()
	if !ok {
		m.setUnauthenticated()
		return
	}

	user, err := m.validateAndFetch(ctx, cred)
	if err != nil {
		m.logger.InfoContext(ctx, "stored credential rejected at bootstrap", "error", err)
		m.creds.Clear()
		m.setUnauthenticated()
		return
	}

	m.setAuthenticated(user, cred.Token)
}

// Login authenticates against the directory and persists the issued token
// into the tier chosen by rememberMe. On failure the prior session state is
// preserved: a failed login while already authenticated does not
// deauthenticate the caller. The returned error always carries a
// human-readable message, defaulting to "Login failed".
func (m *Manager) Login(ctx context.Context, username, password string, rememberMe bool) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setLoading(true)

	result, err := m.directory.Authenticate(ctx, username, password, m.device)
	if err != nil {
		m.setLoading(false)
		m.metrics.IncrementLoginFailures()
		return loginError(err)
	}

	tier, retention := credstore.TierEphemeral, credstore.EphemeralRetention
	if rememberMe {
		tier, retention = credstore.TierDurable, credstore.DurableRetention
	}
	m.creds.Save(result.Token, m.now().Add(retention), tier)

	m.setAuthenticated(userFromModel(result.User), result.Token)
	m.metrics.IncrementLogins()
	m.logger.InfoContext(ctx, "logged in", "username", username, "remember_me", rememberMe)
	return nil
}

// Logout ends the session. The remote sign-out is best effort; regardless of
// its outcome both storage tiers are cleared and the session resets to empty
// unauthenticated. Logout never fails from the caller's perspective.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setLoading(true)

	if token := m.snapshot().Token; token != "" {
		if err := m.directory.SignOut(ctx, token); err != nil {
			m.logger.WarnContext(ctx, "remote sign-out failed, clearing local session anyway", "error", err)
		}
	}

	m.creds.Clear()
	m.setUnauthenticated()
	m.metrics.IncrementLogouts()
}

// RefreshToken re-validates the stored credential. With no stored credential
// it clears any lingering state and returns nil. An expired or rejected
// credential clears the session and returns a token_expired error so
// watchdogs can escalate. A valid credential is left as is.
func (m *Manager) RefreshToken(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	cred, ok := m.creds.Load()
	if !ok {
		if m.snapshot().IsAuthenticated || m.snapshot().IsLoading {
			m.setUnauthenticated()
		}
		return nil
	}

	if err := m.validate(ctx, cred); err != nil {
		m.logger.InfoContext(ctx, "token refresh failed", "error", err)
		m.creds.Clear()
		m.setUnauthenticated()
		m.metrics.IncrementRefreshFailures()
		return dErrors.Wrap(err, dErrors.CodeTokenExpired, "Token expired")
	}

	m.metrics.IncrementRefreshes()
	return nil
}

// HasRole reports whether the current user holds the named role. Always
// false while unauthenticated.
func (m *Manager) HasRole(name string) bool {
	return m.snapshot().User.HasRole(name)
}

// HasAnyRole reports whether the current user holds any of the named roles.
func (m *Manager) HasAnyRole(names ...string) bool {
	return m.snapshot().User.HasAnyRole(names...)
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	return m.snapshot()
}

// Subscribe registers a listener for state transitions and returns its
// unsubscribe func. Listeners are invoked in registration order with a copy
// of the snapshot; unsubscribing from inside a notification is safe.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers = append(m.subscribers, subscriber{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub.id == id {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// transition applies a state mutation and notifies subscribers. The
// subscriber list is copied before the lock is released so listeners run
// outside the lock and may unsubscribe themselves mid-notification.
func (m *Manager) transition(mutate func(*Snapshot)) {
	m.mu.Lock()
	mutate(&m.state)
	snap := m.state
	listeners := make([]subscriber, len(m.subscribers))
	copy(listeners, m.subscribers)
	m.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(snap)
	}
}

func (m *Manager) setLoading(loading bool) {
	m.transition(func(s *Snapshot) {
		s.IsLoading = loading
	})
}

func (m *Manager) setAuthenticated(user *AuthUser, token string) {
	m.transition(func(s *Snapshot) {
		s.User = user
		s.Token = token
		s.IsAuthenticated = true
		s.IsLoading = false
	})
	m.metrics.SetSessionActive(true)
}

func (m *Manager) setUnauthenticated() {
	m.transition(func(s *Snapshot) {
		s.User = nil
		s.Token = ""
		s.IsAuthenticated = false
		s.IsLoading = false
	})
	m.metrics.SetSessionActive(false)
}

// validate runs the two-stage credential check: local expiry against the
// wall clock first, remote validation only if the credential is not locally
// expired.
func (m *Manager) validate(ctx context.Context, cred credstore.Credential) error {
	if cred.ExpiredAt(m.now()) {
		return dErrors.New(dErrors.CodeTokenExpired, "credential expired")
	}
	if _, err := m.directory.ValidateToken(ctx, cred.Token); err != nil {
		return err
	}
	return nil
}

func (m *Manager) validateAndFetch(ctx context.Context, cred credstore.Credential) (*AuthUser, error) {
	if cred.ExpiredAt(m.now()) {
		return nil, dErrors.New(dErrors.CodeTokenExpired, "credential expired")
	}
	claims, err := m.directory.ValidateToken(ctx, cred.Token)
	if err != nil {
		return nil, err
	}
	user, err := m.directory.FetchUser(ctx, claims.TenantID, claims.Subject)
	if err != nil {
		return nil, err
	}
	return userFromModel(user), nil
}

func loginError(err error) error {
	msg := dErrors.Message(err, "Login failed")
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return dErrors.Wrap(err, dErr.Code, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
