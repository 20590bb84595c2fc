// Package monitor keeps an authenticated session alive without user action.
// A recurring refresh runs while the session is authenticated; on failure it
// escalates through a single warning and a one-shot retry before forcing a
// logout. Teardown cancels every timer so a dangling tick can never log out
// a session that already ended.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aegis/internal/session"
	"aegis/internal/session/metrics"
)

// Session is the slice of the auth state machine the monitor drives.
type Session interface {
	RefreshToken(ctx context.Context) error
	Logout(ctx context.Context)
}

// State names the watchdog's position in its escalation ladder.
type State int

const (
	// StateIdle means no session is being watched.
	StateIdle State = iota
	// StateArmed means the recurring refresh is running.
	StateArmed
	// StateWarned means the one warning for this session has been shown.
	StateWarned
	// StateEscalating means the one-shot retry is pending; its failure
	// forces a logout.
	StateEscalating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateWarned:
		return "warned"
	case StateEscalating:
		return "escalating"
	default:
		return "unknown"
	}
}

// Kind classifies a user-facing notification.
type Kind string

const (
	KindExpiring Kind = "session_expiring"
	KindExpired  Kind = "session_expired"
)

// Notification is a user-visible message emitted by the monitor. Refresh
// failures surface here rather than as errors, since no caller awaits a tick.
type Notification struct {
	Kind    Kind
	Message string
}

// Notifier receives monitor notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

const (
	defaultInterval   = 15 * time.Minute
	defaultRetryDelay = 60 * time.Second
)

// Monitor is the timer-driven watchdog.
type Monitor struct {
	session    Session
	notifier   Notifier
	interval   time.Duration
	retryDelay time.Duration
	clock      Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu     sync.Mutex
	state  State
	warned bool
	stop   chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the recurring refresh interval when greater than zero.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRetryDelay overrides the one-shot escalation delay when greater than zero.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.retryDelay = d
		}
	}
}

// WithClock injects a fake clock for tests.
func WithClock(clock Clock) Option {
	return func(m *Monitor) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

// New constructs an idle Monitor.
func New(sess Session, notifier Notifier, opts ...Option) *Monitor {
	m := &Monitor{
		session:    sess,
		notifier:   notifier,
		interval:   defaultInterval,
		retryDelay: defaultRetryDelay,
		clock:      NewRealClock(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// State returns the monitor's current position in the escalation ladder.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Arm starts watching the current authenticated session. Arming an already
// armed monitor is a no-op; a fresh arm gets a fresh warning budget.
func (m *Monitor) Arm(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return
	}
	m.state = StateArmed
	m.warned = false
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	go m.run(ctx, stop)
}

// Disarm stops watching and resets the warning flag so the next session gets
// its own single warning. Safe to call repeatedly.
func (m *Monitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Stop tears the monitor down. Alias for Disarm, named for lifecycle callers.
func (m *Monitor) Stop() {
	m.Disarm()
}

// reset returns the monitor to idle. Caller holds mu.
func (m *Monitor) reset() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.state = StateIdle
	m.warned = false
}

// OnVisible opportunistically refreshes when the UI regains foreground
// visibility. Failures are swallowed: the recurring tick's own escalation is
// authoritative for warning the user.
func (m *Monitor) OnVisible(ctx context.Context) {
	if m.State() == StateIdle {
		return
	}
	if err := m.session.RefreshToken(ctx); err != nil {
		m.logger.DebugContext(ctx, "visibility-triggered refresh failed", "error", err)
	}
}

// Watch arms and disarms the monitor as the manager's session state changes,
// and returns the subscription's unsubscribe func.
func (m *Monitor) Watch(ctx context.Context, mgr *session.Manager) func() {
	return mgr.Subscribe(func(snap session.Snapshot) {
		switch {
		case snap.IsAuthenticated:
			m.Arm(ctx)
		case !snap.IsLoading:
			m.Disarm()
		}
	})
}

func (m *Monitor) run(ctx context.Context, stop chan struct{}) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	var retry Timer
	var retryC <-chan time.Time
	defer func() {
		if retry != nil {
			retry.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C():
			if err := m.session.RefreshToken(ctx); err == nil {
				continue
			}
			if !m.owns(stop) {
				// The refresh failure already ended the session, and the
				// watch callback disarmed us from inside that call.
				return
			}
			if retryC != nil {
				// A retry is already pending; let it decide.
				continue
			}
			if m.markWarned() {
				m.notifier.Notify(Notification{
					Kind:    KindExpiring,
					Message: "Your session is about to expire. It will be renewed automatically.",
				})
				m.metrics.IncrementExpiryWarnings()
			}
			retry = m.clock.NewTimer(m.retryDelay)
			retryC = retry.C()
			m.setState(StateEscalating)
		case <-retryC:
			retry, retryC = nil, nil
			if !m.owns(stop) {
				return
			}
			if err := m.session.RefreshToken(ctx); err == nil {
				// Session saved. The warning budget stays spent.
				m.setState(StateArmed)
				continue
			}
			m.notifier.Notify(Notification{
				Kind:    KindExpired,
				Message: "Your session has expired. Please log in again.",
			})
			m.metrics.IncrementForcedLogouts()
			m.logger.Info("session refresh escalation exhausted, forcing logout")
			m.session.Logout(ctx)

			m.mu.Lock()
			if m.stop == stop {
				m.stop = nil
			}
			m.state = StateIdle
			m.warned = false
			m.mu.Unlock()
			return
		}
	}
}

// owns reports whether the run loop holding stop is still the armed one.
// A disarm, including one triggered from inside a refresh call, swaps the
// channel out and orphans the loop.
func (m *Monitor) owns(stop chan struct{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop == stop
}

// markWarned spends the session's single warning. Returns true the first
// time only, and never for a disarmed monitor.
func (m *Monitor) markWarned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle || m.warned {
		return false
	}
	m.warned = true
	m.state = StateWarned
	return true
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		m.state = s
	}
}
