package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the session lifecycle.
type Metrics struct {
	Logins          prometheus.Counter
	LoginFailures   prometheus.Counter
	Logouts         prometheus.Counter
	Refreshes       prometheus.Counter
	RefreshFailures prometheus.Counter
	ForcedLogouts   prometheus.Counter
	ExpiryWarnings  prometheus.Counter
	ActiveSessions  prometheus.Gauge
}

// New registers and returns session metrics collectors.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_logouts_total",
			Help: "Total number of user-initiated logouts",
		}),
		Refreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_refreshes_total",
			Help: "Total number of successful token refreshes",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_refresh_failures_total",
			Help: "Total number of failed token refreshes",
		}),
		ForcedLogouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_forced_logouts_total",
			Help: "Total number of logouts forced by the session monitor",
		}),
		ExpiryWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_session_expiry_warnings_total",
			Help: "Total number of session-expiring warnings shown",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aegis_session_active",
			Help: "Whether an authenticated session is currently held",
		}),
	}
}

func (m *Metrics) IncrementLogins() {
	if m != nil {
		m.Logins.Inc()
	}
}

func (m *Metrics) IncrementLoginFailures() {
	if m != nil {
		m.LoginFailures.Inc()
	}
}

func (m *Metrics) IncrementLogouts() {
	if m != nil {
		m.Logouts.Inc()
	}
}

func (m *Metrics) IncrementRefreshes() {
	if m != nil {
		m.Refreshes.Inc()
	}
}

func (m *Metrics) IncrementRefreshFailures() {
	if m != nil {
		m.RefreshFailures.Inc()
	}
}

func (m *Metrics) IncrementForcedLogouts() {
	if m != nil {
		m.ForcedLogouts.Inc()
	}
}

func (m *Metrics) IncrementExpiryWarnings() {
	if m != nil {
		m.ExpiryWarnings.Inc()
	}
}

func (m *Metrics) SetSessionActive(active bool) {
	if m != nil {
		if active {
			m.ActiveSessions.Set(1)
		} else {
			m.ActiveSessions.Set(0)
		}
	}
}
