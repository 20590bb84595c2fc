package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for directory operations.
type Metrics struct {
	Authentications prometheus.Counter
	AuthFailures    prometheus.Counter
	SignOuts        prometheus.Counter
	LiveTokens      prometheus.Gauge
	EntityWrites    *prometheus.CounterVec
	TokensReaped    prometheus.Counter
}

// New registers and returns directory metrics collectors.
func New() *Metrics {
	return &Metrics{
		Authentications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_authentications_total",
			Help: "Total number of successful authentications",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		}),
		SignOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_sign_outs_total",
			Help: "Total number of sign-out requests",
		}),
		LiveTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aegis_live_tokens",
			Help: "Current number of live issued tokens",
		}),
		EntityWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_entity_writes_total",
			Help: "Total number of directory entity create/update/delete operations",
		}, []string{"entity", "op"}),
		TokensReaped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_tokens_reaped_total",
			Help: "Total number of expired token registry entries removed by cleanup",
		}),
	}
}

func (m *Metrics) IncrementAuthentications() {
	if m != nil {
		m.Authentications.Inc()
	}
}

func (m *Metrics) IncrementAuthFailures() {
	if m != nil {
		m.AuthFailures.Inc()
	}
}

func (m *Metrics) IncrementSignOuts() {
	if m != nil {
		m.SignOuts.Inc()
	}
}

func (m *Metrics) SetLiveTokens(n int) {
	if m != nil {
		m.LiveTokens.Set(float64(n))
	}
}

func (m *Metrics) IncrementEntityWrite(entity, op string) {
	if m != nil {
		m.EntityWrites.WithLabelValues(entity, op).Inc()
	}
}

func (m *Metrics) AddTokensReaped(n int) {
	if m != nil {
		m.TokensReaped.Add(float64(n))
	}
}
