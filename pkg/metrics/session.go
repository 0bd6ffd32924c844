package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics records token refresh outcomes and upstream latency.
type SessionMetrics struct {
	refreshDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	upstreamCalls   *prometheus.CounterVec
}

// NewSessionMetrics registers the session metrics on the provided registerer.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	refreshDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "token_refresh_duration_seconds",
		Help:    "Duration of token refresh exchanges in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_refresh_total",
		Help: "Token refresh attempts by result.",
	}, []string{"result"})
	upstreamCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Proxied upstream requests by status class.",
	}, []string{"status_class"})
	reg.MustRegister(refreshDuration, refreshes, upstreamCalls)
	return &SessionMetrics{
		refreshDuration: refreshDuration,
		refreshes:       refreshes,
		upstreamCalls:   upstreamCalls,
	}
}

// ObserveRefreshDuration records how long a refresh exchange took.
func (s *SessionMetrics) ObserveRefreshDuration(trigger string, duration time.Duration) {
	if s == nil || s.refreshDuration == nil {
		return
	}
	s.refreshDuration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncRefresh increments the refresh counter for the given result.
func (s *SessionMetrics) IncRefresh(result string) {
	if s == nil || s.refreshes == nil {
		return
	}
	s.refreshes.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncUpstreamCall increments the upstream request counter for a status class.
func (s *SessionMetrics) IncUpstreamCall(statusClass string) {
	if s == nil || s.upstreamCalls == nil {
		return
	}
	s.upstreamCalls.WithLabelValues(normalizeLabel(statusClass)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
