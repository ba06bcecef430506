package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parley"

// Metrics holds the collectors fed by the engine's lifecycle hooks.
type Metrics struct {
	registry *prometheus.Registry

	Turns     *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Sessions  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
// A nil registry gets a fresh one with the Go and process collectors.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of dialogue turns, by state before the turn and outcome.",
			},
			[]string{"state", "reason"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Turns answered with the fallback response, by state and reason.",
			},
			[]string{"state", "reason"},
		),
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_created_total",
				Help:      "Sessions created, split by whether a stale identifier was replaced.",
			},
			[]string{"replaced"},
		),
	}
	registry.MustRegister(m.Turns, m.Fallbacks, m.Sessions)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(_ context.Context, e *domain.SessionEvent) {
			replaced := "false"
			if e.Discarded != "" {
				replaced = "true"
			}
			m.Sessions.WithLabelValues(replaced).Inc()
		},
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.From), e.Reason).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.TurnEvent) {
			m.Fallbacks.WithLabelValues(string(e.From), e.Reason).Inc()
		},
	}
}

// AuditHooks logs every lifecycle event at debug level.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(_ context.Context, e *domain.SessionEvent) {
			logger.Debug("session_start", "session_id", e.SessionID, "discarded", e.Discarded)
		},
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			logger.Debug("turn",
				"session_id", e.SessionID,
				"state", e.From,
				"next_state", e.To,
				"pattern", e.Pattern,
				"reason", e.Reason,
			)
		},
		OnFallback: func(_ context.Context, e *domain.TurnEvent) {
			logger.Debug("fallback", "session_id", e.SessionID, "state", e.From, "reason", e.Reason)
		},
	}
}
