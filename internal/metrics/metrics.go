package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/rinkleague/internal/league"
)

// Matchmaking outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeJoined   = "joined"
	OutcomeBotFill  = "bot_fill"
	OutcomeWaiting  = "waiting"
	OutcomeConflict = "conflict"
)

// Simulation results.
const (
	ResultOK    = "ok"
	ResultFault = "fault"
)

var goalBuckets = []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 12}

// Manager owns the league collectors. A nil *Manager is valid and records
// nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	matchmaking        *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	simulations        *prometheus.CounterVec
	simulationDuration prometheus.Histogram
	matchEvents        *prometheus.CounterVec
	goalsPerMatch      prometheus.Histogram
	brackets           prometheus.Counter
}

// NewManager creates a manager with its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rinkleague",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchmaking = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaking_total",
		Help:      "Matchmaking requests by outcome",
	}, []string{"outcome"})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Stored plan submissions by source",
	}, []string{"source"})

	m.simulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "simulations_total",
		Help:      "Simulation runs by result",
	}, []string{"result"})

	m.simulationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "simulation_duration_seconds",
		Help:      "Wall time of one simulation including persistence",
		Buckets:   m.histogramBuckets,
	})

	m.matchEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_events_total",
		Help:      "Play-by-play events emitted by type",
	}, []string{"type"})

	m.goalsPerMatch = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_per_match",
		Help:      "Total goals scored in a simulated match",
		Buckets:   goalBuckets,
	})

	m.brackets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "playoff_brackets_total",
		Help:      "Playoff brackets run to a champion",
	})
}

func (m *Manager) on() bool {
	return m != nil && m.enabled
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Matchmaking counts one FindMatch outcome.
func (m *Manager) Matchmaking(outcome string) {
	if !m.on() {
		return
	}
	m.matchmaking.WithLabelValues(outcome).Inc()
}

// Submission counts one stored plan.
func (m *Manager) Submission(source league.PlanSource) {
	if !m.on() {
		return
	}
	m.submissions.WithLabelValues(string(source)).Inc()
}

// Simulation records one run and its duration.
func (m *Manager) Simulation(result string, d time.Duration) {
	if !m.on() {
		return
	}
	m.simulations.WithLabelValues(result).Inc()
	m.simulationDuration.Observe(d.Seconds())
}

// Events counts a run's play-by-play by type and observes its goal total.
func (m *Manager) Events(events []league.MatchEvent) {
	if !m.on() {
		return
	}
	goals := 0
	for _, ev := range events {
		m.matchEvents.WithLabelValues(string(ev.Type)).Inc()
		if ev.Type == league.EventGoal {
			goals++
		}
	}
	m.goalsPerMatch.Observe(float64(goals))
}

// Bracket counts one completed playoff bracket.
func (m *Manager) Bracket() {
	if !m.on() {
		return
	}
	m.brackets.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: shutdown: %w", ErrServe, err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
}
