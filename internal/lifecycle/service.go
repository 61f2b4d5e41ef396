// Package lifecycle drives a match from the matchmaking request through plan
// submission and simulation to its final score.
//
// Every status change goes through league.Transition. Matchmaking reads and
// writes happen inside one store transaction, so two requests racing for the
// same open slot cannot both claim it. The simulation of a match runs
// synchronously inside the request that moves it to SIMULATING.
package lifecycle

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/metrics"
	"github.com/roach88/rinkleague/internal/roster"
	"github.com/roach88/rinkleague/internal/sim"
	"github.com/roach88/rinkleague/internal/store"
)

// Defaults for the matchmaking windows.
const (
	DefaultHumanWait        = 30 * time.Second
	DefaultSubmissionWindow = 10 * time.Minute
	DefaultSeasonID         = 1
)

// Service is the match lifecycle. It is safe for concurrent use; all shared
// state lives in the store.
type Service struct {
	store   store.Backend
	engine  *sim.Engine
	logger  *slog.Logger
	metrics *metrics.Manager
	tokens  RunTokenGenerator
	now     func() time.Time

	humanWait        time.Duration
	submissionWindow time.Duration
	seasonID         int64

	// bots draws cosmetic roster attributes; math/rand/v2 sources are not
	// safe for concurrent use.
	botMu sync.Mutex
	bots  *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for transition and simulation logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the wall clock used for deadlines and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokens sets the run token generator.
func WithTokens(g RunTokenGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.tokens = g
		}
	}
}

// WithEngine sets the simulation engine.
func WithEngine(e *sim.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHumanWait sets how long a new match waits for a human opponent before
// the next request from its host fills it with a bot.
func WithHumanWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.humanWait = d
		}
	}
}

// WithSubmissionWindow sets how long both sides have to submit plans once
// the match is paired.
func WithSubmissionWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.submissionWindow = d
		}
	}
}

// WithSeasonID sets the season new matches belong to.
func WithSeasonID(id int64) Option {
	return func(s *Service) {
		if id > 0 {
			s.seasonID = id
		}
	}
}

// WithBotSource sets the cosmetic source for generated rosters.
func WithBotSource(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.bots = r
		}
	}
}

// New creates a Service over backend.
func New(backend store.Backend, opts ...Option) *Service {
	s := &Service{
		store:            backend,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens:           UUIDv7Generator{},
		now:              time.Now,
		humanWait:        DefaultHumanWait,
		submissionWindow: DefaultSubmissionWindow,
		seasonID:         DefaultSeasonID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = sim.New(sim.WithLogger(s.logger))
	}
	if s.bots == nil {
		s.bots = roster.NewSource(uint64(s.now().UnixNano()), 0x5eed)
	}
	return s
}

// SeasonID returns the season new matches are filed under.
func (s *Service) SeasonID() int64 {
	return s.seasonID
}

// transition moves m to status to, or returns ILLEGAL_TRANSITION.
func (s *Service) transition(m *league.Match, to league.Status, teamID int64) error {
	from := m.Status
	if err := league.Transition(from, to); err != nil {
		var le *league.Error
		if errors.As(err, &le) {
			le.MatchID = m.ID
		}
		return err
	}
	m.Status = to
	s.logger.Info("match transition",
		"match_id", m.ID,
		"team_id", teamID,
		"from", from,
		"to", to,
	)
	return nil
}
