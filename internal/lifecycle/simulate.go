package lifecycle

import (
	"context"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/metrics"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/sim"
	"github.com/roach88/rinkleague/internal/stats"
	"github.com/roach88/rinkleague/internal/store"
)

// Simulate plays a match on operator request and returns it DONE.
//
// A DONE match is re-simulated: its events are purged and rebuilt from the
// same seed and plans. A match stuck in SIMULATING is only re-run with force.
// With force a WAITING_SUBMISSIONS match is played with default plans for
// any side that has not submitted.
func (s *Service) Simulate(ctx context.Context, matchID int64, force bool) (league.Match, error) {
	if matchID <= 0 {
		return league.Match{}, league.Invalid("match id is required")
	}
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		m, err := tx.LockMatch(ctx, matchID)
		if err != nil {
			return err
		}
		switch m.Status {
		case league.StatusSimulating:
			if !force {
				return league.Conflict(m.ID, "simulation already in progress, use force to re-run")
			}
		case league.StatusWaitingSubmissions:
			if err := s.ensurePlans(ctx, tx, m, force); err != nil {
				return err
			}
		}
		if err := s.transition(&m, league.StatusSimulating, 0); err != nil {
			return err
		}
		return tx.UpdateMatch(ctx, m)
	})
	if err != nil {
		return league.Match{}, err
	}
	return s.execute(ctx, matchID, 0)
}

// ensurePlans checks both sides have a stored plan, filling gaps with the
// default plan when forced.
func (s *Service) ensurePlans(ctx context.Context, tx store.Tx, m league.Match, force bool) error {
	now := s.now()
	for _, teamID := range []int64{m.HomeTeamID, m.AwayTeamID} {
		has, err := tx.HasSubmission(ctx, m.ID, teamID)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if !force {
			return &league.Error{
				Code:    league.ErrCodeInvalidRequest,
				Message: "waiting on a plan submission",
				MatchID: m.ID,
				TeamID:  teamID,
			}
		}
		players, err := tx.Players(ctx, teamID)
		if err != nil {
			return err
		}
		if err := s.storePlan(ctx, tx, m.ID, teamID, plan.BuildDefault(players), league.SourceDefault, now); err != nil {
			return err
		}
	}
	return nil
}

// execute runs the engine for a SIMULATING match and persists the outcome.
// On any failure the transaction rolls back and the match stays SIMULATING.
func (s *Service) execute(ctx context.Context, matchID, actor int64) (league.Match, error) {
	started := time.Now()
	token := s.tokens.Generate()
	logger := s.logger.With("match_id", matchID, "run_token", token)

	var done league.Match
	var events []league.MatchEvent
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		m, err := tx.LockMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != league.StatusSimulating {
			return league.Conflict(m.ID, "match left SIMULATING before the run")
		}

		in, err := loadInput(ctx, tx, m)
		if err != nil {
			return err
		}
		res, err := s.engine.Simulate(in)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return league.Fault(m.ID, "simulation abandoned", err)
		}

		if err := tx.DeleteEvents(ctx, m.ID); err != nil {
			return err
		}
		if err := tx.AppendEvents(ctx, m.ID, res.Events); err != nil {
			return err
		}

		// Season totals and experience count only the first completed run.
		first := m.RunToken == ""
		sum := stats.Fold(in.Home, in.Away, res.Events)
		if err := tx.RecordMatchStats(ctx, m, sum, first); err != nil {
			return err
		}
		if first {
			for _, p := range sum.Players {
				if xp := stats.Experience(p); xp > 0 {
					if err := tx.AddExperience(ctx, p.PlayerID, xp); err != nil {
						return err
					}
				}
			}
		}

		if err := s.transition(&m, league.StatusDone, actor); err != nil {
			return err
		}
		m.HomeScore = res.HomeScore
		m.AwayScore = res.AwayScore
		m.RunToken = token
		m.SimulatedAt = s.now()
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return err
		}
		done = m
		events = res.Events
		return nil
	})
	if err != nil {
		s.metrics.Simulation(metrics.ResultFault, time.Since(started))
		logger.Error("simulation failed", "error", err)
		return league.Match{}, err
	}

	s.metrics.Simulation(metrics.ResultOK, time.Since(started))
	s.metrics.Events(events)
	logger.Info("match simulated",
		"home_score", done.HomeScore,
		"away_score", done.AwayScore,
		"events", len(events),
		"seed", done.Seed,
	)
	return done, nil
}

// loadInput assembles both sides from the store. A side without a stored
// plan plays the default plan.
func loadInput(ctx context.Context, tx store.Tx, m league.Match) (sim.Input, error) {
	if !m.HasOpponent() {
		return sim.Input{}, league.Fault(m.ID, "match has no away team", nil)
	}
	home, err := loadSide(ctx, tx, m.ID, m.HomeTeamID)
	if err != nil {
		return sim.Input{}, err
	}
	away, err := loadSide(ctx, tx, m.ID, m.AwayTeamID)
	if err != nil {
		return sim.Input{}, err
	}
	return sim.Input{MatchID: m.ID, Seed: m.Seed, Home: home, Away: away}, nil
}

func loadSide(ctx context.Context, tx store.Tx, matchID, teamID int64) (league.Side, error) {
	team, err := tx.Team(ctx, teamID)
	if err != nil {
		return league.Side{}, err
	}
	players, err := tx.Players(ctx, teamID)
	if err != nil {
		return league.Side{}, err
	}
	sub, ok, err := tx.Submission(ctx, matchID, teamID)
	if err != nil {
		return league.Side{}, err
	}
	p := sub.Plan
	if !ok {
		p = plan.BuildDefault(players)
	}
	return league.Side{Team: team, Roster: players, Plan: p}, nil
}
