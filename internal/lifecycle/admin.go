package lifecycle

import (
	"context"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/store"
)

// DefaultRecentLimit is the page size of RecentMatches when none is given.
const DefaultRecentLimit = 50

// Cancel moves a match that has not finished to CANCELLED.
func (s *Service) Cancel(ctx context.Context, matchID int64) (league.Match, error) {
	if matchID <= 0 {
		return league.Match{}, league.Invalid("match id is required")
	}
	var m league.Match
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		if m, err = tx.LockMatch(ctx, matchID); err != nil {
			return err
		}
		if err := s.transition(&m, league.StatusCancelled, 0); err != nil {
			return err
		}
		return tx.UpdateMatch(ctx, m)
	})
	if err != nil {
		return league.Match{}, err
	}
	return m, nil
}

// Match returns one match.
func (s *Service) Match(ctx context.Context, matchID int64) (league.Match, error) {
	var m league.Match
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		m, err = tx.Match(ctx, matchID)
		return err
	})
	return m, err
}

// Events returns a match's stored play-by-play in replay order.
func (s *Service) Events(ctx context.Context, matchID int64) ([]league.MatchEvent, error) {
	var events []league.MatchEvent
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		if _, err := tx.Match(ctx, matchID); err != nil {
			return err
		}
		var err error
		events, err = tx.Events(ctx, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// RecentMatches lists the newest matches first.
func (s *Service) RecentMatches(ctx context.Context, limit int) ([]league.Match, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var out []league.Match
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.RecentMatches(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplayReport compares a stored play-by-play with a fresh in-memory run.
type ReplayReport struct {
	MatchID       int64  `json:"match_id"`
	Seed          int64  `json:"seed"`
	RunToken      string `json:"run_token"`
	StoredDigest  string `json:"stored_digest"`
	ReplayDigest  string `json:"replay_digest"`
	StoredEvents  int    `json:"stored_events"`
	ReplayEvents  int    `json:"replay_events"`
	StoredScore   [2]int `json:"stored_score"`
	ReplayScore   [2]int `json:"replay_score"`
	Deterministic bool   `json:"deterministic"`
}

// Replay re-runs a DONE match from its seed and stored plans without
// touching the store, and reports whether the event digests agree.
func (s *Service) Replay(ctx context.Context, matchID int64) (ReplayReport, error) {
	var rep ReplayReport
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		m, err := tx.Match(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != league.StatusDone {
			return &league.Error{
				Code:    league.ErrCodeInvalidRequest,
				Message: "only DONE matches can be replayed, match is " + string(m.Status),
				MatchID: m.ID,
			}
		}
		stored, err := tx.Events(ctx, m.ID)
		if err != nil {
			return err
		}
		in, err := loadInput(ctx, tx, m)
		if err != nil {
			return err
		}
		res, err := s.engine.Simulate(in)
		if err != nil {
			return err
		}

		rep = ReplayReport{
			MatchID:      m.ID,
			Seed:         m.Seed,
			RunToken:     m.RunToken,
			StoredEvents: len(stored),
			ReplayEvents: len(res.Events),
			StoredScore:  [2]int{m.HomeScore, m.AwayScore},
			ReplayScore:  [2]int{res.HomeScore, res.AwayScore},
		}
		if rep.StoredDigest, err = canon.EventDigest(stored); err != nil {
			return err
		}
		if rep.ReplayDigest, err = canon.EventDigest(res.Events); err != nil {
			return err
		}
		rep.Deterministic = rep.StoredDigest == rep.ReplayDigest && rep.StoredScore == rep.ReplayScore
		return nil
	})
	if err != nil {
		return ReplayReport{}, err
	}
	s.logger.Info("match replayed",
		"match_id", rep.MatchID,
		"run_token", rep.RunToken,
		"deterministic", rep.Deterministic,
	)
	return rep, nil
}
