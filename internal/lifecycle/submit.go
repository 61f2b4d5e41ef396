package lifecycle

import (
	"context"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/store"
)

// Submission is one side's plan for a match.
type Submission struct {
	MatchID int64
	TeamID  int64
	Plan    league.Plan
	Source  league.PlanSource // defaults to human
}

// SubmitResult reports the match after a submission. Simulated is set when
// the submission completed the pair of plans and the match was played.
type SubmitResult struct {
	Match     league.Match
	Simulated bool
}

// Submit stores a side's plan. A bot opponent gets its AI plan stored at this
// point; a human opponent who let the submission window lapse gets the
// default plan. Once both sides have a plan the match is simulated before
// Submit returns.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	if sub.MatchID <= 0 || sub.TeamID <= 0 {
		return SubmitResult{}, league.Invalid("match id and team id are required")
	}
	if err := plan.Validate(sub.Plan); err != nil {
		return SubmitResult{}, err
	}
	if sub.Source == "" {
		sub.Source = league.SourceHuman
	}

	var m league.Match
	var ready bool
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		m, ready, err = s.submit(ctx, tx, sub)
		return err
	})
	if err != nil {
		return SubmitResult{}, err
	}
	if !ready {
		return SubmitResult{Match: m}, nil
	}

	done, err := s.execute(ctx, m.ID, sub.TeamID)
	if err != nil {
		return SubmitResult{Match: m}, err
	}
	return SubmitResult{Match: done, Simulated: true}, nil
}

func (s *Service) submit(ctx context.Context, tx store.Tx, sub Submission) (league.Match, bool, error) {
	m, err := tx.LockMatch(ctx, sub.MatchID)
	if err != nil {
		return league.Match{}, false, err
	}
	if !m.Involves(sub.TeamID) {
		return league.Match{}, false, &league.Error{
			Code:    league.ErrCodeInvalidRequest,
			Message: "team is not in this match",
			MatchID: m.ID,
			TeamID:  sub.TeamID,
		}
	}
	if m.Status != league.StatusWaitingSubmissions {
		return league.Match{}, false, &league.Error{
			Code:    league.ErrCodeInvalidRequest,
			Message: "match is " + string(m.Status) + ", not accepting plans",
			MatchID: m.ID,
			TeamID:  sub.TeamID,
		}
	}

	now := s.now()
	if err := s.storePlan(ctx, tx, m.ID, sub.TeamID, sub.Plan, sub.Source, now); err != nil {
		return league.Match{}, false, err
	}

	oppID := m.HomeTeamID
	if oppID == sub.TeamID {
		oppID = m.AwayTeamID
	}
	has, err := tx.HasSubmission(ctx, m.ID, oppID)
	if err != nil {
		return league.Match{}, false, err
	}
	if !has {
		if err := s.fillOpponent(ctx, tx, m, oppID, now); err != nil {
			return league.Match{}, false, err
		}
	}

	n, err := tx.SubmissionCount(ctx, m.ID)
	if err != nil {
		return league.Match{}, false, err
	}
	if n < 2 {
		return m, false, nil
	}
	if err := s.transition(&m, league.StatusSimulating, sub.TeamID); err != nil {
		return league.Match{}, false, err
	}
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return league.Match{}, false, err
	}
	return m, true, nil
}

// fillOpponent stores a plan for a side that has not submitted: the AI plan
// for a bot, the default plan for a human past the deadline.
func (s *Service) fillOpponent(ctx context.Context, tx store.Tx, m league.Match, oppID int64, now time.Time) error {
	opp, err := tx.Team(ctx, oppID)
	if err != nil {
		return err
	}
	expired := !m.SubmitDeadline.IsZero() && !now.Before(m.SubmitDeadline)
	if !opp.IsBot && !expired {
		return nil
	}
	players, err := tx.Players(ctx, oppID)
	if err != nil {
		return err
	}
	if opp.IsBot {
		return s.storePlan(ctx, tx, m.ID, oppID, plan.BuildAI(opp, players), league.SourceAI, now)
	}
	return s.storePlan(ctx, tx, m.ID, oppID, plan.BuildDefault(players), league.SourceDefault, now)
}

func (s *Service) storePlan(ctx context.Context, tx store.Tx, matchID, teamID int64, p league.Plan, src league.PlanSource, now time.Time) error {
	err := tx.UpsertSubmission(ctx, league.Submission{
		MatchID:   matchID,
		TeamID:    teamID,
		Plan:      p,
		Source:    src,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}
	s.metrics.Submission(src)
	s.logger.Debug("plan stored",
		"match_id", matchID,
		"team_id", teamID,
		"source", src,
	)
	return nil
}
