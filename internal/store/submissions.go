package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rinkleague/internal/league"
)

// UpsertSubmission stores a side's plan, replacing any earlier one for the
// same match and team.
func (x *sqlTx) UpsertSubmission(ctx context.Context, s league.Submission) error {
	planJSON, hash, err := marshalPlan(s.Plan)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	_, err = x.tx.ExecContext(ctx, `
		INSERT INTO match_submissions (match_id, team_id, plan_json, plan_hash, source, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, team_id) DO UPDATE SET
			plan_json = excluded.plan_json,
			plan_hash = excluded.plan_hash,
			source = excluded.source,
			submitted_at = excluded.submitted_at
	`, s.MatchID, s.TeamID, planJSON, hash, string(s.Source), millis(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// Submission returns the stored plan for one side.
func (x *sqlTx) Submission(ctx context.Context, matchID, teamID int64) (league.Submission, bool, error) {
	var planJSON, source string
	var at int64
	err := x.tx.QueryRowContext(ctx, `
		SELECT plan_json, source, submitted_at
		FROM match_submissions
		WHERE match_id = ? AND team_id = ?
	`, matchID, teamID).Scan(&planJSON, &source, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Submission{}, false, nil
	}
	if err != nil {
		return league.Submission{}, false, fmt.Errorf("read submission: %w", err)
	}
	p, err := unmarshalPlan(planJSON)
	if err != nil {
		return league.Submission{}, false, err
	}
	return league.Submission{
		MatchID:   matchID,
		TeamID:    teamID,
		Plan:      p,
		Source:    league.PlanSource(source),
		CreatedAt: fromMillis(at),
	}, true, nil
}

// HasSubmission reports whether the team has a stored plan for the match.
func (x *sqlTx) HasSubmission(ctx context.Context, matchID, teamID int64) (bool, error) {
	var one int
	err := x.tx.QueryRowContext(ctx, `
		SELECT 1 FROM match_submissions WHERE match_id = ? AND team_id = ?
	`, matchID, teamID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has submission: %w", err)
	}
	return true, nil
}

// SubmissionCount returns how many distinct teams have submitted.
func (x *sqlTx) SubmissionCount(ctx context.Context, matchID int64) (int, error) {
	var n int
	err := x.tx.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT team_id) FROM match_submissions WHERE match_id = ?
	`, matchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
