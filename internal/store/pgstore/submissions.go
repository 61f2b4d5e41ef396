package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
)

func (x *gormTx) UpsertSubmission(ctx context.Context, s league.Submission) error {
	planJSON, err := canon.PlanJSON(s.Plan)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	hash, err := canon.PlanHash(s.Plan)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	row := submissionRow{
		MatchID:     s.MatchID,
		TeamID:      s.TeamID,
		PlanJSON:    string(planJSON),
		PlanHash:    hash,
		Source:      string(s.Source),
		SubmittedAt: s.CreatedAt,
	}
	err = x.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan_json", "plan_hash", "source", "submitted_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

func (x *gormTx) Submission(ctx context.Context, matchID, teamID int64) (league.Submission, bool, error) {
	var rows []submissionRow
	err := x.db.WithContext(ctx).
		Where("match_id = ? AND team_id = ?", matchID, teamID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return league.Submission{}, false, fmt.Errorf("read submission: %w", err)
	}
	if len(rows) == 0 {
		return league.Submission{}, false, nil
	}
	var p league.Plan
	if err := json.Unmarshal([]byte(rows[0].PlanJSON), &p); err != nil {
		return league.Submission{}, false, fmt.Errorf("decode stored plan: %w", err)
	}
	return league.Submission{
		MatchID:   matchID,
		TeamID:    teamID,
		Plan:      p,
		Source:    league.PlanSource(rows[0].Source),
		CreatedAt: rows[0].SubmittedAt.UTC(),
	}, true, nil
}

func (x *gormTx) HasSubmission(ctx context.Context, matchID, teamID int64) (bool, error) {
	var n int64
	err := x.db.WithContext(ctx).Model(&submissionRow{}).
		Where("match_id = ? AND team_id = ?", matchID, teamID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("has submission: %w", err)
	}
	return n > 0, nil
}

func (x *gormTx) SubmissionCount(ctx context.Context, matchID int64) (int, error) {
	var n int64
	err := x.db.WithContext(ctx).Model(&submissionRow{}).
		Where("match_id = ?", matchID).
		Distinct("team_id").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return int(n), nil
}
