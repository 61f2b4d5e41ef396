package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/season"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

func (x *gormTx) matchByID(ctx context.Context, id int64, lock bool) (league.Match, error) {
	q := x.db.WithContext(ctx)
	if lock {
		q = q.Clauses(forUpdate)
	}
	var row matchRow
	err := q.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return league.Match{}, league.MatchNotFound(id)
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("read match: %w", err)
	}
	return row.match(), nil
}

func (x *gormTx) Match(ctx context.Context, id int64) (league.Match, error) {
	return x.matchByID(ctx, id, false)
}

func (x *gormTx) LockMatch(ctx context.Context, id int64) (league.Match, error) {
	return x.matchByID(ctx, id, true)
}

func (x *gormTx) LockOwnWaiting(ctx context.Context, teamID int64) (league.Match, bool, error) {
	var rows []matchRow
	err := x.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("status = ? AND home_team_id = ? AND away_team_id IS NULL", string(league.StatusWaitingOpponent), teamID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return league.Match{}, false, fmt.Errorf("lock own waiting: %w", err)
	}
	if len(rows) == 0 {
		return league.Match{}, false, nil
	}
	return rows[0].match(), true, nil
}

// LockJoinCandidate skips rows another transaction holds, so concurrent
// joiners spread over the open matches instead of queueing on one.
func (x *gormTx) LockJoinCandidate(ctx context.Context, teamID int64, rating int, now time.Time) (league.Match, bool, error) {
	var rows []matchRow
	err := x.db.WithContext(ctx).
		Table("matches AS m").
		Select("m.*").
		Joins("JOIN teams t ON t.id = m.home_team_id").
		Where("m.status = ? AND m.away_team_id IS NULL AND m.home_team_id <> ?", string(league.StatusWaitingOpponent), teamID).
		Where("(m.submit_deadline IS NULL OR m.submit_deadline > ?)", now).
		Clauses(
			clause.OrderBy{Expression: clause.Expr{
				SQL:                "ABS(t.rating - ?) ASC, m.created_at ASC, m.id ASC",
				Vars:               []any{rating},
				WithoutParentheses: true,
			}},
			clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "m"}, Options: "SKIP LOCKED"},
		).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return league.Match{}, false, fmt.Errorf("lock join candidate: %w", err)
	}
	if len(rows) == 0 {
		return league.Match{}, false, nil
	}
	return rows[0].match(), true, nil
}

func (x *gormTx) InsertMatch(ctx context.Context, m league.Match) (league.Match, error) {
	row := newMatchRow(m)
	row.ID = 0
	err := x.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		return league.Match{}, league.Conflict(0, "team already hosts an open match")
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("insert match: %w", err)
	}
	m.ID = row.ID
	return m, nil
}

func (x *gormTx) UpdateMatch(ctx context.Context, m league.Match) error {
	row := newMatchRow(m)
	res := x.db.WithContext(ctx).Model(&matchRow{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"away_team_id":    row.AwayTeamID,
			"status":          row.Status,
			"submit_deadline": row.SubmitDeadline,
			"home_score":      row.HomeScore,
			"away_score":      row.AwayScore,
			"run_token":       row.RunToken,
			"simulated_at":    row.SimulatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return league.MatchNotFound(m.ID)
	}
	return nil
}

func (x *gormTx) RecentMatches(ctx context.Context, limit int) ([]league.Match, error) {
	var rows []matchRow
	if err := x.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	out := make([]league.Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.match())
	}
	return out, nil
}

func (x *gormTx) SeasonResults(ctx context.Context, seasonID int64) ([]season.Result, error) {
	var rows []matchRow
	err := x.db.WithContext(ctx).
		Where("status = ? AND season_id = ? AND away_team_id IS NOT NULL", string(league.StatusDone), seasonID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query season results: %w", err)
	}
	out := make([]season.Result, 0, len(rows))
	for _, r := range rows {
		m := r.match()
		out = append(out, season.Result{
			MatchID:    m.ID,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeScore:  m.HomeScore,
			AwayScore:  m.AwayScore,
		})
	}
	return out, nil
}
