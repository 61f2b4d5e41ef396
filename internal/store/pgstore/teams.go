package pgstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roach88/rinkleague/internal/league"
)

func (x *gormTx) Team(ctx context.Context, id int64) (league.Team, error) {
	var row teamRow
	err := x.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return league.Team{}, league.TeamNotFound(id)
	}
	if err != nil {
		return league.Team{}, fmt.Errorf("read team: %w", err)
	}
	return row.team(), nil
}

func (x *gormTx) Teams(ctx context.Context) ([]league.Team, error) {
	var rows []teamRow
	if err := x.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	out := make([]league.Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.team())
	}
	return out, nil
}

func (x *gormTx) Players(ctx context.Context, teamID int64) ([]league.Player, error) {
	var rows []playerRow
	if err := x.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	out := make([]league.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.player())
	}
	return out, nil
}

func (x *gormTx) CreateTeam(ctx context.Context, t league.Team, roster []league.Player) (league.Team, error) {
	if t.CoachStyle == "" {
		t.CoachStyle = league.StyleBalanced
	}
	row := teamRow{
		Name:          t.Name,
		Rating:        t.Rating,
		IsBot:         t.IsBot,
		BotDifficulty: t.BotDifficulty,
		CoachStyle:    string(t.CoachStyle),
	}
	if err := x.db.WithContext(ctx).Create(&row).Error; err != nil {
		return league.Team{}, fmt.Errorf("create team: %w", err)
	}
	if len(roster) > 0 {
		players := make([]playerRow, 0, len(roster))
		for _, p := range roster {
			players = append(players, newPlayerRow(row.ID, p))
		}
		if err := x.db.WithContext(ctx).Create(&players).Error; err != nil {
			return league.Team{}, fmt.Errorf("create roster: %w", err)
		}
	}
	return row.team(), nil
}

func (x *gormTx) NearestBot(ctx context.Context, rating int) (league.Team, bool, error) {
	var rows []teamRow
	err := x.db.WithContext(ctx).
		Where("is_bot = ?", true).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ABS(rating - ?) ASC, id ASC",
			Vars:               []any{rating},
			WithoutParentheses: true,
		}}).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return league.Team{}, false, fmt.Errorf("nearest bot: %w", err)
	}
	if len(rows) == 0 {
		return league.Team{}, false, nil
	}
	return rows[0].team(), true, nil
}

func (x *gormTx) AddExperience(ctx context.Context, playerID int64, amount int) error {
	err := x.db.WithContext(ctx).Model(&playerRow{}).
		Where("id = ?", playerID).
		Update("experience", gorm.Expr("experience + ?", amount)).Error
	if err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	return nil
}
