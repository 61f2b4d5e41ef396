package pgstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/season"
	"github.com/roach88/rinkleague/internal/stats"
	"github.com/roach88/rinkleague/internal/store"
)

// additive builds ON CONFLICT assignments that add the incoming row to the
// stored totals.
func additive(table string, cols ...string) clause.Set {
	set := make(map[string]any, len(cols))
	for _, c := range cols {
		set[c] = gorm.Expr(table + "." + c + " + excluded." + c)
	}
	return clause.Assignments(set)
}

var playerCounters = []string{
	"games_played", "goals", "assists", "points", "shots", "saves",
	"shots_against", "wins", "hits", "blocks", "ice_seconds",
}

var teamCounters = []string{
	"games_played", "wins", "losses", "ties", "goals_for", "goals_against",
	"shots_for", "shots_against", "points",
}

func (x *gormTx) RecordMatchStats(ctx context.Context, m league.Match, sum stats.Summary, cumulative bool) error {
	lines, err := store.MatchTeamLines(m, sum)
	if err != nil {
		return err
	}
	db := x.db.WithContext(ctx)
	if err := db.Where("match_id = ?", m.ID).Delete(&playerMatchRow{}).Error; err != nil {
		return fmt.Errorf("record match stats: %w", err)
	}
	if len(sum.Players) > 0 {
		rows := make([]playerMatchRow, 0, len(sum.Players))
		for _, p := range sum.Players {
			rows = append(rows, playerMatchRow{
				MatchID:        m.ID,
				PlayerID:       p.PlayerID,
				SeasonID:       m.SeasonID,
				playerLineCols: lineCols(p),
			})
		}
		if err := db.Create(&rows).Error; err != nil {
			return fmt.Errorf("record match stats: %w", err)
		}
	}
	if !cumulative {
		return nil
	}

	for _, t := range lines {
		row := teamSeasonRow{
			SeasonID:     m.SeasonID,
			TeamID:       t.TeamID,
			GamesPlayed:  t.GamesPlayed,
			Wins:         t.Wins,
			Losses:       t.Losses,
			Ties:         t.Ties,
			GoalsFor:     t.GoalsFor,
			GoalsAgainst: t.GoalsAgainst,
			ShotsFor:     t.ShotsFor,
			ShotsAgainst: t.ShotsAgainst,
			Points:       t.Points,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "team_id"}},
			DoUpdates: additive("team_season_stats", teamCounters...),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("record team season stats: team %d: %w", t.TeamID, err)
		}
	}

	for _, p := range sum.Players {
		row := playerSeasonRow{SeasonID: m.SeasonID, PlayerID: p.PlayerID, playerLineCols: lineCols(p)}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_id"}, {Name: "player_id"}},
			DoUpdates: additive("player_season_stats", playerCounters...),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("record player season stats: player %d: %w", p.PlayerID, err)
		}
	}
	return nil
}

func (x *gormTx) PlayerSeasonStats(ctx context.Context, seasonID int64) ([]season.ShooterRow, error) {
	type joined struct {
		PlayerID    int64
		PlayerName  string
		Pos         string
		TeamID      int64
		TeamName    string
		GamesPlayed int
		Goals       int
		Shots       int
	}
	var rows []joined
	err := x.db.WithContext(ctx).Raw(`
		SELECT p.id AS player_id, p.name AS player_name, p.pos, p.team_id, t.name AS team_name,
		       s.games_played, s.goals, s.shots
		FROM player_season_stats s
		JOIN players p ON p.id = s.player_id
		JOIN teams t ON t.id = p.team_id
		WHERE s.season_id = ?
		ORDER BY p.id ASC
	`, seasonID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query player season stats: %w", err)
	}
	out := make([]season.ShooterRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, season.ShooterRow{
			PlayerID:    r.PlayerID,
			PlayerName:  r.PlayerName,
			Position:    league.Position(r.Pos),
			TeamID:      r.TeamID,
			TeamName:    r.TeamName,
			GamesPlayed: r.GamesPlayed,
			Goals:       r.Goals,
			Shots:       r.Shots,
		})
	}
	return out, nil
}

func (x *gormTx) PlayerMatchStats(ctx context.Context, matchID int64) ([]stats.PlayerLine, error) {
	var rows []playerMatchRow
	if err := x.db.WithContext(ctx).Where("match_id = ?", matchID).Order("player_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query player match stats: %w", err)
	}
	out := make([]stats.PlayerLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.line(r.PlayerID))
	}
	return out, nil
}
