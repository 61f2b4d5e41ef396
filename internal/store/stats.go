package store

import (
	"context"
	"fmt"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/season"
	"github.com/roach88/rinkleague/internal/stats"
)

// MatchTeamLines returns the summary's home and away lines for m. A summary
// folded for other clubs is an error.
func MatchTeamLines(m league.Match, sum stats.Summary) ([]stats.TeamLine, error) {
	lines := make([]stats.TeamLine, 0, 2)
	for _, id := range []int64{m.HomeTeamID, m.AwayTeamID} {
		l, ok := sum.Team(id)
		if !ok {
			return nil, fmt.Errorf("record match stats: match %d: summary has no line for team %d", m.ID, id)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// RecordMatchStats stores the per-match player rows for m, replacing any
// earlier ones. With cumulative set it also adds the match to the season
// team and player totals.
func (x *sqlTx) RecordMatchStats(ctx context.Context, m league.Match, sum stats.Summary, cumulative bool) error {
	lines, err := MatchTeamLines(m, sum)
	if err != nil {
		return err
	}
	if _, err := x.tx.ExecContext(ctx, `DELETE FROM player_match_stats WHERE match_id = ?`, m.ID); err != nil {
		return fmt.Errorf("record match stats: %w", err)
	}
	for _, p := range sum.Players {
		_, err := x.tx.ExecContext(ctx, `
			INSERT INTO player_match_stats
			(match_id, season_id, player_id, team_id, games_played, goals, assists, points,
			 shots, saves, shots_against, wins, hits, blocks, ice_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.SeasonID, p.PlayerID, p.TeamID, p.GamesPlayed, p.Goals, p.Assists, p.Points,
			p.Shots, p.Saves, p.ShotsAgainst, p.Wins, p.Hits, p.Blocks, p.IceSeconds)
		if err != nil {
			return fmt.Errorf("record match stats: player %d: %w", p.PlayerID, err)
		}
	}
	if !cumulative {
		return nil
	}

	for _, t := range lines {
		_, err := x.tx.ExecContext(ctx, `
			INSERT INTO team_season_stats
			(season_id, team_id, games_played, wins, losses, ties, goals_for, goals_against,
			 shots_for, shots_against, points)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(season_id, team_id) DO UPDATE SET
				games_played = games_played + excluded.games_played,
				wins = wins + excluded.wins,
				losses = losses + excluded.losses,
				ties = ties + excluded.ties,
				goals_for = goals_for + excluded.goals_for,
				goals_against = goals_against + excluded.goals_against,
				shots_for = shots_for + excluded.shots_for,
				shots_against = shots_against + excluded.shots_against,
				points = points + excluded.points
		`, m.SeasonID, t.TeamID, t.GamesPlayed, t.Wins, t.Losses, t.Ties, t.GoalsFor, t.GoalsAgainst,
			t.ShotsFor, t.ShotsAgainst, t.Points)
		if err != nil {
			return fmt.Errorf("record team season stats: team %d: %w", t.TeamID, err)
		}
	}

	for _, p := range sum.Players {
		_, err := x.tx.ExecContext(ctx, `
			INSERT INTO player_season_stats
			(season_id, player_id, team_id, games_played, goals, assists, points,
			 shots, saves, shots_against, wins, hits, blocks, ice_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(season_id, player_id) DO UPDATE SET
				games_played = games_played + excluded.games_played,
				goals = goals + excluded.goals,
				assists = assists + excluded.assists,
				points = points + excluded.points,
				shots = shots + excluded.shots,
				saves = saves + excluded.saves,
				shots_against = shots_against + excluded.shots_against,
				wins = wins + excluded.wins,
				hits = hits + excluded.hits,
				blocks = blocks + excluded.blocks,
				ice_seconds = ice_seconds + excluded.ice_seconds
		`, m.SeasonID, p.PlayerID, p.TeamID, p.GamesPlayed, p.Goals, p.Assists, p.Points,
			p.Shots, p.Saves, p.ShotsAgainst, p.Wins, p.Hits, p.Blocks, p.IceSeconds)
		if err != nil {
			return fmt.Errorf("record player season stats: player %d: %w", p.PlayerID, err)
		}
	}
	return nil
}

// PlayerSeasonStats returns every player's season shooting line.
func (x *sqlTx) PlayerSeasonStats(ctx context.Context, seasonID int64) ([]season.ShooterRow, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT p.id, p.name, p.pos, p.team_id, t.name, s.games_played, s.goals, s.shots
		FROM player_season_stats s
		JOIN players p ON p.id = s.player_id
		JOIN teams t ON t.id = p.team_id
		WHERE s.season_id = ?
		ORDER BY p.id ASC
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("query player season stats: %w", err)
	}
	defer rows.Close()

	out := []season.ShooterRow{}
	for rows.Next() {
		var r season.ShooterRow
		var pos string
		if err := rows.Scan(&r.PlayerID, &r.PlayerName, &pos, &r.TeamID, &r.TeamName,
			&r.GamesPlayed, &r.Goals, &r.Shots); err != nil {
			return nil, fmt.Errorf("scan player season stats: %w", err)
		}
		r.Position = league.Position(pos)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player season stats: %w", err)
	}
	return out, nil
}

// PlayerMatchStats returns the per-player lines recorded for a match.
func (x *sqlTx) PlayerMatchStats(ctx context.Context, matchID int64) ([]stats.PlayerLine, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT player_id, team_id, games_played, goals, assists, points, shots, saves,
		       shots_against, wins, hits, blocks, ice_seconds
		FROM player_match_stats
		WHERE match_id = ?
		ORDER BY player_id ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query player match stats: %w", err)
	}
	defer rows.Close()

	out := []stats.PlayerLine{}
	for rows.Next() {
		var p stats.PlayerLine
		if err := rows.Scan(&p.PlayerID, &p.TeamID, &p.GamesPlayed, &p.Goals, &p.Assists, &p.Points,
			&p.Shots, &p.Saves, &p.ShotsAgainst, &p.Wins, &p.Hits, &p.Blocks, &p.IceSeconds); err != nil {
			return nil, fmt.Errorf("scan player match stats: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player match stats: %w", err)
	}
	return out, nil
}
