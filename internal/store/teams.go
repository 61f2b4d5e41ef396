package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rinkleague/internal/league"
)

const teamColumns = `id, name, rating, is_bot, bot_difficulty, coach_style`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (league.Team, error) {
	var t league.Team
	var style string
	if err := row.Scan(&t.ID, &t.Name, &t.Rating, &t.IsBot, &t.BotDifficulty, &style); err != nil {
		return league.Team{}, err
	}
	t.CoachStyle = league.ParseCoachStyle(style)
	return t, nil
}

// Team returns the team with id.
func (x *sqlTx) Team(ctx context.Context, id int64) (league.Team, error) {
	row := x.tx.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Team{}, league.TeamNotFound(id)
	}
	if err != nil {
		return league.Team{}, fmt.Errorf("read team: %w", err)
	}
	return t, nil
}

// Teams returns every team ordered by name.
func (x *sqlTx) Teams(ctx context.Context) ([]league.Team, error) {
	rows, err := x.tx.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	teams := []league.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}

// Players returns a team's roster ordered by id.
func (x *sqlTx) Players(ctx context.Context, teamID int64) ([]league.Player, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT id, team_id, name, pos, shot, pass, speed, defense, grit, goalie_skill, xp
		FROM players
		WHERE team_id = ?
		ORDER BY id ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := []league.Player{}
	for rows.Next() {
		var p league.Player
		var pos string
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &pos, &p.Shot, &p.Pass, &p.Speed,
			&p.Defense, &p.Grit, &p.GoalieSkill, &p.Experience); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Position = league.Position(pos)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

// CreateTeam inserts a team and its roster. Ids on the arguments are
// ignored; the returned team carries the assigned id.
func (x *sqlTx) CreateTeam(ctx context.Context, t league.Team, roster []league.Player) (league.Team, error) {
	if t.CoachStyle == "" {
		t.CoachStyle = league.StyleBalanced
	}
	res, err := x.tx.ExecContext(ctx, `
		INSERT INTO teams (name, rating, is_bot, bot_difficulty, coach_style)
		VALUES (?, ?, ?, ?, ?)
	`, t.Name, t.Rating, t.IsBot, t.BotDifficulty, string(t.CoachStyle))
	if err != nil {
		return league.Team{}, fmt.Errorf("create team: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return league.Team{}, fmt.Errorf("create team: %w", err)
	}

	for _, p := range roster {
		_, err := x.tx.ExecContext(ctx, `
			INSERT INTO players (team_id, name, pos, shot, pass, speed, defense, grit, goalie_skill, xp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, p.Name, string(p.Position), p.Shot, p.Pass, p.Speed, p.Defense, p.Grit, p.GoalieSkill, p.Experience)
		if err != nil {
			return league.Team{}, fmt.Errorf("create player %q: %w", p.Name, err)
		}
	}
	return t, nil
}

// NearestBot returns the bot team whose rating is closest to rating.
func (x *sqlTx) NearestBot(ctx context.Context, rating int) (league.Team, bool, error) {
	row := x.tx.QueryRowContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE is_bot = 1
		ORDER BY ABS(rating - ?) ASC, id ASC
		LIMIT 1
	`, rating)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Team{}, false, nil
	}
	if err != nil {
		return league.Team{}, false, fmt.Errorf("nearest bot: %w", err)
	}
	return t, true, nil
}

// AddExperience adds amount to a player's XP.
func (x *sqlTx) AddExperience(ctx context.Context, playerID int64, amount int) error {
	if _, err := x.tx.ExecContext(ctx, `UPDATE players SET xp = xp + ? WHERE id = ?`, amount, playerID); err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	return nil
}
