package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/season"
)

const matchColumns = `m.id, m.season_id, m.home_team_id, m.away_team_id, m.seed, m.status,
	m.submit_deadline, m.home_score, m.away_score, m.run_token, m.created_at, m.simulated_at`

func scanMatch(row rowScanner) (league.Match, error) {
	var m league.Match
	var away sql.NullInt64
	var status string
	var deadline, created, simulated int64
	err := row.Scan(&m.ID, &m.SeasonID, &m.HomeTeamID, &away, &m.Seed, &status,
		&deadline, &m.HomeScore, &m.AwayScore, &m.RunToken, &created, &simulated)
	if err != nil {
		return league.Match{}, err
	}
	m.AwayTeamID = away.Int64
	m.Status = league.Status(status)
	m.SubmitDeadline = fromMillis(deadline)
	m.CreatedAt = fromMillis(created)
	m.SimulatedAt = fromMillis(simulated)
	return m, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (x *sqlTx) matchByID(ctx context.Context, id int64) (league.Match, error) {
	row := x.tx.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches m WHERE m.id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, league.MatchNotFound(id)
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("read match: %w", err)
	}
	return m, nil
}

// Match returns the match with id.
func (x *sqlTx) Match(ctx context.Context, id int64) (league.Match, error) {
	return x.matchByID(ctx, id)
}

// LockMatch returns the match with id for update. The immediate
// transaction already holds the write lock.
func (x *sqlTx) LockMatch(ctx context.Context, id int64) (league.Match, error) {
	return x.matchByID(ctx, id)
}

// LockOwnWaiting returns the newest open match the team is hosting.
func (x *sqlTx) LockOwnWaiting(ctx context.Context, teamID int64) (league.Match, bool, error) {
	row := x.tx.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		WHERE m.status = 'WAITING_OPPONENT'
		  AND m.home_team_id = ?
		  AND m.away_team_id IS NULL
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1
	`, teamID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, false, nil
	}
	if err != nil {
		return league.Match{}, false, fmt.Errorf("lock own waiting: %w", err)
	}
	return m, true, nil
}

// LockJoinCandidate returns another team's open match whose deadline has
// not passed, closest in rating first, oldest first on ties.
func (x *sqlTx) LockJoinCandidate(ctx context.Context, teamID int64, rating int, now time.Time) (league.Match, bool, error) {
	row := x.tx.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		JOIN teams t ON t.id = m.home_team_id
		WHERE m.status = 'WAITING_OPPONENT'
		  AND m.away_team_id IS NULL
		  AND m.home_team_id <> ?
		  AND (m.submit_deadline = 0 OR m.submit_deadline > ?)
		ORDER BY ABS(t.rating - ?) ASC, m.created_at ASC, m.id ASC
		LIMIT 1
	`, teamID, millis(now), rating)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, false, nil
	}
	if err != nil {
		return league.Match{}, false, fmt.Errorf("lock join candidate: %w", err)
	}
	return m, true, nil
}

// InsertMatch creates a match and returns it with its id.
func (x *sqlTx) InsertMatch(ctx context.Context, m league.Match) (league.Match, error) {
	res, err := x.tx.ExecContext(ctx, `
		INSERT INTO matches
		(season_id, home_team_id, away_team_id, seed, status, submit_deadline,
		 home_score, away_score, run_token, created_at, simulated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.SeasonID,
		m.HomeTeamID,
		nullID(m.AwayTeamID),
		m.Seed,
		string(m.Status),
		millis(m.SubmitDeadline),
		m.HomeScore,
		m.AwayScore,
		m.RunToken,
		millis(m.CreatedAt),
		millis(m.SimulatedAt),
	)
	if isUniqueViolation(err) {
		return league.Match{}, league.Conflict(0, "team already hosts an open match")
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("insert match: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return league.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

// UpdateMatch writes every mutable column of m.
func (x *sqlTx) UpdateMatch(ctx context.Context, m league.Match) error {
	res, err := x.tx.ExecContext(ctx, `
		UPDATE matches
		SET away_team_id = ?, status = ?, submit_deadline = ?, home_score = ?, away_score = ?,
		    run_token = ?, simulated_at = ?
		WHERE id = ?
	`,
		nullID(m.AwayTeamID),
		string(m.Status),
		millis(m.SubmitDeadline),
		m.HomeScore,
		m.AwayScore,
		m.RunToken,
		millis(m.SimulatedAt),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if n == 0 {
		return league.MatchNotFound(m.ID)
	}
	return nil
}

// RecentMatches returns the newest matches first.
func (x *sqlTx) RecentMatches(ctx context.Context, limit int) ([]league.Match, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		ORDER BY m.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	defer rows.Close()

	matches := []league.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// SeasonResults returns the final score of every DONE match in a season.
func (x *sqlTx) SeasonResults(ctx context.Context, seasonID int64) ([]season.Result, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT id, home_team_id, away_team_id, home_score, away_score
		FROM matches
		WHERE status = 'DONE'
		  AND season_id = ?
		  AND away_team_id IS NOT NULL
		ORDER BY id ASC
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("query season results: %w", err)
	}
	defer rows.Close()

	results := []season.Result{}
	for rows.Next() {
		var r season.Result
		if err := rows.Scan(&r.MatchID, &r.HomeTeamID, &r.AwayTeamID, &r.HomeScore, &r.AwayScore); err != nil {
			return nil, fmt.Errorf("scan season result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season results: %w", err)
	}
	return results, nil
}
