package store

import (
	"context"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/season"
	"github.com/roach88/rinkleague/internal/stats"
)

// Backend is a league database. Store (SQLite) and pgstore.Store
// (PostgreSQL) implement it.
type Backend interface {
	// Atomically runs fn in one transaction. The transaction commits when
	// fn returns nil and rolls back otherwise.
	Atomically(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Tx is the set of operations available inside a transaction.
// Lookups of a single row return a league NOT_FOUND error when it is absent.
type Tx interface {
	// Teams and players.
	Team(ctx context.Context, id int64) (league.Team, error)
	Teams(ctx context.Context) ([]league.Team, error)
	Players(ctx context.Context, teamID int64) ([]league.Player, error)
	CreateTeam(ctx context.Context, t league.Team, roster []league.Player) (league.Team, error)
	NearestBot(ctx context.Context, rating int) (league.Team, bool, error)
	AddExperience(ctx context.Context, playerID int64, amount int) error

	// Matches.
	Match(ctx context.Context, id int64) (league.Match, error)
	LockMatch(ctx context.Context, id int64) (league.Match, error)
	LockOwnWaiting(ctx context.Context, teamID int64) (league.Match, bool, error)
	LockJoinCandidate(ctx context.Context, teamID int64, rating int, now time.Time) (league.Match, bool, error)
	InsertMatch(ctx context.Context, m league.Match) (league.Match, error)
	UpdateMatch(ctx context.Context, m league.Match) error
	RecentMatches(ctx context.Context, limit int) ([]league.Match, error)
	SeasonResults(ctx context.Context, seasonID int64) ([]season.Result, error)

	// Play-by-play.
	AppendEvents(ctx context.Context, matchID int64, events []league.MatchEvent) error
	DeleteEvents(ctx context.Context, matchID int64) error
	Events(ctx context.Context, matchID int64) ([]league.MatchEvent, error)

	// Plan submissions.
	UpsertSubmission(ctx context.Context, s league.Submission) error
	Submission(ctx context.Context, matchID, teamID int64) (league.Submission, bool, error)
	HasSubmission(ctx context.Context, matchID, teamID int64) (bool, error)
	SubmissionCount(ctx context.Context, matchID int64) (int, error)

	// Statistics. Per-match player rows are always replaced; season totals
	// are added only when cumulative is true.
	RecordMatchStats(ctx context.Context, m league.Match, sum stats.Summary, cumulative bool) error
	PlayerSeasonStats(ctx context.Context, seasonID int64) ([]season.ShooterRow, error)
	PlayerMatchStats(ctx context.Context, matchID int64) ([]stats.PlayerLine, error)
}
