package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/roster"
	"github.com/roach88/rinkleague/internal/sim"
	"github.com/roach88/rinkleague/internal/store"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// openTestStore connects to RINK_TEST_PG_DSN and starts from empty tables.
// The database it names is wiped.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("RINK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("RINK_TEST_PG_DSN not set")
	}
	s, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, s.db.Migrator().DropTable(allModels...))
	require.NoError(t, migrate(s.db))
	t.Cleanup(func() { s.Close() })
	return s
}

func atomically(t *testing.T, s *Store, fn func(ctx context.Context, tx store.Tx)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Atomically(ctx, func(tx store.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func createTeam(t *testing.T, s *Store, name string, rating int, bot bool) league.Team {
	t.Helper()
	var team league.Team
	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		var err error
		team, err = tx.CreateTeam(ctx,
			league.Team{Name: name, Rating: rating, IsBot: bot, BotDifficulty: 5},
			roster.Generate(0, rating, roster.NewSource(uint64(rating), 7)),
		)
		require.NoError(t, err)
	})
	return team
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestTeamsAndBots(t *testing.T) {
	s := openTestStore(t)
	owls := createTeam(t, s, "Owls", 1100, false)
	createTeam(t, s, "Bot 980", 980, true)
	near := createTeam(t, s, "Bot 1200", 1200, true)

	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		got, err := tx.Team(ctx, owls.ID)
		require.NoError(t, err)
		assert.Equal(t, league.StyleBalanced, got.CoachStyle)

		_, err = tx.Team(ctx, 999999)
		assert.True(t, league.IsNotFound(err))

		players, err := tx.Players(ctx, owls.ID)
		require.NoError(t, err)
		assert.Len(t, players, 20)

		bot, ok, err := tx.NearestBot(ctx, 1150)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, near.ID, bot.ID)

		require.NoError(t, tx.AddExperience(ctx, players[0].ID, 7))
		again, err := tx.Players(ctx, owls.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, again[0].Experience)
	})
}

func TestMatchLifecycle(t *testing.T) {
	s := openTestStore(t)
	home := createTeam(t, s, "Home", 1000, false)
	away := createTeam(t, s, "Away", 1000, false)
	ctx := context.Background()

	var m league.Match
	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		var err error
		m, err = tx.InsertMatch(ctx, league.Match{
			SeasonID:       1,
			HomeTeamID:     home.ID,
			Seed:           42,
			Status:         league.StatusWaitingOpponent,
			SubmitDeadline: t0.Add(30 * time.Second),
			CreatedAt:      t0,
		})
		require.NoError(t, err)
	})

	err := s.Atomically(ctx, func(tx store.Tx) error {
		_, err := tx.InsertMatch(ctx, league.Match{SeasonID: 1, HomeTeamID: home.ID, Seed: 1, Status: league.StatusWaitingOpponent, CreatedAt: t0})
		return err
	})
	assert.True(t, league.IsConflict(err), "got %v", err)

	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		own, ok, err := tx.LockOwnWaiting(ctx, home.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, m.ID, own.ID)
		assert.Equal(t, t0.Add(30*time.Second), own.SubmitDeadline)

		cand, ok, err := tx.LockJoinCandidate(ctx, away.ID, 1000, t0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, m.ID, cand.ID)

		_, ok, err = tx.LockJoinCandidate(ctx, away.ID, 1000, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok, "expired matches are not joinable")

		cand.AwayTeamID = away.ID
		cand.Status = league.StatusWaitingSubmissions
		require.NoError(t, tx.UpdateMatch(ctx, cand))
	})

	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		got, err := tx.Match(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, away.ID, got.AwayTeamID)
		assert.Equal(t, league.StatusWaitingSubmissions, got.Status)

		err = tx.UpdateMatch(ctx, league.Match{ID: 999999, Status: league.StatusDone})
		assert.True(t, league.IsNotFound(err))
	})
}

func TestJoinCandidateSkipsLockedRows(t *testing.T) {
	s := openTestStore(t)
	host := createTeam(t, s, "Host", 1000, false)
	a := createTeam(t, s, "A", 1000, false)
	b := createTeam(t, s, "B", 1000, false)
	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		_, err := tx.InsertMatch(ctx, league.Match{SeasonID: 1, HomeTeamID: host.ID, Seed: 1, Status: league.StatusWaitingOpponent, CreatedAt: t0})
		require.NoError(t, err)
	})

	ctx := context.Background()
	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Atomically(ctx, func(tx store.Tx) error {
			_, ok, err := tx.LockJoinCandidate(ctx, a.ID, 1000, t0)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("first joiner found no candidate")
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		_, ok, err := tx.LockJoinCandidate(ctx, b.ID, 1000, t0)
		require.NoError(t, err)
		assert.False(t, ok, "a locked slot must be skipped")
	})
	close(release)
	require.NoError(t, <-done)
}

func TestEventsSubmissionsAndStats(t *testing.T) {
	s := openTestStore(t)
	home := createTeam(t, s, "Home", 1000, false)
	away := createTeam(t, s, "Away", 1000, false)

	var m league.Match
	var homeSide, awaySide league.Side
	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		var err error
		m, err = tx.InsertMatch(ctx, league.Match{
			SeasonID: 1, HomeTeamID: home.ID, AwayTeamID: away.ID, Seed: 42,
			Status: league.StatusWaitingSubmissions, CreatedAt: t0,
		})
		require.NoError(t, err)
		hp, err := tx.Players(ctx, home.ID)
		require.NoError(t, err)
		ap, err := tx.Players(ctx, away.ID)
		require.NoError(t, err)
		homeSide = league.Side{Team: home, Roster: hp, Plan: plan.BuildDefault(hp)}
		awaySide = league.Side{Team: away, Roster: ap, Plan: plan.BuildDefault(ap)}

		require.NoError(t, tx.UpsertSubmission(ctx, league.Submission{MatchID: m.ID, TeamID: home.ID, Plan: homeSide.Plan, Source: league.SourceHuman, CreatedAt: t0}))
		require.NoError(t, tx.UpsertSubmission(ctx, league.Submission{MatchID: m.ID, TeamID: home.ID, Plan: homeSide.Plan, Source: league.SourceDefault, CreatedAt: t0}))
		n, err := tx.SubmissionCount(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		sub, ok, err := tx.Submission(ctx, m.ID, home.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, league.SourceDefault, sub.Source)
		assert.Equal(t, homeSide.Plan.GoalieID, sub.Plan.GoalieID)

		has, err := tx.HasSubmission(ctx, m.ID, away.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	res, err := sim.New().Simulate(sim.Input{MatchID: m.ID, Seed: m.Seed, Home: homeSide, Away: awaySide})
	require.NoError(t, err)

	atomically(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.AppendEvents(ctx, m.ID, res.Events))
		require.NoError(t, tx.AppendEvents(ctx, m.ID, res.Events))
		got, err := tx.Events(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, got, len(res.Events))
		for i := range got {
			assert.Equal(t, res.Events[i].Seq, got[i].Seq)
			assert.Equal(t, res.Events[i].Payload, got[i].Payload)
		}
	})
}
