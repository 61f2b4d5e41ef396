package lifecycle

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/roster"
	"github.com/roach88/rinkleague/internal/store"
	"github.com/roach88/rinkleague/internal/testutil"
)

type fixture struct {
	svc    *Service
	store  *store.Store
	clock  *testutil.Clock
	tokens *testutil.TokenSequence
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "league.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		store:  st,
		clock:  testutil.NewClock(time.Time{}),
		tokens: testutil.NewTokenSequence("run"),
	}
	f.svc = New(st,
		WithClock(f.clock.Now),
		WithTokens(f.tokens),
		WithBotSource(roster.NewSource(1, 2)),
	)
	return f
}

func (f *fixture) team(t *testing.T, name string, rating int) league.Team {
	t.Helper()
	team, err := f.svc.CreateTeam(context.Background(), name, rating)
	require.NoError(t, err)
	return team
}

func (f *fixture) defaultPlan(t *testing.T, teamID int64) league.Plan {
	t.Helper()
	_, players, err := f.svc.Team(context.Background(), teamID)
	require.NoError(t, err)
	return plan.BuildDefault(players)
}

func (f *fixture) match(t *testing.T, id int64) league.Match {
	t.Helper()
	m, err := f.svc.Match(context.Background(), id)
	require.NoError(t, err)
	return m
}

// bot stores a bot club with a generated roster.
func (f *fixture) bot(t *testing.T, name string, rating int) league.Team {
	t.Helper()
	ctx := context.Background()
	var team league.Team
	require.NoError(t, f.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		team, err = tx.CreateTeam(ctx,
			league.Team{Name: name, Rating: rating, IsBot: true, BotDifficulty: 5, CoachStyle: league.StyleGrit},
			roster.Generate(0, rating, roster.NewSource(uint64(rating), 3)),
		)
		return err
	}))
	return team
}

// insert writes a match row directly, bypassing matchmaking.
func (f *fixture) insert(t *testing.T, m league.Match) league.Match {
	t.Helper()
	ctx := context.Background()
	if m.SeasonID == 0 {
		m.SeasonID = DefaultSeasonID
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = f.clock.Now()
	}
	require.NoError(t, f.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		m, err = tx.InsertMatch(ctx, m)
		return err
	}))
	return m
}

// botMatch opens a match for a new club, lets it expire, bot-fills it and
// returns the paired match.
func (f *fixture) botMatch(t *testing.T) (league.Team, league.Match) {
	t.Helper()
	ctx := context.Background()
	team := f.team(t, "Harbor Otters", 1000)

	_, err := f.svc.FindMatch(ctx, team.ID)
	require.NoError(t, err)
	f.clock.Advance(DefaultHumanWait + time.Second)

	ticket, err := f.svc.FindMatch(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeBotFill, ticket.Outcome)
	return team, ticket.Match
}

// playedMatch returns a match that has been simulated once.
func (f *fixture) playedMatch(t *testing.T) (league.Team, league.Match) {
	t.Helper()
	team, m := f.botMatch(t)
	res, err := f.svc.Submit(context.Background(), Submission{
		MatchID: m.ID,
		TeamID:  team.ID,
		Plan:    f.defaultPlan(t, team.ID),
	})
	require.NoError(t, err)
	require.True(t, res.Simulated)
	return team, res.Match
}

func eventDigest(t *testing.T, events []league.MatchEvent) string {
	t.Helper()
	d, err := canon.EventDigest(events)
	require.NoError(t, err)
	return d
}
