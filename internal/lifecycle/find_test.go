package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/rng"
	"github.com/roach88/rinkleague/internal/testutil"
)

func TestFindMatch_CreatesThenWaits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otters := f.team(t, "Harbor Otters", 1000)

	ticket, err := f.svc.FindMatch(ctx, otters.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, ticket.Outcome)
	assert.Equal(t, 30, ticket.WaitSeconds)
	assert.Equal(t, league.StatusWaitingOpponent, ticket.Match.Status)
	assert.Equal(t, rng.SeedFrom(testutil.Epoch, otters.ID), ticket.Match.Seed)
	assert.Equal(t, testutil.Epoch.Add(DefaultHumanWait), ticket.Match.SubmitDeadline)
	assert.False(t, ticket.Match.HasOpponent())

	f.clock.Advance(10 * time.Second)
	again, err := f.svc.FindMatch(ctx, otters.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWaiting, again.Outcome)
	assert.Equal(t, ticket.Match.ID, again.Match.ID)
	assert.Equal(t, 20, again.WaitSeconds)
}

func TestFindMatch_JoinsClosestRatingThenOldest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.team(t, "Low", 900)
	highOld := f.team(t, "High Old", 1300)
	highNew := f.team(t, "High New", 1300)
	joiner := f.team(t, "Joiner", 1250)

	deadline := f.clock.Now().Add(time.Minute)
	f.insert(t, league.Match{HomeTeamID: low.ID, Seed: 1, Status: league.StatusWaitingOpponent, SubmitDeadline: deadline})
	old := f.insert(t, league.Match{HomeTeamID: highOld.ID, Seed: 2, Status: league.StatusWaitingOpponent, SubmitDeadline: deadline})
	f.clock.Advance(time.Second)
	f.insert(t, league.Match{HomeTeamID: highNew.ID, Seed: 3, Status: league.StatusWaitingOpponent, SubmitDeadline: deadline})

	ticket, err := f.svc.FindMatch(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeJoined, ticket.Outcome)
	assert.Equal(t, old.ID, ticket.Match.ID)
	assert.Equal(t, highOld.ID, ticket.Opponent.ID)

	got := f.match(t, old.ID)
	assert.Equal(t, league.StatusWaitingSubmissions, got.Status)
	assert.Equal(t, joiner.ID, got.AwayTeamID)
	assert.Equal(t, f.clock.Now().Add(DefaultSubmissionWindow), got.SubmitDeadline)
}

func TestFindMatch_ExpiredMatchIsNotJoined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.team(t, "Host", 1000)
	late := f.team(t, "Late", 1000)

	first, err := f.svc.FindMatch(ctx, host.ID)
	require.NoError(t, err)
	f.clock.Advance(DefaultHumanWait)

	ticket, err := f.svc.FindMatch(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, ticket.Outcome)
	assert.NotEqual(t, first.Match.ID, ticket.Match.ID)
}

func TestFindMatch_BotFillAfterDeadline(t *testing.T) {
	f := newFixture(t)
	team, m := f.botMatch(t)

	assert.Equal(t, league.StatusWaitingSubmissions, m.Status)
	assert.True(t, m.HasOpponent())
	assert.Equal(t, f.clock.Now().Add(DefaultSubmissionWindow), m.SubmitDeadline)

	bot, players, err := f.svc.Team(context.Background(), m.AwayTeamID)
	require.NoError(t, err)
	assert.True(t, bot.IsBot)
	assert.NotEqual(t, team.ID, bot.ID)
	assert.InDelta(t, 1000, bot.Rating, 50)
	assert.Len(t, players, 20)
}

func TestFindMatch_BotFillReusesNearestBot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot(t, "Bot 700", 700)
	near := f.bot(t, "Bot 1060", 1060)
	f.bot(t, "Bot 1300", 1300)

	team := f.team(t, "Otters", 1040)
	_, err := f.svc.FindMatch(ctx, team.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	ticket, err := f.svc.FindMatch(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBotFill, ticket.Outcome)
	assert.Equal(t, near.ID, ticket.Opponent.ID)
}

func TestFindMatch_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.FindMatch(ctx, 0)
	assert.True(t, league.IsInvalid(err))

	_, err = f.svc.FindMatch(ctx, 404)
	assert.True(t, league.IsNotFound(err))
}

func TestFindMatch_ConcurrentRequestsNeverShareASlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.team(t, "Host", 1000)
	first, err := f.svc.FindMatch(ctx, host.ID)
	require.NoError(t, err)

	const n = 8
	teams := make([]league.Team, n)
	for i := range teams {
		teams[i] = f.team(t, "Racer "+string(rune('A'+i)), 1000)
	}

	tickets := make([]Ticket, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range teams {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tickets[i], errs[i] = f.svc.FindMatch(ctx, teams[i].ID)
		}(i)
	}
	wg.Wait()

	joined, created := 0, 0
	joinedMatch := map[int64]int{}
	for i := range tickets {
		require.NoError(t, errs[i])
		switch tickets[i].Outcome {
		case OutcomeJoined:
			joined++
			joinedMatch[tickets[i].Match.ID]++
		case OutcomeCreated:
			created++
		default:
			t.Fatalf("unexpected outcome %s", tickets[i].Outcome)
		}
	}
	// Requests serialize, so they alternate between joining the open slot
	// and opening a new one.
	assert.Equal(t, n/2, joined)
	assert.Equal(t, n/2, created)
	assert.Equal(t, 1, joinedMatch[first.Match.ID])
	for id, c := range joinedMatch {
		assert.Equal(t, 1, c, "match %d joined more than once", id)
	}

	matches, err := f.svc.RecentMatches(ctx, 100)
	require.NoError(t, err)
	seen := map[int64]int{}
	for _, m := range matches {
		assert.NotEqual(t, m.HomeTeamID, m.AwayTeamID)
		seen[m.HomeTeamID]++
		if m.HasOpponent() {
			seen[m.AwayTeamID]++
		}
	}
	assert.Equal(t, 1, seen[host.ID])
	for _, team := range teams {
		assert.Equal(t, 1, seen[team.ID], "team %s placed in %d matches", team.Name, seen[team.ID])
	}
}
