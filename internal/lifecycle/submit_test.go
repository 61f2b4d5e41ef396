package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/store"
)

func storedSubmission(t *testing.T, f *fixture, matchID, teamID int64) (league.Submission, bool) {
	t.Helper()
	ctx := context.Background()
	var sub league.Submission
	var ok bool
	require.NoError(t, f.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		sub, ok, err = tx.Submission(ctx, matchID, teamID)
		return err
	}))
	return sub, ok
}

func TestSubmit_BotOpponentGetsAIPlanAndMatchIsPlayed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team, m := f.botMatch(t)

	res, err := f.svc.Submit(ctx, Submission{MatchID: m.ID, TeamID: team.ID, Plan: f.defaultPlan(t, team.ID)})
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Equal(t, league.StatusDone, res.Match.Status)
	assert.Equal(t, "run-1", res.Match.RunToken)
	assert.Equal(t, f.clock.Now(), res.Match.SimulatedAt)

	human, ok := storedSubmission(t, f, m.ID, team.ID)
	require.True(t, ok)
	assert.Equal(t, league.SourceHuman, human.Source)

	bot, ok := storedSubmission(t, f, m.ID, m.AwayTeamID)
	require.True(t, ok)
	assert.Equal(t, league.SourceAI, bot.Source)
	assert.NotEmpty(t, bot.Plan.Lines)

	events, err := f.svc.Events(ctx, m.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, league.EventFaceoff, events[0].Type)
	assert.Equal(t, league.EventHorn, events[len(events)-1].Type)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].Before(events[i]), "event %d out of order", i)
	}

	goals := map[int64]int{}
	for _, ev := range events {
		if ev.Type == league.EventGoal {
			goals[ev.Payload.TeamID]++
		}
	}
	assert.Equal(t, res.Match.HomeScore, goals[m.HomeTeamID])
	assert.Equal(t, res.Match.AwayScore, goals[m.AwayTeamID])
}

func TestSubmit_HumanPairWaitsForBothPlans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.team(t, "Home", 1000)
	away := f.team(t, "Away", 1010)

	_, err := f.svc.FindMatch(ctx, home.ID)
	require.NoError(t, err)
	ticket, err := f.svc.FindMatch(ctx, away.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeJoined, ticket.Outcome)
	id := ticket.Match.ID

	res, err := f.svc.Submit(ctx, Submission{MatchID: id, TeamID: home.ID, Plan: f.defaultPlan(t, home.ID)})
	require.NoError(t, err)
	assert.False(t, res.Simulated)
	assert.Equal(t, league.StatusWaitingSubmissions, res.Match.Status)

	// Resubmitting replaces the plan without counting twice.
	p := f.defaultPlan(t, home.ID)
	p.Tactics.Aggression = 80
	res, err = f.svc.Submit(ctx, Submission{MatchID: id, TeamID: home.ID, Plan: p})
	require.NoError(t, err)
	assert.False(t, res.Simulated)
	sub, ok := storedSubmission(t, f, id, home.ID)
	require.True(t, ok)
	assert.Equal(t, 80, sub.Plan.Tactics.Aggression)

	res, err = f.svc.Submit(ctx, Submission{MatchID: id, TeamID: away.ID, Plan: f.defaultPlan(t, away.ID)})
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Equal(t, league.StatusDone, res.Match.Status)
}

func TestSubmit_LapsedOpponentPlaysDefaultPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.team(t, "Home", 1000)
	away := f.team(t, "Away", 1000)

	_, err := f.svc.FindMatch(ctx, home.ID)
	require.NoError(t, err)
	ticket, err := f.svc.FindMatch(ctx, away.ID)
	require.NoError(t, err)

	f.clock.Advance(DefaultSubmissionWindow + time.Second)
	res, err := f.svc.Submit(ctx, Submission{MatchID: ticket.Match.ID, TeamID: away.ID, Plan: f.defaultPlan(t, away.ID)})
	require.NoError(t, err)
	assert.True(t, res.Simulated)

	sub, ok := storedSubmission(t, f, ticket.Match.ID, home.ID)
	require.True(t, ok)
	assert.Equal(t, league.SourceDefault, sub.Source)
}

func TestSubmit_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.team(t, "Home", 1000)
	stranger := f.team(t, "Stranger", 1000)

	ticket, err := f.svc.FindMatch(ctx, home.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		sub   Submission
		check func(error) bool
	}{
		{"missing ids", Submission{}, league.IsInvalid},
		{"unknown match", Submission{MatchID: 999, TeamID: home.ID}, league.IsNotFound},
		{"team not in match", Submission{MatchID: ticket.Match.ID, TeamID: stranger.ID}, league.IsInvalid},
		{"no opponent yet", Submission{MatchID: ticket.Match.ID, TeamID: home.ID}, league.IsInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.sub)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	_, ok := storedSubmission(t, f, ticket.Match.ID, home.ID)
	assert.False(t, ok, "rejected submissions must not be stored")
}

func TestSubmit_MalformedPlanRejectedBeforeStoring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team, m := f.botMatch(t)

	oversized := f.defaultPlan(t, team.ID)
	l1 := oversized.Lines["L1"]
	l1.Forwards = append(l1.Forwards, oversized.Lines["L2"].Forwards...)
	l1.Defense = []int64{-7}
	oversized.Lines["L1"] = l1

	unbounded := f.defaultPlan(t, team.ID)
	unbounded.Tactics = league.Tactics{Aggression: 100000, Forecheck: 50, ShootBias: 100000, Risk: 100000}

	for name, p := range map[string]league.Plan{"oversized line": oversized, "unbounded tactics": unbounded} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, Submission{MatchID: m.ID, TeamID: team.ID, Plan: p})
			require.Error(t, err)
			assert.True(t, league.IsInvalid(err), "got %v", err)
		})
	}

	_, ok := storedSubmission(t, f, m.ID, team.ID)
	assert.False(t, ok)
	_, ok = storedSubmission(t, f, m.ID, m.AwayTeamID)
	assert.False(t, ok, "bot plan is only filled once a valid plan arrives")
	assert.Equal(t, league.StatusWaitingSubmissions, f.match(t, m.ID).Status)
	assert.Equal(t, 0, f.tokens.Issued())
}

func TestSubmit_DoneMatchRejectsPlans(t *testing.T) {
	f := newFixture(t)
	team, m := f.playedMatch(t)

	_, err := f.svc.Submit(context.Background(), Submission{MatchID: m.ID, TeamID: team.ID, Plan: f.defaultPlan(t, team.ID)})
	assert.True(t, league.IsInvalid(err))
	assert.Equal(t, 1, f.tokens.Issued())
}
