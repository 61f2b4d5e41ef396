package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/plan"
)

// fullRoster builds a 12F/6D/2G roster with ids starting at base.
func fullRoster(teamID, base int64) []league.Player {
	var out []league.Player
	positions := []league.Position{league.Center, league.LeftWing, league.RightWing}
	id := base
	for i := 0; i < 12; i++ {
		out = append(out, league.Player{
			ID: id, TeamID: teamID, Name: "F" + string(rune('A'+i)), Position: positions[i%3],
			Shot: 55 + (i*7)%30, Pass: 50 + (i*5)%30, Speed: 60, Defense: 40, Grit: 45 + (i*3)%40, GoalieSkill: 10,
		})
		id++
	}
	for i := 0; i < 6; i++ {
		out = append(out, league.Player{
			ID: id, TeamID: teamID, Name: "D" + string(rune('A'+i)), Position: league.Defense,
			Shot: 45, Pass: 55, Speed: 55, Defense: 60 + i*3, Grit: 60, GoalieSkill: 10,
		})
		id++
	}
	for i := 0; i < 2; i++ {
		out = append(out, league.Player{
			ID: id, TeamID: teamID, Name: "G" + string(rune('A'+i)), Position: league.Goalie,
			Shot: 10, Pass: 10, Speed: 50, Defense: 50, Grit: 50, GoalieSkill: 62 + i*5,
		})
		id++
	}
	return out
}

func side(teamID int64, name string, roster []league.Player) league.Side {
	return league.Side{
		Team:   league.Team{ID: teamID, Name: name, Rating: 1000},
		Roster: roster,
		Plan:   plan.BuildDefault(roster),
	}
}

func defaultInput(seed int64) Input {
	return Input{
		MatchID: 1,
		Seed:    seed,
		Home:    side(1, "Home", fullRoster(1, 100)),
		Away:    side(2, "Away", fullRoster(2, 200)),
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	e := New()

	a, err := e.Simulate(defaultInput(42))
	require.NoError(t, err)
	b, err := e.Simulate(defaultInput(42))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSimulate_SeedChangesOutcome(t *testing.T) {
	e := New()

	a, err := e.Simulate(defaultInput(42))
	require.NoError(t, err)
	b, err := e.Simulate(defaultInput(43))
	require.NoError(t, err)

	assert.NotEqual(t, a.Events, b.Events)
}

func TestSimulate_EventOrdering(t *testing.T) {
	res, err := New().Simulate(defaultInput(7))
	require.NoError(t, err)
	require.NotEmpty(t, res.Events)

	for i := 1; i < len(res.Events); i++ {
		prev, cur := res.Events[i-1], res.Events[i]
		assert.True(t, prev.Before(cur), "event %d out of order", i)
		assert.Equal(t, prev.Seq+1, cur.Seq)
		if prev.Period == cur.Period {
			assert.LessOrEqual(t, prev.Tick, cur.Tick)
		} else {
			assert.Less(t, prev.Period, cur.Period)
		}
	}
	assert.Equal(t, int64(1), res.Events[0].Seq)
}

func TestSimulate_PeriodFrame(t *testing.T) {
	res, err := New().Simulate(defaultInput(11))
	require.NoError(t, err)

	var faceoffs, horns []league.MatchEvent
	for _, ev := range res.Events {
		switch ev.Type {
		case league.EventFaceoff:
			faceoffs = append(faceoffs, ev)
		case league.EventHorn:
			horns = append(horns, ev)
		}
	}
	require.Len(t, faceoffs, 3)
	require.Len(t, horns, 3)

	for i, ev := range faceoffs {
		assert.Equal(t, i+1, ev.Period)
		assert.Equal(t, 0, ev.Tick)
		assert.Equal(t, 1200, ev.TimeLeft)
		assert.Equal(t, res.HomeGoalieID, ev.Payload.HomeGoalieID)
	}
	for i, ev := range horns {
		assert.Equal(t, i+1, ev.Period)
		assert.Equal(t, 39, ev.Tick)
		assert.Equal(t, 0, ev.TimeLeft)
	}

	last := res.Events[len(res.Events)-1]
	assert.Equal(t, league.EventHorn, last.Type)
	require.NotNil(t, last.Payload.HomeScore)
	assert.Equal(t, res.HomeScore, *last.Payload.HomeScore)
	assert.Equal(t, res.AwayScore, *last.Payload.AwayScore)
}

func TestSimulate_GoalsMatchScore(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		res, err := New().Simulate(defaultInput(seed))
		require.NoError(t, err)

		goals := map[int64]int{}
		for _, ev := range res.Events {
			if ev.Type != league.EventGoal {
				continue
			}
			goals[ev.Payload.TeamID]++
			assert.LessOrEqual(t, len(ev.Payload.AssistIDs), 2)
			seen := map[int64]bool{}
			for _, a := range ev.Payload.AssistIDs {
				assert.NotEqual(t, ev.Payload.ShooterID, a, "shooter credited with assist")
				assert.False(t, seen[a], "duplicate assist")
				seen[a] = true
			}
		}
		assert.Equal(t, res.HomeScore, goals[1], "seed %d", seed)
		assert.Equal(t, res.AwayScore, goals[2], "seed %d", seed)
	}
}

func TestSimulate_ShotsPrecedeOutcomes(t *testing.T) {
	res, err := New().Simulate(defaultInput(99))
	require.NoError(t, err)

	for i, ev := range res.Events {
		switch ev.Type {
		case league.EventGoal, league.EventSave, league.EventMiss, league.EventBlock:
			require.Greater(t, i, 0)
			prev := res.Events[i-1]
			assert.Equal(t, league.EventShot, prev.Type)
			assert.Equal(t, ev.Tick, prev.Tick)
			assert.GreaterOrEqual(t, prev.Payload.Danger, 1)
			assert.LessOrEqual(t, prev.Payload.Danger, 5)
			assert.Contains(t, []string{"left", "slot", "right"}, prev.Payload.Lane)
		}
	}
}

func TestSimulate_ShiftRotation(t *testing.T) {
	res, err := New().Simulate(defaultInput(5))
	require.NoError(t, err)

	var homeShifts []league.MatchEvent
	for _, ev := range res.Events {
		if ev.Type == league.EventShift && ev.Payload.TeamID == 1 && ev.Period == 1 {
			homeShifts = append(homeShifts, ev)
		}
	}
	// 40 ticks / 3 per shift = 14 line changes in period 1
	require.Len(t, homeShifts, 14)
	wantKeys := []string{"L1", "L2", "L3", "L4"}
	for i, ev := range homeShifts {
		assert.Equal(t, i*3, ev.Tick)
		assert.Equal(t, wantKeys[i%4], ev.Payload.Line)
		assert.Len(t, ev.Payload.Players, 5)
	}
}

func TestSimulate_ShortRosterFallsBack(t *testing.T) {
	in := defaultInput(42)
	lone := []league.Player{{ID: 900, TeamID: 3, Name: "Solo", Position: league.Center, Shot: 50, Pass: 50, Speed: 50, Defense: 50, Grit: 50}}
	in.Away = side(3, "Skeleton", lone)

	res, err := New().Simulate(in)
	require.NoError(t, err)
	assert.Equal(t, int64(900), res.AwayGoalieID, "first rostered player tends goal")

	for _, ev := range res.Events {
		if ev.Type == league.EventShot && ev.Payload.TeamID == 3 {
			assert.Equal(t, int64(900), ev.Payload.ShooterID)
		}
	}
}

func TestSimulate_EmptyLinesAndUnknownIDs(t *testing.T) {
	in := defaultInput(3)
	in.Home.Plan = league.Plan{
		Lines:   map[string]league.Line{"L1": {Forwards: []int64{0, 4242, 100}, Defense: []int64{0}}},
		Tactics: league.DefaultTactics,
	}
	in.Away.Plan = league.Plan{Tactics: league.DefaultTactics}

	res, err := New().Simulate(in)
	require.NoError(t, err)

	for _, ev := range res.Events {
		if ev.Type != league.EventShift {
			continue
		}
		if ev.Payload.TeamID == 1 {
			assert.Equal(t, []int64{100}, ev.Payload.Players)
		} else {
			assert.Equal(t, "L1", ev.Payload.Line)
			assert.Empty(t, ev.Payload.Players)
		}
	}
	assert.Equal(t, int64(219), res.AwayGoalieID, "best goalie used when plan names none")
}

func TestSimulate_EmptyRosterFaults(t *testing.T) {
	in := defaultInput(1)
	in.Home.Roster = nil

	_, err := New().Simulate(in)
	require.Error(t, err)
	assert.True(t, league.IsSimulationFault(err))
}

func TestSimulate_BotPlanNotMutated(t *testing.T) {
	in := defaultInput(8)
	in.Away.Team.IsBot = true
	in.Away.Team.BotDifficulty = 7
	in.Away.Plan = plan.BuildAI(in.Away.Team, in.Away.Roster)
	before := in.Away.Plan.Clone()

	_, err := New().Simulate(in)
	require.NoError(t, err)
	assert.Equal(t, before, in.Away.Plan)
}

func TestSimulate_LateGameToggle(t *testing.T) {
	in := defaultInput(8)
	in.Away.Team.IsBot = true

	on, err := New().Simulate(in)
	require.NoError(t, err)
	off, err := New(WithLateGameAI(false)).Simulate(in)
	require.NoError(t, err)

	// Identical until the third period's late window.
	for i := range on.Events {
		if on.Events[i].Period == 3 && on.Events[i].TimeLeft <= plan.LateGameSeconds {
			break
		}
		require.Equal(t, on.Events[i], off.Events[i])
	}
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}
