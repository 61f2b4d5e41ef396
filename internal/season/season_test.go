package season

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
)

func TestDivisionFor(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{-20, "bronze"},
		{0, "bronze"},
		{899, "bronze"},
		{900, "silver"},
		{1049, "silver"},
		{1050, "gold"},
		{1199, "gold"},
		{1200, "elite"},
		{2400, "elite"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DivisionFor(tt.rating).Key, "rating %d", tt.rating)
	}
}

func TestStandings(t *testing.T) {
	teams := []league.Team{
		{ID: 1, Name: "Otters", Rating: 1000},
		{ID: 2, Name: "Owls", Rating: 1100},
		{ID: 3, Name: "Bot 950", Rating: 950, IsBot: true},
		{ID: 4, Name: "Idle", Rating: 850},
	}
	results := []Result{
		{MatchID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 3, AwayScore: 1},
		{MatchID: 2, HomeTeamID: 2, AwayTeamID: 3, HomeScore: 2, AwayScore: 2},
		{MatchID: 3, HomeTeamID: 3, AwayTeamID: 1, HomeScore: 0, AwayScore: 1},
		{MatchID: 4, HomeTeamID: 1, AwayTeamID: 99, HomeScore: 9, AwayScore: 0},
	}

	rows := Standings(teams, results)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{
		Rank: 1, TeamID: 1, TeamName: "Otters", Rating: 1000, Division: "Silver",
		GamesPlayed: 2, Wins: 2, Points: 4, GoalsFor: 4, GoalsAgainst: 1, GoalDiff: 3,
	}, rows[0])

	// One point each; the bot wins on goal differential.
	assert.Equal(t, int64(3), rows[1].TeamID)
	assert.Equal(t, 1, rows[1].Points)
	assert.Equal(t, -1, rows[1].GoalDiff)
	assert.True(t, rows[1].IsBot)

	assert.Equal(t, int64(2), rows[2].TeamID)
	assert.Equal(t, 1, rows[2].Ties)
	assert.Equal(t, -2, rows[2].GoalDiff)
	assert.Equal(t, "Gold", rows[2].Division)

	assert.Equal(t, Row{Rank: 4, TeamID: 4, TeamName: "Idle", Rating: 850, Division: "Bronze"}, rows[3])
}

func TestRank_TieBreakOrder(t *testing.T) {
	rows := Rank([]Row{
		{TeamName: "E", Points: 4, Wins: 2, GoalDiff: 1, GoalsFor: 5},
		{TeamName: "D", Points: 4, Wins: 2, GoalDiff: 1, GoalsFor: 5},
		{TeamName: "C", Points: 4, Wins: 2, GoalDiff: 1, GoalsFor: 6},
		{TeamName: "B", Points: 4, Wins: 2, GoalDiff: 3, GoalsFor: 1},
		{TeamName: "A", Points: 4, Wins: 1, GoalDiff: 9, GoalsFor: 9},
		{TeamName: "Z", Points: 6},
	})

	var names []string
	for i, r := range rows {
		names = append(names, r.TeamName)
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"Z", "B", "C", "D", "E", "A"}, names)
}

func TestLeaders(t *testing.T) {
	rows := []ShooterRow{
		{PlayerID: 1, PlayerName: "Carter", Position: league.Center, Goals: 3, Shots: 9},
		{PlayerID: 2, PlayerName: "Benson", Position: league.LeftWing, Goals: 3, Shots: 12},
		{PlayerID: 3, PlayerName: "Able", Position: league.RightWing, Goals: 3, Shots: 9},
		{PlayerID: 4, PlayerName: "Net", Position: league.Goalie, Goals: 5, Shots: 5},
		{PlayerID: 5, PlayerName: "Quiet", Position: league.Defense},
		{PlayerID: 6, PlayerName: "Point", Position: league.Defense, Shots: 4},
	}

	all := Leaders(rows, 0)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{2, 3, 1, 6}, []int64{all[0].PlayerID, all[1].PlayerID, all[2].PlayerID, all[3].PlayerID})
	assert.Equal(t, 25.0, all[0].ShootingPct)
	assert.Equal(t, 33.3, all[1].ShootingPct)
	assert.Equal(t, 0.0, all[3].ShootingPct)

	top := Leaders(rows, 2)
	assert.Len(t, top, 2)
}
