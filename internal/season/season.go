// Package season builds standings, divisions and scoring leaders from
// finished matches.
package season

import (
	"math"
	"sort"

	"github.com/roach88/rinkleague/internal/league"
)

// Division is a rating band. MaxRating is inclusive.
type Division struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	MinRating int    `json:"min_rating"`
	MaxRating int    `json:"max_rating"`
}

// Divisions are ordered from lowest to highest rating.
var Divisions = []Division{
	{Key: "bronze", Name: "Bronze", MinRating: 0, MaxRating: 899},
	{Key: "silver", Name: "Silver", MinRating: 900, MaxRating: 1049},
	{Key: "gold", Name: "Gold", MinRating: 1050, MaxRating: 1199},
	{Key: "elite", Name: "Elite", MinRating: 1200, MaxRating: math.MaxInt},
}

// DivisionFor returns the division containing rating. Ratings below zero
// fall into Bronze.
func DivisionFor(rating int) Division {
	for _, d := range Divisions {
		if rating >= d.MinRating && rating <= d.MaxRating {
			return d
		}
	}
	return Divisions[0]
}

// Result is the final score of one DONE match.
type Result struct {
	MatchID    int64
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  int
	AwayScore  int
}

// Row is one line of the standings table.
type Row struct {
	Rank         int    `json:"rank"`
	TeamID       int64  `json:"team_id"`
	TeamName     string `json:"team_name"`
	Rating       int    `json:"rating"`
	IsBot        bool   `json:"is_bot"`
	Division     string `json:"division"`
	GamesPlayed  int    `json:"games_played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Ties         int    `json:"ties"`
	Points       int    `json:"points"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
}

// Standings tallies results for teams and ranks them. Every team gets a row
// even with no games; results naming an unknown team are skipped.
func Standings(teams []league.Team, results []Result) []Row {
	rows := make(map[int64]*Row, len(teams))
	out := make([]Row, 0, len(teams))
	for _, t := range teams {
		rows[t.ID] = &Row{
			TeamID:   t.ID,
			TeamName: t.Name,
			Rating:   t.Rating,
			IsBot:    t.IsBot,
			Division: DivisionFor(t.Rating).Name,
		}
	}

	for _, r := range results {
		home, away := rows[r.HomeTeamID], rows[r.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		home.GamesPlayed++
		away.GamesPlayed++
		home.GoalsFor += r.HomeScore
		home.GoalsAgainst += r.AwayScore
		away.GoalsFor += r.AwayScore
		away.GoalsAgainst += r.HomeScore
		switch {
		case r.HomeScore > r.AwayScore:
			home.Wins++
			away.Losses++
		case r.AwayScore > r.HomeScore:
			away.Wins++
			home.Losses++
		default:
			home.Ties++
			away.Ties++
		}
	}

	for _, t := range teams {
		row := rows[t.ID]
		row.Points = 2*row.Wins + row.Ties
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		out = append(out, *row)
	}
	return Rank(out)
}

// Rank orders rows by points, wins, goal differential and goals for, all
// descending, then team name ascending, and numbers them from 1.
// The slice is sorted in place and returned.
func Rank(rows []Row) []Row {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamName < b.TeamName
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// ShooterRow is a player's season shooting totals.
type ShooterRow struct {
	PlayerID    int64
	PlayerName  string
	Position    league.Position
	TeamID      int64
	TeamName    string
	GamesPlayed int
	Goals       int
	Shots       int
}

// Leader is one line of the goal-scoring leaderboard.
type Leader struct {
	PlayerID    int64   `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	TeamID      int64   `json:"team_id"`
	TeamName    string  `json:"team_name"`
	GamesPlayed int     `json:"games_played"`
	Goals       int     `json:"goals"`
	Shots       int     `json:"shots"`
	ShootingPct float64 `json:"shooting_pct"`
}

// Leaders returns up to limit goal scorers. Goalies and players without a
// shot are excluded. Order is goals, shots (both descending), then name.
func Leaders(rows []ShooterRow, limit int) []Leader {
	var out []Leader
	for _, r := range rows {
		if r.Position == league.Goalie || (r.Goals == 0 && r.Shots == 0) {
			continue
		}
		out = append(out, Leader{
			PlayerID:    r.PlayerID,
			PlayerName:  r.PlayerName,
			TeamID:      r.TeamID,
			TeamName:    r.TeamName,
			GamesPlayed: r.GamesPlayed,
			Goals:       r.Goals,
			Shots:       r.Shots,
			ShootingPct: shootingPct(r.Goals, r.Shots),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		if a.Shots != b.Shots {
			return a.Shots > b.Shots
		}
		return a.PlayerName < b.PlayerName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// shootingPct is goals/shots as a percentage rounded to one decimal.
func shootingPct(goals, shots int) float64 {
	if shots == 0 {
		return 0
	}
	return math.Round(float64(goals)/float64(shots)*1000) / 10
}
