// Package stats folds a match's event stream into per-player and per-team
// counters. It is pure aggregation: no randomness, no I/O.
package stats

import (
	"sort"

	"github.com/roach88/rinkleague/internal/league"
)

// TeamLine is one team's record for a single match.
type TeamLine struct {
	TeamID       int64 `json:"team_id"`
	GamesPlayed  int   `json:"games_played"`
	Wins         int   `json:"wins"`
	Losses       int   `json:"losses"`
	Ties         int   `json:"ties"`
	GoalsFor     int   `json:"goals_for"`
	GoalsAgainst int   `json:"goals_against"`
	ShotsFor     int   `json:"shots_for"`
	ShotsAgainst int   `json:"shots_against"`
	Points       int   `json:"points"`
}

// PlayerLine is one player's record for a single match.
type PlayerLine struct {
	PlayerID     int64 `json:"player_id"`
	TeamID       int64 `json:"team_id"`
	GamesPlayed  int   `json:"games_played"`
	Goals        int   `json:"goals"`
	Assists      int   `json:"assists"`
	Points       int   `json:"points"`
	Shots        int   `json:"shots"`
	Saves        int   `json:"saves"`
	ShotsAgainst int   `json:"shots_against"`
	Wins         int   `json:"wins"`
	Hits         int   `json:"hits"`
	Blocks       int   `json:"blocks"`
	IceSeconds   int   `json:"ice_seconds"`
}

// Experience is the XP a player earns from one match.
func Experience(p PlayerLine) int {
	return p.Goals*10 + p.Assists*6 + p.Shots + p.Hits + p.Blocks*2 + p.Saves
}

// Summary is the folded result of one match.
type Summary struct {
	Home    TeamLine
	Away    TeamLine
	Players []PlayerLine
}

// Team returns the line for teamID.
func (s Summary) Team(teamID int64) (TeamLine, bool) {
	switch teamID {
	case s.Home.TeamID:
		return s.Home, true
	case s.Away.TeamID:
		return s.Away, true
	}
	return TeamLine{}, false
}

// stint is the line a team currently has on the ice.
type stint struct {
	players []int64
	start   int
}

// Accumulator counts events for one match. Apply must see events in replay
// order. Ids that are not on either roster are ignored.
type Accumulator struct {
	homeID, awayID int64
	home, away     TeamLine
	players        map[int64]*PlayerLine
	stints         map[int64]*stint

	homeGoalie, awayGoalie int64
}

// New creates an Accumulator for a match between home and away. Every
// rostered player is credited with a game played.
func New(home, away league.Side) *Accumulator {
	a := &Accumulator{
		homeID:  home.Team.ID,
		awayID:  away.Team.ID,
		home:    TeamLine{TeamID: home.Team.ID, GamesPlayed: 1},
		away:    TeamLine{TeamID: away.Team.ID, GamesPlayed: 1},
		players: make(map[int64]*PlayerLine, len(home.Roster)+len(away.Roster)),
		stints:  make(map[int64]*stint, 2),
	}
	for _, side := range []league.Side{home, away} {
		for _, p := range side.Roster {
			a.players[p.ID] = &PlayerLine{PlayerID: p.ID, TeamID: side.Team.ID, GamesPlayed: 1}
		}
	}
	return a
}

func (a *Accumulator) player(id int64) *PlayerLine {
	if id == 0 {
		return nil
	}
	return a.players[id]
}

func (a *Accumulator) teams(attacking int64) (att, def *TeamLine) {
	if attacking == a.homeID {
		return &a.home, &a.away
	}
	return &a.away, &a.home
}

// closeStint credits every player of the team's open stint with ice time up
// to tick.
func (a *Accumulator) closeStint(teamID int64, tick int) {
	s, ok := a.stints[teamID]
	if !ok {
		return
	}
	secs := (tick - s.start) * league.SecondsPerTick
	for _, id := range s.players {
		if p := a.player(id); p != nil {
			p.IceSeconds += secs
		}
	}
}

// Apply folds one event.
func (a *Accumulator) Apply(ev league.MatchEvent) {
	pl := ev.Payload
	switch ev.Type {
	case league.EventFaceoff:
		a.homeGoalie, a.awayGoalie = pl.HomeGoalieID, pl.AwayGoalieID
	case league.EventShift:
		a.closeStint(pl.TeamID, ev.Tick)
		a.stints[pl.TeamID] = &stint{players: append([]int64(nil), pl.Players...), start: ev.Tick}
	case league.EventShot:
		att, def := a.teams(pl.TeamID)
		att.ShotsFor++
		def.ShotsAgainst++
		if p := a.player(pl.ShooterID); p != nil {
			p.Shots++
		}
		if g := a.player(pl.GoalieID); g != nil {
			g.ShotsAgainst++
		}
	case league.EventGoal:
		att, def := a.teams(pl.TeamID)
		att.GoalsFor++
		def.GoalsAgainst++
		if p := a.player(pl.ShooterID); p != nil {
			p.Goals++
		}
		for _, id := range pl.AssistIDs {
			if p := a.player(id); p != nil {
				p.Assists++
			}
		}
	case league.EventSave:
		if g := a.player(pl.GoalieID); g != nil {
			g.Saves++
		}
	case league.EventBlock:
		if p := a.player(pl.BlockerID); p != nil {
			p.Blocks++
		}
	case league.EventHit:
		if p := a.player(pl.HitterID); p != nil {
			p.Hits++
		}
	case league.EventHorn:
		// Lines stay on through the intermission; the clock restarts at 0.
		for id, s := range a.stints {
			a.closeStint(id, league.TicksPerPeriod)
			s.start = 0
		}
	}
}

// ApplyAll folds every event in order.
func (a *Accumulator) ApplyAll(events []league.MatchEvent) {
	for _, ev := range events {
		a.Apply(ev)
	}
}

// Summary returns the match record. Results, points and goalie wins are
// derived from the goals seen so far.
func (a *Accumulator) Summary() Summary {
	home, away := a.home, a.away
	var winningGoalie int64
	switch {
	case home.GoalsFor > away.GoalsFor:
		home.Wins, away.Losses = 1, 1
		winningGoalie = a.homeGoalie
	case away.GoalsFor > home.GoalsFor:
		away.Wins, home.Losses = 1, 1
		winningGoalie = a.awayGoalie
	default:
		home.Ties, away.Ties = 1, 1
	}
	home.Points = 2*home.Wins + home.Ties
	away.Points = 2*away.Wins + away.Ties

	players := make([]PlayerLine, 0, len(a.players))
	for _, p := range a.players {
		line := *p
		line.Points = line.Goals + line.Assists
		if winningGoalie != 0 && line.PlayerID == winningGoalie {
			line.Wins = 1
		}
		players = append(players, line)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })

	return Summary{Home: home, Away: away, Players: players}
}

// Fold is New + ApplyAll + Summary.
func Fold(home, away league.Side, events []league.MatchEvent) Summary {
	a := New(home, away)
	a.ApplyAll(events)
	return a.Summary()
}
