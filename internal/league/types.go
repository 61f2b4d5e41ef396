// Package league defines the domain types shared by the simulator, the match
// lifecycle and the stores: teams, players, plans, matches and events.
//
// The package has no dependencies on storage or randomness. Every other
// package speaks in these types.
package league

import (
	"sort"
	"time"
)

// Position is a player's roster position.
type Position string

const (
	Center    Position = "C"
	LeftWing  Position = "LW"
	RightWing Position = "RW"
	Defense   Position = "D"
	Goalie    Position = "G"
)

// IsForward reports whether p plays up front.
func (p Position) IsForward() bool {
	return p == Center || p == LeftWing || p == RightWing
}

// CoachStyle shapes how a bot team lines up and plays.
type CoachStyle string

const (
	StyleBalanced  CoachStyle = "BALANCED"
	StyleSniper    CoachStyle = "SNIPER"
	StyleGrit      CoachStyle = "GRIT"
	StyleDefensive CoachStyle = "DEFENSIVE"
)

// CoachStyles lists every style in a fixed order.
var CoachStyles = []CoachStyle{StyleBalanced, StyleSniper, StyleGrit, StyleDefensive}

// ParseCoachStyle returns the style for s, defaulting to BALANCED.
func ParseCoachStyle(s string) CoachStyle {
	for _, c := range CoachStyles {
		if string(c) == s {
			return c
		}
	}
	return StyleBalanced
}

// Team is a league club. Rating is an Elo-like skill number.
type Team struct {
	ID            int64
	Name          string
	Rating        int
	IsBot         bool
	BotDifficulty int
	CoachStyle    CoachStyle
}

// Player belongs to exactly one team.
type Player struct {
	ID          int64
	TeamID      int64
	Name        string
	Position    Position
	Shot        int
	Pass        int
	Speed       int
	Defense     int
	Grit        int
	GoalieSkill int
	Experience  int
}

// Tactics are the four team-wide sliders, each roughly in [0,100].
type Tactics struct {
	Aggression int `json:"aggression" yaml:"aggression"`
	Forecheck  int `json:"forecheck" yaml:"forecheck"`
	ShootBias  int `json:"shoot_bias" yaml:"shoot_bias"`
	Risk       int `json:"risk" yaml:"risk"`
}

// DefaultTactics is used whenever a side has no tactics of its own.
var DefaultTactics = Tactics{Aggression: 55, Forecheck: 50, ShootBias: 60, Risk: 45}

// Line is one line group. Zero ids are placeholders for short rosters.
type Line struct {
	Forwards []int64 `json:"F" yaml:"F"`
	Defense  []int64 `json:"D" yaml:"D"`
}

// Players returns the forwards followed by the defenders.
func (l Line) Players() []int64 {
	out := make([]int64, 0, len(l.Forwards)+len(l.Defense))
	out = append(out, l.Forwards...)
	return append(out, l.Defense...)
}

// Plan is a per-team, per-match lineup and tactics submission.
type Plan struct {
	Lines    map[string]Line `json:"lines" yaml:"lines"`
	GoalieID int64           `json:"goalie_id" yaml:"goalie_id"`
	Tactics  Tactics         `json:"tactics" yaml:"tactics"`
}

// LineKeys returns the plan's line keys in sorted order.
func (p Plan) LineKeys() []string {
	keys := make([]string, 0, len(p.Lines))
	for k := range p.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of p.
func (p Plan) Clone() Plan {
	out := Plan{GoalieID: p.GoalieID, Tactics: p.Tactics}
	if p.Lines != nil {
		out.Lines = make(map[string]Line, len(p.Lines))
		for k, l := range p.Lines {
			out.Lines[k] = Line{
				Forwards: append([]int64(nil), l.Forwards...),
				Defense:  append([]int64(nil), l.Defense...),
			}
		}
	}
	return out
}

// PlanSource records where a stored plan came from.
type PlanSource string

const (
	SourceHuman   PlanSource = "human"
	SourceDefault PlanSource = "default"
	SourceAI      PlanSource = "ai"
)

// Submission is a stored plan for one side of a match.
type Submission struct {
	MatchID   int64
	TeamID    int64
	Plan      Plan
	Source    PlanSource
	CreatedAt time.Time
}

// Match is one game between two teams.
type Match struct {
	ID             int64
	SeasonID       int64
	HomeTeamID     int64
	AwayTeamID     int64 // 0 while waiting for an opponent
	Seed           int64
	Status         Status
	SubmitDeadline time.Time
	HomeScore      int
	AwayScore      int
	RunToken       string
	CreatedAt      time.Time
	SimulatedAt    time.Time
}

// HasOpponent reports whether the away slot is filled.
func (m *Match) HasOpponent() bool {
	return m.AwayTeamID != 0
}

// Involves reports whether team plays in m.
func (m *Match) Involves(teamID int64) bool {
	return teamID != 0 && (m.HomeTeamID == teamID || m.AwayTeamID == teamID)
}

// Side is one team as it takes the ice: club, roster and resolved plan.
type Side struct {
	Team   Team
	Roster []Player
	Plan   Plan
}
