// Package plan builds lineup and tactics plans for teams that did not submit
// one, and decodes the plans that human coaches do submit.
package plan

import (
	"sort"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/odds"
)

// Line slot layout: each line takes three forwards and two defenders starting
// at these offsets into the ranked lists. L4 re-uses the top pair.
var lineStarts = []struct {
	key    string
	fStart int
	dStart int
}{
	{"L1", 0, 0},
	{"L2", 3, 2},
	{"L3", 6, 4},
	{"L4", 9, 0},
}

// weights scales each attribute in a composite ranking score.
type weights struct {
	shot, pass, speed, defense, grit int
}

func (w weights) score(p league.Player) int {
	return w.shot*p.Shot + w.pass*p.Pass + w.speed*p.Speed + w.defense*p.Defense + w.grit*p.Grit
}

var (
	defaultForward = weights{shot: 1, pass: 1, speed: 1}
	defaultDefense = weights{pass: 1, defense: 1, grit: 1}
)

var styleWeights = map[league.CoachStyle]struct{ forward, defense weights }{
	league.StyleBalanced:  {defaultForward, defaultDefense},
	league.StyleSniper:    {weights{shot: 2, pass: 1, speed: 1}, weights{shot: 1, pass: 1, defense: 1, grit: 1}},
	league.StyleGrit:      {weights{shot: 1, pass: 1, speed: 1, grit: 2}, weights{pass: 1, defense: 1, grit: 2}},
	league.StyleDefensive: {weights{shot: 1, pass: 1, speed: 1, defense: 1}, weights{pass: 1, defense: 2, grit: 1}},
}

// BuildDefault lines up a roster by the standard rankings with the default
// tactics. Slots the roster cannot fill hold id 0.
func BuildDefault(roster []league.Player) league.Plan {
	return build(roster, defaultForward, defaultDefense, league.DefaultTactics)
}

func build(roster []league.Player, fw, dw weights, tactics league.Tactics) league.Plan {
	var forwards, defense, goalies []league.Player
	for _, p := range roster {
		switch p.Position {
		case league.Defense:
			defense = append(defense, p)
		case league.Goalie:
			goalies = append(goalies, p)
		default:
			forwards = append(forwards, p)
		}
	}

	rank(forwards, fw.score)
	rank(defense, dw.score)
	rank(goalies, func(p league.Player) int { return p.GoalieSkill })

	lines := make(map[string]league.Line, len(lineStarts))
	for _, ls := range lineStarts {
		lines[ls.key] = league.Line{
			Forwards: slotIDs(forwards, ls.fStart, 3),
			Defense:  slotIDs(defense, ls.dStart, 2),
		}
	}

	var goalie int64
	if len(goalies) > 0 {
		goalie = goalies[0].ID
	}
	return league.Plan{Lines: lines, GoalieID: goalie, Tactics: tactics}
}

// rank sorts by score descending, then id ascending.
func rank(players []league.Player, score func(league.Player) int) {
	sort.Slice(players, func(i, j int) bool {
		si, sj := score(players[i]), score(players[j])
		if si != sj {
			return si > sj
		}
		return players[i].ID < players[j].ID
	})
}

func slotIDs(ranked []league.Player, start, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		if start+i < len(ranked) {
			ids[i] = ranked[start+i].ID
		}
	}
	return ids
}

// BuildAI lines up a bot roster using its coach style and derives tactics
// from difficulty and rating.
func BuildAI(team league.Team, roster []league.Player) league.Plan {
	w, ok := styleWeights[team.CoachStyle]
	if !ok {
		w = styleWeights[league.StyleBalanced]
	}
	return build(roster, w.forward, w.defense, AITactics(team))
}

// AITactics derives bot tactics.
//
//	aggression = 45 + 3*difficulty + (rating-1000)/50   clamped [30,80]
//	risk       = 40 + 2*difficulty + (rating-1000)/100  clamped [25,75]
//
// then shifts them by coach style, each within a style band.
func AITactics(team league.Team) league.Tactics {
	diff := team.BotDifficulty
	if diff == 0 {
		diff = 5
	}
	diff = odds.ClampInt(diff, 1, 9)
	edge := team.Rating - 1000

	t := league.Tactics{
		Aggression: odds.ClampInt(45+3*diff+edge/50, 30, 80),
		Forecheck:  50,
		ShootBias:  58,
		Risk:       odds.ClampInt(40+2*diff+edge/100, 25, 75),
	}

	switch team.CoachStyle {
	case league.StyleSniper:
		t.ShootBias = odds.ClampInt(t.ShootBias+12, 60, 85)
		t.Risk = odds.ClampInt(t.Risk+5, 35, 80)
	case league.StyleGrit:
		t.Forecheck = odds.ClampInt(t.Forecheck+15, 55, 85)
		t.Aggression = odds.ClampInt(t.Aggression+8, 45, 85)
	case league.StyleDefensive:
		t.ShootBias = odds.ClampInt(t.ShootBias-13, 40, 55)
		t.Risk = odds.ClampInt(t.Risk-10, 20, 55)
		t.Aggression = odds.ClampInt(t.Aggression-10, 30, 60)
		t.Forecheck = odds.ClampInt(t.Forecheck-10, 30, 50)
	}
	return t
}

// GameState is the scoreboard as one side sees it.
type GameState struct {
	Period   int
	TimeLeft int
	GoalDiff int // own goals minus opponent goals
}

// Late-game window and limits.
const (
	LateGameSeconds = 360
	maxDeficit      = 3
	tacticsCeiling  = 95
	tacticsFloor    = 20
)

// Late reports whether s falls inside the late-game window.
func (s GameState) Late() bool {
	return s.Period >= league.Periods && s.TimeLeft <= LateGameSeconds
}

// AdjustForGameState returns a copy of p with tactics pushed up when trailing
// late in the third period and eased off when leading. p is never modified.
func AdjustForGameState(p league.Plan, s GameState) league.Plan {
	out := p.Clone()
	if !s.Late() || s.GoalDiff == 0 {
		return out
	}

	t := &out.Tactics
	if s.GoalDiff < 0 {
		d := min(-s.GoalDiff, maxDeficit)
		t.Aggression = min(t.Aggression+6*d, tacticsCeiling)
		t.Risk = min(t.Risk+8*d, tacticsCeiling)
		t.ShootBias = min(t.ShootBias+5*d, tacticsCeiling)
		return out
	}

	d := min(s.GoalDiff, maxDeficit)
	t.Aggression = max(t.Aggression-4*d, tacticsFloor)
	t.Risk = max(t.Risk-6*d, tacticsFloor)
	t.ShootBias = max(t.ShootBias-3*d, tacticsFloor)
	return out
}
