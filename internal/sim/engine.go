// Package sim is the tick-based match engine.
//
// A match is 3 periods of 40 ticks, 30 simulated seconds per tick. All
// randomness comes from one rng.RNG seeded with the match seed and consumed
// in a fixed order, so identical inputs always yield an identical event
// stream and score.
package sim

import (
	"io"
	"log/slog"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/narrate"
	"github.com/roach88/rinkleague/internal/odds"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/rng"
)

// Event roll thresholds for ticks without a shot.
const (
	hitChance        = 0.12
	turnoverChance   = 0.25
	possessionChance = 0.18
	missChance       = 0.5
	dangerBumpChance = 0.08
)

var lanes = [...]string{"left", "slot", "right"}

// Salt offsets added to period*1000 + tick*10.
const (
	saltHomeShift = 1
	saltAwayShift = 2
	saltShot      = 3
	saltGoal      = 4
	saltSave      = 5
	saltMiss      = 6
	saltBlock     = 7
	saltHit       = 8
	saltTurnover  = 9
	saltFlow      = 10

	saltPeriodStart = 1
	saltPeriodEnd   = 999
)

// Input is everything a run depends on.
type Input struct {
	MatchID int64
	Seed    int64
	Home    league.Side
	Away    league.Side
}

// Result is the outcome of one run.
type Result struct {
	Events       []league.MatchEvent
	HomeScore    int
	AwayScore    int
	HomeGoalieID int64
	AwayGoalieID int64
}

// Engine runs simulations. It holds no per-match state and is safe for
// concurrent use.
type Engine struct {
	logger   *slog.Logger
	lateGame bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithLateGameAI toggles the bot late-game tactics adjustment. On by default.
func WithLateGameAI(enabled bool) Option {
	return func(e *Engine) {
		e.lateGame = enabled
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		lateGame: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate plays the match to completion. A side with an empty roster is a
// SIMULATION_FAULT; every other gap in a plan is filled by fallbacks.
func (e *Engine) Simulate(in Input) (*Result, error) {
	home, ok := newTeam(in.Home)
	if !ok {
		return nil, league.Fault(in.MatchID, "home roster is empty", nil)
	}
	away, ok := newTeam(in.Away)
	if !ok {
		return nil, league.Fault(in.MatchID, "away roster is empty", nil)
	}

	run := &run{
		in:     in,
		rng:    rng.New(in.Seed),
		text:   narrate.New(in.Seed),
		clock:  NewClock(),
		home:   home,
		away:   away,
		late:   e.lateGame,
		events: make([]league.MatchEvent, 0, 512),
	}
	run.play()

	e.logger.Debug("match simulated",
		"match_id", in.MatchID,
		"seed", in.Seed,
		"home_score", run.homeScore,
		"away_score", run.awayScore,
		"events", len(run.events),
	)

	return &Result{
		Events:       run.events,
		HomeScore:    run.homeScore,
		AwayScore:    run.awayScore,
		HomeGoalieID: home.goalie.ID,
		AwayGoalieID: away.goalie.ID,
	}, nil
}

// run is the mutable state of one simulation.
type run struct {
	in    Input
	rng   *rng.RNG
	text  *narrate.Renderer
	clock *Clock
	late  bool

	home, away           *team
	homeScore, awayScore int
	prevHome, prevAway   string

	events []league.MatchEvent
}

func (r *run) emit(period, tick, timeLeft int, typ league.EventType, p league.Payload) {
	r.events = append(r.events, league.MatchEvent{
		MatchID:  r.in.MatchID,
		Seq:      r.clock.Next(),
		Period:   period,
		Tick:     tick,
		TimeLeft: timeLeft,
		Type:     typ,
		Payload:  p,
	})
}

func (r *run) play() {
	for period := 1; period <= league.Periods; period++ {
		left := league.PeriodSeconds
		r.emit(period, 0, left, league.EventFaceoff, league.Payload{
			Text: r.text.Render(narrate.StartPeriod, period*1000+saltPeriodStart, narrate.Vars{
				"time":   narrate.Clock(left),
				"period": period,
			}),
			HomeGoalieID: r.home.goalie.ID,
			AwayGoalieID: r.away.goalie.ID,
		})

		for tick := 0; tick < league.TicksPerPeriod; tick++ {
			r.tick(period, tick)
		}

		r.emit(period, league.TicksPerPeriod-1, 0, league.EventHorn, league.Payload{
			Text: r.text.Render(narrate.EndPeriod, period*1000+saltPeriodEnd, narrate.Vars{
				"time":   narrate.Clock(0),
				"period": period,
				"home":   r.homeScore,
				"away":   r.awayScore,
			}),
			HomeScore: league.Score(r.homeScore),
			AwayScore: league.Score(r.awayScore),
		})
	}
}

// effectivePlan applies the late-game adjustment to bot sides.
func (r *run) effectivePlan(t *team, goalDiff, period, left int) league.Plan {
	if !r.late || !t.side.Team.IsBot {
		return t.side.Plan
	}
	return plan.AdjustForGameState(t.side.Plan, plan.GameState{Period: period, TimeLeft: left, GoalDiff: goalDiff})
}

type activeLine struct {
	key     string
	players []league.Player
}

// lineFor rotates through the plan's lines in key order every ShiftTicks.
func lineFor(p league.Plan, t *team, tick int) activeLine {
	keys := p.LineKeys()
	if len(keys) == 0 {
		return activeLine{key: "L1"}
	}
	key := keys[(tick/league.ShiftTicks)%len(keys)]
	return activeLine{key: key, players: t.onIce(p.Lines[key].Players())}
}

func ids(players []league.Player) []int64 {
	if len(players) == 0 {
		return nil
	}
	out := make([]int64, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func (r *run) tick(period, tick int) {
	left := league.TimeLeftAt(tick)
	salt := period*1000 + tick*10
	clock := narrate.Clock(left)

	homePlan := r.effectivePlan(r.home, r.homeScore-r.awayScore, period, left)
	awayPlan := r.effectivePlan(r.away, r.awayScore-r.homeScore, period, left)

	homeLine := lineFor(homePlan, r.home, tick)
	awayLine := lineFor(awayPlan, r.away, tick)

	if homeLine.key != r.prevHome {
		r.shift(period, tick, left, salt+saltHomeShift, r.home, homeLine)
		r.prevHome = homeLine.key
	}
	if awayLine.key != r.prevAway {
		r.shift(period, tick, left, salt+saltAwayShift, r.away, awayLine)
		r.prevAway = awayLine.key
	}

	homeBias := odds.AttackBias(r.home.side.Team.Rating, homePlan.Tactics.Aggression, homePlan.Tactics.Risk)
	awayBias := odds.AttackBias(r.away.side.Team.Rating, awayPlan.Tactics.Aggression, awayPlan.Tactics.Risk)

	homeDraw := r.rng.Float()
	awayDraw := r.rng.Float()
	homePush := homeDraw+homeBias > awayDraw+awayBias

	att, def := r.home, r.away
	attPlan, attLine, defLine, attBias := homePlan, homeLine, awayLine, homeBias
	if !homePush {
		att, def = r.away, r.home
		attPlan, attLine, defLine, attBias = awayPlan, awayLine, homeLine, awayBias
	}
	attTeam := att.side.Team

	if r.rng.Float() < odds.ShotChance(attPlan.Tactics.Aggression, attPlan.Tactics.ShootBias) {
		r.shot(period, tick, left, salt, homePush, att, def, attPlan.Tactics, attLine, defLine, attBias)
		return
	}

	r2 := r.rng.Float()
	switch {
	case r2 < hitChance:
		hitter := pickGritty(r.rng, attLine.players, att)
		victim := pickAnySkater(r.rng, defLine.players, def)
		r.emit(period, tick, left, league.EventHit, league.Payload{
			Text: r.text.Render(narrate.Hit, salt+saltHit, narrate.Vars{
				"time": clock, "hitter": hitter.Name, "victim": victim.Name,
			}),
			HitterID: hitter.ID,
			VictimID: victim.ID,
		})
	case r2 < turnoverChance:
		victim := pickAnySkater(r.rng, defLine.players, def)
		r.emit(period, tick, left, league.EventTurnover, league.Payload{
			Text: r.text.Render(narrate.Turnover, salt+saltTurnover, narrate.Vars{
				"time": clock, "team": attTeam.Name, "victim": victim.Name,
			}),
			TeamID:   attTeam.ID,
			VictimID: victim.ID,
		})
	case r.rng.Float() < possessionChance:
		r.emit(period, tick, left, league.EventPossession, league.Payload{
			Text: r.text.Render(narrate.Flow, salt+saltFlow, narrate.Vars{
				"time": clock, "team": attTeam.Name,
			}),
			TeamID: attTeam.ID,
		})
	}
}

func (r *run) shift(period, tick, left, salt int, t *team, line activeLine) {
	r.emit(period, tick, left, league.EventShift, league.Payload{
		Text: r.text.Render(narrate.Shift, salt, narrate.Vars{
			"time": narrate.Clock(left), "team": t.side.Team.Name, "line": line.key,
		}),
		TeamID:  t.side.Team.ID,
		Line:    line.key,
		Players: ids(line.players),
	})
}

// danger draws a 1-5 tier: 1 + Int(0,3), +1 aggression>60, +1 risk>60,
// -1 aggression<40, +1 with 8% chance.
func (r *run) danger(t league.Tactics) int {
	d := 1 + r.rng.Int(0, 3)
	if t.Aggression > 60 {
		d++
	}
	if t.Risk > 60 {
		d++
	}
	if t.Aggression < 40 {
		d--
	}
	if r.rng.Float() < dangerBumpChance {
		d++
	}
	return odds.ClampInt(d, 1, 5)
}

func (r *run) shot(period, tick, left, salt int, homePush bool, att, def *team,
	tactics league.Tactics, attLine, defLine activeLine, bias float64) {
	clock := narrate.Clock(left)
	attTeam := att.side.Team

	lane := lanes[r.rng.Int(0, len(lanes)-1)]
	danger := r.danger(tactics)
	shooter := pickShooter(r.rng, attLine.players, att)
	goalie := def.goalie

	goalProb := odds.GoalProbability(danger, shooter.Shot, goalie.GoalieSkill, bias)
	saveProb := odds.SaveProbability(goalProb)
	x := r.rng.Float()

	shotTpl := narrate.ShotLow
	if danger >= 4 {
		shotTpl = narrate.ShotHigh
	}
	r.emit(period, tick, left, league.EventShot, league.Payload{
		Text: r.text.Render(shotTpl, salt+saltShot, narrate.Vars{
			"time": clock, "team": attTeam.Name, "shooter": shooter.Name, "lane": lane,
		}),
		TeamID:    attTeam.ID,
		ShooterID: shooter.ID,
		GoalieID:  goalie.ID,
		Lane:      lane,
		Danger:    danger,
	})

	switch {
	case x < goalProb:
		if homePush {
			r.homeScore++
		} else {
			r.awayScore++
		}
		assists := pickAssists(r.rng, attLine.players, att, shooter.ID)
		r.emit(period, tick, left, league.EventGoal, league.Payload{
			Text: r.text.Render(narrate.Goal, salt+saltGoal, narrate.Vars{
				"time": clock, "team": attTeam.Name, "shooter": shooter.Name, "lane": lane,
				"home": r.homeScore, "away": r.awayScore,
			}),
			TeamID:    attTeam.ID,
			ShooterID: shooter.ID,
			AssistIDs: assists,
			Lane:      lane,
			HomeScore: league.Score(r.homeScore),
			AwayScore: league.Score(r.awayScore),
		})
	case x < goalProb+saveProb:
		r.emit(period, tick, left, league.EventSave, league.Payload{
			Text: r.text.Render(narrate.Save, salt+saltSave, narrate.Vars{
				"time": clock, "goalie": goalie.Name,
			}),
			GoalieID: goalie.ID,
		})
	case r.rng.Float() < missChance:
		r.emit(period, tick, left, league.EventMiss, league.Payload{
			Text: r.text.Render(narrate.Miss, salt+saltMiss, narrate.Vars{
				"time": clock, "team": attTeam.Name, "shooter": shooter.Name,
			}),
			TeamID:    attTeam.ID,
			ShooterID: shooter.ID,
		})
	default:
		blocker := pickDefender(r.rng, defLine.players, def)
		r.emit(period, tick, left, league.EventBlock, league.Payload{
			Text: r.text.Render(narrate.Block, salt+saltBlock, narrate.Vars{
				"time": clock, "blocker": blocker.Name,
			}),
			BlockerID: blocker.ID,
		})
	}
}
