// Package harness replays match scenarios through the simulation engine and
// compares their play-by-play against golden traces.
//
// A scenario pins everything a run depends on: rosters, plans and the seed.
// The harness uses the same plan builders and decoder as the league service,
// so a golden trace is a regression fixture for the engine, the narration
// and the plan pipeline together.
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/narrate"
	"github.com/roach88/rinkleague/internal/plan"
	"github.com/roach88/rinkleague/internal/sim"
)

// Result is the outcome of one scenario.
type Result struct {
	Scenario string
	Match    *sim.Result
	Digest   string
	Pass     bool
	Errors   []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run simulates the scenario and evaluates its assertions.
// Errors are returned only when the scenario cannot run at all; failed
// assertions are reported on the Result.
func Run(s *Scenario) (*Result, error) {
	in, err := Input(s)
	if err != nil {
		return nil, err
	}

	eng := sim.New(sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	match, err := eng.Simulate(in)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", s.Name, err)
	}
	digest, err := canon.EventDigest(match.Events)
	if err != nil {
		return nil, err
	}

	res := &Result{Scenario: s.Name, Match: match, Digest: digest, Pass: true}
	for _, a := range s.Assertions {
		evaluate(res, a, func() (string, error) {
			again, err := eng.Simulate(in)
			if err != nil {
				return "", err
			}
			return canon.EventDigest(again.Events)
		})
	}
	return res, nil
}

// Input resolves a scenario into engine input.
func Input(s *Scenario) (sim.Input, error) {
	home, err := resolveSide(s.Home)
	if err != nil {
		return sim.Input{}, fmt.Errorf("%s home: %w", s.Name, err)
	}
	away, err := resolveSide(s.Away)
	if err != nil {
		return sim.Input{}, fmt.Errorf("%s away: %w", s.Name, err)
	}
	return sim.Input{Seed: s.Seed, Home: home, Away: away}, nil
}

func resolveSide(spec SideSpec) (league.Side, error) {
	side := spec.side()
	switch spec.Plan {
	case PlanAI:
		side.Plan = plan.BuildAI(side.Team, side.Roster)
	case PlanInline:
		raw, err := yaml.Marshal(&spec.PlanDoc)
		if err != nil {
			return league.Side{}, fmt.Errorf("encode plan_doc: %w", err)
		}
		p, err := plan.Decode(raw)
		if err != nil {
			return league.Side{}, err
		}
		side.Plan = p
	default:
		side.Plan = plan.BuildDefault(side.Roster)
	}
	return side, nil
}

func evaluate(res *Result, a Assertion, rerun func() (string, error)) {
	events := res.Match.Events
	switch a.Type {
	case AssertEventCount:
		n := 0
		for _, ev := range events {
			if string(ev.Type) == a.Event {
				n++
			}
		}
		if a.Count != nil && n != *a.Count {
			res.addError("event_count %s: got %d, want %d", a.Event, n, *a.Count)
		}
		if n < a.Min {
			res.addError("event_count %s: got %d, want at least %d", a.Event, n, a.Min)
		}
	case AssertFinalScore:
		if res.Match.HomeScore != a.Home || res.Match.AwayScore != a.Away {
			res.addError("final_score: got %d-%d, want %d-%d",
				res.Match.HomeScore, res.Match.AwayScore, a.Home, a.Away)
		}
	case AssertEventOrder:
		next := 0
		for _, ev := range events {
			if next < len(a.Events) && string(ev.Type) == a.Events[next] {
				next++
			}
		}
		if next < len(a.Events) {
			res.addError("event_order: %s not found after %s", a.Events[next], strings.Join(a.Events[:next], ","))
		}
	case AssertDeterministic:
		digest, err := rerun()
		if err != nil {
			res.addError("deterministic: rerun failed: %v", err)
			return
		}
		if digest != res.Digest {
			res.addError("deterministic: digest %s != %s", digest, res.Digest)
		}
	}
}

// Trace renders a run as one line per event plus a final score line.
//
//	P1 T00 20:00 FACEOFF    20:00 - We are underway in period 1.
func Trace(name string, seed int64, m *sim.Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s seed=%d\n", name, seed)
	for _, ev := range m.Events {
		fmt.Fprintf(&b, "P%d T%02d %5s %-10s %s\n",
			ev.Period, ev.Tick, narrate.Clock(ev.TimeLeft), ev.Type, ev.Payload.Text)
	}
	fmt.Fprintf(&b, "FINAL %d-%d\n", m.HomeScore, m.AwayScore)
	return []byte(b.String())
}
