package plan

import (
	"regexp"

	"github.com/roach88/rinkleague/internal/league"
)

// Line shape limits shared with schema.cue.
const (
	maxForwards = 3
	maxDefense  = 2
)

var lineKey = regexp.MustCompile(`^L[1-9]$`)

// Validate checks a plan that did not come through Decode against the same
// limits the schema enforces: line keys L1..L9, at most three forwards and
// two defenders per line, non-negative ids, and sliders within [0,100].
// Violations are INVALID_REQUEST.
func Validate(p league.Plan) error {
	for _, k := range p.LineKeys() {
		if !lineKey.MatchString(k) {
			return league.Invalid("plan: line key %q is not L1..L9", k)
		}
		l := p.Lines[k]
		if len(l.Forwards) > maxForwards {
			return league.Invalid("plan: %s has %d forwards, at most %d allowed", k, len(l.Forwards), maxForwards)
		}
		if len(l.Defense) > maxDefense {
			return league.Invalid("plan: %s has %d defenders, at most %d allowed", k, len(l.Defense), maxDefense)
		}
		for _, id := range l.Players() {
			if id < 0 {
				return league.Invalid("plan: %s has negative player id %d", k, id)
			}
		}
	}
	if p.GoalieID < 0 {
		return league.Invalid("plan: negative goalie id %d", p.GoalieID)
	}

	sliders := []struct {
		name string
		v    int
	}{
		{"aggression", p.Tactics.Aggression},
		{"forecheck", p.Tactics.Forecheck},
		{"shoot_bias", p.Tactics.ShootBias},
		{"risk", p.Tactics.Risk},
	}
	for _, s := range sliders {
		if s.v < 0 || s.v > 100 {
			return league.Invalid("plan: tactics.%s %d is outside [0,100]", s.name, s.v)
		}
	}
	return nil
}
