package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rinkleague/internal/league"
)

// Scenario is one reproducible match: two teams, their rosters, how each
// side's plan is produced, a seed, and what the result must satisfy.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	Seed int64 `yaml:"seed"`

	Home SideSpec `yaml:"home"`
	Away SideSpec `yaml:"away"`

	// Assertions validate the finished run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SideSpec describes one team.
type SideSpec struct {
	Team    TeamSpec     `yaml:"team"`
	Players []PlayerSpec `yaml:"players"`

	// Plan is "default", "ai" or "inline". Inline plans are read from
	// PlanDoc and go through the same decoder as human submissions.
	Plan    string    `yaml:"plan"`
	PlanDoc yaml.Node `yaml:"plan_doc,omitempty"`
}

// TeamSpec mirrors league.Team.
type TeamSpec struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	Rating     int    `yaml:"rating"`
	Bot        bool   `yaml:"bot,omitempty"`
	Difficulty int    `yaml:"difficulty,omitempty"`
	Style      string `yaml:"style,omitempty"`
}

// PlayerSpec mirrors league.Player.
type PlayerSpec struct {
	ID      int64  `yaml:"id"`
	Name    string `yaml:"name"`
	Pos     string `yaml:"pos"`
	Shot    int    `yaml:"shot"`
	Pass    int    `yaml:"pass"`
	Speed   int    `yaml:"speed"`
	Defense int    `yaml:"defense"`
	Grit    int    `yaml:"grit"`
	Goalie  int    `yaml:"goalie"`
}

// Assertion checks one property of a run.
type Assertion struct {
	// Type is one of event_count, final_score, event_order, deterministic.
	Type string `yaml:"type"`

	// Event is the event type for event_count.
	Event string `yaml:"event,omitempty"`

	// Count and Min bound event_count. Count is exact when set.
	Count *int `yaml:"count,omitempty"`
	Min   int  `yaml:"min,omitempty"`

	// Home and Away are the expected final_score.
	Home int `yaml:"home,omitempty"`
	Away int `yaml:"away,omitempty"`

	// Events lists event types that must appear in order (event_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion types.
const (
	AssertEventCount    = "event_count"
	AssertFinalScore    = "final_score"
	AssertEventOrder    = "event_order"
	AssertDeterministic = "deterministic"
)

// Plan sources.
const (
	PlanDefault = "default"
	PlanAI      = "ai"
	PlanInline  = "inline"
)

// LoadScenario reads a scenario file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Home.Team.ID == 0 || s.Away.Team.ID == 0 {
		return fmt.Errorf("both teams need an id")
	}
	if s.Home.Team.ID == s.Away.Team.ID {
		return fmt.Errorf("home and away share team id %d", s.Home.Team.ID)
	}
	for _, side := range []struct {
		name string
		spec *SideSpec
	}{{"home", &s.Home}, {"away", &s.Away}} {
		switch side.spec.Plan {
		case "":
			side.spec.Plan = PlanDefault
		case PlanDefault, PlanAI:
		case PlanInline:
			if side.spec.PlanDoc.IsZero() {
				return fmt.Errorf("%s: inline plan needs plan_doc", side.name)
			}
		default:
			return fmt.Errorf("%s: unknown plan %q", side.name, side.spec.Plan)
		}
		for i, p := range side.spec.Players {
			if p.ID == 0 {
				return fmt.Errorf("%s.players[%d]: id is required", side.name, i)
			}
			switch league.Position(p.Pos) {
			case league.Center, league.LeftWing, league.RightWing, league.Defense, league.Goalie:
			default:
				return fmt.Errorf("%s.players[%d]: unknown position %q", side.name, i, p.Pos)
			}
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertFinalScore, AssertDeterministic:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// side converts a spec into a league side without a plan.
func (s SideSpec) side() league.Side {
	out := league.Side{
		Team: league.Team{
			ID:            s.Team.ID,
			Name:          s.Team.Name,
			Rating:        s.Team.Rating,
			IsBot:         s.Team.Bot,
			BotDifficulty: s.Team.Difficulty,
			CoachStyle:    league.ParseCoachStyle(s.Team.Style),
		},
		Roster: make([]league.Player, len(s.Players)),
	}
	for i, p := range s.Players {
		out.Roster[i] = league.Player{
			ID:          p.ID,
			TeamID:      s.Team.ID,
			Name:        p.Name,
			Position:    league.Position(p.Pos),
			Shot:        p.Shot,
			Pass:        p.Pass,
			Speed:       p.Speed,
			Defense:     p.Defense,
			Grit:        p.Grit,
			GoalieSkill: p.Goalie,
		}
	}
	return out
}
