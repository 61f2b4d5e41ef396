// Package playoff simulates a single-elimination bracket from seeded
// standings.
package playoff

import (
	"fmt"
	"math/bits"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/odds"
	"github.com/roach88/rinkleague/internal/rng"
	"github.com/roach88/rinkleague/internal/season"
)

// ByePolicy decides what happens when the field is not a power of two.
type ByePolicy string

const (
	// ByeReject refuses any field that is not a power of two.
	ByeReject ByePolicy = "reject"
	// ByeTopSeeds pads the field to the next power of two; the best seeds
	// advance through round one without playing.
	ByeTopSeeds ByePolicy = "top-seeds"
)

// ParseByePolicy parses a policy name.
func ParseByePolicy(s string) (ByePolicy, error) {
	switch ByePolicy(s) {
	case ByeReject, ByeTopSeeds:
		return ByePolicy(s), nil
	case "":
		return ByeReject, nil
	}
	return "", league.Invalid("unknown bye policy %q", s)
}

// Entry is a qualified team. Seed 1 is the best.
type Entry struct {
	Seed        int    `json:"seed"`
	TeamID      int64  `json:"team_id"`
	TeamName    string `json:"team_name"`
	Rating      int    `json:"rating"`
	Division    string `json:"division"`
	DivisionKey string `json:"division_key"`
}

// Matchup is one game. Away is nil for a bye.
type Matchup struct {
	Home   Entry  `json:"home"`
	Away   *Entry `json:"away"`
	Winner Entry  `json:"winner"`
}

// Bye reports whether the home side advanced without playing.
func (m Matchup) Bye() bool { return m.Away == nil }

// Round is every matchup at one stage of the bracket.
type Round struct {
	Number   int       `json:"round"`
	Matchups []Matchup `json:"matchups"`
}

// Reward is granted to the champion.
type Reward struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}

// Bracket is a completed playoff.
type Bracket struct {
	SeasonID int64     `json:"season_id"`
	Teams    int       `json:"playoff_teams"`
	Seed     int64     `json:"seed"`
	Rounds   []Round   `json:"rounds"`
	Champion Entry     `json:"champion"`
	Rewards  []Reward  `json:"rewards"`
	Policy   ByePolicy `json:"bye_policy"`
}

type config struct {
	policy   ByePolicy
	seasonID int64
}

// Option configures Run.
type Option func(*config)

// WithByePolicy sets the policy for fields that are not a power of two.
// The default is ByeReject.
func WithByePolicy(p ByePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithSeasonID names the season in the champion's trophy.
func WithSeasonID(id int64) Option {
	return func(c *config) {
		c.seasonID = id
	}
}

// FromStandings seeds the top n rows. Rows must already be ranked.
func FromStandings(rows []season.Row, n int) []Entry {
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]Entry, 0, n)
	for i, r := range rows[:n] {
		d := season.DivisionFor(r.Rating)
		out = append(out, Entry{
			Seed:        i + 1,
			TeamID:      r.TeamID,
			TeamName:    r.TeamName,
			Rating:      r.Rating,
			Division:    d.Name,
			DivisionKey: d.Key,
		})
	}
	return out
}

// Run plays the bracket. Each round pairs the best remaining seed with the
// worst; the home side wins when a draw from the seeded RNG falls below
// odds.WinProbability. An empty field is always rejected.
func Run(entries []Entry, seed int64, opts ...Option) (*Bracket, error) {
	cfg := config{policy: ByeReject, seasonID: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(entries)
	if n == 0 {
		return nil, league.Invalid("playoff field is empty")
	}
	size := n
	if n&(n-1) != 0 {
		switch cfg.policy {
		case ByeTopSeeds:
			size = 1 << bits.Len(uint(n))
		case ByeReject:
			return nil, league.Invalid("playoff field of %d is not a power of two", n)
		default:
			return nil, league.Invalid("unknown bye policy %q", cfg.policy)
		}
	}

	// Empty slots sit at the bottom of the field, so the top seeds draw them.
	current := make([]*Entry, size)
	for i := range entries {
		e := entries[i]
		if e.Seed == 0 {
			e.Seed = i + 1
		}
		current[i] = &e
	}

	r := rng.New(seed)
	b := &Bracket{SeasonID: cfg.seasonID, Teams: n, Seed: seed, Policy: cfg.policy}
	for number := 1; len(current) > 1; number++ {
		round := Round{Number: number}
		next := make([]*Entry, 0, len(current)/2)
		for i := 0; i < len(current)/2; i++ {
			home, away := current[i], current[len(current)-1-i]
			m := Matchup{Home: *home, Away: away, Winner: *home}
			if away != nil && r.Float() >= odds.WinProbability(home.Rating, away.Rating) {
				m.Winner = *away
			}
			round.Matchups = append(round.Matchups, m)
			w := m.Winner
			next = append(next, &w)
		}
		b.Rounds = append(b.Rounds, round)
		current = next
	}

	b.Champion = *current[0]
	b.Rewards = []Reward{
		{Type: "trophy", Name: fmt.Sprintf("Season %d Champion", cfg.seasonID), TeamID: b.Champion.TeamID, TeamName: b.Champion.TeamName},
		{Type: "badge", Name: "Playoff Finalist", TeamID: b.Champion.TeamID, TeamName: b.Champion.TeamName},
	}
	return b, nil
}
