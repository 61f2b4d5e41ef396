// Package roster generates basic rosters for bot teams and new clubs.
//
// Roster randomness is cosmetic and never feeds a match seed, so it draws
// from its own math/rand/v2 source rather than the simulation RNG.
package roster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/odds"
)

// Roster shape.
const (
	Forwards = 12
	Defense  = 6
	Goalies  = 2
)

// Bot rating bounds and spread around the requested rating.
const (
	MinBotRating = 700
	MaxBotRating = 1300
	ratingSpread = 50
)

var surnames = []string{
	"Carter", "Novak", "Grayson", "Miller", "Reed", "Benson", "Hayes", "Stone", "Cruz", "Keller",
	"Fox", "Lane", "Hart", "Wells", "Parker", "Quinn", "Sloane", "Ryder", "Shaw", "Vale",
}

var forwardCycle = []league.Position{league.Center, league.LeftWing, league.RightWing}

// NewSource returns a cosmetic source seeded from two words.
func NewSource(a, b uint64) *rand.Rand {
	return rand.New(rand.NewPCG(a, b))
}

// BaseAttribute centers roster attributes on a team rating.
//
//	round((rating-800)/10) + 45
func BaseAttribute(rating int) int {
	return int(math.Round(float64(rating-800)/10)) + 45
}

// BotTeam draws a bot club near target. The caller stores it.
func BotTeam(target int, r *rand.Rand) league.Team {
	rating := odds.ClampInt(target+spread(r, ratingSpread), MinBotRating, MaxBotRating)
	return league.Team{
		Name:          fmt.Sprintf("Bot %d", rating),
		Rating:        rating,
		IsBot:         true,
		BotDifficulty: 3 + r.IntN(5),
		CoachStyle:    league.CoachStyles[r.IntN(len(league.CoachStyles))],
	}
}

// Generate builds a 12F/6D/2G roster for a team of the given rating.
// Player ids are left zero for the store to assign.
func Generate(teamID int64, rating int, r *rand.Rand) []league.Player {
	base := BaseAttribute(rating)
	attr := func() int { return odds.ClampInt(base+spread(r, 10), 10, 99) }

	out := make([]league.Player, 0, Forwards+Defense+Goalies)
	n := 0
	name := func(tag string, i int) string {
		s := surnames[n%len(surnames)]
		n++
		return fmt.Sprintf("%s %s%d", s, tag, i)
	}

	for i := 1; i <= Forwards; i++ {
		out = append(out, league.Player{
			TeamID:      teamID,
			Name:        name("F", i),
			Position:    forwardCycle[(i-1)%len(forwardCycle)],
			Shot:        attr(),
			Pass:        attr(),
			Speed:       attr(),
			Defense:     attr(),
			Grit:        attr(),
			GoalieSkill: 10,
		})
	}
	for i := 1; i <= Defense; i++ {
		out = append(out, league.Player{
			TeamID:      teamID,
			Name:        name("D", i),
			Position:    league.Defense,
			Shot:        attr(),
			Pass:        attr(),
			Speed:       attr(),
			Defense:     attr(),
			Grit:        attr(),
			GoalieSkill: 10,
		})
	}
	for i := 1; i <= Goalies; i++ {
		out = append(out, league.Player{
			TeamID:      teamID,
			Name:        name("G", i),
			Position:    league.Goalie,
			Shot:        10,
			Pass:        10,
			Speed:       attr(),
			Defense:     attr(),
			Grit:        attr(),
			GoalieSkill: odds.ClampInt(base+r.IntN(16), 10, 99),
		})
	}
	return out
}

// spread returns a uniform integer in [-n, n].
func spread(r *rand.Rand, n int) int {
	return r.IntN(2*n+1) - n
}
