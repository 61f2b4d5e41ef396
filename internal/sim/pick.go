package sim

import (
	"sort"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/rng"
)

// Pool sizes for weighted picks.
const (
	shooterPool = 5
	gritPool    = 5
	assistPool  = 8
	maxAssists  = 2
)

// team is a side prepared for one run: roster indexed and sorted by id.
type team struct {
	side    league.Side
	byID    map[int64]league.Player
	roster  []league.Player // sorted by id
	skaters []league.Player // roster minus goalies, or the whole roster if it has none
	goalie  league.Player
}

func newTeam(s league.Side) (*team, bool) {
	if len(s.Roster) == 0 {
		return nil, false
	}
	t := &team{side: s, byID: make(map[int64]league.Player, len(s.Roster))}
	t.roster = append([]league.Player(nil), s.Roster...)
	sort.Slice(t.roster, func(i, j int) bool { return t.roster[i].ID < t.roster[j].ID })
	for _, p := range t.roster {
		t.byID[p.ID] = p
		if p.Position != league.Goalie {
			t.skaters = append(t.skaters, p)
		}
	}
	if len(t.skaters) == 0 {
		t.skaters = t.roster
	}
	t.goalie = t.resolveGoalie(s.Plan.GoalieID)
	return t, true
}

// resolveGoalie uses the named goalie if rostered, else the best goalie by
// skill, else the first player on the roster.
func (t *team) resolveGoalie(id int64) league.Player {
	if p, ok := t.byID[id]; ok && id != 0 {
		return p
	}
	var best *league.Player
	for i := range t.roster {
		p := &t.roster[i]
		if p.Position != league.Goalie {
			continue
		}
		if best == nil || p.GoalieSkill > best.GoalieSkill {
			best = p
		}
	}
	if best != nil {
		return *best
	}
	return t.roster[0]
}

// onIce resolves line ids to rostered players. Zero, unknown and repeated
// ids are dropped.
func (t *team) onIce(ids []int64) []league.Player {
	out := make([]league.Player, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		p, ok := t.byID[id]
		if !ok || id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out
}

func skatersOf(players []league.Player) []league.Player {
	out := make([]league.Player, 0, len(players))
	for _, p := range players {
		if p.Position != league.Goalie {
			out = append(out, p)
		}
	}
	return out
}

// topBy returns up to n players ranked by score descending, id ascending.
func topBy(players []league.Player, n int, score func(league.Player) int) []league.Player {
	ranked := append([]league.Player(nil), players...)
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := score(ranked[i]), score(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func choose(r *rng.RNG, pool []league.Player) league.Player {
	return pool[r.Int(0, len(pool)-1)]
}

func pickShooter(r *rng.RNG, line []league.Player, t *team) league.Player {
	pool := topBy(skatersOf(line), shooterPool, func(p league.Player) int { return p.Shot })
	if len(pool) == 0 {
		pool = t.skaters
	}
	return choose(r, pool)
}

func pickGritty(r *rng.RNG, line []league.Player, t *team) league.Player {
	pool := topBy(skatersOf(line), gritPool, func(p league.Player) int { return p.Grit })
	if len(pool) == 0 {
		pool = t.skaters
	}
	return choose(r, pool)
}

func pickAnySkater(r *rng.RNG, line []league.Player, t *team) league.Player {
	pool := skatersOf(line)
	if len(pool) == 0 {
		pool = t.skaters
	}
	return choose(r, pool)
}

func pickDefender(r *rng.RNG, line []league.Player, t *team) league.Player {
	var pool []league.Player
	for _, p := range line {
		if p.Position == league.Defense {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return pickAnySkater(r, line, t)
	}
	return choose(r, pool)
}

// pickAssists draws 0-2 distinct teammates of the shooter from the best
// passers on the ice. No draw is made when nobody is eligible.
func pickAssists(r *rng.RNG, line []league.Player, t *team, shooterID int64) []int64 {
	without := func(players []league.Player) []league.Player {
		out := make([]league.Player, 0, len(players))
		for _, p := range players {
			if p.ID != shooterID && p.Position != league.Goalie {
				out = append(out, p)
			}
		}
		return out
	}

	candidates := without(line)
	if len(candidates) == 0 {
		candidates = without(t.skaters)
	}
	if len(candidates) == 0 {
		return nil
	}

	pool := topBy(candidates, assistPool, func(p league.Player) int { return p.Pass })
	count := r.Int(0, maxAssists)
	var ids []int64
	for i := 0; i < count && len(pool) > 0; i++ {
		idx := r.Int(0, len(pool)-1)
		ids = append(ids, pool[idx].ID)
		pool = append(pool[:idx:idx], pool[idx+1:]...)
	}
	return ids
}
