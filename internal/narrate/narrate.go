// Package narrate renders play-by-play text.
//
// A template is chosen by (seed + salt) mod len(templates), so the same match
// seed and event coordinates always produce the same sentence. Rendering never
// draws from the simulation RNG.
package narrate

import (
	"fmt"
	"sort"
	"strings"
)

// Template names a family of interchangeable sentences.
type Template string

const (
	StartPeriod Template = "START_PERIOD"
	Shift       Template = "SHIFT"
	Flow        Template = "FLOW"
	Turnover    Template = "TURNOVER"
	Hit         Template = "HIT"
	ShotLow     Template = "SHOT_LOW"
	ShotHigh    Template = "SHOT_HIGH"
	Save        Template = "SAVE"
	Miss        Template = "MISS"
	Block       Template = "BLOCK"
	Goal        Template = "GOAL"
	EndPeriod   Template = "END_PERIOD"
)

var catalog = map[Template][]string{
	StartPeriod: {
		"{time} - Period {period} begins. Puck drop.",
		"{time} - We are underway in period {period}.",
	},
	Shift: {
		"{time} - {team} changes. {line} hops over the boards.",
		"{time} - Line change for {team}: {line} on the ice.",
	},
	Flow: {
		"{time} - {team} controls possession in the neutral zone.",
		"{time} - {team} resets and looks for a lane.",
	},
	Turnover: {
		"{time} - Giveaway! {victim} loses it and {team} takes over.",
		"{time} - Turnover forced. {team} comes back the other way.",
	},
	Hit: {
		"{time} - {hitter} finishes a check on {victim}. Puck pops loose!",
		"{time} - Big hit by {hitter} on {victim}!",
	},
	ShotLow: {
		"{time} - {team}: {shooter} throws it on net from the {lane}.",
		"{time} - {team}: low wrister by {shooter}.",
	},
	ShotHigh: {
		"{time} - {team}: {shooter} snapshot from the slot!",
		"{time} - {team}: point-blank chance for {shooter}!",
	},
	Save: {
		"{time} - Save! {goalie} turns it aside.",
		"{time} - Big stop by {goalie}!",
		"{time} - {goalie} swallows it up, no rebound.",
	},
	Miss: {
		"{time} - {team}: {shooter} just misses wide.",
		"{time} - {team}: {shooter} sails it over the crossbar.",
	},
	Block: {
		"{time} - Blocked! {blocker} gets in front of it.",
		"{time} - {blocker} blocks the shot and clears the danger.",
	},
	Goal: {
		"{time} - GOAL! {team}: {shooter} buries it from the {lane}! ({home}-{away})",
		"{time} - GOAL! {team}: {shooter} finishes! ({home}-{away})",
	},
	EndPeriod: {
		"{time} - That's the horn. End of period {period}. ({home}-{away})",
		"{time} - Period {period} ends. ({home}-{away})",
	},
}

// Vars holds the {name} substitutions for one sentence.
type Vars map[string]any

// Renderer picks and fills templates for one match seed.
type Renderer struct {
	seed int64
}

// New creates a renderer bound to a match seed.
func New(seed int64) *Renderer {
	return &Renderer{seed: seed}
}

// Index returns which of n templates the salt selects.
func (r *Renderer) Index(n, salt int) int {
	if n <= 1 {
		return 0
	}
	m := int64(n)
	idx := (r.seed%m + int64(salt)%m) % m
	if idx < 0 {
		idx += m
	}
	return int(idx)
}

// Render fills the selected template for key. Unknown keys render as "".
// Placeholders without a matching var are left in place.
func (r *Renderer) Render(key Template, salt int, vars Vars) string {
	templates := catalog[key]
	if len(templates) == 0 {
		return ""
	}
	tpl := templates[r.Index(len(templates), salt)]
	if len(vars) == 0 {
		return tpl
	}

	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(vars[k]))
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// Count returns how many templates back key.
func Count(key Template) int {
	return len(catalog[key])
}

// Clock formats seconds left in a period as m:ss.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
