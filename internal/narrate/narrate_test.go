package narrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	assert.Equal(t, "20:00", Clock(1200))
	assert.Equal(t, "0:30", Clock(30))
	assert.Equal(t, "19:30", Clock(1170))
	assert.Equal(t, "0:00", Clock(0))
	assert.Equal(t, "0:00", Clock(-5))
}

func TestIndex_SeedPlusSaltModN(t *testing.T) {
	r := New(42)
	assert.Equal(t, 1, r.Index(2, 1001))
	assert.Equal(t, 0, r.Index(2, 1002))
	assert.Equal(t, 1, r.Index(3, 1006)) // 1048 mod 3
	assert.Equal(t, 0, r.Index(1, 99))
	assert.Equal(t, 0, r.Index(0, 99))
}

func TestIndex_NegativeSeed(t *testing.T) {
	r := New(-7)
	for salt := 0; salt < 50; salt++ {
		idx := r.Index(3, salt)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 3)
	}
	// (-7 + 1) mod 3 = 0
	assert.Equal(t, 0, r.Index(3, 1))
}

func TestRender_Substitutes(t *testing.T) {
	r := New(42)
	got := r.Render(StartPeriod, 1001, Vars{"time": Clock(1200), "period": 1})
	assert.Equal(t, "20:00 - We are underway in period 1.", got)

	got = r.Render(Goal, 1004, Vars{
		"time": "12:30", "team": "Otters", "shooter": "Reed F5", "lane": "slot", "home": 1, "away": 0,
	})
	assert.Equal(t, "12:30 - GOAL! Otters: Reed F5 buries it from the slot! (1-0)", got)
}

func TestRender_SameInputsSameText(t *testing.T) {
	a := New(2024).Render(Save, 2135, Vars{"time": "3:00", "goalie": "Vale G1"})
	b := New(2024).Render(Save, 2135, Vars{"time": "3:00", "goalie": "Vale G1"})
	assert.Equal(t, a, b)
}

func TestRender_UnknownKeyAndMissingVars(t *testing.T) {
	r := New(1)
	assert.Equal(t, "", r.Render("NOPE", 1, nil))
	assert.Contains(t, r.Render(Block, 7, Vars{"time": "1:00"}), "{blocker}")
}

func TestCatalog_IsASCII(t *testing.T) {
	for key, templates := range catalog {
		assert.NotEmpty(t, templates, key)
		for _, tpl := range templates {
			for _, c := range tpl {
				assert.Less(t, c, rune(128), "%s: %q", key, tpl)
			}
		}
	}
}
