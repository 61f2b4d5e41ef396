package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/league"
)

func TestMarshal_SortsKeysAndCompacts(t *testing.T) {
	got, err := Marshal(map[string]any{"b": 2, "a": []any{true, "x"}, "c": map[string]any{"z": 1, "y": 0}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,"x"],"b":2,"c":{"y":0,"z":1}}`, string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as 0xD83D... in UTF-16 and sorts before U+E000,
	// the reverse of their UTF-8 byte order.
	got, err := Marshal(map[string]any{"\uE000": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uE000\":1}", string(got))
}

func TestMarshal_NoHTMLEscape(t *testing.T) {
	got, err := Marshal("a<b>&c\u2028")
	require.NoError(t, err)
	assert.Equal(t, "\"a<b>&c\u2028\"", string(got))
}

func TestMarshal_EscapesControls(t *testing.T) {
	got, err := Marshal("q\"\\\n\x01")
	require.NoError(t, err)
	assert.Equal(t, `"q\"\\\n\u0001"`, string(got))
}

func TestMarshal_NFC(t *testing.T) {
	got, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshal_RejectsFloatsAndNull(t *testing.T) {
	_, err := Marshal(1.5)
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"x": nil})
	assert.Error(t, err)

	_, err = Marshal(struct {
		F float64 `json:"f"`
	}{F: 0.25})
	assert.Error(t, err)
}

func TestMarshal_Struct(t *testing.T) {
	got, err := Marshal(league.Tactics{Aggression: 55, Forecheck: 50, ShootBias: 60, Risk: 45})
	require.NoError(t, err)
	assert.Equal(t, `{"aggression":55,"forecheck":50,"risk":45,"shoot_bias":60}`, string(got))
}

func sampleEvents() []league.MatchEvent {
	return []league.MatchEvent{
		{Seq: 1, Period: 1, Tick: 0, TimeLeft: 1200, Type: league.EventFaceoff,
			Payload: league.Payload{Text: "Puck drop", HomeGoalieID: 1, AwayGoalieID: 2}},
		{Seq: 2, Period: 1, Tick: 0, TimeLeft: 1200, Type: league.EventShot,
			Payload: league.Payload{Text: "Shot", TeamID: 1, ShooterID: 5, GoalieID: 2, Lane: "slot", Danger: 3}},
		{Seq: 3, Period: 1, Tick: 39, TimeLeft: 30, Type: league.EventHorn,
			Payload: league.Payload{Text: "Horn", HomeScore: league.Score(0), AwayScore: league.Score(0)}},
	}
}

func TestEventDigest_StableAndSensitive(t *testing.T) {
	a := digest(t, sampleEvents())
	b := digest(t, sampleEvents())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := sampleEvents()
	changed[1].Payload.Danger = 4
	assert.NotEqual(t, a, digest(t, changed))

	reordered := sampleEvents()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	assert.NotEqual(t, a, digest(t, reordered))
}

func TestEventDigest_IgnoresMatchID(t *testing.T) {
	a := sampleEvents()
	b := sampleEvents()
	for i := range b {
		b[i].MatchID = 77
	}
	assert.Equal(t, digest(t, a), digest(t, b))
}

func TestPlanHash(t *testing.T) {
	p := league.Plan{
		Lines:    map[string]league.Line{"L1": {Forwards: []int64{1, 2, 3}, Defense: []int64{4, 5}}, "L2": {}},
		GoalieID: 6,
		Tactics:  league.DefaultTactics,
	}
	h1, err := PlanHash(p)
	require.NoError(t, err)

	q := p.Clone()
	h2, err := PlanHash(q)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	q.Tactics.Risk++
	h3, err := PlanHash(q)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	assert.Nil(t, p.Lines["L2"].Forwards, "hashing must not mutate the caller's plan")
}

func TestHashWithDomain_Separates(t *testing.T) {
	assert.NotEqual(t, hashWithDomain(DomainEvents, []byte("x")), hashWithDomain(DomainPlan, []byte("x")))
}

func digest(t *testing.T, events []league.MatchEvent) string {
	t.Helper()
	d, err := EventDigest(events)
	require.NoError(t, err)
	return d
}
