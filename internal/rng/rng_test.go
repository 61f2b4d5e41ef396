package rng

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_KnownSequence(t *testing.T) {
	r := New(42)

	want := []int64{1250496027, 1116302264, 1000676753, 1668674806, 908095735}
	for i, w := range want {
		assert.Equal(t, w, r.next(), "draw %d", i)
	}
}

func TestRNG_FloatMatchesState(t *testing.T) {
	r := New(42)

	assert.Equal(t, float64(1250496027)/float64(1<<31), r.Float())
	assert.Equal(t, float64(1116302264)/float64(1<<31), r.Float())
}

func TestRNG_FloatRange(t *testing.T) {
	r := New(123456789)
	for i := 0; i < 100_000; i++ {
		f := r.Float()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestRNG_IntInclusiveBounds(t *testing.T) {
	r := New(7)

	got := make([]int, 6)
	for i := range got {
		got[i] = r.Int(1, 6)
	}
	assert.Equal(t, []int{1, 4, 5, 4, 1, 2}, got)

	seen := map[int]bool{}
	for i := 0; i < 10_000; i++ {
		v := r.Int(-2, 2)
		require.GreaterOrEqual(t, v, -2)
		require.LessOrEqual(t, v, 2)
		seen[v] = true
	}
	assert.Len(t, seen, 5)
}

func TestRNG_IntDegenerateRangeDoesNotAdvance(t *testing.T) {
	r := New(99)
	before := r.State()

	assert.Equal(t, 5, r.Int(5, 5))
	assert.Equal(t, 5, r.Int(5, 3))
	assert.Equal(t, before, r.State())
}

func TestRNG_SeedMasking(t *testing.T) {
	assert.Equal(t, int64(2147483643), New(-5).State())
	assert.Equal(t, New(42).State(), New(42+(1<<31)).State())
}

func TestRNG_SameSeedSameStream(t *testing.T) {
	a, b := New(2024), New(2024)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float(), b.Float())
		require.Equal(t, a.Int(0, 9), b.Int(0, 9))
	}
}

func TestSeedFrom_DiffersByTeam(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)

	assert.NotEqual(t, SeedFrom(now, 1), SeedFrom(now, 2))
	assert.Equal(t, SeedFrom(now, 3), SeedFrom(now, 3))
}
