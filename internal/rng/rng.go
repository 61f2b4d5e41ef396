// Package rng provides the deterministic pseudo-random source that drives
// match simulation and playoff brackets.
//
// The generator is a 31-bit linear congruential generator:
//
//	state = (1103515245*state + 12345) mod 2^31
//
// The constants are part of the replay contract. Changing them changes every
// stored play-by-play, so they must never be tuned.
//
// Thread-safety: an RNG is NOT safe for concurrent use. Each simulation run
// owns exactly one instance and draws from it in a fixed call order.
package rng

import "time"

const (
	multiplier = 1103515245
	increment  = 12345
	mask       = 0x7fffffff

	// span is 2^31; dividing a 31-bit state by it yields [0,1).
	span = float64(1 << 31)
)

// RNG is a seeded linear congruential generator.
type RNG struct {
	state int64
}

// New creates a generator from seed. Only the low 31 bits are used.
func New(seed int64) *RNG {
	return &RNG{state: seed & mask}
}

// next advances the state and returns it.
// The product stays below 2^62 so int64 arithmetic never overflows.
func (r *RNG) next() int64 {
	r.state = (multiplier*r.state + increment) & mask
	return r.state
}

// Float returns a value in [0,1).
func (r *RNG) Float() float64 {
	return float64(r.next()) / span
}

// Int returns an integer in [min,max], both inclusive.
// If max <= min it returns min without advancing the state.
func (r *RNG) Int(min, max int) int {
	if max <= min {
		return min
	}
	n := r.next() % int64(max-min+1)
	return min + int(n)
}

// State exposes the current internal state. Used by tests and replay audits.
func (r *RNG) State() int64 {
	return r.state
}

// SeedFrom derives a match seed from the request time and the requesting team.
// Two requests in the same millisecond from different teams still differ.
func SeedFrom(t time.Time, teamID int64) int64 {
	return t.UnixMilli() ^ (teamID << 8)
}
