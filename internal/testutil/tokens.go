package testutil

import (
	"fmt"
	"sync"
)

// TokenSequence hands out "<prefix>-1", "<prefix>-2", ... and never runs
// out, so concurrent tests need not count simulations up front.
type TokenSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewTokenSequence creates a sequence. An empty prefix becomes "run".
func NewTokenSequence(prefix string) *TokenSequence {
	if prefix == "" {
		prefix = "run"
	}
	return &TokenSequence{prefix: prefix}
}

// Generate returns the next token.
func (g *TokenSequence) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Issued returns how many tokens have been handed out.
func (g *TokenSequence) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
