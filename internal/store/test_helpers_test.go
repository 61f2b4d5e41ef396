package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/roster"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// atomically runs fn and fails the test on error.
func atomically(t *testing.T, s *Store, fn func(ctx context.Context, tx Tx)) {
	t.Helper()
	ctx := context.Background()
	err := s.Atomically(ctx, func(tx Tx) error {
		fn(ctx, tx)
		return nil
	})
	if err != nil {
		t.Fatalf("Atomically() failed: %v", err)
	}
}

// createTestTeam inserts a team with a generated full roster.
func createTestTeam(t *testing.T, s *Store, name string, rating int, bot bool) league.Team {
	t.Helper()
	var team league.Team
	atomically(t, s, func(ctx context.Context, tx Tx) {
		var err error
		team, err = tx.CreateTeam(ctx,
			league.Team{Name: name, Rating: rating, IsBot: bot, BotDifficulty: 5},
			roster.Generate(0, rating, roster.NewSource(uint64(rating), 7)),
		)
		if err != nil {
			t.Fatalf("CreateTeam() failed: %v", err)
		}
	})
	return team
}
