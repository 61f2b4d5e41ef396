package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/season"
)

func TestSoak(t *testing.T) {
	f := newCLIFixture(t)

	var rep SoakReport
	f.json(&rep, "soak", "--teams", "7", "--rounds", "2", "--concurrency", "4", "--verify")

	assert.Equal(t, 7, rep.Teams)
	assert.Empty(t, rep.Errors)
	// Seven teams make three human pairings and one bot fill per round,
	// though a lost race can turn a pairing into two bot fills.
	assert.GreaterOrEqual(t, rep.Matches, 8)
	assert.Equal(t, rep.Matches, rep.Joined+rep.BotFills)
	assert.Equal(t, rep.Matches, rep.Simulated)
	assert.Equal(t, rep.Matches, rep.Replayed)
	assert.Zero(t, rep.Diverged)

	var rows []season.Row
	f.json(&rows, "season", "standings")
	games := 0
	for _, r := range rows {
		if !r.IsBot {
			assert.Equal(t, 2, r.GamesPlayed, r.TeamName)
		}
		games += r.GamesPlayed
	}
	require.Equal(t, 2*rep.Matches, games)
}

func TestSoakRejectsBadFlags(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("soak", "--teams", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
