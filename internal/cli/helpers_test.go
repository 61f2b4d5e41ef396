package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rinkleague/internal/testutil"
)

// envelope mirrors CLIResponse with the payload left raw.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// cliFixture drives the CLI against one SQLite file with a shared test clock
// and run-token sequence.
type cliFixture struct {
	t      *testing.T
	db     string
	clock  *testutil.Clock
	tokens *testutil.TokenSequence
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	t.Setenv("RINK_CONFIG", "")
	return &cliFixture{
		t:      t,
		db:     filepath.Join(t.TempDir(), "league.db"),
		clock:  testutil.NewClock(testutil.Epoch),
		tokens: testutil.NewTokenSequence("run"),
	}
}

// run executes the CLI and returns stdout and the command error.
func (f *cliFixture) run(args ...string) (string, error) {
	f.t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{Tokens: f.tokens, Now: f.clock.Now})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", f.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// json executes the CLI with --format json, requires success, and decodes
// the payload into v.
func (f *cliFixture) json(v any, args ...string) {
	f.t.Helper()
	out, err := f.run(append([]string{"--format", "json"}, args...)...)
	require.NoError(f.t, err, out)

	var env envelope
	require.NoError(f.t, json.Unmarshal([]byte(out), &env), out)
	require.Equal(f.t, "ok", env.Status, out)
	if v != nil {
		require.NoError(f.t, json.Unmarshal(env.Data, v), out)
	}
}

// jsonError executes the CLI with --format json, requires a failure, and
// returns the error envelope and the command error.
func (f *cliFixture) jsonError(args ...string) (*CLIError, error) {
	f.t.Helper()
	out, err := f.run(append([]string{"--format", "json"}, args...)...)
	require.Error(f.t, err)

	var env envelope
	require.NoError(f.t, json.Unmarshal([]byte(out), &env), out)
	require.Equal(f.t, "error", env.Status, out)
	require.NotNil(f.t, env.Error)
	return env.Error, err
}

func (f *cliFixture) createTeam(name string, rating int) TeamView {
	f.t.Helper()
	var v TeamView
	f.json(&v, "team", "create", "--name", name, "--rating", itoa(rating))
	return v
}

func itoa[T ~int | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}
