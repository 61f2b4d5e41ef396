package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/lifecycle"
	"github.com/roach88/rinkleague/internal/plan"
)

// SoakOptions holds flags for the soak command.
type SoakOptions struct {
	*RootOptions
	Teams       int
	Rounds      int
	Concurrency int
	MetricsAddr string
	Verify      bool
}

// SoakReport summarizes a soak run.
type SoakReport struct {
	Teams       int            `json:"teams"`
	Rounds      int            `json:"rounds"`
	Matches     int            `json:"matches"`
	Joined      int            `json:"joined"`
	BotFills    int            `json:"bot_fills"`
	Simulated   int            `json:"simulated"`
	Replayed    int            `json:"replayed,omitempty"`
	Diverged    int            `json:"diverged,omitempty"`
	Errors      map[string]int `json:"errors,omitempty"`
	ElapsedSecs float64        `json:"elapsed_seconds"`
}

func (r *SoakReport) writeText(w io.Writer) {
	fmt.Fprintf(w, "Soak: %d teams x %d rounds in %.2fs\n", r.Teams, r.Rounds, r.ElapsedSecs)
	fmt.Fprintf(w, "  matches %d (joined %d, bot fills %d), simulated %d\n", r.Matches, r.Joined, r.BotFills, r.Simulated)
	if r.Replayed > 0 {
		fmt.Fprintf(w, "  replayed %d, diverged %d\n", r.Replayed, r.Diverged)
	}
	codes := make([]string, 0, len(r.Errors))
	for c := range r.Errors {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  %s: %d\n", c, r.Errors[c])
	}
}

// virtualClock lets soak skip the human wait without sleeping.
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewSoakCommand creates the soak command.
func NewSoakCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SoakOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Drive concurrent matchmaking and submissions against the database",
		Long: `Create a pool of teams and play rounds of matches with concurrent workers.

Each round every team queues at once; teams left waiting are paired with bots
after the human wait, then both sides of every match submit default plans
concurrently. Time is virtual, so the human wait costs nothing.

With --metrics-addr the Prometheus /metrics endpoint is served while the
soak runs. With --verify every finished match is replayed afterwards.`,
		Example: `  rinkleague --db soak.db soak --teams 64 --rounds 10 --concurrency 16
  rinkleague soak --metrics-addr :9090 --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSoak(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Teams, "teams", 16, "number of human teams")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 3, "matchmaking rounds")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 8, "concurrent workers")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve /metrics on this address while running")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "replay every finished match and check determinism")

	return cmd
}

func runSoak(opts *SoakOptions, cmd *cobra.Command) error {
	if opts.Teams < 2 || opts.Rounds < 1 || opts.Concurrency < 1 {
		return NewExitError(ExitCommandError, "soak needs --teams >= 2, --rounds >= 1 and --concurrency >= 1")
	}
	cfg := opts.cfg()
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}

	start := time.Now()
	if opts.Now != nil {
		start = opts.Now()
	}
	clock := &virtualClock{now: start}

	a, err := openApp(opts.RootOptions, cmd, lifecycle.WithClock(clock.Now))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				a.logger.Error("metrics server stopped", "error", err)
			}
		}()
		a.logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	d := &soakDriver{app: a, clock: clock, wait: cfg.HumanWait(), workers: opts.Concurrency,
		report: SoakReport{Teams: opts.Teams, Rounds: opts.Rounds, Errors: map[string]int{}}}

	teams, err := d.createTeams(ctx, opts.Teams)
	if err != nil {
		return a.out.Fail("failed to create soak teams", err)
	}
	var played []int64
	for round := 1; round <= opts.Rounds; round++ {
		ids := d.round(ctx, teams)
		played = append(played, ids...)
		a.logger.Info("soak round finished", "round", round, "matches", len(ids))
		if err := ctx.Err(); err != nil {
			return WrapExitError(ExitFailure, "soak interrupted", err)
		}
	}
	if opts.Verify {
		d.verify(ctx, played)
	}
	d.report.ElapsedSecs = time.Since(start).Seconds()
	if opts.Now != nil {
		d.report.ElapsedSecs = 0
	}

	if err := a.out.Success(&d.report, d.report.writeText); err != nil {
		return err
	}
	if d.report.Diverged > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d match(es) diverged on replay", d.report.Diverged))
	}
	return nil
}

type soakDriver struct {
	app     *app
	clock   *virtualClock
	wait    time.Duration
	workers int

	mu     sync.Mutex
	report SoakReport
}

// each runs fn for every item with at most d.workers in flight.
func each[T any](d *soakDriver, items []T, fn func(T)) {
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(it T) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(it)
		}(it)
	}
	wg.Wait()
}

func (d *soakDriver) fail(err error) {
	code := string(league.CodeOf(err))
	if code == "" {
		code = "OTHER"
	}
	d.mu.Lock()
	d.report.Errors[code]++
	d.mu.Unlock()
	d.app.logger.Warn("soak operation failed", "error", err)
}

func (d *soakDriver) createTeams(ctx context.Context, n int) ([]league.Team, error) {
	teams := make([]league.Team, 0, n)
	for i := 0; i < n; i++ {
		rating := 850 + (i*37)%400
		t, err := d.app.svc.CreateTeam(ctx, fmt.Sprintf("Soak %03d", i+1), rating)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// round queues every team, bot-fills whoever is left waiting, then plays
// every match. It returns the ids of the matches played.
func (d *soakDriver) round(ctx context.Context, teams []league.Team) []int64 {
	var mu sync.Mutex
	matches := map[int64]league.Match{}
	var waiting []league.Match

	record := func(t lifecycle.Ticket) {
		mu.Lock()
		defer mu.Unlock()
		switch t.Outcome {
		case lifecycle.OutcomeJoined, lifecycle.OutcomeBotFill:
			matches[t.Match.ID] = t.Match
		case lifecycle.OutcomeCreated, lifecycle.OutcomeWaiting:
			waiting = append(waiting, t.Match)
		}
		d.mu.Lock()
		switch t.Outcome {
		case lifecycle.OutcomeJoined:
			d.report.Joined++
		case lifecycle.OutcomeBotFill:
			d.report.BotFills++
		}
		d.mu.Unlock()
	}

	each(d, teams, func(t league.Team) {
		ticket, err := d.app.svc.FindMatch(ctx, t.ID)
		if err != nil {
			d.fail(err)
			return
		}
		record(ticket)
	})

	// Hosts whose match nobody joined get a bot once the wait is over.
	var open []int64
	for _, m := range waiting {
		if _, joined := matches[m.ID]; !joined {
			open = append(open, m.HomeTeamID)
		}
	}
	if len(open) > 0 {
		d.clock.Advance(d.wait + time.Second)
		each(d, open, func(teamID int64) {
			ticket, err := d.app.svc.FindMatch(ctx, teamID)
			if err != nil {
				d.fail(err)
				return
			}
			record(ticket)
		})
	}

	type side struct {
		match league.Match
		team  int64
	}
	var sides []side
	ids := make([]int64, 0, len(matches))
	for id, m := range matches {
		ids = append(ids, id)
		sides = append(sides, side{m, m.HomeTeamID}, side{m, m.AwayTeamID})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	each(d, sides, func(s side) {
		t, roster, err := d.app.svc.Team(ctx, s.team)
		if err != nil {
			d.fail(err)
			return
		}
		if t.IsBot {
			return
		}
		res, err := d.app.svc.Submit(ctx, lifecycle.Submission{
			MatchID: s.match.ID,
			TeamID:  s.team,
			Plan:    plan.BuildDefault(roster),
			Source:  league.SourceHuman,
		})
		if err != nil {
			d.fail(err)
			return
		}
		if res.Simulated {
			d.mu.Lock()
			d.report.Simulated++
			d.mu.Unlock()
		}
	})

	d.mu.Lock()
	d.report.Matches += len(ids)
	d.mu.Unlock()
	return ids
}

func (d *soakDriver) verify(ctx context.Context, ids []int64) {
	each(d, ids, func(id int64) {
		rep, err := d.app.svc.Replay(ctx, id)
		if err != nil {
			d.fail(err)
			return
		}
		d.mu.Lock()
		d.report.Replayed++
		if !rep.Deterministic {
			d.report.Diverged++
		}
		d.mu.Unlock()
	})
}
