package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/lifecycle"
	"github.com/roach88/rinkleague/internal/plan"
)

// TicketView is the JSON shape of a matchmaking answer.
type TicketView struct {
	Outcome     string    `json:"outcome"`
	WaitSeconds int       `json:"wait_seconds"`
	Match       MatchView `json:"match"`
	Opponent    *TeamView `json:"opponent,omitempty"`
}

func (v TicketView) writeText(w io.Writer) {
	if v.Opponent == nil {
		fmt.Fprintf(w, "Match %d %s; waiting %ds for an opponent\n", v.Match.ID, v.Outcome, v.WaitSeconds)
		return
	}
	fmt.Fprintf(w, "Match %d %s against %s (team %d)\n", v.Match.ID, v.Outcome, v.Opponent.Name, v.Opponent.ID)
}

// NewMatchCommand creates the match command group.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Matchmaking, submissions and simulation",
	}
	cmd.AddCommand(newMatchFindCommand(rootOpts))
	cmd.AddCommand(newMatchSubmitCommand(rootOpts))
	cmd.AddCommand(newMatchSimulateCommand(rootOpts))
	cmd.AddCommand(newMatchCancelCommand(rootOpts))
	cmd.AddCommand(newMatchEventsCommand(rootOpts))
	cmd.AddCommand(newMatchReplayCommand(rootOpts))
	cmd.AddCommand(newMatchListCommand(rootOpts))
	return cmd
}

func newMatchFindCommand(rootOpts *RootOptions) *cobra.Command {
	var teamID int64

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Queue a team for a match",
		Long: `Queue a team for a match.

Joins the closest-rated open match of another team, or opens a new one.
Running find again after the human wait has passed pairs the open match
with a bot of similar rating.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.svc.FindMatch(cmd.Context(), teamID)
			if err != nil {
				return a.out.Fail("matchmaking failed", err)
			}
			v := TicketView{Outcome: string(t.Outcome), WaitSeconds: t.WaitSeconds, Match: matchView(t.Match)}
			if t.Opponent.ID != 0 {
				opp := teamView(t.Opponent, nil)
				v.Opponent = &opp
			}
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().Int64Var(&teamID, "team", 0, "team id (required)")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func newMatchSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var matchID, teamID int64
	var planFile string
	var useDefault bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a lineup and tactics for a match",
		Long: `Submit a lineup and tactics for a match.

The plan file is YAML or JSON with lines (L1..L3 forwards, D1..D3 pairs),
goalie_id and tactics sliders. With --default the best available lineup is
built from the team's roster. The match is simulated as soon as both sides
have a plan.`,
		Example: `  rinkleague match submit --match 7 --team 3 --plan plan.yaml
  rinkleague match submit --match 7 --team 3 --default`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (planFile == "") == !useDefault {
				return NewExitError(ExitCommandError, "exactly one of --plan or --default is required")
			}

			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sub := lifecycle.Submission{MatchID: matchID, TeamID: teamID, Source: league.SourceHuman}
			if useDefault {
				_, roster, err := a.svc.Team(cmd.Context(), teamID)
				if err != nil {
					return a.out.Fail("failed to load team", err)
				}
				sub.Plan = plan.BuildDefault(roster)
				sub.Source = league.SourceDefault
			} else {
				data, err := os.ReadFile(planFile)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read plan", err)
				}
				if sub.Plan, err = plan.Decode(data); err != nil {
					return a.out.Fail("invalid plan", err)
				}
			}
			a.out.VerboseLog("submitting %s plan for team %d", sub.Source, teamID)

			res, err := a.svc.Submit(cmd.Context(), sub)
			if err != nil {
				return a.out.Fail("submission failed", err)
			}
			v := matchView(res.Match)
			return a.out.Success(v, func(w io.Writer) {
				if !res.Simulated {
					fmt.Fprintln(w, "Plan stored; waiting for the opponent.")
				}
				v.writeText(w)
			})
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id (required)")
	cmd.Flags().Int64Var(&teamID, "team", 0, "team id (required)")
	cmd.Flags().StringVar(&planFile, "plan", "", "plan file (YAML or JSON)")
	cmd.Flags().BoolVar(&useDefault, "default", false, "submit the roster's default plan")
	_ = cmd.MarkFlagRequired("match")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func newMatchSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	var matchID int64
	var force bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate or re-simulate a match",
		Long: `Simulate a match from its stored seed and plans.

A finished match is re-simulated in place. With --force a match stuck in
SIMULATING is recovered, and a match still waiting for submissions is played
with default plans for the missing sides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.svc.Simulate(cmd.Context(), matchID, force)
			if err != nil {
				return a.out.Fail("simulation failed", err)
			}
			v := matchView(m)
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id (required)")
	cmd.Flags().BoolVar(&force, "force", false, "recover stuck or incomplete matches")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}

func newMatchCancelCommand(rootOpts *RootOptions) *cobra.Command {
	var matchID int64

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an unfinished match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.svc.Cancel(cmd.Context(), matchID)
			if err != nil {
				return a.out.Fail("cancel failed", err)
			}
			v := matchView(m)
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id (required)")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}

func newMatchEventsCommand(rootOpts *RootOptions) *cobra.Command {
	var matchID int64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print a match's play-by-play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.svc.Events(cmd.Context(), matchID)
			if err != nil {
				return a.out.Fail("failed to load events", err)
			}
			views := eventViews(events)
			return a.out.Success(views, func(w io.Writer) { writeEvents(w, views) })
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id (required)")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}

func newMatchReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var matchID int64

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Verify a finished match replays identically",
		Long: `Re-run a finished match in memory from its seed and stored plans and
compare the event digest with the stored play-by-play. Nothing is written.

Exit codes:
  0 - Replay is deterministic
  1 - Digest or score mismatch
  2 - Command error (unknown match, match not finished)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.svc.Replay(cmd.Context(), matchID)
			if err != nil {
				return a.out.Fail("replay failed", err)
			}
			if err := a.out.Success(rep, func(w io.Writer) { writeReplay(w, rep) }); err != nil {
				return err
			}
			if !rep.Deterministic {
				return NewExitError(ExitFailure, fmt.Sprintf("match %d replay diverged", matchID))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id (required)")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}

func writeReplay(w io.Writer, rep lifecycle.ReplayReport) {
	fmt.Fprintf(w, "Match %d (seed %d, run %s)\n", rep.MatchID, rep.Seed, rep.RunToken)
	fmt.Fprintf(w, "  stored: %d events, %d-%d, %s\n", rep.StoredEvents, rep.StoredScore[0], rep.StoredScore[1], rep.StoredDigest)
	fmt.Fprintf(w, "  replay: %d events, %d-%d, %s\n", rep.ReplayEvents, rep.ReplayScore[0], rep.ReplayScore[1], rep.ReplayDigest)
	if rep.Deterministic {
		fmt.Fprintln(w, "✓ deterministic")
	} else {
		fmt.Fprintln(w, "✗ replay diverged")
	}
}

func newMatchListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ms, err := a.svc.RecentMatches(cmd.Context(), limit)
			if err != nil {
				return a.out.Fail("failed to list matches", err)
			}
			views := make([]MatchView, 0, len(ms))
			for _, m := range ms {
				views = append(views, matchView(m))
			}
			return a.out.Success(views, func(w io.Writer) { writeMatchTable(w, views) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", lifecycle.DefaultRecentLimit, "maximum matches to list")
	return cmd
}
