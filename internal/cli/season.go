package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/playoff"
	"github.com/roach88/rinkleague/internal/season"
)

// NewSeasonCommand creates the season command group.
func NewSeasonCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Standings, leaders and playoffs for the configured season",
	}
	cmd.AddCommand(newSeasonStandingsCommand(rootOpts))
	cmd.AddCommand(newSeasonLeadersCommand(rootOpts))
	cmd.AddCommand(newSeasonPlayoffsCommand(rootOpts))
	return cmd
}

func newSeasonStandingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Rank teams by points, wins, goal difference and goals for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.svc.Standings(cmd.Context())
			if err != nil {
				return a.out.Fail("failed to load standings", err)
			}
			return a.out.Success(rows, func(w io.Writer) { writeStandings(w, rows) })
		},
	}
}

func writeStandings(w io.Writer, rows []season.Row) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEAM\tDIV\tGP\tW\tL\tT\tPTS\tGF\tGA\tDIFF")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\n", r.Rank, r.TeamName, r.Division,
			r.GamesPlayed, r.Wins, r.Losses, r.Ties, r.Points, r.GoalsFor, r.GoalsAgainst, r.GoalDiff)
	}
	tw.Flush()
}

func newSeasonLeadersCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Show the goal-scoring leaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			leaders, err := a.svc.Leaders(cmd.Context(), limit)
			if err != nil {
				return a.out.Fail("failed to load leaders", err)
			}
			return a.out.Success(leaders, func(w io.Writer) { writeLeaders(w, leaders) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of players")
	return cmd
}

func writeLeaders(w io.Writer, leaders []season.Leader) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tTEAM\tGP\tG\tS\tSH%")
	for _, l := range leaders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f\n", l.PlayerName, l.TeamName, l.GamesPlayed, l.Goals, l.Shots, l.ShootingPct)
	}
	tw.Flush()
}

func newSeasonPlayoffsCommand(rootOpts *RootOptions) *cobra.Command {
	var teams int
	var seed int64
	var byes string

	cmd := &cobra.Command{
		Use:   "playoffs",
		Short: "Run a single-elimination playoff from the standings",
		Long: `Seed the top teams from the standings and play a single-elimination
bracket. The same seed always produces the same bracket.

With --byes reject the field must be a power of two. With --byes top-seeds
the field is padded and the best seeds skip round one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("teams") {
				teams = rootOpts.cfg().PlayoffTeams
			}
			if !cmd.Flags().Changed("byes") {
				byes = rootOpts.cfg().ByePolicy
			}

			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			policy, err := playoff.ParseByePolicy(byes)
			if err != nil {
				return a.out.Fail("invalid bye policy", err)
			}
			b, err := a.svc.Playoffs(cmd.Context(), teams, seed, policy)
			if err != nil {
				return a.out.Fail("playoffs failed", err)
			}
			return a.out.Success(b, func(w io.Writer) { writeBracket(w, b) })
		},
	}
	cmd.Flags().IntVar(&teams, "teams", 8, "playoff field size (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "bracket seed")
	cmd.Flags().StringVar(&byes, "byes", string(playoff.ByeReject), "bye policy (reject|top-seeds)")
	return cmd
}

func writeBracket(w io.Writer, b *playoff.Bracket) {
	for _, r := range b.Rounds {
		fmt.Fprintf(w, "Round %d\n", r.Number)
		for _, m := range r.Matchups {
			if m.Bye() {
				fmt.Fprintf(w, "  (%d) %s [%s]  bye\n", m.Home.Seed, m.Home.TeamName, m.Home.Division)
				continue
			}
			fmt.Fprintf(w, "  (%d) %s [%s]  vs  (%d) %s [%s]  ->  %s\n",
				m.Home.Seed, m.Home.TeamName, m.Home.Division,
				m.Away.Seed, m.Away.TeamName, m.Away.Division, m.Winner.TeamName)
		}
	}
	fmt.Fprintf(w, "Champion: %s\n", b.Champion.TeamName)
	for _, r := range b.Rewards {
		fmt.Fprintf(w, "  %s: %s\n", r.Type, r.Name)
	}
}
