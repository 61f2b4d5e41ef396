package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rinkleague/internal/league"
)

// TeamView is the JSON shape of a team with its roster.
type TeamView struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Rating        int          `json:"rating"`
	IsBot         bool         `json:"is_bot"`
	BotDifficulty int          `json:"bot_difficulty,omitempty"`
	CoachStyle    string       `json:"coach_style,omitempty"`
	Players       []PlayerView `json:"players,omitempty"`
}

// PlayerView is one roster line.
type PlayerView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"pos"`
	Shot        int    `json:"shot"`
	Pass        int    `json:"pass"`
	Speed       int    `json:"speed"`
	Defense     int    `json:"defense"`
	Grit        int    `json:"grit"`
	GoalieSkill int    `json:"goalie_skill"`
	Experience  int    `json:"experience"`
}

func teamView(t league.Team, roster []league.Player) TeamView {
	v := TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Rating:        t.Rating,
		IsBot:         t.IsBot,
		BotDifficulty: t.BotDifficulty,
		CoachStyle:    string(t.CoachStyle),
	}
	for _, p := range roster {
		v.Players = append(v.Players, PlayerView{
			ID: p.ID, Name: p.Name, Position: string(p.Position),
			Shot: p.Shot, Pass: p.Pass, Speed: p.Speed, Defense: p.Defense,
			Grit: p.Grit, GoalieSkill: p.GoalieSkill, Experience: p.Experience,
		})
	}
	return v
}

func (v TeamView) writeText(w io.Writer) {
	kind := "human"
	if v.IsBot {
		kind = fmt.Sprintf("bot, difficulty %d, %s", v.BotDifficulty, v.CoachStyle)
	}
	fmt.Fprintf(w, "Team %d: %s (rating %d, %s)\n", v.ID, v.Name, v.Rating, kind)
	if len(v.Players) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPOS\tNAME\tSHO\tPAS\tSPD\tDEF\tGRT\tGK\tEXP")
	for _, p := range v.Players {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			p.ID, p.Position, p.Name, p.Shot, p.Pass, p.Speed, p.Defense, p.Grit, p.GoalieSkill, p.Experience)
	}
	tw.Flush()
}

// NewTeamCommand creates the team command group.
func NewTeamCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Create and inspect teams",
	}
	cmd.AddCommand(newTeamCreateCommand(rootOpts))
	cmd.AddCommand(newTeamBotCommand(rootOpts))
	cmd.AddCommand(newTeamShowCommand(rootOpts))
	return cmd
}

func newTeamCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var name string
	var rating int

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a human team with a generated roster",
		Example: `  rinkleague team create --name "Harbour Wolves" --rating 1000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.svc.CreateTeam(cmd.Context(), name, rating)
			if err != nil {
				return a.out.Fail("failed to create team", err)
			}
			_, roster, err := a.svc.Team(cmd.Context(), t.ID)
			if err != nil {
				return a.out.Fail("failed to load team", err)
			}
			v := teamView(t, roster)
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "team name (required)")
	cmd.Flags().IntVar(&rating, "rating", 1000, "team rating")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTeamBotCommand(rootOpts *RootOptions) *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Find or create a bot team near a rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.svc.CreateBotTeam(cmd.Context(), rating)
			if err != nil {
				return a.out.Fail("failed to create bot team", err)
			}
			v := teamView(t, nil)
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 1000, "target rating")
	return cmd
}

func newTeamShowCommand(rootOpts *RootOptions) *cobra.Command {
	var teamID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a team and its roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t, roster, err := a.svc.Team(cmd.Context(), teamID)
			if err != nil {
				return a.out.Fail("failed to load team", err)
			}
			v := teamView(t, roster)
			return a.out.Success(v, v.writeText)
		},
	}
	cmd.Flags().Int64Var(&teamID, "team", 0, "team id (required)")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}
