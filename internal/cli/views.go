package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/narrate"
)

// MatchView is the JSON shape of a match.
type MatchView struct {
	ID             int64      `json:"id"`
	SeasonID       int64      `json:"season_id"`
	HomeTeamID     int64      `json:"home_team_id"`
	AwayTeamID     int64      `json:"away_team_id,omitempty"`
	Seed           int64      `json:"seed"`
	Status         string     `json:"status"`
	SubmitDeadline *time.Time `json:"submit_deadline,omitempty"`
	HomeScore      int        `json:"home_score"`
	AwayScore      int        `json:"away_score"`
	RunToken       string     `json:"run_token,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SimulatedAt    *time.Time `json:"simulated_at,omitempty"`
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func matchView(m league.Match) MatchView {
	return MatchView{
		ID:             m.ID,
		SeasonID:       m.SeasonID,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		Seed:           m.Seed,
		Status:         string(m.Status),
		SubmitDeadline: optTime(m.SubmitDeadline),
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
		RunToken:       m.RunToken,
		CreatedAt:      m.CreatedAt,
		SimulatedAt:    optTime(m.SimulatedAt),
	}
}

func (v MatchView) writeText(w io.Writer) {
	away := "(open)"
	if v.AwayTeamID != 0 {
		away = fmt.Sprintf("team %d", v.AwayTeamID)
	}
	fmt.Fprintf(w, "Match %d: team %d vs %s [%s]\n", v.ID, v.HomeTeamID, away, v.Status)
	if v.Status == string(league.StatusDone) {
		fmt.Fprintf(w, "  Final: %d - %d (run %s)\n", v.HomeScore, v.AwayScore, v.RunToken)
	}
	if v.SubmitDeadline != nil && v.Status != string(league.StatusDone) {
		fmt.Fprintf(w, "  Deadline: %s\n", v.SubmitDeadline.UTC().Format(time.RFC3339))
	}
}

func writeMatchTable(w io.Writer, views []MatchView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tHOME\tAWAY\tSCORE\tCREATED")
	for _, v := range views {
		away := "-"
		if v.AwayTeamID != 0 {
			away = fmt.Sprint(v.AwayTeamID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d-%d\t%s\n", v.ID, v.Status, v.HomeTeamID, away,
			v.HomeScore, v.AwayScore, v.CreatedAt.UTC().Format(time.RFC3339))
	}
	tw.Flush()
}

// EventView is one play-by-play line.
type EventView struct {
	Seq      int64          `json:"seq"`
	Period   int            `json:"period"`
	Tick     int            `json:"tick"`
	TimeLeft int            `json:"time_left"`
	Type     string         `json:"type"`
	Payload  league.Payload `json:"payload"`
}

func eventViews(events []league.MatchEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{
			Seq:      e.Seq,
			Period:   e.Period,
			Tick:     e.Tick,
			TimeLeft: e.TimeLeft,
			Type:     string(e.Type),
			Payload:  e.Payload,
		})
	}
	return out
}

func writeEvents(w io.Writer, views []EventView) {
	for _, e := range views {
		fmt.Fprintf(w, "P%d %5s  %-10s %s\n", e.Period, narrate.Clock(e.TimeLeft), e.Type, e.Payload.Text)
	}
}
