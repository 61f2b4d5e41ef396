package pgstore

import (
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/stats"
)

type teamRow struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string `gorm:"column:name;type:varchar(80);not null"`
	Rating        int    `gorm:"column:rating;not null;default:1000"`
	IsBot         bool   `gorm:"column:is_bot;not null;default:false;index:idx_teams_bot_rating,priority:1"`
	BotDifficulty int    `gorm:"column:bot_difficulty;not null;default:5"`
	CoachStyle    string `gorm:"column:coach_style;type:varchar(16);not null;default:BALANCED"`
}

func (teamRow) TableName() string { return "teams" }

type playerRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID      int64  `gorm:"column:team_id;not null;index"`
	Name        string `gorm:"column:name;type:varchar(80);not null"`
	Pos         string `gorm:"column:pos;type:varchar(2);not null"`
	Shot        int    `gorm:"column:shot;not null"`
	Pass        int    `gorm:"column:pass;not null"`
	Speed       int    `gorm:"column:speed;not null"`
	Defense     int    `gorm:"column:defense;not null"`
	Grit        int    `gorm:"column:grit;not null"`
	GoalieSkill int    `gorm:"column:goalie_skill;not null"`
	Experience  int    `gorm:"column:experience;not null;default:0"`
}

func (playerRow) TableName() string { return "players" }

type matchRow struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	SeasonID       int64      `gorm:"column:season_id;not null;index:idx_matches_season_status,priority:1"`
	HomeTeamID     int64      `gorm:"column:home_team_id;not null"`
	AwayTeamID     *int64     `gorm:"column:away_team_id"`
	Seed           int64      `gorm:"column:seed;not null"`
	Status         string     `gorm:"column:status;type:varchar(24);not null;index:idx_matches_season_status,priority:2"`
	SubmitDeadline *time.Time `gorm:"column:submit_deadline;type:timestamptz"`
	HomeScore      int        `gorm:"column:home_score;not null;default:0"`
	AwayScore      int        `gorm:"column:away_score;not null;default:0"`
	RunToken       string     `gorm:"column:run_token;type:varchar(64);not null;default:''"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:timestamptz;not null"`
	SimulatedAt    *time.Time `gorm:"column:simulated_at;type:timestamptz"`
}

func (matchRow) TableName() string { return "matches" }

type eventRow struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID   int64  `gorm:"column:match_id;not null;uniqueIndex:idx_match_events_seq,priority:1"`
	Seq       int64  `gorm:"column:seq;not null;uniqueIndex:idx_match_events_seq,priority:2"`
	Period    int    `gorm:"column:period;not null"`
	Tick      int    `gorm:"column:tick;not null"`
	TimeLeft  int    `gorm:"column:time_left;not null"`
	EventType string `gorm:"column:event_type;type:varchar(16);not null"`
	Payload   string `gorm:"column:payload;type:text;not null"`
}

func (eventRow) TableName() string { return "match_events" }

type submissionRow struct {
	MatchID     int64     `gorm:"column:match_id;primaryKey"`
	TeamID      int64     `gorm:"column:team_id;primaryKey"`
	PlanJSON    string    `gorm:"column:plan_json;type:text;not null"`
	PlanHash    string    `gorm:"column:plan_hash;type:varchar(64);not null"`
	Source      string    `gorm:"column:source;type:varchar(16);not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at;type:timestamptz;not null"`
}

func (submissionRow) TableName() string { return "match_submissions" }

type teamSeasonRow struct {
	SeasonID     int64 `gorm:"column:season_id;primaryKey"`
	TeamID       int64 `gorm:"column:team_id;primaryKey"`
	GamesPlayed  int   `gorm:"column:games_played;not null;default:0"`
	Wins         int   `gorm:"column:wins;not null;default:0"`
	Losses       int   `gorm:"column:losses;not null;default:0"`
	Ties         int   `gorm:"column:ties;not null;default:0"`
	GoalsFor     int   `gorm:"column:goals_for;not null;default:0"`
	GoalsAgainst int   `gorm:"column:goals_against;not null;default:0"`
	ShotsFor     int   `gorm:"column:shots_for;not null;default:0"`
	ShotsAgainst int   `gorm:"column:shots_against;not null;default:0"`
	Points       int   `gorm:"column:points;not null;default:0"`
}

func (teamSeasonRow) TableName() string { return "team_season_stats" }

// playerLineCols are the counters shared by the season and match tables.
type playerLineCols struct {
	TeamID       int64 `gorm:"column:team_id;not null"`
	GamesPlayed  int   `gorm:"column:games_played;not null;default:0"`
	Goals        int   `gorm:"column:goals;not null;default:0"`
	Assists      int   `gorm:"column:assists;not null;default:0"`
	Points       int   `gorm:"column:points;not null;default:0"`
	Shots        int   `gorm:"column:shots;not null;default:0"`
	Saves        int   `gorm:"column:saves;not null;default:0"`
	ShotsAgainst int   `gorm:"column:shots_against;not null;default:0"`
	Wins         int   `gorm:"column:wins;not null;default:0"`
	Hits         int   `gorm:"column:hits;not null;default:0"`
	Blocks       int   `gorm:"column:blocks;not null;default:0"`
	IceSeconds   int   `gorm:"column:ice_seconds;not null;default:0"`
}

type playerSeasonRow struct {
	SeasonID int64 `gorm:"column:season_id;primaryKey"`
	PlayerID int64 `gorm:"column:player_id;primaryKey"`
	playerLineCols
}

func (playerSeasonRow) TableName() string { return "player_season_stats" }

type playerMatchRow struct {
	MatchID  int64 `gorm:"column:match_id;primaryKey"`
	PlayerID int64 `gorm:"column:player_id;primaryKey"`
	SeasonID int64 `gorm:"column:season_id;not null"`
	playerLineCols
}

func (playerMatchRow) TableName() string { return "player_match_stats" }

// allModels lists every table in creation order.
var allModels = []any{
	&teamRow{},
	&playerRow{},
	&matchRow{},
	&eventRow{},
	&submissionRow{},
	&teamSeasonRow{},
	&playerSeasonRow{},
	&playerMatchRow{},
}

func (r teamRow) team() league.Team {
	return league.Team{
		ID:            r.ID,
		Name:          r.Name,
		Rating:        r.Rating,
		IsBot:         r.IsBot,
		BotDifficulty: r.BotDifficulty,
		CoachStyle:    league.ParseCoachStyle(r.CoachStyle),
	}
}

func (r playerRow) player() league.Player {
	return league.Player{
		ID:          r.ID,
		TeamID:      r.TeamID,
		Name:        r.Name,
		Position:    league.Position(r.Pos),
		Shot:        r.Shot,
		Pass:        r.Pass,
		Speed:       r.Speed,
		Defense:     r.Defense,
		Grit:        r.Grit,
		GoalieSkill: r.GoalieSkill,
		Experience:  r.Experience,
	}
}

func newPlayerRow(teamID int64, p league.Player) playerRow {
	return playerRow{
		TeamID:      teamID,
		Name:        p.Name,
		Pos:         string(p.Position),
		Shot:        p.Shot,
		Pass:        p.Pass,
		Speed:       p.Speed,
		Defense:     p.Defense,
		Grit:        p.Grit,
		GoalieSkill: p.GoalieSkill,
		Experience:  p.Experience,
	}
}

func (r matchRow) match() league.Match {
	m := league.Match{
		ID:         r.ID,
		SeasonID:   r.SeasonID,
		HomeTeamID: r.HomeTeamID,
		Seed:       r.Seed,
		Status:     league.Status(r.Status),
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
		RunToken:   r.RunToken,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.AwayTeamID != nil {
		m.AwayTeamID = *r.AwayTeamID
	}
	if r.SubmitDeadline != nil {
		m.SubmitDeadline = r.SubmitDeadline.UTC()
	}
	if r.SimulatedAt != nil {
		m.SimulatedAt = r.SimulatedAt.UTC()
	}
	return m
}

func newMatchRow(m league.Match) matchRow {
	return matchRow{
		ID:             m.ID,
		SeasonID:       m.SeasonID,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     optID(m.AwayTeamID),
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

func optID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func lineCols(p stats.PlayerLine) playerLineCols {
	return playerLineCols{
		TeamID:       p.TeamID,
		GamesPlayed:  p.GamesPlayed,
		Goals:        p.Goals,
		Assists:      p.Assists,
		Points:       p.Points,
		Shots:        p.Shots,
		Saves:        p.Saves,
		ShotsAgainst: p.ShotsAgainst,
		Wins:         p.Wins,
		Hits:         p.Hits,
		Blocks:       p.Blocks,
		IceSeconds:   p.IceSeconds,
	}
}

func (c playerLineCols) line(playerID int64) stats.PlayerLine {
	return stats.PlayerLine{
		PlayerID:     playerID,
		TeamID:       c.TeamID,
		GamesPlayed:  c.GamesPlayed,
		Goals:        c.Goals,
		Assists:      c.Assists,
		Points:       c.Points,
		Shots:        c.Shots,
		Saves:        c.Saves,
		ShotsAgainst: c.ShotsAgainst,
		Wins:         c.Wins,
		Hits:         c.Hits,
		Blocks:       c.Blocks,
		IceSeconds:   c.IceSeconds,
	}
}
