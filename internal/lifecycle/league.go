package lifecycle

import (
	"context"
	"strings"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/playoff"
	"github.com/roach88/rinkleague/internal/roster"
	"github.com/roach88/rinkleague/internal/season"
	"github.com/roach88/rinkleague/internal/store"
)

// Rating bounds accepted for a new club.
const (
	MinRating = 100
	MaxRating = 3000
)

// CreateTeam registers a human club with a generated roster.
func (s *Service) CreateTeam(ctx context.Context, name string, rating int) (league.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return league.Team{}, league.Invalid("team name is required")
	}
	if rating < MinRating || rating > MaxRating {
		return league.Team{}, league.Invalid("rating %d outside [%d, %d]", rating, MinRating, MaxRating)
	}

	s.botMu.Lock()
	players := roster.Generate(0, rating, s.bots)
	s.botMu.Unlock()

	var t league.Team
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		t, err = tx.CreateTeam(ctx, league.Team{Name: name, Rating: rating, CoachStyle: league.StyleBalanced}, players)
		return err
	})
	if err != nil {
		return league.Team{}, err
	}
	s.logger.Info("team created", "team_id", t.ID, "rating", t.Rating)
	return t, nil
}

// CreateBotTeam returns the bot closest to rating, creating one if the league
// has no bots yet.
func (s *Service) CreateBotTeam(ctx context.Context, rating int) (league.Team, error) {
	var t league.Team
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		t, err = s.ensureBot(ctx, tx, rating, 0)
		return err
	})
	return t, err
}

// Team returns a club and its roster.
func (s *Service) Team(ctx context.Context, teamID int64) (league.Team, []league.Player, error) {
	var t league.Team
	var players []league.Player
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		if t, err = tx.Team(ctx, teamID); err != nil {
			return err
		}
		players, err = tx.Players(ctx, teamID)
		return err
	})
	if err != nil {
		return league.Team{}, nil, err
	}
	return t, players, nil
}

// Standings ranks every club on the current season's finished matches.
func (s *Service) Standings(ctx context.Context) ([]season.Row, error) {
	var rows []season.Row
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		teams, err := tx.Teams(ctx)
		if err != nil {
			return err
		}
		results, err := tx.SeasonResults(ctx, s.seasonID)
		if err != nil {
			return err
		}
		rows = season.Standings(teams, results)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Leaders returns the season's top goal scorers.
func (s *Service) Leaders(ctx context.Context, limit int) ([]season.Leader, error) {
	var out []season.Leader
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		rows, err := tx.PlayerSeasonStats(ctx, s.seasonID)
		if err != nil {
			return err
		}
		out = season.Leaders(rows, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Playoffs seeds the top teams of the standings and plays the bracket.
func (s *Service) Playoffs(ctx context.Context, teams int, seed int64, policy playoff.ByePolicy) (*playoff.Bracket, error) {
	if teams <= 0 {
		return nil, league.Invalid("playoff field size must be positive")
	}
	rows, err := s.Standings(ctx)
	if err != nil {
		return nil, err
	}
	b, err := playoff.Run(playoff.FromStandings(rows, teams), seed,
		playoff.WithByePolicy(policy),
		playoff.WithSeasonID(s.seasonID),
	)
	if err != nil {
		return nil, err
	}
	s.metrics.Bracket()
	s.logger.Info("playoffs run",
		"teams", b.Teams,
		"seed", seed,
		"champion", b.Champion.TeamID,
	)
	return b, nil
}
