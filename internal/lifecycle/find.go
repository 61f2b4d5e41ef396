package lifecycle

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/roach88/rinkleague/internal/league"
	"github.com/roach88/rinkleague/internal/metrics"
	"github.com/roach88/rinkleague/internal/rng"
	"github.com/roach88/rinkleague/internal/roster"
	"github.com/roach88/rinkleague/internal/store"
)

// findAttempts bounds how often FindMatch retries after losing a race.
const findAttempts = 3

// Outcome says what a matchmaking request did.
type Outcome string

const (
	// OutcomeCreated means a new match was opened and waits for an opponent.
	OutcomeCreated Outcome = "created"
	// OutcomeJoined means the team took the away slot of another team's match.
	OutcomeJoined Outcome = "joined"
	// OutcomeBotFill means the team's own expired match was paired with a bot.
	OutcomeBotFill Outcome = "bot_fill"
	// OutcomeWaiting means the team's own match is still open to humans.
	OutcomeWaiting Outcome = "waiting"
)

// Ticket is the answer to a matchmaking request.
type Ticket struct {
	Match       league.Match
	Outcome     Outcome
	Opponent    league.Team // zero until paired
	WaitSeconds int         // seconds left to wait for a human
}

// FindMatch pairs teamID with an opponent or queues it.
//
// In order: the team's own open match is bot-filled once its deadline has
// passed or reported as still waiting; otherwise the closest-rated open match
// of another team is joined; otherwise a new match is opened. A request that
// loses a race for a slot retries from the top and ends up joining another
// match or opening its own.
func (s *Service) FindMatch(ctx context.Context, teamID int64) (Ticket, error) {
	if teamID <= 0 {
		return Ticket{}, league.Invalid("team id is required")
	}

	var lastErr error
	for attempt := 1; attempt <= findAttempts; attempt++ {
		var ticket Ticket
		err := s.store.Atomically(ctx, func(tx store.Tx) error {
			var err error
			ticket, err = s.find(ctx, tx, teamID)
			return err
		})
		if err == nil {
			s.metrics.Matchmaking(string(ticket.Outcome))
			return ticket, nil
		}
		if !league.IsConflict(err) {
			return Ticket{}, err
		}
		s.metrics.Matchmaking(metrics.OutcomeConflict)
		s.logger.Warn("matchmaking race lost",
			"team_id", teamID,
			"attempt", attempt,
			"error", err,
		)
		lastErr = err
	}
	return Ticket{}, lastErr
}

func (s *Service) find(ctx context.Context, tx store.Tx, teamID int64) (Ticket, error) {
	team, err := tx.Team(ctx, teamID)
	if err != nil {
		return Ticket{}, err
	}
	now := s.now()

	own, ok, err := tx.LockOwnWaiting(ctx, teamID)
	if err != nil {
		return Ticket{}, err
	}
	if ok {
		if !own.SubmitDeadline.IsZero() && !now.Before(own.SubmitDeadline) {
			return s.botFill(ctx, tx, own, team, now)
		}
		return Ticket{Match: own, Outcome: OutcomeWaiting, WaitSeconds: s.secondsLeft(own, now)}, nil
	}

	cand, ok, err := tx.LockJoinCandidate(ctx, teamID, team.Rating, now)
	if err != nil {
		return Ticket{}, err
	}
	if ok {
		host, err := tx.Team(ctx, cand.HomeTeamID)
		if err != nil {
			return Ticket{}, err
		}
		if err := s.pair(ctx, tx, &cand, teamID, teamID, now); err != nil {
			return Ticket{}, err
		}
		return Ticket{Match: cand, Outcome: OutcomeJoined, Opponent: host}, nil
	}

	m, err := tx.InsertMatch(ctx, league.Match{
		SeasonID:       s.seasonID,
		HomeTeamID:     teamID,
		Seed:           rng.SeedFrom(now, teamID),
		Status:         league.StatusWaitingOpponent,
		SubmitDeadline: now.Add(s.humanWait),
		CreatedAt:      now,
	})
	if err != nil {
		return Ticket{}, err
	}
	s.logger.Info("match created",
		"match_id", m.ID,
		"team_id", teamID,
		"to", m.Status,
		"seed", m.Seed,
	)
	return Ticket{Match: m, Outcome: OutcomeCreated, WaitSeconds: int(s.humanWait / time.Second)}, nil
}

// botFill pairs an expired open match with the closest-rated bot.
func (s *Service) botFill(ctx context.Context, tx store.Tx, m league.Match, host league.Team, now time.Time) (Ticket, error) {
	bot, err := s.ensureBot(ctx, tx, host.Rating, host.ID)
	if err != nil {
		return Ticket{}, err
	}
	if err := s.pair(ctx, tx, &m, bot.ID, host.ID, now); err != nil {
		return Ticket{}, err
	}
	return Ticket{Match: m, Outcome: OutcomeBotFill, Opponent: bot}, nil
}

// pair fills the away slot and opens the submission window.
func (s *Service) pair(ctx context.Context, tx store.Tx, m *league.Match, awayID, actor int64, now time.Time) error {
	if m.HasOpponent() {
		return league.Conflict(m.ID, "away slot already taken")
	}
	if err := s.transition(m, league.StatusWaitingSubmissions, actor); err != nil {
		return err
	}
	m.AwayTeamID = awayID
	m.SubmitDeadline = now.Add(s.submissionWindow)
	return tx.UpdateMatch(ctx, *m)
}

func (s *Service) secondsLeft(m league.Match, now time.Time) int {
	if m.SubmitDeadline.IsZero() {
		return int(s.humanWait / time.Second)
	}
	left := math.Floor(m.SubmitDeadline.Sub(now).Seconds())
	return int(math.Max(0, left))
}

// ensureBot returns the bot closest to rating, creating one when the league
// has none. A bot never plays itself.
func (s *Service) ensureBot(ctx context.Context, tx store.Tx, rating int, excludeID int64) (league.Team, error) {
	bot, ok, err := tx.NearestBot(ctx, rating)
	if err != nil {
		return league.Team{}, err
	}
	if ok && bot.ID != excludeID {
		return bot, nil
	}
	return s.createBot(ctx, tx, rating)
}

func (s *Service) createBot(ctx context.Context, tx store.Tx, rating int) (league.Team, error) {
	s.botMu.Lock()
	t := roster.BotTeam(rating, s.bots)
	players := roster.Generate(0, t.Rating, s.bots)
	s.botMu.Unlock()

	bot, err := tx.CreateTeam(ctx, t, players)
	if err != nil {
		return league.Team{}, fmt.Errorf("create bot team: %w", err)
	}
	s.logger.Info("bot team created",
		"team_id", bot.ID,
		"rating", bot.Rating,
		"style", bot.CoachStyle,
	)
	return bot, nil
}
