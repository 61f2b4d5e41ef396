package store

import (
	"context"
	"fmt"

	"github.com/roach88/rinkleague/internal/league"
)

// AppendEvents inserts events for a match in order.
// Uses ON CONFLICT(match_id, seq) DO NOTHING, so appending the same run
// twice leaves a single copy.
func (x *sqlTx) AppendEvents(ctx context.Context, matchID int64, events []league.MatchEvent) error {
	stmt, err := x.tx.PrepareContext(ctx, `
		INSERT INTO match_events
		(match_id, seq, period, tick, time_left, event_type, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		payload, err := marshalPayload(ev.Payload)
		if err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx, matchID, ev.Seq, ev.Period, ev.Tick, ev.TimeLeft, string(ev.Type), payload); err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}
	}
	return nil
}

// DeleteEvents purges a match's play-by-play.
func (x *sqlTx) DeleteEvents(ctx context.Context, matchID int64) error {
	if _, err := x.tx.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

// Events returns a match's play-by-play in replay order.
// Returns an empty slice (not nil) if the match has no events.
func (x *sqlTx) Events(ctx context.Context, matchID int64) ([]league.MatchEvent, error) {
	rows, err := x.tx.QueryContext(ctx, `
		SELECT seq, period, tick, time_left, event_type, payload
		FROM match_events
		WHERE match_id = ?
		ORDER BY period ASC, tick ASC, seq ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []league.MatchEvent{}
	for rows.Next() {
		ev := league.MatchEvent{MatchID: matchID}
		var typ, payload string
		if err := rows.Scan(&ev.Seq, &ev.Period, &ev.Tick, &ev.TimeLeft, &typ, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = league.EventType(typ)
		if ev.Payload, err = unmarshalPayload(payload); err != nil {
			return nil, fmt.Errorf("event seq %d: %w", ev.Seq, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
