package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
)

func (x *gormTx) AppendEvents(ctx context.Context, matchID int64, events []league.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]eventRow, 0, len(events))
	for _, ev := range events {
		payload, err := canon.PayloadJSON(ev.Payload)
		if err != nil {
			return fmt.Errorf("append events: seq %d: %w", ev.Seq, err)
		}
		rows = append(rows, eventRow{
			MatchID:   matchID,
			Seq:       ev.Seq,
			Period:    ev.Period,
			Tick:      ev.Tick,
			TimeLeft:  ev.TimeLeft,
			EventType: string(ev.Type),
			Payload:   string(payload),
		})
	}
	err := x.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "seq"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, 200).Error
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

func (x *gormTx) DeleteEvents(ctx context.Context, matchID int64) error {
	if err := x.db.WithContext(ctx).Where("match_id = ?", matchID).Delete(&eventRow{}).Error; err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

func (x *gormTx) Events(ctx context.Context, matchID int64) ([]league.MatchEvent, error) {
	var rows []eventRow
	err := x.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("period ASC, tick ASC, seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	out := make([]league.MatchEvent, 0, len(rows))
	for _, r := range rows {
		ev := league.MatchEvent{
			MatchID:  matchID,
			Seq:      r.Seq,
			Period:   r.Period,
			Tick:     r.Tick,
			TimeLeft: r.TimeLeft,
			Type:     league.EventType(r.EventType),
		}
		if err := json.Unmarshal([]byte(r.Payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("event seq %d: decode payload: %w", r.Seq, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
