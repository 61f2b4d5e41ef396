package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/rinkleague/internal/league"
)

// Digest domains. The version suffix allows the encoding to change without
// colliding with stored digests.
const (
	DomainEvents = "rinkleague/events/v1"
	DomainPlan   = "rinkleague/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// eventRecord is the hashed shape of one event. MatchID is left out so a
// replay of the same inputs under another id still matches.
type eventRecord struct {
	Seq      int64          `json:"seq"`
	Period   int            `json:"period"`
	Tick     int            `json:"tick"`
	TimeLeft int            `json:"time_left"`
	Type     string         `json:"type"`
	Payload  league.Payload `json:"payload"`
}

// EventDigest returns the digest of an ordered play-by-play.
// Two streams have equal digests only if every event matches field for field.
func EventDigest(events []league.MatchEvent) (string, error) {
	records := make([]any, len(events))
	for i, ev := range events {
		rec, err := toGeneric(eventRecord{
			Seq:      ev.Seq,
			Period:   ev.Period,
			Tick:     ev.Tick,
			TimeLeft: ev.TimeLeft,
			Type:     string(ev.Type),
			Payload:  ev.Payload,
		})
		if err != nil {
			return "", fmt.Errorf("event digest: event %d: %w", i, err)
		}
		records[i] = rec
	}
	data, err := Marshal(records)
	if err != nil {
		return "", fmt.Errorf("event digest: %w", err)
	}
	return hashWithDomain(DomainEvents, data), nil
}

// PlanJSON returns the canonical encoding of p. Nil line slices encode as
// empty arrays.
func PlanJSON(p league.Plan) ([]byte, error) {
	p = p.Clone()
	if p.Lines == nil {
		p.Lines = map[string]league.Line{}
	}
	for k, l := range p.Lines {
		if l.Forwards == nil {
			l.Forwards = []int64{}
		}
		if l.Defense == nil {
			l.Defense = []int64{}
		}
		p.Lines[k] = l
	}
	return Marshal(p)
}

// PlanHash identifies a plan by content. Line order inside the map does not
// matter; player order within a line does.
func PlanHash(p league.Plan) (string, error) {
	data, err := PlanJSON(p)
	if err != nil {
		return "", fmt.Errorf("plan hash: %w", err)
	}
	return hashWithDomain(DomainPlan, data), nil
}

// PayloadJSON returns the canonical encoding of an event payload.
func PayloadJSON(p league.Payload) ([]byte, error) {
	return Marshal(p)
}
