package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/rinkleague/internal/canon"
	"github.com/roach88/rinkleague/internal/league"
)

// marshalPlan converts a plan to canonical JSON TEXT plus its content hash.
func marshalPlan(p league.Plan) (string, string, error) {
	data, err := canon.PlanJSON(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal plan: %w", err)
	}
	hash, err := canon.PlanHash(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal plan: %w", err)
	}
	return string(data), hash, nil
}

// unmarshalPlan parses stored plan JSON.
func unmarshalPlan(data string) (league.Plan, error) {
	var p league.Plan
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return league.Plan{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	return p, nil
}

// marshalPayload converts an event payload to canonical JSON TEXT.
func marshalPayload(p league.Payload) (string, error) {
	data, err := canon.PayloadJSON(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses stored payload JSON.
func unmarshalPayload(data string) (league.Payload, error) {
	var p league.Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return league.Payload{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

// millis stores a time as unix milliseconds; the zero time is 0.
func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// fromMillis is the inverse of millis.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
