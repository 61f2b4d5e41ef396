package league

// Game structure constants.
const (
	Periods        = 3
	TicksPerPeriod = 40
	SecondsPerTick = 30
	PeriodSeconds  = TicksPerPeriod * SecondsPerTick
	ShiftTicks     = 3
)

// EventType names a play-by-play event.
type EventType string

const (
	EventFaceoff    EventType = "FACEOFF"
	EventShift      EventType = "SHIFT"
	EventPossession EventType = "POSSESSION"
	EventShot       EventType = "SHOT"
	EventGoal       EventType = "GOAL"
	EventSave       EventType = "SAVE"
	EventMiss       EventType = "MISS"
	EventBlock      EventType = "BLOCK"
	EventHit        EventType = "HIT"
	EventTurnover   EventType = "TURNOVER"
	EventHorn       EventType = "HORN"
)

// Payload is the structured part of an event. Only the fields that apply to
// the event type are set; the rest stay zero and are omitted from JSON.
type Payload struct {
	Text string `json:"text"`

	TeamID    int64   `json:"team_id,omitempty"`
	ShooterID int64   `json:"shooter_id,omitempty"`
	GoalieID  int64   `json:"goalie_id,omitempty"`
	AssistIDs []int64 `json:"assist_ids,omitempty"`
	BlockerID int64   `json:"blocker_id,omitempty"`
	HitterID  int64   `json:"hitter_id,omitempty"`
	VictimID  int64   `json:"victim_id,omitempty"`
	Lane      string  `json:"lane,omitempty"`
	Danger    int     `json:"danger,omitempty"`

	Line    string  `json:"line,omitempty"`
	Players []int64 `json:"players,omitempty"`

	HomeGoalieID int64 `json:"home_goalie_id,omitempty"`
	AwayGoalieID int64 `json:"away_goalie_id,omitempty"`

	// Scores are pointers so a 0-0 horn still carries them.
	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`
}

// MatchEvent is one entry of a match's play-by-play.
// Seq is the per-run insertion order and breaks ties within a tick.
type MatchEvent struct {
	MatchID  int64
	Seq      int64
	Period   int
	Tick     int
	TimeLeft int
	Type     EventType
	Payload  Payload
}

// Before reports whether e sorts strictly before o in replay order.
func (e MatchEvent) Before(o MatchEvent) bool {
	if e.Period != o.Period {
		return e.Period < o.Period
	}
	if e.Tick != o.Tick {
		return e.Tick < o.Tick
	}
	return e.Seq < o.Seq
}

// TimeLeftAt returns the period clock at the start of tick.
func TimeLeftAt(tick int) int {
	left := PeriodSeconds - tick*SecondsPerTick
	if left < 0 {
		return 0
	}
	return left
}

// Score returns a pointer suitable for the payload score fields.
func Score(v int) *int {
	return &v
}
