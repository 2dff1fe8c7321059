package domain

import "time"

// Current match status values.
const (
	MatchStatusSetup      = "setup"
	MatchStatusFirstHalf  = "first_half"
	MatchStatusHalfTime   = "half_time"
	MatchStatusSecondHalf = "second_half"
	MatchStatusFinished   = "finished"
	MatchStatusPaused     = "paused"
)

// Match event types.
const (
	EventSubstitution   = "substitution"
	EventGoal           = "goal"
	EventYellowCard     = "yellow_card"
	EventRedCard        = "red_card"
	EventPositionChange = "position_change"
)

// CurrentMatch is the live-tracking state for a match in progress.
// At most one row exists per team database.
type CurrentMatch struct {
	ID                      int64      `json:"id"`
	MatchID                 int64      `json:"match_id"`
	Status                  string     `json:"status"`
	MatchStartTime          *time.Time `json:"match_start_time,omitempty"`
	FirstHalfStartTime      *time.Time `json:"first_half_start_time,omitempty"`
	SecondHalfStartTime     *time.Time `json:"second_half_start_time,omitempty"`
	LastPauseTime           *time.Time `json:"last_pause_time,omitempty"`
	FirstHalfDurationSecs   int        `json:"first_half_duration_seconds"`
	SecondHalfDurationSecs  int        `json:"second_half_duration_seconds"`
	TotalPauseSecs          int        `json:"total_pause_seconds"`
	HomeScore               int        `json:"home_score"`
	AwayScore               int        `json:"away_score"`
	Formation               *string    `json:"formation,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// MatchEvent is a timestamped in-match event (goal, card, substitution).
type MatchEvent struct {
	ID              int64     `json:"id"`
	CurrentMatchID  int64     `json:"current_match_id"`
	EventType       string    `json:"event_type"`
	PlayerID        *int64    `json:"player_id,omitempty"`
	PlayerOutID     *int64    `json:"player_out_id,omitempty"`
	PlayerInID      *int64    `json:"player_in_id,omitempty"`
	FieldPositionID *int64    `json:"field_position_id,omitempty"`
	MatchMinute     int       `json:"match_minute"`
	MatchSecond     int       `json:"match_second"`
	Notes           *string   `json:"notes,omitempty"`
	EventTime       time.Time `json:"event_time"`
}
