package domain

import "time"

// Field position zones, from the goal line outward.
const (
	ZoneGoalkeeper = "goalkeeper"
	ZoneDefense    = "defense"
	ZoneMidfield   = "midfield"
	ZoneAttack     = "attack"
)

// FieldPosition is a spot on the pitch (right back, central midfield, ...),
// as opposed to Position, which is a player's general role. Every team
// database is seeded with a baseline layout at provisioning time.
type FieldPosition struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Zone         string  `json:"zone"`
	SortOrder    int     `json:"sort_order"`
	Description  *string `json:"description,omitempty"`
}

// PlayerPosition assigns a player to a field position during a live
// session. At most one assignment per player is active at a time; moving
// a player closes the previous assignment and opens a new one.
type PlayerPosition struct {
	ID              int64      `json:"id"`
	CurrentMatchID  int64      `json:"current_match_id"`
	PlayerID        int64      `json:"player_id"`
	FieldPositionID int64      `json:"field_position_id"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	IsStarting      bool       `json:"is_starting"`
	IsActive        bool       `json:"is_active"`
}
