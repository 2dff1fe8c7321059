package domain

// Player is a squad member in a team's own database.
type Player struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PositionID   int64   `json:"position_id"`
	PositionName string  `json:"position_name,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}
