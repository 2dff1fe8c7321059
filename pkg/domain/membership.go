package domain

import "time"

// Membership links a user to a team. Membership rows in the central store
// are the sole authority for whether a user may act on a team.
type Membership struct {
	UserID    int64     `json:"user_id"`
	TeamID    int64     `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}
