package domain

import "time"

// Team is an isolated tenant. DatabaseName is the slug that determines
// where the team's own database lives on disk; it is assigned at creation
// and never changes, since renaming it would orphan the database file.
type Team struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DatabaseName string    `json:"database_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
