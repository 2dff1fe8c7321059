package domain

import "time"

// Match is a scheduled or played fixture.
type Match struct {
	ID       int64     `json:"id"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	HomeGame bool      `json:"home_game"`
	Result   *string   `json:"result,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

// Gameplay records one player's contribution to one match.
type Gameplay struct {
	ID            int64    `json:"id"`
	MatchID       int64    `json:"match_id"`
	PlayerID      int64    `json:"player_id"`
	MinutesPlayed *int     `json:"minutes_played,omitempty"`
	Goals         int      `json:"goals"`
	Assists       int      `json:"assists"`
	YellowCards   int      `json:"yellow_cards"`
	RedCards      int      `json:"red_cards"`
	Rating        *float64 `json:"rating,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}
