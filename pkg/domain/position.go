package domain

// Position is a playing position (goalkeeper, defender, ...). Every team
// database is seeded with a baseline set at provisioning time.
type Position struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}
