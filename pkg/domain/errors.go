package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Registry errors
var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamAlreadyExists = errors.New("team already exists")
	ErrNotAMember        = errors.New("user is not a member of this team")
	ErrAlreadyMember     = errors.New("user is already a member of this team")
)

// Team-scoped entity errors
var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPositionNotFound       = errors.New("position not found")
	ErrMatchNotFound          = errors.New("match not found")
	ErrCurrentMatchNotFound   = errors.New("no current match in progress")
	ErrMatchEventNotFound     = errors.New("match event not found")
	ErrFieldPositionNotFound  = errors.New("field position not found")
	ErrPlayerPositionNotFound = errors.New("player position not found")
)
