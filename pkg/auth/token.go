package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// DefaultTokenTTL matches the original one-hour session length.
const DefaultTokenTTL = time.Hour

// TokenConfig holds token service configuration.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Claims are the JWT claims carried by an access token. TeamID is a
// string-encoded team identifier and is only present after the user has
// selected a team.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

// Principal is the typed identity resolved once from a validated token.
// TeamID is nil until a team has been selected.
type Principal struct {
	UserID   int64
	Username string
	TeamID   *int64
}

// Principal parses the string-encoded claim fields into a typed principal.
func (c *Claims) Principal() (*Principal, error) {
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	p := &Principal{UserID: userID, Username: c.Username}
	if c.TeamID != "" {
		teamID, err := strconv.ParseInt(c.TeamID, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidToken
		}
		p.TeamID = &teamID
	}
	return p, nil
}

// TokenService issues and validates access tokens.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a new token service.
func NewTokenService(config TokenConfig) *TokenService {
	if config.TTL == 0 {
		config.TTL = DefaultTokenTTL
	}
	return &TokenService{config: config}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.config.TTL
}

// Issue creates a signed token for the user. A non-nil teamID embeds the
// team claim; login issues tokens without one, select-team re-issues with
// it after the membership check.
func (s *TokenService) Issue(user *domain.User, teamID *int64) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			Issuer:    s.config.Issuer,
		},
		Username: user.Username,
	}
	if teamID != nil {
		claims.TeamID = strconv.FormatInt(*teamID, 10)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.Secret)
}

// Validate parses and verifies a token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
