// Package authn handles registration, login, team selection and logout.
package authn

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coachdesk/coachdesk/internal/http/middleware"
	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/auth"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/registry"
)

// Handler handles authentication endpoints.
type Handler struct {
	logger       *slog.Logger
	tokens       *auth.TokenService
	users        *registry.UsersRepository
	teams        *registry.TeamsRepository
	memberships  *registry.MembershipsRepository
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new authentication handler.
func NewHandler(
	logger *slog.Logger,
	tokens *auth.TokenService,
	users *registry.UsersRepository,
	teams *registry.TeamsRepository,
	memberships *registry.MembershipsRepository,
) *Handler {
	return &Handler{
		logger:       logger,
		tokens:       tokens,
		users:        users,
		teams:        teams,
		memberships:  memberships,
		cookieConfig: httputil.DefaultCookieConfig(),
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SelectTeamRequest represents a team selection request.
type SelectTeamRequest struct {
	TeamID int64 `json:"team_id"`
}

// TokenResponse represents a token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Register handles user registration.
// POST /v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		httputil.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("create user failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.issueToken(w, user, nil, http.StatusCreated)
}

// Login verifies credentials and issues a token without a team claim.
// The client has to select a team before any team-scoped endpoint works.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		// Same response as a wrong password to prevent user enumeration.
		httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		h.logger.Warn("update last login failed", "error", err, "user_id", user.ID)
	}

	h.issueToken(w, user, nil, http.StatusOK)
}

// SelectTeam verifies membership and re-issues the token with a team claim.
// POST /v1/auth/select-team
func (h *Handler) SelectTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SelectTeamRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.teams.GetByID(r.Context(), req.TeamID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			httputil.Error(w, http.StatusNotFound, "team not found")
			return
		}
		h.logger.Error("get team failed", "error", err, "team_id", req.TeamID)
		httputil.Error(w, http.StatusInternalServerError, "team selection failed")
		return
	}

	member, err := h.memberships.IsMember(r.Context(), principal.UserID, team.ID)
	if err != nil {
		h.logger.Error("membership check failed", "error", err, "user_id", principal.UserID, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "team selection failed")
		return
	}
	if !member {
		httputil.Error(w, http.StatusForbidden, "not a member of this team")
		return
	}

	user, err := h.users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.issueToken(w, user, &team.ID, http.StatusOK)
}

// Logout clears the auth cookie. Tokens themselves stay valid until they
// expire; there is no server-side session to revoke.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearAuthCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issueToken(w http.ResponseWriter, user *domain.User, teamID *int64, status int) {
	token, err := h.tokens.Issue(user, teamID)
	if err != nil {
		h.logger.Error("issue token failed", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	httputil.SetAuthCookie(w, token, h.tokens.TTL(), h.cookieConfig)
	httputil.JSON(w, status, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
	})
}
