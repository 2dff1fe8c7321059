// Package teams manages teams and their memberships in the central store.
package teams

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coachdesk/coachdesk/internal/http/middleware"
	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/registry"
)

// Handler handles team management endpoints.
type Handler struct {
	logger      *slog.Logger
	db          *sql.DB
	teams       *registry.TeamsRepository
	users       *registry.UsersRepository
	memberships *registry.MembershipsRepository
}

// NewHandler creates a new teams handler.
func NewHandler(
	logger *slog.Logger,
	db *sql.DB,
	teams *registry.TeamsRepository,
	users *registry.UsersRepository,
	memberships *registry.MembershipsRepository,
) *Handler {
	return &Handler{
		logger:      logger,
		db:          db,
		teams:       teams,
		users:       users,
		memberships: memberships,
	}
}

// CreateRequest represents a team creation request.
type CreateRequest struct {
	Name string `json:"name"`
}

// AddUserRequest represents a membership addition request.
type AddUserRequest struct {
	Username string `json:"username"`
}

// MemberResponse represents a team member.
type MemberResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// List returns the teams the current user belongs to.
// GET /v1/teams
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mine, err := h.teams.ListByUserID(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list teams failed", "error", err, "user_id", principal.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list teams")
		return
	}
	if mine == nil {
		mine = []*domain.Team{}
	}
	httputil.JSON(w, http.StatusOK, mine)
}

// Create creates a team and makes the creator its first member. The team
// row and the membership commit together; a team without any member would
// be unreachable forever.
// POST /v1/teams
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	team, err := h.createWithMembership(r, principal.UserID, req.Name)
	if errors.Is(err, domain.ErrTeamAlreadyExists) {
		httputil.Error(w, http.StatusConflict, "a team with a similar name already exists")
		return
	}
	if err != nil {
		h.logger.Error("create team failed", "error", err, "user_id", principal.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create team")
		return
	}

	httputil.JSON(w, http.StatusCreated, team)
}

// createWithMembership inserts the team and the creator membership in one
// transaction. On a slug collision it retries with a numeric suffix.
func (h *Handler) createWithMembership(r *http.Request, userID int64, name string) (*domain.Team, error) {
	base := slugify(name)
	now := time.Now().UTC()

	for attempt := 1; attempt <= 5; attempt++ {
		slug := base
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		tx, err := h.db.BeginTx(r.Context(), nil)
		if err != nil {
			return nil, err
		}

		team := &domain.Team{Name: name, DatabaseName: slug, CreatedAt: now, UpdatedAt: now}
		if err := h.teams.CreateTx(r.Context(), tx, team); err != nil {
			_ = tx.Rollback()
			if errors.Is(err, domain.ErrTeamAlreadyExists) {
				continue
			}
			return nil, err
		}
		m := &domain.Membership{UserID: userID, TeamID: team.ID, CreatedAt: now}
		if err := h.memberships.AddTx(r.Context(), tx, m); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return team, nil
	}
	return nil, domain.ErrTeamAlreadyExists
}

// Get returns one of the current user's teams.
// GET /v1/teams/{teamID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	team, ok := h.resolveMemberTeam(w, r)
	if !ok {
		return
	}
	httputil.JSON(w, http.StatusOK, team)
}

// Delete removes a team from the central store. The team's database file
// stays on disk; only the registry entry and memberships go away.
// DELETE /v1/teams/{teamID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	team, ok := h.resolveMemberTeam(w, r)
	if !ok {
		return
	}
	if err := h.teams.Delete(r.Context(), team.ID); err != nil {
		h.logger.Error("delete team failed", "error", err, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete team")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns the members of one of the current user's teams.
// GET /v1/teams/{teamID}/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	team, ok := h.resolveMemberTeam(w, r)
	if !ok {
		return
	}

	members, err := h.memberships.ListUsers(r.Context(), team.ID)
	if err != nil {
		h.logger.Error("list members failed", "error", err, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	resp := make([]MemberResponse, 0, len(members))
	for _, u := range members {
		resp = append(resp, MemberResponse{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// AddUser adds a user to the team by username.
// POST /v1/teams/{teamID}/users
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	team, ok := h.resolveMemberTeam(w, r)
	if !ok {
		return
	}

	var req AddUserRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		httputil.Error(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("lookup user failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	m := &domain.Membership{UserID: user.ID, TeamID: team.ID, CreatedAt: time.Now().UTC()}
	if err := h.memberships.Add(r.Context(), m); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			httputil.Error(w, http.StatusConflict, "user is already a member")
			return
		}
		h.logger.Error("add member failed", "error", err, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	httputil.JSON(w, http.StatusCreated, MemberResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// RemoveUser removes a member from the team.
// DELETE /v1/teams/{teamID}/users/{userID}
func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	team, ok := h.resolveMemberTeam(w, r)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.memberships.Remove(r.Context(), userID, team.ID); err != nil {
		if errors.Is(err, domain.ErrNotAMember) {
			httputil.Error(w, http.StatusNotFound, "user is not a member")
			return
		}
		h.logger.Error("remove member failed", "error", err, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveMemberTeam parses {teamID}, loads the team and verifies the
// caller belongs to it. Writes the error response itself on failure.
func (h *Handler) resolveMemberTeam(w http.ResponseWriter, r *http.Request) (*domain.Team, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	teamID, err := strconv.ParseInt(chi.URLParam(r, "teamID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid team id")
		return nil, false
	}

	team, err := h.teams.GetByID(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			httputil.Error(w, http.StatusNotFound, "team not found")
			return nil, false
		}
		h.logger.Error("get team failed", "error", err, "team_id", teamID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load team")
		return nil, false
	}

	member, err := h.memberships.IsMember(r.Context(), principal.UserID, team.ID)
	if err != nil {
		h.logger.Error("membership check failed", "error", err, "team_id", team.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load team")
		return nil, false
	}
	if !member {
		httputil.Error(w, http.StatusForbidden, "not a member of this team")
		return nil, false
	}
	return team, true
}
