// Package me exposes the current user's profile.
package me

import (
	"net/http"
	"time"

	"github.com/coachdesk/coachdesk/internal/http/middleware"
	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/registry"
)

// Handler handles user profile endpoints.
type Handler struct {
	users *registry.UsersRepository
}

// NewHandler creates a new me handler.
func NewHandler(users *registry.UsersRepository) *Handler {
	return &Handler{users: users}
}

// UserResponse represents the user profile response.
type UserResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	TeamID    *int64     `json:"team_id,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// GetMe returns the current user's profile, including the selected team.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "user not found")
		return
	}

	httputil.JSON(w, http.StatusOK, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TeamID:    principal.TeamID,
		LastLogin: user.LastLogin,
	})
}
