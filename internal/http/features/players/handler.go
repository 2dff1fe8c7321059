// Package players manages a team's squad.
package players

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/teamdata"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

// Handler handles player endpoints. All routes run behind tenant
// resolution, so the team database is always present on the context.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new players handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// PlayerRequest represents a create or update request.
type PlayerRequest struct {
	Name       string  `json:"name"`
	PositionID int64   `json:"position_id"`
	Notes      *string `json:"notes,omitempty"`
}

func repo(r *http.Request) *teamdata.PlayersRepository {
	return teamdata.NewPlayersRepository(teamdb.DatabaseFrom(r.Context()))
}

// List returns all players, ordered by name.
// GET /v1/players
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	players, err := repo(r).List(r.Context())
	if err != nil {
		h.logger.Error("list players failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list players")
		return
	}
	if players == nil {
		players = []domain.Player{}
	}
	httputil.JSON(w, http.StatusOK, players)
}

// Get returns a single player.
// GET /v1/players/{playerID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid player id")
		return
	}

	player, err := repo(r).GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			httputil.Error(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error("get player failed", "error", err, "player_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to load player")
		return
	}
	httputil.JSON(w, http.StatusOK, player)
}

// Create adds a player to the squad.
// POST /v1/players
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.PositionID == 0 {
		httputil.Error(w, http.StatusBadRequest, "name and position_id are required")
		return
	}

	player := &domain.Player{Name: req.Name, PositionID: req.PositionID, Notes: req.Notes}
	if err := repo(r).Create(r.Context(), player); err != nil {
		h.logger.Error("create player failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to create player")
		return
	}
	httputil.JSON(w, http.StatusCreated, player)
}

// Update replaces a player's details.
// PUT /v1/players/{playerID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid player id")
		return
	}

	var req PlayerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.PositionID == 0 {
		httputil.Error(w, http.StatusBadRequest, "name and position_id are required")
		return
	}

	player := &domain.Player{ID: id, Name: req.Name, PositionID: req.PositionID, Notes: req.Notes}
	if err := repo(r).Update(r.Context(), player); err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			httputil.Error(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error("update player failed", "error", err, "player_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to update player")
		return
	}
	httputil.JSON(w, http.StatusOK, player)
}

// Delete removes a player.
// DELETE /v1/players/{playerID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid player id")
		return
	}

	if err := repo(r).Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			httputil.Error(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error("delete player failed", "error", err, "player_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete player")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
