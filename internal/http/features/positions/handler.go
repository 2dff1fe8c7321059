// Package positions manages a team's playing positions.
package positions

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

// Handler handles position endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new positions handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// PositionRequest represents a create or update request.
type PositionRequest struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

func repo(r *http.Request) *teamdata.PositionsRepository {
	return teamdata.NewPositionsRepository(teamdb.DatabaseFrom(r.Context()))
}

// List returns all positions, the seeded baseline included.
// GET /v1/positions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	positions, err := repo(r).List(r.Context())
	if err != nil {
		h.logger.Error("list positions failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	if positions == nil {
		positions = []domain.Position{}
	}
	httputil.JSON(w, http.StatusOK, positions)
}

// Create adds a position.
// POST /v1/positions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Abbreviation == "" {
		httputil.Error(w, http.StatusBadRequest, "name and abbreviation are required")
		return
	}

	position := &domain.Position{Name: req.Name, Abbreviation: req.Abbreviation}
	if err := repo(r).Create(r.Context(), position); err != nil {
		h.logger.Error("create position failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to create position")
		return
	}
	httputil.JSON(w, http.StatusCreated, position)
}

// Update replaces a position's details.
// PUT /v1/positions/{positionID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid position id")
		return
	}

	var req PositionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Abbreviation == "" {
		httputil.Error(w, http.StatusBadRequest, "name and abbreviation are required")
		return
	}

	position := &domain.Position{ID: id, Name: req.Name, Abbreviation: req.Abbreviation}
	if err := repo(r).Update(r.Context(), position); err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "position not found")
			return
		}
		h.logger.Error("update position failed", "error", err, "position_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to update position")
		return
	}
	httputil.JSON(w, http.StatusOK, position)
}

// Delete removes a position. Fails if players still reference it.
// DELETE /v1/positions/{positionID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid position id")
		return
	}

	if err := repo(r).Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "position not found")
			return
		}
		// FK restriction: players still assigned to this position.
		httputil.Error(w, http.StatusConflict, "position is still in use")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
