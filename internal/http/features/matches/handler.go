// Package matches manages a team's fixtures.
package matches

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/teamdata"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

// Handler handles match endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new matches handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// MatchRequest represents a create or update request.
type MatchRequest struct {
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	HomeGame bool      `json:"home_game"`
	Result   *string   `json:"result,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

func repo(r *http.Request) *teamdata.MatchesRepository {
	return teamdata.NewMatchesRepository(teamdb.DatabaseFrom(r.Context()))
}

// List returns all matches in date order.
// GET /v1/matches
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := repo(r).List(r.Context())
	if err != nil {
		h.logger.Error("list matches failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	httputil.JSON(w, http.StatusOK, matches)
}

// Get returns a single match.
// GET /v1/matches/{matchID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	match, err := repo(r).GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("get match failed", "error", err, "match_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to load match")
		return
	}
	httputil.JSON(w, http.StatusOK, match)
}

// Create schedules a match.
// POST /v1/matches
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Opponent == "" || req.Date.IsZero() {
		httputil.Error(w, http.StatusBadRequest, "date and opponent are required")
		return
	}

	match := &domain.Match{
		Date:     req.Date,
		Opponent: req.Opponent,
		HomeGame: req.HomeGame,
		Result:   req.Result,
		Notes:    req.Notes,
	}
	if err := repo(r).Create(r.Context(), match); err != nil {
		h.logger.Error("create match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to create match")
		return
	}
	httputil.JSON(w, http.StatusCreated, match)
}

// Update replaces a match's details.
// PUT /v1/matches/{matchID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req MatchRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Opponent == "" || req.Date.IsZero() {
		httputil.Error(w, http.StatusBadRequest, "date and opponent are required")
		return
	}

	match := &domain.Match{
		ID:       id,
		Date:     req.Date,
		Opponent: req.Opponent,
		HomeGame: req.HomeGame,
		Result:   req.Result,
		Notes:    req.Notes,
	}
	if err := repo(r).Update(r.Context(), match); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("update match failed", "error", err, "match_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to update match")
		return
	}
	httputil.JSON(w, http.StatusOK, match)
}

// Delete removes a match and its gameplay records.
// DELETE /v1/matches/{matchID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	if err := repo(r).Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("delete match failed", "error", err, "match_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete match")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGameplay returns the per-player statistics for a match.
// GET /v1/matches/{matchID}/gameplay
func (h *Handler) ListGameplay(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid match id")
		return
	}

	rep := repo(r)
	if _, err := rep.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("get match failed", "error", err, "match_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to load match")
		return
	}

	entries, err := rep.ListGameplay(r.Context(), id)
	if err != nil {
		h.logger.Error("list gameplay failed", "error", err, "match_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to list gameplay")
		return
	}
	if entries == nil {
		entries = []domain.Gameplay{}
	}
	httputil.JSON(w, http.StatusOK, entries)
}
