// Package data serves whole-database snapshots for offline-capable clients.
package data

import (
	"log/slog"
	"net/http"

	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/teamdata"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

// Handler handles data export endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new data handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// AllResponse is the full snapshot of a team's database.
type AllResponse struct {
	Team      *domain.Team      `json:"team"`
	Players   []domain.Player   `json:"players"`
	Positions []domain.Position `json:"positions"`
	Matches   []domain.Match    `json:"matches"`
}

// All returns players, positions and matches in one response.
// GET /v1/data/all
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	db := teamdb.DatabaseFrom(r.Context())

	players, err := teamdata.NewPlayersRepository(db).List(r.Context())
	if err != nil {
		h.logger.Error("snapshot players failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to export data")
		return
	}
	positions, err := teamdata.NewPositionsRepository(db).List(r.Context())
	if err != nil {
		h.logger.Error("snapshot positions failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to export data")
		return
	}
	matches, err := teamdata.NewMatchesRepository(db).List(r.Context())
	if err != nil {
		h.logger.Error("snapshot matches failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to export data")
		return
	}

	if players == nil {
		players = []domain.Player{}
	}
	if positions == nil {
		positions = []domain.Position{}
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	httputil.JSON(w, http.StatusOK, AllResponse{
		Team:      teamdb.TeamFrom(r.Context()),
		Players:   players,
		Positions: positions,
		Matches:   matches,
	})
}
