// Package fieldpositions serves the pitch layout a team's live tracking
// places players on. The layout is seeded at provisioning time and
// read-only over HTTP.
package fieldpositions

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

// Handler handles field position endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new field positions handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func repo(r *http.Request) *teamdata.FieldPositionsRepository {
	return teamdata.NewFieldPositionsRepository(teamdb.DatabaseFrom(r.Context()))
}

// List returns the full layout, goal line outward.
// GET /v1/field-positions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	positions, err := repo(r).List(r.Context())
	if err != nil {
		h.logger.Error("list field positions failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list field positions")
		return
	}
	if positions == nil {
		positions = []domain.FieldPosition{}
	}
	httputil.JSON(w, http.StatusOK, positions)
}

// ListByZone returns the positions of one zone. An unknown zone is an
// empty list, not an error.
// GET /v1/field-positions/zone/{zone}
func (h *Handler) ListByZone(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")
	positions, err := repo(r).ListByZone(r.Context(), zone)
	if err != nil {
		h.logger.Error("list field positions by zone failed", "error", err, "zone", zone)
		httputil.Error(w, http.StatusInternalServerError, "failed to list field positions")
		return
	}
	if positions == nil {
		positions = []domain.FieldPosition{}
	}
	httputil.JSON(w, http.StatusOK, positions)
}

// Get returns a single field position.
// GET /v1/field-positions/{fieldPositionID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fieldPositionID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid field position id")
		return
	}

	fp, err := repo(r).GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrFieldPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "field position not found")
			return
		}
		h.logger.Error("get field position failed", "error", err, "field_position_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to load field position")
		return
	}
	httputil.JSON(w, http.StatusOK, fp)
}
