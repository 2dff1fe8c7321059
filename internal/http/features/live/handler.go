// Package live tracks a match in progress: one current match per team,
// with timestamped events.
package live

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

// Handler handles live match tracking endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new live handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// StartRequest starts live tracking for a match.
type StartRequest struct {
	MatchID   int64   `json:"match_id"`
	Formation *string `json:"formation,omitempty"`
}

// StatusRequest moves the live session to a new status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ScoreRequest updates the scoreboard.
type ScoreRequest struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// AssignRequest puts a player on a field position.
type AssignRequest struct {
	PlayerID        int64 `json:"player_id"`
	FieldPositionID int64 `json:"field_position_id"`
	IsStarting      bool  `json:"is_starting"`
}

// EventRequest records an in-match event.
type EventRequest struct {
	EventType       string  `json:"event_type"`
	PlayerID        *int64  `json:"player_id,omitempty"`
	PlayerOutID     *int64  `json:"player_out_id,omitempty"`
	PlayerInID      *int64  `json:"player_in_id,omitempty"`
	FieldPositionID *int64  `json:"field_position_id,omitempty"`
	MatchMinute     int     `json:"match_minute"`
	MatchSecond     int     `json:"match_second"`
	Notes           *string `json:"notes,omitempty"`
}

var validStatuses = map[string]bool{
	domain.MatchStatusSetup:      true,
	domain.MatchStatusFirstHalf:  true,
	domain.MatchStatusHalfTime:   true,
	domain.MatchStatusSecondHalf: true,
	domain.MatchStatusFinished:   true,
	domain.MatchStatusPaused:     true,
}

var validEventTypes = map[string]bool{
	domain.EventSubstitution:   true,
	domain.EventGoal:           true,
	domain.EventYellowCard:     true,
	domain.EventRedCard:        true,
	domain.EventPositionChange: true,
}

func repo(r *http.Request) *teamdata.LiveRepository {
	return teamdata.NewLiveRepository(teamdb.DatabaseFrom(r.Context()))
}

// Get returns the current live session.
// GET /v1/live
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cm, err := repo(r).Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load live match")
		return
	}
	httputil.JSON(w, http.StatusOK, cm)
}

// Start begins live tracking for a match, replacing any previous session.
// POST /v1/live
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MatchID == 0 {
		httputil.Error(w, http.StatusBadRequest, "match_id is required")
		return
	}

	matches := teamdata.NewMatchesRepository(teamdb.DatabaseFrom(r.Context()))
	if _, err := matches.GetByID(r.Context(), req.MatchID); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("get match failed", "error", err, "match_id", req.MatchID)
		httputil.Error(w, http.StatusInternalServerError, "failed to start live match")
		return
	}

	now := time.Now().UTC()
	cm := &domain.CurrentMatch{
		MatchID:   req.MatchID,
		Status:    domain.MatchStatusSetup,
		Formation: req.Formation,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo(r).Start(r.Context(), cm); err != nil {
		h.logger.Error("start live match failed", "error", err, "match_id", req.MatchID)
		httputil.Error(w, http.StatusInternalServerError, "failed to start live match")
		return
	}
	httputil.JSON(w, http.StatusCreated, cm)
}

// UpdateStatus moves the session through the match phases, maintaining
// the phase timestamps as it goes.
// PUT /v1/live/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validStatuses[req.Status] {
		httputil.Error(w, http.StatusBadRequest, "invalid status")
		return
	}

	rep := repo(r)
	cm, err := rep.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	now := time.Now().UTC()
	switch req.Status {
	case domain.MatchStatusFirstHalf:
		if cm.MatchStartTime == nil {
			cm.MatchStartTime = &now
		}
		if cm.FirstHalfStartTime == nil {
			cm.FirstHalfStartTime = &now
		}
	case domain.MatchStatusSecondHalf:
		if cm.SecondHalfStartTime == nil {
			cm.SecondHalfStartTime = &now
		}
	case domain.MatchStatusPaused:
		cm.LastPauseTime = &now
	}
	if cm.Status == domain.MatchStatusPaused && req.Status != domain.MatchStatusPaused && cm.LastPauseTime != nil {
		cm.TotalPauseSecs += int(now.Sub(*cm.LastPauseTime).Seconds())
	}
	cm.Status = req.Status
	cm.UpdatedAt = now

	if err := rep.Update(r.Context(), cm); err != nil {
		h.logger.Error("update live status failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	httputil.JSON(w, http.StatusOK, cm)
}

// UpdateScore updates the scoreboard.
// PUT /v1/live/score
func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HomeScore < 0 || req.AwayScore < 0 {
		httputil.Error(w, http.StatusBadRequest, "scores must be non-negative")
		return
	}

	rep := repo(r)
	cm, err := rep.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update score")
		return
	}

	cm.HomeScore = req.HomeScore
	cm.AwayScore = req.AwayScore
	cm.UpdatedAt = time.Now().UTC()
	if err := rep.Update(r.Context(), cm); err != nil {
		h.logger.Error("update score failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update score")
		return
	}
	httputil.JSON(w, http.StatusOK, cm)
}

// End stops live tracking and discards the session state.
// DELETE /v1/live
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	if err := repo(r).Clear(r.Context()); err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("end live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to end live match")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents returns the events of the current live session in order.
// GET /v1/live/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	rep := repo(r)
	cm, err := rep.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	events, err := rep.ListEvents(r.Context(), cm.ID)
	if err != nil {
		h.logger.Error("list events failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []domain.MatchEvent{}
	}
	httputil.JSON(w, http.StatusOK, events)
}

// AddEvent records an event against the current live session.
// POST /v1/live/events
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validEventTypes[req.EventType] {
		httputil.Error(w, http.StatusBadRequest, "invalid event type")
		return
	}
	if req.EventType == domain.EventSubstitution && (req.PlayerOutID == nil || req.PlayerInID == nil) {
		httputil.Error(w, http.StatusBadRequest, "substitution requires player_out_id and player_in_id")
		return
	}

	rep := repo(r)
	cm, err := rep.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to add event")
		return
	}

	event := &domain.MatchEvent{
		CurrentMatchID:  cm.ID,
		EventType:       req.EventType,
		PlayerID:        req.PlayerID,
		PlayerOutID:     req.PlayerOutID,
		PlayerInID:      req.PlayerInID,
		FieldPositionID: req.FieldPositionID,
		MatchMinute:     req.MatchMinute,
		MatchSecond:     req.MatchSecond,
		Notes:           req.Notes,
		EventTime:       time.Now().UTC(),
	}
	if err := rep.AddEvent(r.Context(), event); err != nil {
		h.logger.Error("add event failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to add event")
		return
	}
	httputil.JSON(w, http.StatusCreated, event)
}

// currentSession loads the live session or writes the error response,
// returning nil when the caller should stop.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) *domain.CurrentMatch {
	cm, err := repo(r).Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCurrentMatchNotFound) {
			httputil.Error(w, http.StatusNotFound, "no live match")
			return nil
		}
		h.logger.Error("get live match failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load live match")
		return nil
	}
	return cm
}

// ListPositions returns every player-position assignment of the session.
// GET /v1/live/positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	cm := h.currentSession(w, r)
	if cm == nil {
		return
	}

	positions, err := teamdata.NewPlayerPositionsRepository(teamdb.DatabaseFrom(r.Context())).
		ListByCurrentMatch(r.Context(), cm.ID)
	if err != nil {
		h.logger.Error("list player positions failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list player positions")
		return
	}
	if positions == nil {
		positions = []domain.PlayerPosition{}
	}
	httputil.JSON(w, http.StatusOK, positions)
}

// ListActivePositions returns only the players currently on the pitch.
// GET /v1/live/positions/active
func (h *Handler) ListActivePositions(w http.ResponseWriter, r *http.Request) {
	cm := h.currentSession(w, r)
	if cm == nil {
		return
	}

	positions, err := teamdata.NewPlayerPositionsRepository(teamdb.DatabaseFrom(r.Context())).
		ListActive(r.Context(), cm.ID)
	if err != nil {
		h.logger.Error("list active player positions failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list player positions")
		return
	}
	if positions == nil {
		positions = []domain.PlayerPosition{}
	}
	httputil.JSON(w, http.StatusOK, positions)
}

// AssignPosition places a player on a field position, ending any position
// the player already held in this session.
// POST /v1/live/positions
func (h *Handler) AssignPosition(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == 0 || req.FieldPositionID == 0 {
		httputil.Error(w, http.StatusBadRequest, "player_id and field_position_id are required")
		return
	}

	cm := h.currentSession(w, r)
	if cm == nil {
		return
	}

	db := teamdb.DatabaseFrom(r.Context())
	if _, err := teamdata.NewPlayersRepository(db).GetByID(r.Context(), req.PlayerID); err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			httputil.Error(w, http.StatusNotFound, "player not found")
			return
		}
		h.logger.Error("get player failed", "error", err, "player_id", req.PlayerID)
		httputil.Error(w, http.StatusInternalServerError, "failed to assign position")
		return
	}
	if _, err := teamdata.NewFieldPositionsRepository(db).GetByID(r.Context(), req.FieldPositionID); err != nil {
		if errors.Is(err, domain.ErrFieldPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "field position not found")
			return
		}
		h.logger.Error("get field position failed", "error", err, "field_position_id", req.FieldPositionID)
		httputil.Error(w, http.StatusInternalServerError, "failed to assign position")
		return
	}

	now := time.Now().UTC()
	pp := &domain.PlayerPosition{
		CurrentMatchID:  cm.ID,
		PlayerID:        req.PlayerID,
		FieldPositionID: req.FieldPositionID,
		StartTime:       &now,
		IsStarting:      req.IsStarting,
		IsActive:        true,
	}
	if err := teamdata.NewPlayerPositionsRepository(db).Assign(r.Context(), pp); err != nil {
		h.logger.Error("assign player position failed", "error", err, "player_id", req.PlayerID)
		httputil.Error(w, http.StatusInternalServerError, "failed to assign position")
		return
	}
	httputil.JSON(w, http.StatusCreated, pp)
}

// EndPosition takes a player off their field position without assigning a
// new one, as when a player is substituted off.
// PUT /v1/live/positions/{positionID}/end
func (h *Handler) EndPosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid position id")
		return
	}

	rep := teamdata.NewPlayerPositionsRepository(teamdb.DatabaseFrom(r.Context()))
	if err := rep.End(r.Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrPlayerPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "player position not found")
			return
		}
		h.logger.Error("end player position failed", "error", err, "position_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to end position")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePosition removes an assignment outright, for undoing mistakes.
// DELETE /v1/live/positions/{positionID}
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid position id")
		return
	}

	rep := teamdata.NewPlayerPositionsRepository(teamdb.DatabaseFrom(r.Context()))
	if err := rep.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPlayerPositionNotFound) {
			httputil.Error(w, http.StatusNotFound, "player position not found")
			return
		}
		h.logger.Error("delete player position failed", "error", err, "position_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete position")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent removes a recorded event, for undoing mistakes mid-match.
// DELETE /v1/live/events/{eventID}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := repo(r).DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMatchEventNotFound) {
			httputil.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.logger.Error("delete event failed", "error", err, "event_id", id)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
