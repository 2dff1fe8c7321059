package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/pkg/auth"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/registry"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	db, err := registry.Open(filepath.Join(dir, "registry.db"))
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := registry.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("migrate registry: %v", err)
	}

	manager, err := teamdb.NewManager(teamdb.Config{BaseDir: filepath.Join(dir, "teams")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret-at-least-32-bytes-long!"),
		Issuer: "coachdesk-test",
		TTL:    time.Hour,
	})

	return NewRouter(RouterConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			RateLimit:       1000,
			RateLimitWindow: time.Minute,
		},
		Tokens:     tokens,
		RegistryDB: db,
		Manager:    manager,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[tokenResponse](t, rec).AccessToken
}

func TestHealthEndpointIsOpen(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestFullTeamLifecycle(t *testing.T) {
	h := newTestServer(t)

	token := registerAndLogin(t, h, "coach")

	// Without a selected team, team-scoped endpoints are off limits.
	rec := doJSON(t, h, http.MethodGet, "/v1/players", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("players before team selection: status = %d, want 403", rec.Code)
	}

	// Create a team; the creator becomes its first member.
	rec = doJSON(t, h, http.MethodPost, "/v1/teams", token, map[string]string{"name": "BK Lions"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team status = %d: %s", rec.Code, rec.Body.String())
	}
	team := decodeBody[domain.Team](t, rec)
	if team.DatabaseName != "bk-lions" {
		t.Errorf("database name = %q, want bk-lions", team.DatabaseName)
	}

	// Select the team; a new token with the team claim comes back.
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", token, map[string]int64{"team_id": team.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("select team status = %d: %s", rec.Code, rec.Body.String())
	}
	teamToken := decodeBody[tokenResponse](t, rec).AccessToken

	// The team database is provisioned on first use with seeded positions.
	rec = doJSON(t, h, http.MethodGet, "/v1/positions", teamToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list positions status = %d: %s", rec.Code, rec.Body.String())
	}
	positions := decodeBody[[]domain.Position](t, rec)
	if len(positions) != 4 {
		t.Fatalf("expected 4 seeded positions, got %d", len(positions))
	}

	// Add and read back a player.
	rec = doJSON(t, h, http.MethodPost, "/v1/players", teamToken, map[string]any{
		"name":        "Anna",
		"position_id": positions[0].ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create player status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/players", teamToken, nil)
	players := decodeBody[[]domain.Player](t, rec)
	if len(players) != 1 || players[0].Name != "Anna" {
		t.Fatalf("unexpected players: %+v", players)
	}

	// The snapshot endpoint bundles everything.
	rec = doJSON(t, h, http.MethodGet, "/v1/data/all", teamToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("data/all status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSelectTeamRequiresMembership(t *testing.T) {
	h := newTestServer(t)

	owner := registerAndLogin(t, h, "owner")
	rec := doJSON(t, h, http.MethodPost, "/v1/teams", owner, map[string]string{"name": "Lions"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team status = %d", rec.Code)
	}
	team := decodeBody[domain.Team](t, rec)

	outsider := registerAndLogin(t, h, "outsider")
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", outsider, map[string]int64{"team_id": team.ID})
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider select-team status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", outsider, map[string]int64{"team_id": 999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown team select-team status = %d, want 404", rec.Code)
	}
}

func TestTeamDataIsIsolatedBetweenTeams(t *testing.T) {
	h := newTestServer(t)

	token := registerAndLogin(t, h, "coach")

	var teamTokens []string
	for _, name := range []string{"Lions", "Tigers"} {
		rec := doJSON(t, h, http.MethodPost, "/v1/teams", token, map[string]string{"name": name})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create team %s status = %d", name, rec.Code)
		}
		team := decodeBody[domain.Team](t, rec)

		rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", token, map[string]int64{"team_id": team.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("select team %s status = %d", name, rec.Code)
		}
		teamTokens = append(teamTokens, decodeBody[tokenResponse](t, rec).AccessToken)
	}

	// Add a player to the first team only.
	rec := doJSON(t, h, http.MethodPost, "/v1/players", teamTokens[0], map[string]any{
		"name":        "Anna",
		"position_id": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create player status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/players", teamTokens[1], nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list players status = %d", rec.Code)
	}
	others := decodeBody[[]domain.Player](t, rec)
	if len(others) != 0 {
		t.Errorf("second team sees %d players from the first team", len(others))
	}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/v1/me", "/v1/teams", "/v1/players", "/v1/live"} {
		rec := doJSON(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestLiveTrackingFlow(t *testing.T) {
	h := newTestServer(t)

	token := registerAndLogin(t, h, "coach")
	rec := doJSON(t, h, http.MethodPost, "/v1/teams", token, map[string]string{"name": "Lions"})
	team := decodeBody[domain.Team](t, rec)
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", token, map[string]int64{"team_id": team.ID})
	teamToken := decodeBody[tokenResponse](t, rec).AccessToken

	// No live match yet.
	rec = doJSON(t, h, http.MethodGet, "/v1/live", teamToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("live before start: status = %d, want 404", rec.Code)
	}

	// Schedule a match and start tracking it.
	rec = doJSON(t, h, http.MethodPost, "/v1/matches", teamToken, map[string]any{
		"date":      time.Now().UTC(),
		"opponent":  "IFK",
		"home_game": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create match status = %d: %s", rec.Code, rec.Body.String())
	}
	match := decodeBody[domain.Match](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/v1/live", teamToken, map[string]int64{"match_id": match.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start live status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/v1/live/status", teamToken, map[string]string{"status": "first_half"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	cm := decodeBody[domain.CurrentMatch](t, rec)
	if cm.Status != domain.MatchStatusFirstHalf || cm.MatchStartTime == nil {
		t.Errorf("unexpected live state: %+v", cm)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/live/events", teamToken, map[string]any{
		"event_type":   "goal",
		"match_minute": 12,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add event status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/live/events", teamToken, nil)
	events := decodeBody[[]domain.MatchEvent](t, rec)
	if len(events) != 1 || events[0].EventType != domain.EventGoal {
		t.Fatalf("unexpected events: %+v", events)
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/live", teamToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("end live status = %d", rec.Code)
	}
}

func TestFieldPositionsAndLineup(t *testing.T) {
	h := newTestServer(t)

	token := registerAndLogin(t, h, "coach")
	rec := doJSON(t, h, http.MethodPost, "/v1/teams", token, map[string]string{"name": "Lions"})
	team := decodeBody[domain.Team](t, rec)
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/select-team", token, map[string]int64{"team_id": team.ID})
	teamToken := decodeBody[tokenResponse](t, rec).AccessToken

	// The pitch layout is seeded with provisioning.
	rec = doJSON(t, h, http.MethodGet, "/v1/field-positions", teamToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list field positions status = %d: %s", rec.Code, rec.Body.String())
	}
	layout := decodeBody[[]domain.FieldPosition](t, rec)
	if len(layout) != 8 {
		t.Fatalf("expected 8 field positions, got %d", len(layout))
	}
	if layout[0].Zone != domain.ZoneGoalkeeper {
		t.Errorf("expected goalkeeper first, got %+v", layout[0])
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/field-positions/zone/defense", teamToken, nil)
	defense := decodeBody[[]domain.FieldPosition](t, rec)
	if len(defense) != 3 {
		t.Errorf("expected 3 defense positions, got %d", len(defense))
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/v1/field-positions/%d", layout[0].ID), teamToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get field position status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/field-positions/9999", teamToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown field position status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/players", teamToken, map[string]any{
		"name":        "Anna",
		"position_id": 1,
	})
	player := decodeBody[domain.Player](t, rec)

	// Assignments need a live session.
	rec = doJSON(t, h, http.MethodPost, "/v1/live/positions", teamToken, map[string]any{
		"player_id":         player.ID,
		"field_position_id": layout[0].ID,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("assign without session status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/matches", teamToken, map[string]any{
		"date":      time.Now().UTC(),
		"opponent":  "IFK",
		"home_game": true,
	})
	match := decodeBody[domain.Match](t, rec)
	rec = doJSON(t, h, http.MethodPost, "/v1/live", teamToken, map[string]int64{"match_id": match.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start live status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/live/positions", teamToken, map[string]any{
		"player_id":         player.ID,
		"field_position_id": layout[0].ID,
		"is_starting":       true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign status = %d: %s", rec.Code, rec.Body.String())
	}

	// Moving the player ends the first assignment.
	rec = doJSON(t, h, http.MethodPost, "/v1/live/positions", teamToken, map[string]any{
		"player_id":         player.ID,
		"field_position_id": layout[5].ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reassign status = %d: %s", rec.Code, rec.Body.String())
	}
	assignment := decodeBody[domain.PlayerPosition](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/v1/live/positions/active", teamToken, nil)
	active := decodeBody[[]domain.PlayerPosition](t, rec)
	if len(active) != 1 || active[0].FieldPositionID != layout[5].ID {
		t.Fatalf("unexpected active assignments: %+v", active)
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/live/positions", teamToken, nil)
	all := decodeBody[[]domain.PlayerPosition](t, rec)
	if len(all) != 2 {
		t.Fatalf("expected 2 assignments in history, got %d", len(all))
	}

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/v1/live/positions/%d/end", assignment.ID), teamToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("end assignment status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/live/positions/active", teamToken, nil)
	active = decodeBody[[]domain.PlayerPosition](t, rec)
	if len(active) != 0 {
		t.Errorf("expected empty pitch after ending assignment, got %+v", active)
	}

	// Unknown references are rejected before anything is written.
	rec = doJSON(t, h, http.MethodPost, "/v1/live/positions", teamToken, map[string]any{
		"player_id":         int64(9999),
		"field_position_id": layout[0].ID,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("assign unknown player status = %d, want 404", rec.Code)
	}
}
