package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/http/features/authn"
	"github.com/coachdesk/coachdesk/internal/http/features/data"
	"github.com/coachdesk/coachdesk/internal/http/features/fieldpositions"
	"github.com/coachdesk/coachdesk/internal/http/features/live"
	"github.com/coachdesk/coachdesk/internal/http/features/matches"
	"github.com/coachdesk/coachdesk/internal/http/features/me"
	"github.com/coachdesk/coachdesk/internal/http/features/players"
	"github.com/coachdesk/coachdesk/internal/http/features/positions"
	"github.com/coachdesk/coachdesk/internal/http/features/teams"
	"github.com/coachdesk/coachdesk/internal/http/middleware"
	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/auth"
	"github.com/coachdesk/coachdesk/pkg/registry"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger     *slog.Logger
	Config     *config.Config
	Tokens     *auth.TokenService
	RegistryDB *sql.DB
	Manager    *teamdb.Manager
}

// NewRouter creates a new HTTP router with all routes registered.
// Authentication and team management live outside the tenant middleware;
// everything that touches a team's own data sits behind it.
func NewRouter(cfg RouterConfig) http.Handler {
	users := registry.NewUsersRepository(cfg.RegistryDB)
	teamsRepo := registry.NewTeamsRepository(cfg.RegistryDB)
	memberships := registry.NewMembershipsRepository(cfg.RegistryDB)

	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimit(maxRequestBodySize))

	// Health check and metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(cfg.Tokens)
	requireTeam := middleware.TeamDB(middleware.TeamDBConfig{
		Logger:            cfg.Logger,
		Manager:           cfg.Manager,
		Teams:             teamsRepo,
		Memberships:       memberships,
		RecheckMembership: cfg.Config.RecheckMembership,
	})
	authRateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Requests: cfg.Config.RateLimit,
		Window:   cfg.Config.RateLimitWindow,
		Logger:   cfg.Logger,
	})

	// Authentication
	authnHandler := authn.NewHandler(cfg.Logger, cfg.Tokens, users, teamsRepo, memberships)
	r.Group(func(r chi.Router) {
		r.Use(authRateLimit)
		r.Post("/v1/auth/register", authnHandler.Register)
		r.Post("/v1/auth/login", authnHandler.Login)
	})
	r.With(requireAuth).Post("/v1/auth/select-team", authnHandler.SelectTeam)
	r.Post("/v1/auth/logout", authnHandler.Logout)

	// User profile
	meHandler := me.NewHandler(users)
	r.With(requireAuth).Get("/v1/me", meHandler.GetMe)

	// Team management (central store, no tenant database involved)
	teamsHandler := teams.NewHandler(cfg.Logger, cfg.RegistryDB, teamsRepo, users, memberships)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/v1/teams", teamsHandler.List)
		r.Post("/v1/teams", teamsHandler.Create)
		r.Get("/v1/teams/{teamID}", teamsHandler.Get)
		r.Delete("/v1/teams/{teamID}", teamsHandler.Delete)
		r.Get("/v1/teams/{teamID}/users", teamsHandler.ListUsers)
		r.Post("/v1/teams/{teamID}/users", teamsHandler.AddUser)
		r.Delete("/v1/teams/{teamID}/users/{userID}", teamsHandler.RemoveUser)
	})

	// Team-scoped routes
	playersHandler := players.NewHandler(cfg.Logger)
	positionsHandler := positions.NewHandler(cfg.Logger)
	fieldPositionsHandler := fieldpositions.NewHandler(cfg.Logger)
	matchesHandler := matches.NewHandler(cfg.Logger)
	liveHandler := live.NewHandler(cfg.Logger)
	dataHandler := data.NewHandler(cfg.Logger)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireTeam)

		r.Get("/v1/players", playersHandler.List)
		r.Post("/v1/players", playersHandler.Create)
		r.Get("/v1/players/{playerID}", playersHandler.Get)
		r.Put("/v1/players/{playerID}", playersHandler.Update)
		r.Delete("/v1/players/{playerID}", playersHandler.Delete)

		r.Get("/v1/positions", positionsHandler.List)
		r.Post("/v1/positions", positionsHandler.Create)
		r.Put("/v1/positions/{positionID}", positionsHandler.Update)
		r.Delete("/v1/positions/{positionID}", positionsHandler.Delete)

		r.Get("/v1/field-positions", fieldPositionsHandler.List)
		r.Get("/v1/field-positions/zone/{zone}", fieldPositionsHandler.ListByZone)
		r.Get("/v1/field-positions/{fieldPositionID}", fieldPositionsHandler.Get)

		r.Get("/v1/matches", matchesHandler.List)
		r.Post("/v1/matches", matchesHandler.Create)
		r.Get("/v1/matches/{matchID}", matchesHandler.Get)
		r.Put("/v1/matches/{matchID}", matchesHandler.Update)
		r.Delete("/v1/matches/{matchID}", matchesHandler.Delete)
		r.Get("/v1/matches/{matchID}/gameplay", matchesHandler.ListGameplay)

		r.Get("/v1/live", liveHandler.Get)
		r.Post("/v1/live", liveHandler.Start)
		r.Delete("/v1/live", liveHandler.End)
		r.Put("/v1/live/status", liveHandler.UpdateStatus)
		r.Put("/v1/live/score", liveHandler.UpdateScore)
		r.Get("/v1/live/events", liveHandler.ListEvents)
		r.Post("/v1/live/events", liveHandler.AddEvent)
		r.Delete("/v1/live/events/{eventID}", liveHandler.DeleteEvent)
		r.Get("/v1/live/positions", liveHandler.ListPositions)
		r.Get("/v1/live/positions/active", liveHandler.ListActivePositions)
		r.Post("/v1/live/positions", liveHandler.AssignPosition)
		r.Put("/v1/live/positions/{positionID}/end", liveHandler.EndPosition)
		r.Delete("/v1/live/positions/{positionID}", liveHandler.DeletePosition)

		r.Get("/v1/data/all", dataHandler.All)
	})

	return r
}
