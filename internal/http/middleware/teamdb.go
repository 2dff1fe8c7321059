package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/coachdesk/coachdesk/internal/httputil"
	"github.com/coachdesk/coachdesk/pkg/domain"
	"github.com/coachdesk/coachdesk/pkg/registry"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

// TeamDBConfig wires the tenant resolution middleware.
type TeamDBConfig struct {
	Logger      *slog.Logger
	Manager     *teamdb.Manager
	Teams       *registry.TeamsRepository
	Memberships *registry.MembershipsRepository

	// RecheckMembership re-verifies membership against the central store on
	// every request instead of trusting the team claim until token expiry.
	RecheckMembership bool
}

// TeamDB creates the middleware that resolves the team claim to an open,
// provisioned team database handle and attaches it to the request context.
// Routes behind it can assume a database is present; everything that can go
// wrong with tenant resolution is rejected here.
func TeamDB(cfg TeamDBConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				httputil.Error(w, http.StatusForbidden, "not authenticated")
				return
			}
			if principal.TeamID == nil {
				httputil.Error(w, http.StatusForbidden, "no team selected")
				return
			}

			team, err := cfg.Teams.GetByID(r.Context(), *principal.TeamID)
			if errors.Is(err, domain.ErrTeamNotFound) {
				httputil.Error(w, http.StatusBadRequest, "invalid team")
				return
			}
			if err != nil {
				cfg.fail(w, r, "resolve team", err)
				return
			}

			if cfg.RecheckMembership {
				member, err := cfg.Memberships.IsMember(r.Context(), principal.UserID, team.ID)
				if err != nil {
					cfg.fail(w, r, "check membership", err)
					return
				}
				if !member {
					httputil.Error(w, http.StatusForbidden, "not a member of this team")
					return
				}
			}

			db, err := cfg.Manager.Get(r.Context(), team.DatabaseName)
			if err != nil {
				cfg.fail(w, r, "open team database", err)
				return
			}

			ctx := teamdb.WithTeam(r.Context(), team)
			ctx = teamdb.WithDatabase(ctx, db)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// fail logs the underlying error under a correlation ID and returns only the
// ID to the client.
func (cfg TeamDBConfig) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ref := uuid.NewString()
	cfg.Logger.Error("tenant resolution failed",
		"op", op,
		"error", err,
		"ref", ref,
		"path", r.URL.Path,
	)
	httputil.Error(w, http.StatusInternalServerError, "internal error, reference "+ref)
}
