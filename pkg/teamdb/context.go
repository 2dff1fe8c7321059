package teamdb

import (
	"context"
	"database/sql"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

type contextKey int

const (
	databaseKey contextKey = iota
	teamKey
)

// WithDatabase attaches a resolved team database handle to the context.
func WithDatabase(ctx context.Context, db *sql.DB) context.Context {
	return context.WithValue(ctx, databaseKey, db)
}

// DatabaseFrom returns the team database handle resolved for this request,
// or nil when the request never passed tenant resolution.
func DatabaseFrom(ctx context.Context) *sql.DB {
	db, _ := ctx.Value(databaseKey).(*sql.DB)
	return db
}

// WithTeam attaches the resolved team to the context.
func WithTeam(ctx context.Context, team *domain.Team) context.Context {
	return context.WithValue(ctx, teamKey, team)
}

// TeamFrom returns the team resolved for this request, or nil.
func TeamFrom(ctx context.Context) *domain.Team {
	team, _ := ctx.Value(teamKey).(*domain.Team)
	return team
}
