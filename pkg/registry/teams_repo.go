package registry

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// TeamsRepository handles team metadata persistence in the central store.
type TeamsRepository struct {
	db *sql.DB
}

// NewTeamsRepository creates a new teams repository.
func NewTeamsRepository(db *sql.DB) *TeamsRepository {
	return &TeamsRepository{db: db}
}

// Create creates a new team.
func (r *TeamsRepository) Create(ctx context.Context, team *domain.Team) error {
	return r.CreateTx(ctx, r.db, team)
}

// CreateTx creates a new team within a transaction.
func (r *TeamsRepository) CreateTx(ctx context.Context, q Querier, team *domain.Team) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO teams (name, database_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		team.Name, team.DatabaseName, team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTeamAlreadyExists
		}
		return err
	}
	team.ID, err = res.LastInsertId()
	return err
}

// GetByID retrieves a team by ID.
func (r *TeamsRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, database_name, created_at, updated_at
		FROM teams
		WHERE id = ?
	`, id))
}

// GetByDatabaseName retrieves a team by its unique database name.
func (r *TeamsRepository) GetByDatabaseName(ctx context.Context, databaseName string) (*domain.Team, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, database_name, created_at, updated_at
		FROM teams
		WHERE database_name = ?
	`, databaseName))
}

// List returns all teams.
func (r *TeamsRepository) List(ctx context.Context) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, database_name, created_at, updated_at
		FROM teams
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

// ListByUserID returns the teams a user is a member of.
func (r *TeamsRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.database_name, t.created_at, t.updated_at
		FROM teams t
		JOIN user_teams ut ON ut.team_id = t.id
		WHERE ut.user_id = ?
		ORDER BY t.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTeams(rows)
}

// Update updates a team's display name. The database name is immutable;
// changing it would orphan the team's database file.
func (r *TeamsRepository) Update(ctx context.Context, team *domain.Team) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE teams
		SET name = ?, updated_at = ?
		WHERE id = ?
	`, team.Name, team.UpdatedAt, team.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// Delete removes a team and, via cascade, its memberships. The team's
// database file on disk is left alone.
func (r *TeamsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (r *TeamsRepository) scanOne(row *sql.Row) (*domain.Team, error) {
	var team domain.Team
	err := row.Scan(&team.ID, &team.Name, &team.DatabaseName, &team.CreatedAt, &team.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func scanTeams(rows *sql.Rows) ([]*domain.Team, error) {
	var teams []*domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.DatabaseName, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
