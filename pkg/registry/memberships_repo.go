package registry

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// MembershipsRepository handles the user-team relation. These rows are
// the sole authority for whether a user may act on a team.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// Add adds a user to a team.
func (r *MembershipsRepository) Add(ctx context.Context, m *domain.Membership) error {
	return r.AddTx(ctx, r.db, m)
}

// AddTx adds a user to a team within a transaction.
func (r *MembershipsRepository) AddTx(ctx context.Context, q Querier, m *domain.Membership) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO user_teams (user_id, team_id, created_at)
		VALUES (?, ?, ?)
	`, m.UserID, m.TeamID, m.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	return err
}

// Remove removes a user from a team.
func (r *MembershipsRepository) Remove(ctx context.Context, userID, teamID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_teams WHERE user_id = ? AND team_id = ?
	`, userID, teamID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

// IsMember reports whether the user currently belongs to the team.
func (r *MembershipsRepository) IsMember(ctx context.Context, userID, teamID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM user_teams WHERE user_id = ? AND team_id = ?
	`, userID, teamID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListUsers returns the members of a team, without password hashes.
func (r *MembershipsRepository) ListUsers(ctx context.Context, teamID int64) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.created_at, u.updated_at, u.last_login
		FROM users u
		JOIN user_teams ut ON ut.user_id = u.id
		WHERE ut.team_id = ?
		ORDER BY u.id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email,
			&user.CreatedAt, &user.UpdatedAt, &user.LastLogin,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
