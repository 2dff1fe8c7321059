package registry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// UsersRepository handles user account persistence in the central store.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID, err = res.LastInsertId()
	return err
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at, last_login
		FROM users
		WHERE id = ?
	`, id))
}

// GetByUsername retrieves a user by username.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at, last_login
		FROM users
		WHERE username = ?
	`, username))
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UsersRepository) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?
	`, when, when, id)
	return err
}

func (r *UsersRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
