package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// PlayerPositionsRepository tracks which player occupies which field
// position during a live session.
type PlayerPositionsRepository struct {
	db *sql.DB
}

func NewPlayerPositionsRepository(db *sql.DB) *PlayerPositionsRepository {
	return &PlayerPositionsRepository{db: db}
}

const playerPositionColumns = `id, current_match_id, player_id,
	field_position_id, start_time, end_time, is_starting, is_active`

// ListByCurrentMatch returns every assignment of the session, ended ones
// included, in the order they started.
func (r *PlayerPositionsRepository) ListByCurrentMatch(ctx context.Context, currentMatchID int64) ([]domain.PlayerPosition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerPositionColumns+` FROM player_positions
		 WHERE current_match_id = ? ORDER BY start_time, id`, currentMatchID)
	if err != nil {
		return nil, fmt.Errorf("list player positions: %w", err)
	}
	defer rows.Close()
	return scanPlayerPositions(rows)
}

// ListActive returns only the assignments currently on the pitch.
func (r *PlayerPositionsRepository) ListActive(ctx context.Context, currentMatchID int64) ([]domain.PlayerPosition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerPositionColumns+` FROM player_positions
		 WHERE current_match_id = ? AND is_active = 1 ORDER BY start_time, id`,
		currentMatchID)
	if err != nil {
		return nil, fmt.Errorf("list active player positions: %w", err)
	}
	defer rows.Close()
	return scanPlayerPositions(rows)
}

func (r *PlayerPositionsRepository) GetByID(ctx context.Context, id int64) (*domain.PlayerPosition, error) {
	var pp domain.PlayerPosition
	err := r.db.QueryRowContext(ctx,
		`SELECT `+playerPositionColumns+` FROM player_positions WHERE id = ?`, id,
	).Scan(&pp.ID, &pp.CurrentMatchID, &pp.PlayerID, &pp.FieldPositionID,
		&pp.StartTime, &pp.EndTime, &pp.IsStarting, &pp.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player position: %w", err)
	}
	return &pp, nil
}

// Assign puts a player on a field position. Any still-active assignment
// of the same player in the same session is ended first, in the same
// transaction, so a player never holds two positions at once.
func (r *PlayerPositionsRepository) Assign(ctx context.Context, pp *domain.PlayerPosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("assign player position: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE player_positions SET is_active = 0, end_time = ?
		 WHERE current_match_id = ? AND player_id = ? AND is_active = 1`,
		pp.StartTime, pp.CurrentMatchID, pp.PlayerID,
	); err != nil {
		return fmt.Errorf("end previous assignment: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO player_positions (current_match_id, player_id,
			field_position_id, start_time, end_time, is_starting, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pp.CurrentMatchID, pp.PlayerID, pp.FieldPositionID,
		pp.StartTime, pp.EndTime, pp.IsStarting, pp.IsActive)
	if err != nil {
		return fmt.Errorf("create player position: %w", err)
	}
	if pp.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return tx.Commit()
}

// End takes a player off their position without assigning a new one.
func (r *PlayerPositionsRepository) End(ctx context.Context, id int64, endTime time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE player_positions SET is_active = 0, end_time = ?
		 WHERE id = ? AND is_active = 1`, endTime, id)
	if err != nil {
		return fmt.Errorf("end player position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlayerPositionNotFound
	}
	return nil
}

// Delete removes an assignment outright, for undoing mistakes.
func (r *PlayerPositionsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM player_positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlayerPositionNotFound
	}
	return nil
}

func scanPlayerPositions(rows *sql.Rows) ([]domain.PlayerPosition, error) {
	var positions []domain.PlayerPosition
	for rows.Next() {
		var pp domain.PlayerPosition
		if err := rows.Scan(&pp.ID, &pp.CurrentMatchID, &pp.PlayerID,
			&pp.FieldPositionID, &pp.StartTime, &pp.EndTime,
			&pp.IsStarting, &pp.IsActive); err != nil {
			return nil, fmt.Errorf("scan player position: %w", err)
		}
		positions = append(positions, pp)
	}
	return positions, rows.Err()
}
