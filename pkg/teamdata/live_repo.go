package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// LiveRepository manages the single current_match row and its events.
type LiveRepository struct {
	db *sql.DB
}

func NewLiveRepository(db *sql.DB) *LiveRepository {
	return &LiveRepository{db: db}
}

const currentMatchColumns = `id, match_id, status, match_start_time,
	first_half_start_time, second_half_start_time, last_pause_time,
	first_half_duration_seconds, second_half_duration_seconds,
	total_pause_seconds, home_score, away_score, formation,
	created_at, updated_at`

// Get returns the current match, if live tracking is active.
func (r *LiveRepository) Get(ctx context.Context) (*domain.CurrentMatch, error) {
	var cm domain.CurrentMatch
	err := r.db.QueryRowContext(ctx,
		`SELECT `+currentMatchColumns+` FROM current_match LIMIT 1`,
	).Scan(&cm.ID, &cm.MatchID, &cm.Status, &cm.MatchStartTime,
		&cm.FirstHalfStartTime, &cm.SecondHalfStartTime, &cm.LastPauseTime,
		&cm.FirstHalfDurationSecs, &cm.SecondHalfDurationSecs,
		&cm.TotalPauseSecs, &cm.HomeScore, &cm.AwayScore, &cm.Formation,
		&cm.CreatedAt, &cm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCurrentMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get current match: %w", err)
	}
	return &cm, nil
}

// Start replaces any existing live session with a fresh one. The delete
// cascades to the previous session's events and position assignments.
func (r *LiveRepository) Start(ctx context.Context, cm *domain.CurrentMatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start live session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM current_match`); err != nil {
		return fmt.Errorf("clear previous session: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO current_match (match_id, status, match_start_time,
			first_half_start_time, second_half_start_time, last_pause_time,
			first_half_duration_seconds, second_half_duration_seconds,
			total_pause_seconds, home_score, away_score, formation,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cm.MatchID, cm.Status, cm.MatchStartTime,
		cm.FirstHalfStartTime, cm.SecondHalfStartTime, cm.LastPauseTime,
		cm.FirstHalfDurationSecs, cm.SecondHalfDurationSecs,
		cm.TotalPauseSecs, cm.HomeScore, cm.AwayScore, cm.Formation,
		cm.CreatedAt, cm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create current match: %w", err)
	}
	if cm.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return tx.Commit()
}

// Update persists the mutable live-tracking state.
func (r *LiveRepository) Update(ctx context.Context, cm *domain.CurrentMatch) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE current_match SET status = ?, match_start_time = ?,
			first_half_start_time = ?, second_half_start_time = ?,
			last_pause_time = ?, first_half_duration_seconds = ?,
			second_half_duration_seconds = ?, total_pause_seconds = ?,
			home_score = ?, away_score = ?, formation = ?, updated_at = ?
		 WHERE id = ?`,
		cm.Status, cm.MatchStartTime,
		cm.FirstHalfStartTime, cm.SecondHalfStartTime,
		cm.LastPauseTime, cm.FirstHalfDurationSecs,
		cm.SecondHalfDurationSecs, cm.TotalPauseSecs,
		cm.HomeScore, cm.AwayScore, cm.Formation, cm.UpdatedAt,
		cm.ID)
	if err != nil {
		return fmt.Errorf("update current match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCurrentMatchNotFound
	}
	return nil
}

// Clear ends live tracking. Events cascade-delete with the session.
func (r *LiveRepository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM current_match`)
	if err != nil {
		return fmt.Errorf("clear current match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCurrentMatchNotFound
	}
	return nil
}

func (r *LiveRepository) AddEvent(ctx context.Context, e *domain.MatchEvent) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO match_events (current_match_id, event_type, player_id,
			player_out_id, player_in_id, field_position_id,
			match_minute, match_second, notes, event_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CurrentMatchID, e.EventType, e.PlayerID,
		e.PlayerOutID, e.PlayerInID, e.FieldPositionID,
		e.MatchMinute, e.MatchSecond, e.Notes, e.EventTime)
	if err != nil {
		return fmt.Errorf("add match event: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (r *LiveRepository) ListEvents(ctx context.Context, currentMatchID int64) ([]domain.MatchEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, current_match_id, event_type, player_id, player_out_id,
			player_in_id, field_position_id, match_minute, match_second,
			notes, event_time
		 FROM match_events WHERE current_match_id = ? ORDER BY event_time, id`,
		currentMatchID)
	if err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}
	defer rows.Close()

	var events []domain.MatchEvent
	for rows.Next() {
		var e domain.MatchEvent
		if err := rows.Scan(&e.ID, &e.CurrentMatchID, &e.EventType, &e.PlayerID,
			&e.PlayerOutID, &e.PlayerInID, &e.FieldPositionID,
			&e.MatchMinute, &e.MatchSecond, &e.Notes, &e.EventTime); err != nil {
			return nil, fmt.Errorf("scan match event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *LiveRepository) DeleteEvent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM match_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchEventNotFound
	}
	return nil
}
