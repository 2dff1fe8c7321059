package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

// FieldPositionsRepository reads the pitch layout. The rows are seeded at
// provisioning time and read-only over HTTP.
type FieldPositionsRepository struct {
	db *sql.DB
}

func NewFieldPositionsRepository(db *sql.DB) *FieldPositionsRepository {
	return &FieldPositionsRepository{db: db}
}

const fieldPositionColumns = `id, name, abbreviation, zone, sort_order, description`

func (r *FieldPositionsRepository) List(ctx context.Context) ([]domain.FieldPosition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fieldPositionColumns+` FROM field_positions ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list field positions: %w", err)
	}
	defer rows.Close()
	return scanFieldPositions(rows)
}

func (r *FieldPositionsRepository) ListByZone(ctx context.Context, zone string) ([]domain.FieldPosition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fieldPositionColumns+` FROM field_positions
		 WHERE zone = ? ORDER BY sort_order, name`, zone)
	if err != nil {
		return nil, fmt.Errorf("list field positions by zone: %w", err)
	}
	defer rows.Close()
	return scanFieldPositions(rows)
}

func (r *FieldPositionsRepository) GetByID(ctx context.Context, id int64) (*domain.FieldPosition, error) {
	var fp domain.FieldPosition
	err := r.db.QueryRowContext(ctx,
		`SELECT `+fieldPositionColumns+` FROM field_positions WHERE id = ?`, id,
	).Scan(&fp.ID, &fp.Name, &fp.Abbreviation, &fp.Zone, &fp.SortOrder, &fp.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFieldPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field position: %w", err)
	}
	return &fp, nil
}

func scanFieldPositions(rows *sql.Rows) ([]domain.FieldPosition, error) {
	var positions []domain.FieldPosition
	for rows.Next() {
		var fp domain.FieldPosition
		if err := rows.Scan(&fp.ID, &fp.Name, &fp.Abbreviation, &fp.Zone,
			&fp.SortOrder, &fp.Description); err != nil {
			return nil, fmt.Errorf("scan field position: %w", err)
		}
		positions = append(positions, fp)
	}
	return positions, rows.Err()
}
