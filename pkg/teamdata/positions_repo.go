// Package teamdata holds the repositories that operate on a single team's
// database. Repositories are cheap to construct and are built per request
// around whichever handle the tenant middleware resolved.
package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

type PositionsRepository struct {
	db *sql.DB
}

func NewPositionsRepository(db *sql.DB) *PositionsRepository {
	return &PositionsRepository{db: db}
}

func (r *PositionsRepository) List(ctx context.Context) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, abbreviation FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.Abbreviation); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *PositionsRepository) GetByID(ctx context.Context, id int64) (*domain.Position, error) {
	var p domain.Position
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation FROM positions WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Abbreviation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return &p, nil
}

func (r *PositionsRepository) Create(ctx context.Context, p *domain.Position) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO positions (name, abbreviation) VALUES (?, ?)`,
		p.Name, p.Abbreviation)
	if err != nil {
		return fmt.Errorf("create position: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *PositionsRepository) Update(ctx context.Context, p *domain.Position) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE positions SET name = ?, abbreviation = ? WHERE id = ?`,
		p.Name, p.Abbreviation, p.ID)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPositionNotFound
	}
	return nil
}

func (r *PositionsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPositionNotFound
	}
	return nil
}
