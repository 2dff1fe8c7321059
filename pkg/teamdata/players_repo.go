package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

type PlayersRepository struct {
	db *sql.DB
}

func NewPlayersRepository(db *sql.DB) *PlayersRepository {
	return &PlayersRepository{db: db}
}

const playerColumns = `p.id, p.name, p.position_id, pos.name, p.notes`

func (r *PlayersRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+`
		 FROM players p
		 JOIN positions pos ON pos.id = p.position_id
		 ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *PlayersRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+`
		 FROM players p
		 JOIN positions pos ON pos.id = p.position_id
		 WHERE p.id = ?`, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (r *PlayersRepository) Create(ctx context.Context, p *domain.Player) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, position_id, notes) VALUES (?, ?, ?)`,
		p.Name, p.PositionID, p.Notes)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *PlayersRepository) Update(ctx context.Context, p *domain.Player) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET name = ?, position_id = ?, notes = ? WHERE id = ?`,
		p.Name, p.PositionID, p.Notes, p.ID)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (r *PlayersRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(&p.ID, &p.Name, &p.PositionID, &p.PositionName, &p.Notes); err != nil {
		return nil, err
	}
	return &p, nil
}
