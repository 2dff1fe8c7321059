package teamdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

type MatchesRepository struct {
	db *sql.DB
}

func NewMatchesRepository(db *sql.DB) *MatchesRepository {
	return &MatchesRepository{db: db}
}

func (r *MatchesRepository) List(ctx context.Context) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, opponent, home_game, result, notes FROM matches ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.Date, &m.Opponent, &m.HomeGame, &m.Result, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchesRepository) GetByID(ctx context.Context, id int64) (*domain.Match, error) {
	var m domain.Match
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, opponent, home_game, result, notes FROM matches WHERE id = ?`, id,
	).Scan(&m.ID, &m.Date, &m.Opponent, &m.HomeGame, &m.Result, &m.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &m, nil
}

func (r *MatchesRepository) Create(ctx context.Context, m *domain.Match) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (date, opponent, home_game, result, notes) VALUES (?, ?, ?, ?, ?)`,
		m.Date, m.Opponent, m.HomeGame, m.Result, m.Notes)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *MatchesRepository) Update(ctx context.Context, m *domain.Match) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET date = ?, opponent = ?, home_game = ?, result = ?, notes = ? WHERE id = ?`,
		m.Date, m.Opponent, m.HomeGame, m.Result, m.Notes, m.ID)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (r *MatchesRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

// ListGameplay returns the per-player statistics recorded for a match.
func (r *MatchesRepository) ListGameplay(ctx context.Context, matchID int64) ([]domain.Gameplay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, player_id, minutes_played, goals, assists,
		        yellow_cards, red_cards, rating, notes
		 FROM gameplay WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list gameplay: %w", err)
	}
	defer rows.Close()

	var entries []domain.Gameplay
	for rows.Next() {
		var g domain.Gameplay
		if err := rows.Scan(&g.ID, &g.MatchID, &g.PlayerID, &g.MinutesPlayed,
			&g.Goals, &g.Assists, &g.YellowCards, &g.RedCards, &g.Rating, &g.Notes); err != nil {
			return nil, fmt.Errorf("scan gameplay: %w", err)
		}
		entries = append(entries, g)
	}
	return entries, rows.Err()
}
