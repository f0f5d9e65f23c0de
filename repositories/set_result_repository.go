package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type SetResultRepository interface {
	Create(ctx context.Context, set *models.SetResult) error
	GetByID(ctx context.Context, id int) (*models.SetResult, error)
	// ListByMatch returns the sets of a match ordered by set number.
	ListByMatch(ctx context.Context, matchID int) ([]*models.SetResult, error)
	Update(ctx context.Context, set *models.SetResult) error
	Delete(ctx context.Context, id int) error
}

type postgresSetResultRepository struct {
	exec SQLExecutor
}

func NewPostgresSetResultRepository(exec SQLExecutor) SetResultRepository {
	return &postgresSetResultRepository{exec: exec}
}

const setResultColumns = `id, match_id, set_number, side1_points, side2_points, created_at`

func scanSetResult(row rowScanner, s *models.SetResult) error {
	return row.Scan(&s.ID, &s.MatchID, &s.SetNumber, &s.Side1Points, &s.Side2Points, &s.CreatedAt)
}

func (r *postgresSetResultRepository) Create(ctx context.Context, s *models.SetResult) error {
	query := `
		INSERT INTO set_results (match_id, set_number, side1_points, side2_points)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query, s.MatchID, s.SetNumber, s.Side1Points, s.Side2Points).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create set result: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresSetResultRepository) GetByID(ctx context.Context, id int) (*models.SetResult, error) {
	query := `SELECT ` + setResultColumns + ` FROM set_results WHERE id = $1`

	s := &models.SetResult{}
	if err := scanSetResult(r.exec.QueryRowContext(ctx, query, id), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get set result %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSetResultRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.SetResult, error) {
	query := `SELECT ` + setResultColumns + ` FROM set_results WHERE match_id = $1 ORDER BY set_number ASC`

	rows, err := r.exec.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets of match %d: %w", matchID, err)
	}
	defer rows.Close()

	sets := make([]*models.SetResult, 0)
	for rows.Next() {
		var s models.SetResult
		if err := scanSetResult(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan set result row: %w", err)
		}
		sets = append(sets, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating set result rows: %w", err)
	}
	return sets, nil
}

func (r *postgresSetResultRepository) Update(ctx context.Context, s *models.SetResult) error {
	result, err := r.exec.ExecContext(ctx,
		`UPDATE set_results SET side1_points = $1, side2_points = $2 WHERE id = $3`,
		s.Side1Points, s.Side2Points, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update set result %d: %w", s.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresSetResultRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM set_results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete set result %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}
