package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// FindByPlayers looks the pair up regardless of slot order.
	FindByPlayers(ctx context.Context, playerA, playerB int) (*models.Team, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	exec SQLExecutor
}

func NewPostgresTeamRepository(exec SQLExecutor) TeamRepository {
	return &postgresTeamRepository{exec: exec}
}

const teamColumns = `id, player1_id, player2_id, created_at`

func scanTeam(row rowScanner, t *models.Team) error {
	return row.Scan(&t.ID, &t.Player1ID, &t.Player2ID, &t.CreatedAt)
}

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (player1_id, player2_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	if err := r.exec.QueryRowContext(ctx, query, t.Player1ID, t.Player2ID).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("failed to create team: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresTeamRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	t := &models.Team{}
	if err := scanTeam(r.exec.QueryRowContext(ctx, query, args...), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *postgresTeamRepository) FindByPlayers(ctx context.Context, playerA, playerB int) (*models.Team, error) {
	query := `
		SELECT ` + teamColumns + ` FROM teams
		WHERE LEAST(player1_id, player2_id) = LEAST($1::int, $2::int)
		  AND GREATEST(player1_id, player2_id) = GREATEST($1::int, $2::int)`
	return r.findOne(ctx, query, playerA, playerB)
}

func (r *postgresTeamRepository) List(ctx context.Context, opts ListOptions) ([]*models.Team, error) {
	query, args := appendPaging(`SELECT `+teamColumns+` FROM teams ORDER BY id ASC`, nil, opts)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	result, err := r.exec.ExecContext(ctx,
		`UPDATE teams SET player1_id = $1, player2_id = $2 WHERE id = $3`,
		t.Player1ID, t.Player2ID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team %d: %w", t.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}
