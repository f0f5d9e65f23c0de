package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	exec SQLExecutor
}

func NewPostgresPlayerRepository(exec SQLExecutor) PlayerRepository {
	return &postgresPlayerRepository{exec: exec}
}

const playerColumns = `id, name, birth_date, gender, city, country, association_id, photo_key, created_at`

func scanPlayer(row rowScanner, p *models.Player) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.BirthDate,
		&p.Gender,
		&p.City,
		&p.Country,
		&p.AssociationID,
		&p.PhotoKey,
		&p.CreatedAt,
	)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (name, birth_date, gender, city, country, association_id, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		p.Name, p.BirthDate, p.Gender, p.City, p.Country, p.AssociationID, p.PhotoKey,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p := &models.Player{}
	if err := scanPlayer(r.exec.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, opts ListOptions) ([]*models.Player, error) {
	query, args := appendPaging(`SELECT `+playerColumns+` FROM players ORDER BY id ASC`, nil, opts)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, birth_date = $2, gender = $3, city = $4, country = $5, association_id = $6, photo_key = $7
		WHERE id = $8`

	result, err := r.exec.ExecContext(ctx, query,
		p.Name, p.BirthDate, p.Gender, p.City, p.Country, p.AssociationID, p.PhotoKey, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", p.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}
