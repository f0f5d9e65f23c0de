package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type AssociationRepository interface {
	Create(ctx context.Context, association *models.Association) error
	GetByID(ctx context.Context, id int) (*models.Association, error)
	GetByName(ctx context.Context, name string) (*models.Association, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Association, error)
	Update(ctx context.Context, association *models.Association) error
	Delete(ctx context.Context, id int) error
}

type postgresAssociationRepository struct {
	exec SQLExecutor
}

func NewPostgresAssociationRepository(exec SQLExecutor) AssociationRepository {
	return &postgresAssociationRepository{exec: exec}
}

const associationColumns = `id, name, city, country, created_at`

func scanAssociation(row rowScanner, a *models.Association) error {
	return row.Scan(&a.ID, &a.Name, &a.City, &a.Country, &a.CreatedAt)
}

func (r *postgresAssociationRepository) Create(ctx context.Context, a *models.Association) error {
	query := `
		INSERT INTO associations (name, city, country)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := r.exec.QueryRowContext(ctx, query, a.Name, a.City, a.Country).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("failed to create association: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresAssociationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Association, error) {
	a := &models.Association{}
	if err := scanAssociation(r.exec.QueryRowContext(ctx, query, args...), a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find association: %w", err)
	}
	return a, nil
}

func (r *postgresAssociationRepository) GetByID(ctx context.Context, id int) (*models.Association, error) {
	return r.findOne(ctx, `SELECT `+associationColumns+` FROM associations WHERE id = $1`, id)
}

func (r *postgresAssociationRepository) GetByName(ctx context.Context, name string) (*models.Association, error) {
	return r.findOne(ctx, `SELECT `+associationColumns+` FROM associations WHERE name = $1`, name)
}

func (r *postgresAssociationRepository) List(ctx context.Context, opts ListOptions) ([]*models.Association, error) {
	query, args := appendPaging(`SELECT `+associationColumns+` FROM associations ORDER BY name ASC`, nil, opts)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	defer rows.Close()

	associations := make([]*models.Association, 0)
	for rows.Next() {
		var a models.Association
		if err := scanAssociation(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan association row: %w", err)
		}
		associations = append(associations, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating association rows: %w", err)
	}
	return associations, nil
}

func (r *postgresAssociationRepository) Update(ctx context.Context, a *models.Association) error {
	query := `UPDATE associations SET name = $1, city = $2, country = $3 WHERE id = $4`
	result, err := r.exec.ExecContext(ctx, query, a.Name, a.City, a.Country, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update association %d: %w", a.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresAssociationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM associations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete association %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}
