package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
}

type postgresCategoryRepository struct {
	exec SQLExecutor
}

func NewPostgresCategoryRepository(exec SQLExecutor) CategoryRepository {
	return &postgresCategoryRepository{exec: exec}
}

const categoryColumns = `id, name, age_min, age_max, gender, sets_per_match, points_per_set, created_at`

func scanCategory(row rowScanner, c *models.Category) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.AgeMin,
		&c.AgeMax,
		&c.Gender,
		&c.SetsPerMatch,
		&c.PointsPerSet,
		&c.CreatedAt,
	)
}

func (r *postgresCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, age_min, age_max, gender, sets_per_match, points_per_set)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		c.Name, c.AgeMin, c.AgeMax, c.Gender, c.SetsPerMatch, c.PointsPerSet,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresCategoryRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Category, error) {
	c := &models.Category{}
	if err := scanCategory(r.exec.QueryRowContext(ctx, query, args...), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

func (r *postgresCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
}

func (r *postgresCategoryRepository) List(ctx context.Context, opts ListOptions) ([]*models.Category, error) {
	query, args := appendPaging(`SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`, nil, opts)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, age_min = $2, age_max = $3, gender = $4, sets_per_match = $5, points_per_set = $6
		WHERE id = $7`

	result, err := r.exec.ExecContext(ctx, query,
		c.Name, c.AgeMin, c.AgeMax, c.Gender, c.SetsPerMatch, c.PointsPerSet, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", c.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}
