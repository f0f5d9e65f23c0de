package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, id int, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

// Numeric rules are checked on the merged record, not by tags, so that a bad
// value is reported the same way on create and update.
type CreateCategoryInput struct {
	Name         string        `json:"name" validate:"required,max=100"`
	AgeMin       int           `json:"age_min" validate:"gte=0"`
	AgeMax       int           `json:"age_max" validate:"gte=0"`
	Gender       models.Gender `json:"gender" validate:"required,oneof=M F"`
	SetsPerMatch int           `json:"sets_per_match"`
	PointsPerSet int           `json:"points_per_set"`
}

type UpdateCategoryInput struct {
	Name         *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	AgeMin       *int           `json:"age_min,omitempty" validate:"omitempty,gte=0"`
	AgeMax       *int           `json:"age_max,omitempty" validate:"omitempty,gte=0"`
	Gender       *models.Gender `json:"gender,omitempty" validate:"omitempty,oneof=M F"`
	SetsPerMatch *int           `json:"sets_per_match,omitempty"`
	PointsPerSet *int           `json:"points_per_set,omitempty"`
}

type categoryService struct {
	store repositories.Store
}

func NewCategoryService(store repositories.Store) CategoryService {
	return &categoryService{store: store}
}

func mergeCategory(current models.Category, patch UpdateCategoryInput) models.Category {
	merged := current
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.AgeMin != nil {
		merged.AgeMin = *patch.AgeMin
	}
	if patch.AgeMax != nil {
		merged.AgeMax = *patch.AgeMax
	}
	if patch.Gender != nil {
		merged.Gender = *patch.Gender
	}
	if patch.SetsPerMatch != nil {
		merged.SetsPerMatch = *patch.SetsPerMatch
	}
	if patch.PointsPerSet != nil {
		merged.PointsPerSet = *patch.PointsPerSet
	}
	return merged
}

func validateCategory(c models.Category) error {
	if c.Name == "" {
		return &ValidationError{Fields: map[string]string{"name": "is required"}}
	}
	if c.AgeMin > c.AgeMax {
		return ErrCategoryAgeRange
	}
	if c.SetsPerMatch <= 0 || c.PointsPerSet <= 0 {
		return ErrCategoryRules
	}
	return nil
}

func checkCategoryName(ctx context.Context, repo repositories.CategoryRepository, name string, selfID int) error {
	existing, err := repo.GetByName(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check category name: %w", err)
	case existing.ID != selfID:
		return ErrCategoryNameConflict
	}
	return nil
}

func (s *categoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:         input.Name,
		AgeMin:       input.AgeMin,
		AgeMax:       input.AgeMax,
		Gender:       input.Gender,
		SetsPerMatch: input.SetsPerMatch,
		PointsPerSet: input.PointsPerSet,
	}
	if err := validateCategory(*category); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := checkCategoryName(ctx, tx.Categories(), category.Name, 0); err != nil {
			return err
		}
		return translateStoreError(tx.Categories().Create(ctx, category))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, fmt.Sprintf("failed to get category %d", id))
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error) {
	categories, err := s.store.Categories().List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int, input UpdateCategoryInput) (*models.Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Category
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Categories().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrCategoryNotFound, "failed to load category for update")
		}
		updated = mergeCategory(*current, input)
		if err := validateCategory(updated); err != nil {
			return err
		}
		if updated.Name != current.Name {
			if err := checkCategoryName(ctx, tx.Categories(), updated.Name, id); err != nil {
				return err
			}
		}
		return translateStoreError(tx.Categories().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Categories().Delete(ctx, id), ErrCategoryNotFound)
}
