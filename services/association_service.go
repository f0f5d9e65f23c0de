package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type AssociationService interface {
	CreateAssociation(ctx context.Context, input CreateAssociationInput) (*models.Association, error)
	GetAssociationByID(ctx context.Context, id int) (*models.Association, error)
	ListAssociations(ctx context.Context, opts repositories.ListOptions) ([]*models.Association, error)
	UpdateAssociation(ctx context.Context, id int, input UpdateAssociationInput) (*models.Association, error)
	DeleteAssociation(ctx context.Context, id int) error
}

type CreateAssociationInput struct {
	Name    string `json:"name" validate:"required,max=150"`
	City    string `json:"city" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
}

type UpdateAssociationInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=100"`
}

type associationService struct {
	store repositories.Store
}

func NewAssociationService(store repositories.Store) AssociationService {
	return &associationService{store: store}
}

func mergeAssociation(current models.Association, patch UpdateAssociationInput) models.Association {
	merged := current
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.City != nil {
		merged.City = strings.TrimSpace(*patch.City)
	}
	if patch.Country != nil {
		merged.Country = strings.TrimSpace(*patch.Country)
	}
	return merged
}

// checkAssociationName fails with a conflict when another association uses name.
func checkAssociationName(ctx context.Context, repo repositories.AssociationRepository, name string, selfID int) error {
	existing, err := repo.GetByName(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check association name: %w", err)
	case existing.ID != selfID:
		return ErrAssociationNameConflict
	}
	return nil
}

func (s *associationService) CreateAssociation(ctx context.Context, input CreateAssociationInput) (*models.Association, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	association := &models.Association{
		Name:    input.Name,
		City:    strings.TrimSpace(input.City),
		Country: strings.TrimSpace(input.Country),
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := checkAssociationName(ctx, tx.Associations(), association.Name, 0); err != nil {
			return err
		}
		return translateStoreError(tx.Associations().Create(ctx, association))
	})
	if err != nil {
		return nil, err
	}
	return association, nil
}

func (s *associationService) GetAssociationByID(ctx context.Context, id int) (*models.Association, error) {
	association, err := s.store.Associations().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrAssociationNotFound, fmt.Sprintf("failed to get association %d", id))
	}
	return association, nil
}

func (s *associationService) ListAssociations(ctx context.Context, opts repositories.ListOptions) ([]*models.Association, error) {
	associations, err := s.store.Associations().List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	return associations, nil
}

func (s *associationService) UpdateAssociation(ctx context.Context, id int, input UpdateAssociationInput) (*models.Association, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Association
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Associations().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrAssociationNotFound, "failed to load association for update")
		}

		updated = mergeAssociation(*current, input)
		if updated.Name == "" {
			return &ValidationError{Fields: map[string]string{"name": "is required"}}
		}
		if updated.Name != current.Name {
			if err := checkAssociationName(ctx, tx.Associations(), updated.Name, id); err != nil {
				return err
			}
		}
		return translateStoreError(tx.Associations().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *associationService) DeleteAssociation(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Associations().Delete(ctx, id), ErrAssociationNotFound)
}
