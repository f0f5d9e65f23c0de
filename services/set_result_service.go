package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/scoring"
)

type SetResultService interface {
	CreateSetResult(ctx context.Context, matchID int, input CreateSetResultInput) (*models.SetResult, error)
	ListSetResults(ctx context.Context, matchID int) ([]*models.SetResult, error)
	UpdateSetResult(ctx context.Context, id int, input UpdateSetResultInput) (*models.SetResult, error)
	DeleteSetResult(ctx context.Context, id int) error
}

type CreateSetResultInput struct {
	SetNumber   int `json:"set_number"`
	Side1Points int `json:"side1_points"`
	Side2Points int `json:"side2_points"`
}

// UpdateSetResultInput corrects the points of a set. SetNumber may be sent back
// unchanged; any other value is rejected.
type UpdateSetResultInput struct {
	SetNumber   *int `json:"set_number,omitempty"`
	Side1Points *int `json:"side1_points,omitempty"`
	Side2Points *int `json:"side2_points,omitempty"`
}

type setResultService struct {
	store repositories.Store
}

func NewSetResultService(store repositories.Store) SetResultService {
	return &setResultService{store: store}
}

func checkPoints(side1, side2 int) error {
	if side1 < 0 || side2 < 0 {
		return ErrNegativePoints
	}
	return nil
}

func (s *setResultService) CreateSetResult(ctx context.Context, matchID int, input CreateSetResultInput) (*models.SetResult, error) {
	set := &models.SetResult{
		MatchID:     matchID,
		SetNumber:   input.SetNumber,
		Side1Points: input.Side1Points,
		Side2Points: input.Side2Points,
	}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		match, err := tx.Matches().GetByID(ctx, matchID)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "failed to load match")
		}
		category, err := tx.Categories().GetByID(ctx, match.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to load category %d: %w", match.CategoryID, err)
		}
		sets, err := tx.SetResults().ListByMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("failed to list sets of match %d: %w", matchID, err)
		}

		if set.SetNumber != len(sets)+1 {
			return fmt.Errorf("%w: expected set %d, got %d", ErrSetNumberNotConsecutive, len(sets)+1, set.SetNumber)
		}
		if set.SetNumber > category.SetsPerMatch {
			return fmt.Errorf("%w: category plays %d sets", ErrSetNumberExceedsMatch, category.SetsPerMatch)
		}
		if err := checkPoints(set.Side1Points, set.Side2Points); err != nil {
			return err
		}
		if tally := scoring.TallySets(sets, *category); tally.Decided() {
			return fmt.Errorf("%w: decided after set %d", ErrMatchAlreadyDecided, tally.DecidedAt)
		}
		return translateStoreError(tx.SetResults().Create(ctx, set))
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *setResultService) ListSetResults(ctx context.Context, matchID int) ([]*models.SetResult, error) {
	if _, err := s.store.Matches().GetByID(ctx, matchID); err != nil {
		return nil, notFoundOr(err, ErrMatchNotFound, "failed to load match")
	}
	sets, err := s.store.SetResults().ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets of match %d: %w", matchID, err)
	}
	return sets, nil
}

func (s *setResultService) UpdateSetResult(ctx context.Context, id int, input UpdateSetResultInput) (*models.SetResult, error) {
	var updated *models.SetResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		set, err := tx.SetResults().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrSetResultNotFound, "failed to load set result for update")
		}
		if input.SetNumber != nil && *input.SetNumber != set.SetNumber {
			return ErrSetNumberImmutable
		}
		if input.Side1Points != nil {
			set.Side1Points = *input.Side1Points
		}
		if input.Side2Points != nil {
			set.Side2Points = *input.Side2Points
		}
		if err := checkPoints(set.Side1Points, set.Side2Points); err != nil {
			return err
		}
		if err := translateStoreError(tx.SetResults().Update(ctx, set)); err != nil {
			return err
		}
		updated = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSetResult removes the last recorded set of a match.
func (s *setResultService) DeleteSetResult(ctx context.Context, id int) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		set, err := tx.SetResults().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrSetResultNotFound, "failed to load set result")
		}
		sets, err := tx.SetResults().ListByMatch(ctx, set.MatchID)
		if err != nil {
			return fmt.Errorf("failed to list sets of match %d: %w", set.MatchID, err)
		}
		if last := sets[len(sets)-1]; last.ID != set.ID {
			return fmt.Errorf("%w: set %d follows", ErrOnlyLastSetDeletable, last.SetNumber)
		}
		return notFoundOr(tx.SetResults().Delete(ctx, id), ErrSetResultNotFound, "failed to delete set result")
	})
}
