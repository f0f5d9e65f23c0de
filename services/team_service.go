package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context, opts repositories.ListOptions) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
}

type CreateTeamInput struct {
	Player1ID int `json:"player1_id" validate:"required,gt=0"`
	Player2ID int `json:"player2_id" validate:"required,gt=0"`
}

type UpdateTeamInput struct {
	Player1ID *int `json:"player1_id,omitempty" validate:"omitempty,gt=0"`
	Player2ID *int `json:"player2_id,omitempty" validate:"omitempty,gt=0"`
}

type teamService struct {
	store repositories.Store
}

func NewTeamService(store repositories.Store) TeamService {
	return &teamService{store: store}
}

func mergeTeam(current models.Team, patch UpdateTeamInput) models.Team {
	merged := current
	merged.Player1, merged.Player2 = nil, nil
	if patch.Player1ID != nil {
		merged.Player1ID = *patch.Player1ID
	}
	if patch.Player2ID != nil {
		merged.Player2ID = *patch.Player2ID
	}
	return merged
}

// validateTeam checks that the two players differ, exist, and are not paired in
// another team in either order.
func validateTeam(ctx context.Context, tx repositories.Store, t models.Team) error {
	if t.Player1ID == t.Player2ID {
		return ErrTeamSamePlayer
	}
	for _, id := range []int{t.Player1ID, t.Player2ID} {
		if _, err := tx.Players().GetByID(ctx, id); err != nil {
			return notFoundOr(err, ErrPlayerNotFound, "failed to check team player")
		}
	}

	existing, err := tx.Teams().FindByPlayers(ctx, t.Player1ID, t.Player2ID)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check team pair: %w", err)
	case existing.ID != t.ID:
		return ErrTeamConflict
	}
	return nil
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	team := &models.Team{Player1ID: input.Player1ID, Player2ID: input.Player2ID}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := validateTeam(ctx, tx, *team); err != nil {
			return err
		}
		return translateStoreError(tx.Teams().Create(ctx, team))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.store.Teams().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrTeamNotFound, fmt.Sprintf("failed to get team %d", id))
	}

	if team.Player1, err = s.store.Players().GetByID(ctx, team.Player1ID); err != nil {
		return nil, fmt.Errorf("failed to load player %d of team %d: %w", team.Player1ID, id, err)
	}
	if team.Player2, err = s.store.Players().GetByID(ctx, team.Player2ID); err != nil {
		return nil, fmt.Errorf("failed to load player %d of team %d: %w", team.Player2ID, id, err)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, opts repositories.ListOptions) ([]*models.Team, error) {
	teams, err := s.store.Teams().List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Team
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Teams().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrTeamNotFound, "failed to load team for update")
		}
		updated = mergeTeam(*current, input)
		if err := validateTeam(ctx, tx, updated); err != nil {
			return err
		}
		return translateStoreError(tx.Teams().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Teams().Delete(ctx, id), ErrTeamNotFound)
}
