package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type GroupService interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*models.Group, error)
	GetGroupByID(ctx context.Context, id int) (*models.Group, error)
	ListGroups(ctx context.Context, filter repositories.GroupFilter) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, id int, input UpdateGroupInput) (*models.Group, error)
	DeleteGroup(ctx context.Context, id int) error

	AddMember(ctx context.Context, groupID, playerID int) (*models.GroupMembership, error)
	RemoveMember(ctx context.Context, groupID, playerID int) error
	ListMembers(ctx context.Context, groupID int) ([]*models.Player, error)
}

type CreateGroupInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	TournamentID int    `json:"tournament_id" validate:"required,gt=0"`
	CategoryID   int    `json:"category_id" validate:"required,gt=0"`
}

type UpdateGroupInput struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	TournamentID *int    `json:"tournament_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID   *int    `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

type groupService struct {
	store repositories.Store
}

func NewGroupService(store repositories.Store) GroupService {
	return &groupService{store: store}
}

func mergeGroup(current models.Group, patch UpdateGroupInput) models.Group {
	merged := current
	merged.Members = nil
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.TournamentID != nil {
		merged.TournamentID = *patch.TournamentID
	}
	if patch.CategoryID != nil {
		merged.CategoryID = *patch.CategoryID
	}
	return merged
}

func validateGroup(ctx context.Context, tx repositories.Store, g models.Group) error {
	if g.Name == "" {
		return &ValidationError{Fields: map[string]string{"name": "is required"}}
	}
	if _, err := tx.Tournaments().GetByID(ctx, g.TournamentID); err != nil {
		return notFoundOr(err, ErrTournamentNotFound, "failed to check group tournament")
	}
	if _, err := tx.Categories().GetByID(ctx, g.CategoryID); err != nil {
		return notFoundOr(err, ErrCategoryNotFound, "failed to check group category")
	}

	existing, err := tx.Groups().FindByName(ctx, g.TournamentID, g.CategoryID, g.Name)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check group name: %w", err)
	case existing.ID != g.ID:
		return ErrGroupNameConflict
	}
	return nil
}

func (s *groupService) CreateGroup(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	group := &models.Group{Name: input.Name, TournamentID: input.TournamentID, CategoryID: input.CategoryID}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := validateGroup(ctx, tx, *group); err != nil {
			return err
		}
		return translateStoreError(tx.Groups().Create(ctx, group))
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) GetGroupByID(ctx context.Context, id int) (*models.Group, error) {
	group, err := s.store.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrGroupNotFound, fmt.Sprintf("failed to get group %d", id))
	}
	members, err := s.store.Groups().ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of group %d: %w", id, err)
	}
	group.Members = make([]models.Player, len(members))
	for i, m := range members {
		group.Members[i] = *m
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, filter repositories.GroupFilter) ([]*models.Group, error) {
	groups, err := s.store.Groups().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, id int, input UpdateGroupInput) (*models.Group, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Group
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Groups().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrGroupNotFound, "failed to load group for update")
		}
		updated = mergeGroup(*current, input)
		if err := validateGroup(ctx, tx, updated); err != nil {
			return err
		}
		if updated.TournamentID != current.TournamentID || updated.CategoryID != current.CategoryID {
			groupID := id
			matches, err := tx.Matches().List(ctx, repositories.MatchFilter{GroupID: &groupID, Limit: 1})
			if err != nil {
				return fmt.Errorf("failed to check matches of group %d: %w", id, err)
			}
			if len(matches) > 0 {
				return fmt.Errorf("%w: group already has matches", ErrInUse)
			}
		}
		return translateStoreError(tx.Groups().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteGroup removes the group, its memberships and its group-stage matches.
func (s *groupService) DeleteGroup(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Groups().Delete(ctx, id), ErrGroupNotFound)
}

func (s *groupService) AddMember(ctx context.Context, groupID, playerID int) (*models.GroupMembership, error) {
	membership := &models.GroupMembership{GroupID: groupID, PlayerID: playerID}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Groups().GetByID(ctx, groupID); err != nil {
			return notFoundOr(err, ErrGroupNotFound, "failed to check group")
		}
		if _, err := tx.Players().GetByID(ctx, playerID); err != nil {
			return notFoundOr(err, ErrPlayerNotFound, "failed to check player")
		}
		return translateStoreError(tx.Groups().AddMember(ctx, membership))
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, playerID int) error {
	if _, err := s.store.Groups().GetByID(ctx, groupID); err != nil {
		return notFoundOr(err, ErrGroupNotFound, "failed to check group")
	}
	if err := s.store.Groups().RemoveMember(ctx, groupID, playerID); err != nil {
		return notFoundOr(err, ErrGroupMemberNotFound, "failed to remove group member")
	}
	return nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID int) ([]*models.Player, error) {
	if _, err := s.store.Groups().GetByID(ctx, groupID); err != nil {
		return nil, notFoundOr(err, ErrGroupNotFound, "failed to check group")
	}
	members, err := s.store.Groups().ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	return members, nil
}
