package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	ScheduleMatch(ctx context.Context, id int, input ScheduleMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error
}

type CreateMatchInput struct {
	Type              models.MatchType `json:"type" validate:"required"`
	TournamentID      int              `json:"tournament_id" validate:"required,gt=0"`
	CategoryID        int              `json:"category_id" validate:"required,gt=0"`
	ScheduledAt       time.Time        `json:"scheduled_at" validate:"required"`
	TableNumber       int              `json:"table_number"`
	Round             *string          `json:"round,omitempty" validate:"omitempty,max=50"`
	IsBye             bool             `json:"is_bye"`
	BracketPosition   *int             `json:"bracket_position,omitempty" validate:"omitempty,gt=0"`
	AdvancesToMatchID *int             `json:"advances_to_match_id,omitempty" validate:"omitempty,gt=0"`
	Player1ID         *int             `json:"player1_id,omitempty" validate:"omitempty,gt=0"`
	Player2ID         *int             `json:"player2_id,omitempty" validate:"omitempty,gt=0"`
	Team1ID           *int             `json:"team1_id,omitempty" validate:"omitempty,gt=0"`
	Team2ID           *int             `json:"team2_id,omitempty" validate:"omitempty,gt=0"`
	GroupID           *int             `json:"group_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateMatchInput carries the mutable match fields. Type and participant slots
// are accepted only to reject attempts to change them.
type UpdateMatchInput struct {
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	TableNumber       *int       `json:"table_number,omitempty"`
	Round             *string    `json:"round,omitempty" validate:"omitempty,max=50"`
	IsBye             *bool      `json:"is_bye,omitempty"`
	BracketPosition   *int       `json:"bracket_position,omitempty" validate:"omitempty,gt=0"`
	AdvancesToMatchID *int       `json:"advances_to_match_id,omitempty" validate:"omitempty,gt=0"`
	GroupID           *int       `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	// RemoveAdvancesTo and RemoveGroup clear the link; they win over the ids.
	RemoveAdvancesTo bool `json:"remove_advances_to,omitempty"`
	RemoveGroup      bool `json:"remove_group,omitempty"`

	Type      *models.MatchType `json:"type,omitempty"`
	Player1ID *int              `json:"player1_id,omitempty"`
	Player2ID *int              `json:"player2_id,omitempty"`
	Team1ID   *int              `json:"team1_id,omitempty"`
	Team2ID   *int              `json:"team2_id,omitempty"`
}

type ScheduleMatchInput struct {
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	TableNumber *int       `json:"table_number,omitempty"`
}

type matchService struct {
	store repositories.Store
}

func NewMatchService(store repositories.Store) MatchService {
	return &matchService{store: store}
}

func mergeMatch(current models.Match, patch UpdateMatchInput) (models.Match, error) {
	if patch.Type != nil && *patch.Type != current.Type {
		return current, ErrMatchTypeImmutable
	}
	slots := []struct{ patch, current *int }{
		{patch.Player1ID, current.Player1ID},
		{patch.Player2ID, current.Player2ID},
		{patch.Team1ID, current.Team1ID},
		{patch.Team2ID, current.Team2ID},
	}
	for _, slot := range slots {
		if slot.patch != nil && !sameIntPtr(slot.patch, slot.current) {
			return current, ErrParticipantsImmutable
		}
	}

	merged := current
	if patch.ScheduledAt != nil {
		merged.ScheduledAt = *patch.ScheduledAt
	}
	if patch.TableNumber != nil {
		merged.TableNumber = *patch.TableNumber
	}
	if patch.Round != nil {
		merged.Round = patch.Round
	}
	if patch.IsBye != nil {
		merged.IsBye = *patch.IsBye
	}
	if patch.BracketPosition != nil {
		merged.BracketPosition = patch.BracketPosition
	}
	if patch.AdvancesToMatchID != nil {
		merged.AdvancesToMatchID = patch.AdvancesToMatchID
	}
	if patch.GroupID != nil {
		merged.GroupID = patch.GroupID
	}
	if patch.RemoveAdvancesTo {
		merged.AdvancesToMatchID = nil
	}
	if patch.RemoveGroup {
		merged.GroupID = nil
	}
	return merged, nil
}

func checkTable(t *models.Tournament, table int) error {
	if table < 1 || table > t.AvailableTables {
		return fmt.Errorf("%w: table %d, tournament has %d", ErrTableOutOfRange, table, t.AvailableTables)
	}
	return nil
}

// validateMatch checks a match against its tournament, category, participants,
// group and bracket link.
func validateMatch(ctx context.Context, tx repositories.Store, m models.Match) error {
	if m.Type != models.MatchTypeIndividual && m.Type != models.MatchTypeDoubles {
		return fmt.Errorf("%w: %q", ErrUnknownMatchType, m.Type)
	}

	tournament, err := tx.Tournaments().GetByID(ctx, m.TournamentID)
	if err != nil {
		return notFoundOr(err, ErrTournamentNotFound, "failed to check match tournament")
	}
	if _, err := tx.Categories().GetByID(ctx, m.CategoryID); err != nil {
		return notFoundOr(err, ErrCategoryNotFound, "failed to check match category")
	}
	if err := checkTable(tournament, m.TableNumber); err != nil {
		return err
	}

	if err := validateParticipants(ctx, tx, m); err != nil {
		return err
	}

	if m.GroupID != nil {
		group, err := tx.Groups().GetByID(ctx, *m.GroupID)
		if err != nil {
			return notFoundOr(err, ErrGroupNotFound, "failed to check match group")
		}
		if group.TournamentID != m.TournamentID || group.CategoryID != m.CategoryID {
			return ErrGroupScope
		}
	}

	if m.AdvancesToMatchID != nil {
		return validateAdvanceLink(ctx, tx, m)
	}
	return nil
}

func validateParticipants(ctx context.Context, tx repositories.Store, m models.Match) error {
	if m.Type == models.MatchTypeIndividual && (m.Team1ID != nil || m.Team2ID != nil) ||
		m.Type == models.MatchTypeDoubles && (m.Player1ID != nil || m.Player2ID != nil) {
		return ErrWrongParticipantSlots
	}

	side1, side2 := m.Slots()
	if side1 != nil && side2 != nil {
		if *side1 == *side2 {
			return ErrSameParticipant
		}
		if m.IsBye {
			return ErrByeParticipants
		}
	}

	for _, id := range []*int{side1, side2} {
		if id == nil {
			continue
		}
		var err error
		if m.Type == models.MatchTypeDoubles {
			if _, err = tx.Teams().GetByID(ctx, *id); err != nil {
				return notFoundOr(err, ErrTeamNotFound, "failed to check match team")
			}
			continue
		}
		if _, err = tx.Players().GetByID(ctx, *id); err != nil {
			return notFoundOr(err, ErrPlayerNotFound, "failed to check match player")
		}
	}
	return nil
}

// validateAdvanceLink checks that the next match shares the tournament, category
// and type of m, and that following the links from it never comes back to m.
func validateAdvanceLink(ctx context.Context, tx repositories.Store, m models.Match) error {
	if m.ID != 0 && *m.AdvancesToMatchID == m.ID {
		return ErrAdvanceCycle
	}
	next, err := tx.Matches().GetByID(ctx, *m.AdvancesToMatchID)
	if err != nil {
		return notFoundOr(err, ErrMatchNotFound, "failed to check next match")
	}
	if next.TournamentID != m.TournamentID || next.CategoryID != m.CategoryID || next.Type != m.Type {
		return ErrAdvanceScope
	}
	if m.ID == 0 {
		return nil
	}

	seen := map[int]bool{next.ID: true}
	for next.AdvancesToMatchID != nil {
		id := *next.AdvancesToMatchID
		if id == m.ID || seen[id] {
			return ErrAdvanceCycle
		}
		seen[id] = true
		if next, err = tx.Matches().GetByID(ctx, id); err != nil {
			return fmt.Errorf("failed to follow bracket link to match %d: %w", id, err)
		}
	}
	return nil
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	match := &models.Match{
		Type:              input.Type,
		TournamentID:      input.TournamentID,
		CategoryID:        input.CategoryID,
		ScheduledAt:       input.ScheduledAt,
		TableNumber:       input.TableNumber,
		Round:             input.Round,
		IsBye:             input.IsBye,
		BracketPosition:   input.BracketPosition,
		AdvancesToMatchID: input.AdvancesToMatchID,
		Player1ID:         input.Player1ID,
		Player2ID:         input.Player2ID,
		Team1ID:           input.Team1ID,
		Team2ID:           input.Team2ID,
		GroupID:           input.GroupID,
	}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := validateMatch(ctx, tx, *match); err != nil {
			return err
		}
		return translateStoreError(tx.Matches().Create(ctx, match))
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.store.Matches().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrMatchNotFound, fmt.Sprintf("failed to get match %d", id))
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.store.Matches().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Match
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Matches().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "failed to load match for update")
		}
		if updated, err = mergeMatch(*current, input); err != nil {
			return err
		}
		if err := validateMatch(ctx, tx, updated); err != nil {
			return err
		}
		return translateStoreError(tx.Matches().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ScheduleMatch moves a match in time or to another table. The table is
// checked against the tournament's current table count.
func (s *matchService) ScheduleMatch(ctx context.Context, id int, input ScheduleMatchInput) (*models.Match, error) {
	var updated *models.Match
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		match, err := tx.Matches().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "failed to load match for scheduling")
		}
		if input.ScheduledAt != nil {
			match.ScheduledAt = *input.ScheduledAt
		}
		if input.TableNumber != nil {
			match.TableNumber = *input.TableNumber
		}

		tournament, err := tx.Tournaments().GetByID(ctx, match.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, err)
		}
		if err := checkTable(tournament, match.TableNumber); err != nil {
			return err
		}
		if err := translateStoreError(tx.Matches().Update(ctx, match)); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMatch removes the match with its set results. Matches that advanced
// into it lose their link.
func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Matches().Delete(ctx, id), ErrMatchNotFound)
}
