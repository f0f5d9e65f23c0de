package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletennis/brackets"
	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type BracketService interface {
	// GenerateRoundRobin creates the missing group-stage matches of a group.
	// It returns only the matches created by this call.
	GenerateRoundRobin(ctx context.Context, groupID int) ([]*models.Match, error)
	// GenerateElimination draws and stores the first elimination round.
	GenerateElimination(ctx context.Context, input GenerateEliminationInput) ([]*models.Match, error)
	// GenerateEliminationFromEnrollments draws the first round from the
	// individual or doubles enrollments of a tournament category.
	GenerateEliminationFromEnrollments(ctx context.Context, input EnrollmentBracketInput) ([]*models.Match, error)
	// GenerateNextRound creates the matches of the round after input.Round,
	// links the current round to them and advances bye winners.
	GenerateNextRound(ctx context.Context, input NextRoundInput) ([]*models.Match, error)
}

type GenerateEliminationInput struct {
	TournamentID   int              `json:"tournament_id" validate:"required,gt=0"`
	CategoryID     int              `json:"category_id" validate:"required,gt=0"`
	Type           models.MatchType `json:"type"`
	ParticipantIDs []int            `json:"participant_ids" validate:"dive,gt=0"`
}

type EnrollmentBracketInput struct {
	TournamentID int              `json:"tournament_id" validate:"required,gt=0"`
	CategoryID   int              `json:"category_id" validate:"required,gt=0"`
	Type         models.MatchType `json:"type"`
}

type NextRoundInput struct {
	TournamentID int              `json:"tournament_id" validate:"required,gt=0"`
	CategoryID   int              `json:"category_id" validate:"required,gt=0"`
	Type         models.MatchType `json:"type"`
	Round        string           `json:"round" validate:"required"`
}

type bracketService struct {
	store       repositories.Store
	roundRobin  brackets.BracketGenerator
	elimination brackets.BracketGenerator
	now         Clock
	logger      *slog.Logger
}

// NewBracketService builds the generator service. shuffler draws elimination
// brackets; a nil shuffler keeps the given participant order.
func NewBracketService(store repositories.Store, shuffler brackets.Shuffler, now Clock, logger *slog.Logger) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		store:       store,
		roundRobin:  brackets.NewRoundRobinGenerator(),
		elimination: brackets.NewSingleEliminationGenerator(shuffler),
		now:         clockOrDefault(now),
		logger:      logger,
	}
}

func checkMatchType(t models.MatchType) error {
	if t != models.MatchTypeIndividual && t != models.MatchTypeDoubles {
		return fmt.Errorf("%w: %q", ErrUnknownMatchType, t)
	}
	return nil
}

func (s *bracketService) checkEvent(ctx context.Context, tournamentID, categoryID int) error {
	if _, err := s.store.Tournaments().GetByID(ctx, tournamentID); err != nil {
		return notFoundOr(err, ErrTournamentNotFound, "failed to load tournament")
	}
	if _, err := s.store.Categories().GetByID(ctx, categoryID); err != nil {
		return notFoundOr(err, ErrCategoryNotFound, "failed to load category")
	}
	return nil
}

func (s *bracketService) GenerateRoundRobin(ctx context.Context, groupID int) ([]*models.Match, error) {
	group, err := s.store.Groups().GetByID(ctx, groupID)
	if err != nil {
		return nil, notFoundOr(err, ErrGroupNotFound, "failed to load group")
	}
	members, err := s.store.Groups().ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: group %d has %d member(s)", ErrNotEnoughParticipants, groupID, len(members))
	}

	ids := make([]int, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	pairs, err := s.roundRobin.GenerateBracket(ctx, brackets.GenerateBracketParams{ParticipantIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to pair group %d: %w", groupID, err)
	}

	now := s.now()
	created := make([]*models.Match, 0, len(pairs))
	for _, pair := range pairs {
		match := &models.Match{
			Type:         models.MatchTypeIndividual,
			TournamentID: group.TournamentID,
			CategoryID:   group.CategoryID,
			ScheduledAt:  now,
			TableNumber:  1,
			Round:        stringPtr(pair.Round),
			Player1ID:    pair.Participant1ID,
			Player2ID:    pair.Participant2ID,
			GroupID:      intPtr(group.ID),
		}

		var exists bool
		err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
			_, err := tx.Matches().FindBetweenPlayers(ctx, repositories.PairLookup{
				TournamentID: group.TournamentID,
				CategoryID:   group.CategoryID,
				GroupID:      match.GroupID,
				PlayerA:      *pair.Participant1ID,
				PlayerB:      *pair.Participant2ID,
			})
			switch {
			case err == nil:
				exists = true
				return nil
			case !errors.Is(err, repositories.ErrRecordNotFound):
				return fmt.Errorf("failed to look up existing match: %w", err)
			}
			if err := validateMatch(ctx, tx, *match); err != nil {
				return err
			}
			return translateStoreError(tx.Matches().Create(ctx, match))
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping round-robin pair",
				slog.Int("group_id", groupID),
				slog.Int("player1_id", *pair.Participant1ID),
				slog.Int("player2_id", *pair.Participant2ID),
				slog.Any("error", err))
			continue
		}
		if !exists {
			created = append(created, match)
		}
	}

	s.logger.InfoContext(ctx, "Round-robin generated",
		slog.Int("group_id", groupID),
		slog.Int("pairs", len(pairs)),
		slog.Int("created", len(created)))
	return created, nil
}

func (s *bracketService) GenerateElimination(ctx context.Context, input GenerateEliminationInput) ([]*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkMatchType(input.Type); err != nil {
		return nil, err
	}
	if err := s.checkEvent(ctx, input.TournamentID, input.CategoryID); err != nil {
		return nil, err
	}

	drawn, err := s.elimination.GenerateBracket(ctx, brackets.GenerateBracketParams{ParticipantIDs: input.ParticipantIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to draw bracket: %w", err)
	}

	now := s.now()
	created := make([]*models.Match, 0, len(drawn))
	for _, bm := range drawn {
		match := &models.Match{
			Type:            input.Type,
			TournamentID:    input.TournamentID,
			CategoryID:      input.CategoryID,
			ScheduledAt:     now,
			TableNumber:     1,
			Round:           stringPtr(bm.Round),
			IsBye:           bm.IsBye,
			BracketPosition: intPtr(bm.OrderInRound),
		}
		match.SetSlots(bm.Participant1ID, bm.Participant2ID)

		err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
			if err := validateMatch(ctx, tx, *match); err != nil {
				return err
			}
			return translateStoreError(tx.Matches().Create(ctx, match))
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping bracket match",
				slog.Int("tournament_id", input.TournamentID),
				slog.Int("category_id", input.CategoryID),
				slog.Int("bracket_position", bm.OrderInRound),
				slog.Any("error", err))
			continue
		}
		created = append(created, match)
	}

	s.logger.InfoContext(ctx, "Elimination bracket generated",
		slog.Int("tournament_id", input.TournamentID),
		slog.Int("category_id", input.CategoryID),
		slog.String("type", string(input.Type)),
		slog.Int("participants", len(input.ParticipantIDs)),
		slog.Int("bracket_size", brackets.BracketSize(len(input.ParticipantIDs))),
		slog.Int("created", len(created)))
	return created, nil
}

func (s *bracketService) GenerateEliminationFromEnrollments(ctx context.Context, input EnrollmentBracketInput) ([]*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkMatchType(input.Type); err != nil {
		return nil, err
	}

	filter := repositories.EnrollmentFilter{TournamentID: intPtr(input.TournamentID), CategoryID: intPtr(input.CategoryID)}
	var ids []int
	if input.Type == models.MatchTypeDoubles {
		enrollments, err := s.store.Enrollments().ListDoubles(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list doubles enrollments: %w", err)
		}
		for _, e := range enrollments {
			ids = append(ids, e.TeamID)
		}
	} else {
		enrollments, err := s.store.Enrollments().List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollments: %w", err)
		}
		for _, e := range enrollments {
			ids = append(ids, e.PlayerID)
		}
	}

	return s.GenerateElimination(ctx, GenerateEliminationInput{
		TournamentID:   input.TournamentID,
		CategoryID:     input.CategoryID,
		Type:           input.Type,
		ParticipantIDs: ids,
	})
}

func (s *bracketService) GenerateNextRound(ctx context.Context, input NextRoundInput) ([]*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkMatchType(input.Type); err != nil {
		return nil, err
	}
	if err := s.checkEvent(ctx, input.TournamentID, input.CategoryID); err != nil {
		return nil, err
	}

	var created []*models.Match
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		filter := repositories.MatchFilter{
			TournamentID: intPtr(input.TournamentID),
			CategoryID:   intPtr(input.CategoryID),
			Type:         &input.Type,
			Round:        stringPtr(input.Round),
		}
		current, err := tx.Matches().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list round %q: %w", input.Round, err)
		}
		if len(current) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyRound, input.Round)
		}

		plan, err := brackets.PlanNextRound(input.Round, len(current))
		switch {
		case errors.Is(err, brackets.ErrUnknownRound):
			return fmt.Errorf("%w: %q", ErrNotEliminationRound, input.Round)
		case errors.Is(err, brackets.ErrFinalRound):
			return fmt.Errorf("%w: %q", ErrFinalRound, input.Round)
		case err != nil:
			return err
		}

		filter.Round = stringPtr(plan.Round)
		following, err := tx.Matches().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list round %q: %w", plan.Round, err)
		}
		if len(following) > 0 {
			return fmt.Errorf("%w: %q exists", ErrRoundNotPlayable, plan.Round)
		}
		for _, m := range current {
			if m.AdvancesToMatchID != nil {
				return fmt.Errorf("%w: match %d already links to match %d", ErrRoundNotPlayable, m.ID, *m.AdvancesToMatchID)
			}
		}

		now := s.now()
		created = make([]*models.Match, 0, len(plan.Feeders))
		for i, feeders := range plan.Feeders {
			next := &models.Match{
				Type:            input.Type,
				TournamentID:    input.TournamentID,
				CategoryID:      input.CategoryID,
				ScheduledAt:     now,
				TableNumber:     1,
				Round:           stringPtr(plan.Round),
				IsBye:           len(feeders) == 1,
				BracketPosition: intPtr(i + 1),
			}
			if err := translateStoreError(tx.Matches().Create(ctx, next)); err != nil {
				return fmt.Errorf("failed to create %s match %d: %w", plan.Round, i+1, err)
			}

			for _, idx := range feeders {
				source := current[idx]
				source.AdvancesToMatchID = intPtr(next.ID)
				if err := translateStoreError(tx.Matches().Update(ctx, source)); err != nil {
					return fmt.Errorf("failed to link match %d: %w", source.ID, err)
				}
				if !source.IsBye {
					continue
				}
				outcome, err := resolveOutcome(ctx, tx, source)
				if err != nil {
					return err
				}
				if outcome.WinnerID == nil {
					continue
				}
				if err := advanceInto(ctx, tx, next, *outcome.WinnerID, input.Type.Kind()); err != nil {
					return fmt.Errorf("failed to advance bye of match %d: %w", source.ID, err)
				}
			}
			created = append(created, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Next round generated",
		slog.Int("tournament_id", input.TournamentID),
		slog.Int("category_id", input.CategoryID),
		slog.String("from_round", input.Round),
		slog.Int("created", len(created)))
	return created, nil
}
