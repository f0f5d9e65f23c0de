package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/scoring"
)

// MatchOutcome is the state of a match derived from its set results. It is
// computed on every query and never stored.
type MatchOutcome struct {
	MatchID    int                 `json:"match_id"`
	Side1Sets  int                 `json:"side1_sets"`
	Side2Sets  int                 `json:"side2_sets"`
	SetsToWin  int                 `json:"sets_to_win"`
	Decided    bool                `json:"decided"`
	WinnerSide scoring.Side        `json:"winner_side"`
	WinnerID   *int                `json:"winner_id,omitempty"`
	Sets       []*models.SetResult `json:"sets"`
}

type OutcomeService interface {
	GetMatchOutcome(ctx context.Context, matchID int) (*MatchOutcome, error)
	// AdvanceWinner places the declared winner into the next bracket match.
	// The winner is trusted; only the slot kind and free space are checked.
	AdvanceWinner(ctx context.Context, matchID int, input AdvanceWinnerInput) (*models.Match, error)
	// CompleteMatch resolves the winner of a match and advances it when the
	// match links to a next one.
	CompleteMatch(ctx context.Context, matchID int) (*MatchOutcome, error)
}

type AdvanceWinnerInput struct {
	WinnerID int                    `json:"winner_id" validate:"required,gt=0"`
	Kind     models.ParticipantKind `json:"kind" validate:"required,oneof=player team"`
}

type outcomeService struct {
	store  repositories.Store
	logger *slog.Logger
}

func NewOutcomeService(store repositories.Store, logger *slog.Logger) OutcomeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &outcomeService{store: store, logger: logger}
}

// resolveOutcome tallies the sets of m. A bye is decided for its only
// participant without any sets.
func resolveOutcome(ctx context.Context, tx repositories.Store, m *models.Match) (*MatchOutcome, error) {
	category, err := tx.Categories().GetByID(ctx, m.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", m.CategoryID, err)
	}
	sets, err := tx.SetResults().ListByMatch(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets of match %d: %w", m.ID, err)
	}

	tally := scoring.TallySets(sets, *category)
	if m.IsBye && !tally.Decided() {
		switch side1, side2 := m.Slots(); {
		case side1 != nil && side2 == nil:
			tally.Winner = scoring.Side1
		case side1 == nil && side2 != nil:
			tally.Winner = scoring.Side2
		}
	}

	return &MatchOutcome{
		MatchID:    m.ID,
		Side1Sets:  tally.Side1Sets,
		Side2Sets:  tally.Side2Sets,
		SetsToWin:  tally.SetsToWin,
		Decided:    tally.Decided(),
		WinnerSide: tally.Winner,
		WinnerID:   scoring.WinnerID(m, tally),
		Sets:       sets,
	}, nil
}

// advanceInto fills the first empty slot of next with the winner. A winner
// already placed in next is rejected.
func advanceInto(ctx context.Context, tx repositories.Store, next *models.Match, winnerID int, kind models.ParticipantKind) error {
	if next.Type.Kind() != kind {
		return fmt.Errorf("%w: %s into a %s match", ErrParticipantKind, kind, next.Type)
	}
	side1, side2 := next.Slots()
	switch {
	case sameIntPtr(side1, &winnerID) || sameIntPtr(side2, &winnerID):
		return fmt.Errorf("%w: %s %d is already in match %d", ErrAlreadyAdvanced, kind, winnerID, next.ID)
	case side1 == nil:
		next.SetSlots(intPtr(winnerID), side2)
	case side2 == nil:
		next.SetSlots(side1, intPtr(winnerID))
	default:
		return fmt.Errorf("%w: match %d", ErrNextMatchFull, next.ID)
	}
	return translateStoreError(tx.Matches().Update(ctx, next))
}

func loadNextMatch(ctx context.Context, tx repositories.Store, m *models.Match) (*models.Match, error) {
	if m.AdvancesToMatchID == nil {
		return nil, ErrNoNextMatch
	}
	next, err := tx.Matches().GetByID(ctx, *m.AdvancesToMatchID)
	if err != nil {
		return nil, notFoundOr(err, ErrNoNextMatch, "failed to load next match")
	}
	return next, nil
}

func (s *outcomeService) GetMatchOutcome(ctx context.Context, matchID int) (*MatchOutcome, error) {
	match, err := s.store.Matches().GetByID(ctx, matchID)
	if err != nil {
		return nil, notFoundOr(err, ErrMatchNotFound, "failed to load match")
	}
	return resolveOutcome(ctx, s.store, match)
}

func (s *outcomeService) AdvanceWinner(ctx context.Context, matchID int, input AdvanceWinnerInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var next *models.Match
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		match, err := tx.Matches().GetByID(ctx, matchID)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "failed to load match")
		}
		if next, err = loadNextMatch(ctx, tx, match); err != nil {
			return err
		}
		return advanceInto(ctx, tx, next, input.WinnerID, input.Kind)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Winner advanced",
		slog.Int("match_id", matchID),
		slog.Int("next_match_id", next.ID),
		slog.Int("winner_id", input.WinnerID))
	return next, nil
}

func (s *outcomeService) CompleteMatch(ctx context.Context, matchID int) (*MatchOutcome, error) {
	var outcome *MatchOutcome
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		match, err := tx.Matches().GetByID(ctx, matchID)
		if err != nil {
			return notFoundOr(err, ErrMatchNotFound, "failed to load match")
		}
		if outcome, err = resolveOutcome(ctx, tx, match); err != nil {
			return err
		}
		if !outcome.Decided || outcome.WinnerID == nil {
			return fmt.Errorf("%w: %d-%d in sets", ErrMatchPending, outcome.Side1Sets, outcome.Side2Sets)
		}
		if match.AdvancesToMatchID == nil {
			return nil
		}

		next, err := loadNextMatch(ctx, tx, match)
		if err != nil {
			return err
		}
		// Completing twice must not place the winner twice.
		side1, side2 := next.Slots()
		if sameIntPtr(side1, outcome.WinnerID) || sameIntPtr(side2, outcome.WinnerID) {
			return nil
		}
		return advanceInto(ctx, tx, next, *outcome.WinnerID, match.Type.Kind())
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
