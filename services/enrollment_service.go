package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type EnrollmentService interface {
	EnrollPlayer(ctx context.Context, input EnrollPlayerInput) (*models.Enrollment, error)
	WithdrawPlayer(ctx context.Context, input EnrollPlayerInput) error
	ListEnrollments(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.Enrollment, error)

	EnrollTeam(ctx context.Context, input EnrollTeamInput) (*models.DoublesEnrollment, error)
	WithdrawTeam(ctx context.Context, input EnrollTeamInput) error
	ListTeamEnrollments(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.DoublesEnrollment, error)
}

type EnrollPlayerInput struct {
	PlayerID     int `json:"player_id" validate:"required,gt=0"`
	TournamentID int `json:"tournament_id" validate:"required,gt=0"`
	CategoryID   int `json:"category_id" validate:"required,gt=0"`
}

type EnrollTeamInput struct {
	TeamID       int `json:"team_id" validate:"required,gt=0"`
	TournamentID int `json:"tournament_id" validate:"required,gt=0"`
	CategoryID   int `json:"category_id" validate:"required,gt=0"`
}

type enrollmentService struct {
	store  repositories.Store
	now    Clock
	logger *slog.Logger
}

func NewEnrollmentService(store repositories.Store, now Clock, logger *slog.Logger) EnrollmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &enrollmentService{store: store, now: clockOrDefault(now), logger: logger}
}

// loadEvent fetches the tournament and category of an enrollment and checks
// that registration is open today.
func (s *enrollmentService) loadEvent(ctx context.Context, tx repositories.Store, tournamentID, categoryID int) (*models.Tournament, *models.Category, error) {
	tournament, err := tx.Tournaments().GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrTournamentNotFound, "failed to load tournament")
	}
	category, err := tx.Categories().GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrCategoryNotFound, "failed to load category")
	}
	if today := s.now(); !tournament.RegistrationOpenOn(today) {
		return nil, nil, fmt.Errorf("%w: window is %s to %s", ErrRegistrationClosed,
			tournament.RegistrationStart.Format(time.DateOnly), tournament.RegistrationEnd.Format(time.DateOnly))
	}
	return tournament, category, nil
}

func checkEligibility(player *models.Player, category *models.Category, today time.Time) error {
	age := player.AgeOn(today)
	if age < category.AgeMin || age > category.AgeMax {
		return fmt.Errorf("%w: age %d, category allows %d to %d", ErrAgeNotEligible, age, category.AgeMin, category.AgeMax)
	}
	if player.Gender != category.Gender {
		return ErrGenderNotEligible
	}
	return nil
}

func (s *enrollmentService) EnrollPlayer(ctx context.Context, input EnrollPlayerInput) (*models.Enrollment, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		PlayerID:     input.PlayerID,
		TournamentID: input.TournamentID,
		CategoryID:   input.CategoryID,
	}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		player, err := tx.Players().GetByID(ctx, input.PlayerID)
		if err != nil {
			return notFoundOr(err, ErrPlayerNotFound, "failed to load player")
		}
		_, category, err := s.loadEvent(ctx, tx, input.TournamentID, input.CategoryID)
		if err != nil {
			return err
		}
		if err := checkEligibility(player, category, models.DateOnly(s.now())); err != nil {
			return err
		}

		_, err = tx.Enrollments().Get(ctx, input.PlayerID, input.TournamentID, input.CategoryID)
		switch {
		case err == nil:
			return ErrEnrollmentConflict
		case !errors.Is(err, repositories.ErrRecordNotFound):
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		return translateStoreError(tx.Enrollments().Create(ctx, enrollment))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Player enrolled",
		slog.Int("player_id", input.PlayerID),
		slog.Int("tournament_id", input.TournamentID),
		slog.Int("category_id", input.CategoryID))
	return enrollment, nil
}

func (s *enrollmentService) WithdrawPlayer(ctx context.Context, input EnrollPlayerInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	err := s.store.Enrollments().Delete(ctx, input.PlayerID, input.TournamentID, input.CategoryID)
	return notFoundOr(err, ErrEnrollmentNotFound, "failed to delete enrollment")
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.Enrollment, error) {
	enrollments, err := s.store.Enrollments().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// EnrollTeam registers a doubles team. Only the registration window is checked
// for teams.
func (s *enrollmentService) EnrollTeam(ctx context.Context, input EnrollTeamInput) (*models.DoublesEnrollment, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	enrollment := &models.DoublesEnrollment{
		TeamID:       input.TeamID,
		TournamentID: input.TournamentID,
		CategoryID:   input.CategoryID,
	}
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Teams().GetByID(ctx, input.TeamID); err != nil {
			return notFoundOr(err, ErrTeamNotFound, "failed to load team")
		}
		if _, _, err := s.loadEvent(ctx, tx, input.TournamentID, input.CategoryID); err != nil {
			return err
		}

		_, err := tx.Enrollments().GetDoubles(ctx, input.TeamID, input.TournamentID, input.CategoryID)
		switch {
		case err == nil:
			return ErrEnrollmentConflict
		case !errors.Is(err, repositories.ErrRecordNotFound):
			return fmt.Errorf("failed to check doubles enrollment: %w", err)
		}
		return translateStoreError(tx.Enrollments().CreateDoubles(ctx, enrollment))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Team enrolled",
		slog.Int("team_id", input.TeamID),
		slog.Int("tournament_id", input.TournamentID),
		slog.Int("category_id", input.CategoryID))
	return enrollment, nil
}

func (s *enrollmentService) WithdrawTeam(ctx context.Context, input EnrollTeamInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	err := s.store.Enrollments().DeleteDoubles(ctx, input.TeamID, input.TournamentID, input.CategoryID)
	return notFoundOr(err, ErrEnrollmentNotFound, "failed to delete doubles enrollment")
}

func (s *enrollmentService) ListTeamEnrollments(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.DoublesEnrollment, error) {
	enrollments, err := s.store.Enrollments().ListDoubles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list doubles enrollments: %w", err)
	}
	return enrollments, nil
}
