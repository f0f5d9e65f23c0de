package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, opts repositories.ListOptions) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	GetTournamentOverview(ctx context.Context, id int) (*TournamentOverview, error)
}

type CreateTournamentInput struct {
	Name              string    `json:"name" validate:"required,max=200"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	RegistrationStart time.Time `json:"registration_start" validate:"required"`
	RegistrationEnd   time.Time `json:"registration_end" validate:"required"`
	AvailableTables   int       `json:"available_tables" validate:"required,min=1"`
}

type UpdateTournamentInput struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	RegistrationStart *time.Time `json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time `json:"registration_end,omitempty"`
	AvailableTables   *int       `json:"available_tables,omitempty"`
}

// TournamentOverview gathers everything scheduled inside a tournament.
type TournamentOverview struct {
	Tournament         *models.Tournament          `json:"tournament"`
	Groups             []*models.Group             `json:"groups"`
	Matches            []*models.Match             `json:"matches"`
	Enrollments        []*models.Enrollment        `json:"enrollments"`
	DoublesEnrollments []*models.DoublesEnrollment `json:"doubles_enrollments"`
}

type tournamentService struct {
	store repositories.Store
}

func NewTournamentService(store repositories.Store) TournamentService {
	return &tournamentService{store: store}
}

func mergeTournament(current models.Tournament, patch UpdateTournamentInput) models.Tournament {
	merged := current
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.StartDate != nil {
		merged.StartDate = models.DateOnly(*patch.StartDate)
	}
	if patch.EndDate != nil {
		merged.EndDate = models.DateOnly(*patch.EndDate)
	}
	if patch.RegistrationStart != nil {
		merged.RegistrationStart = models.DateOnly(*patch.RegistrationStart)
	}
	if patch.RegistrationEnd != nil {
		merged.RegistrationEnd = models.DateOnly(*patch.RegistrationEnd)
	}
	if patch.AvailableTables != nil {
		merged.AvailableTables = *patch.AvailableTables
	}
	return merged
}

// validateTournament checks registration_start <= registration_end <= start_date <= end_date
// on calendar dates, and that at least one table is available.
func validateTournament(t models.Tournament) error {
	if t.Name == "" {
		return &ValidationError{Fields: map[string]string{"name": "is required"}}
	}
	regStart, regEnd := models.DateOnly(t.RegistrationStart), models.DateOnly(t.RegistrationEnd)
	start, end := models.DateOnly(t.StartDate), models.DateOnly(t.EndDate)
	if regStart.After(regEnd) || regEnd.After(start) || start.After(end) {
		return ErrTournamentDateOrder
	}
	if t.AvailableTables < 1 {
		return ErrNoTables
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:              input.Name,
		StartDate:         models.DateOnly(input.StartDate),
		EndDate:           models.DateOnly(input.EndDate),
		RegistrationStart: models.DateOnly(input.RegistrationStart),
		RegistrationEnd:   models.DateOnly(input.RegistrationEnd),
		AvailableTables:   input.AvailableTables,
	}
	if err := validateTournament(*tournament); err != nil {
		return nil, err
	}

	if err := s.store.Tournaments().Create(ctx, tournament); err != nil {
		return nil, translateStoreError(err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.store.Tournaments().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrTournamentNotFound, fmt.Sprintf("failed to get tournament %d", id))
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, opts repositories.ListOptions) ([]*models.Tournament, error) {
	tournaments, err := s.store.Tournaments().List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated models.Tournament
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Tournaments().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrTournamentNotFound, "failed to load tournament for update")
		}
		updated = mergeTournament(*current, input)
		if err := validateTournament(updated); err != nil {
			return err
		}
		return translateStoreError(tx.Tournaments().Update(ctx, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTournament removes the tournament together with its groups, matches and enrollments.
func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	return translateDeleteError(s.store.Tournaments().Delete(ctx, id), ErrTournamentNotFound)
}

func (s *tournamentService) GetTournamentOverview(ctx context.Context, id int) (*TournamentOverview, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	overview := &TournamentOverview{Tournament: tournament}
	filter := &id

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := s.store.Groups().List(gCtx, repositories.GroupFilter{TournamentID: filter})
		if err != nil {
			return fmt.Errorf("failed to fetch groups of tournament %d: %w", id, err)
		}
		for _, group := range groups {
			members, err := s.store.Groups().ListMembers(gCtx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch members of group %d: %w", group.ID, err)
			}
			group.Members = make([]models.Player, len(members))
			for i, m := range members {
				group.Members[i] = *m
			}
		}
		overview.Groups = groups
		return nil
	})

	g.Go(func() error {
		matches, err := s.store.Matches().List(gCtx, repositories.MatchFilter{TournamentID: filter})
		if err != nil {
			return fmt.Errorf("failed to fetch matches of tournament %d: %w", id, err)
		}
		overview.Matches = matches
		return nil
	})

	g.Go(func() error {
		enrollments, err := s.store.Enrollments().List(gCtx, repositories.EnrollmentFilter{TournamentID: filter})
		if err != nil {
			return fmt.Errorf("failed to fetch enrollments of tournament %d: %w", id, err)
		}
		overview.Enrollments = enrollments
		return nil
	})

	g.Go(func() error {
		doubles, err := s.store.Enrollments().ListDoubles(gCtx, repositories.EnrollmentFilter{TournamentID: filter})
		if err != nil {
			return fmt.Errorf("failed to fetch doubles enrollments of tournament %d: %w", id, err)
		}
		overview.DoublesEnrollments = doubles
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
