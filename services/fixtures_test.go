package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories/memory"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// env wires every service to one in-memory store.
type env struct {
	ctx   context.Context
	store *memory.Store

	players      PlayerService
	associations AssociationService
	tournaments  TournamentService
	categories   CategoryService
	teams        TeamService
	groups       GroupService
	matches      MatchService
	sets         SetResultService
	enrollments  EnrollmentService
	brackets     BracketService
	outcomes     OutcomeService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore().WithClock(fixedClock)
	logger := discardLogger()
	return &env{
		ctx:          context.Background(),
		store:        store,
		players:      NewPlayerService(store, nil, fixedClock, logger),
		associations: NewAssociationService(store),
		tournaments:  NewTournamentService(store),
		categories:   NewCategoryService(store),
		teams:        NewTeamService(store),
		groups:       NewGroupService(store),
		matches:      NewMatchService(store),
		sets:         NewSetResultService(store),
		enrollments:  NewEnrollmentService(store, fixedClock, logger),
		brackets:     NewBracketService(store, nil, fixedClock, logger),
		outcomes:     NewOutcomeService(store, logger),
	}
}

// tournament has registration open on testNow and four tables.
func (e *env) tournament(t *testing.T) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.CreateTournament(e.ctx, CreateTournamentInput{
		Name:              "Spring Open",
		RegistrationStart: date(2026, time.March, 1),
		RegistrationEnd:   date(2026, time.March, 20),
		StartDate:         date(2026, time.April, 1),
		EndDate:           date(2026, time.April, 3),
		AvailableTables:   4,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tournament
}

// category is men 18 to 99, best of five to eleven points.
func (e *env) category(t *testing.T, name string) *models.Category {
	t.Helper()
	category, err := e.categories.CreateCategory(e.ctx, CreateCategoryInput{
		Name:         name,
		AgeMin:       18,
		AgeMax:       99,
		Gender:       models.GenderMale,
		SetsPerMatch: 5,
		PointsPerSet: 11,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func (e *env) player(t *testing.T, name string, gender models.Gender, born time.Time) *models.Player {
	t.Helper()
	player, err := e.players.CreatePlayer(e.ctx, CreatePlayerInput{Name: name, BirthDate: born, Gender: gender})
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return player
}

func (e *env) men(t *testing.T, names ...string) []*models.Player {
	t.Helper()
	out := make([]*models.Player, len(names))
	for i, name := range names {
		out[i] = e.player(t, name, models.GenderMale, date(1990, time.May, 1))
	}
	return out
}

func (e *env) team(t *testing.T, a, b *models.Player) *models.Team {
	t.Helper()
	team, err := e.teams.CreateTeam(e.ctx, CreateTeamInput{Player1ID: a.ID, Player2ID: b.ID})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func (e *env) singles(t *testing.T, tournament *models.Tournament, category *models.Category, a, b *models.Player) *models.Match {
	t.Helper()
	match, err := e.matches.CreateMatch(e.ctx, CreateMatchInput{
		Type:         models.MatchTypeIndividual,
		TournamentID: tournament.ID,
		CategoryID:   category.ID,
		ScheduledAt:  testNow,
		TableNumber:  1,
		Player1ID:    &a.ID,
		Player2ID:    &b.ID,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return match
}

func (e *env) recordSets(t *testing.T, matchID int, points ...[2]int) {
	t.Helper()
	existing, err := e.sets.ListSetResults(e.ctx, matchID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	for i, p := range points {
		_, err := e.sets.CreateSetResult(e.ctx, matchID, CreateSetResultInput{
			SetNumber:   len(existing) + i + 1,
			Side1Points: p[0],
			Side2Points: p[1],
		})
		if err != nil {
			t.Fatalf("record set %d: %v", len(existing)+i+1, err)
		}
	}
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}
