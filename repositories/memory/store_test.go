package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedTournament(t *testing.T, s *Store) (*models.Tournament, *models.Category) {
	t.Helper()
	ctx := context.Background()
	tour := &models.Tournament{
		Name:              "Open",
		RegistrationStart: date(2026, 1, 1),
		RegistrationEnd:   date(2026, 1, 31),
		StartDate:         date(2026, 2, 1),
		EndDate:           date(2026, 2, 2),
		AvailableTables:   4,
	}
	if err := s.Tournaments().Create(ctx, tour); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	cat := &models.Category{Name: "Senior M", AgeMin: 18, AgeMax: 99, Gender: models.GenderMale, SetsPerMatch: 5, PointsPerSet: 11}
	if err := s.Categories().Create(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return tour, cat
}

func seedPlayer(t *testing.T, s *Store, name string) *models.Player {
	t.Helper()
	p := &models.Player{Name: name, BirthDate: date(1990, 5, 5), Gender: models.GenderMale}
	if err := s.Players().Create(context.Background(), p); err != nil {
		t.Fatalf("create player: %v", err)
	}
	return p
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Associations().Create(ctx, &models.Association{Name: "Club"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	list, err := s.Associations().List(ctx, repositories.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected rollback, found %d associations", len(list))
	}
}

func TestWithinTxCommitsAndNests(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx repositories.Store) error {
		return tx.WithinTx(ctx, func(inner repositories.Store) error {
			return inner.Associations().Create(ctx, &models.Association{Name: "Club"})
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if _, err := s.Associations().GetByName(ctx, "Club"); err != nil {
		t.Fatalf("committed association not found: %v", err)
	}
}

func TestUniqueConstraintNames(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Associations().Create(ctx, &models.Association{Name: "Club"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Associations().Create(ctx, &models.Association{Name: "Club"})
	if !errors.Is(err, repositories.ErrUniqueViolation) {
		t.Fatalf("error = %v, want unique violation", err)
	}
	if name, _ := repositories.ConstraintName(err); name != repositories.ConstraintAssociationName {
		t.Errorf("constraint = %q, want %q", name, repositories.ConstraintAssociationName)
	}
}

func TestTeamPairIsUnordered(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := seedPlayer(t, s, "A"), seedPlayer(t, s, "B")

	if err := s.Teams().Create(ctx, &models.Team{Player1ID: a.ID, Player2ID: b.ID}); err != nil {
		t.Fatalf("create team: %v", err)
	}
	err := s.Teams().Create(ctx, &models.Team{Player1ID: b.ID, Player2ID: a.ID})
	if name, _ := repositories.ConstraintName(err); name != repositories.ConstraintTeamPair {
		t.Fatalf("error = %v, want %s violation", err, repositories.ConstraintTeamPair)
	}
	if _, err := s.Teams().FindByPlayers(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("FindByPlayers reversed: %v", err)
	}
}

func TestDeleteTournamentCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tour, cat := seedTournament(t, s)
	a, b := seedPlayer(t, s, "A"), seedPlayer(t, s, "B")

	g := &models.Group{Name: "A", TournamentID: tour.ID, CategoryID: cat.ID}
	if err := s.Groups().Create(ctx, g); err != nil {
		t.Fatalf("create group: %v", err)
	}
	m := &models.Match{
		Type: models.MatchTypeIndividual, TournamentID: tour.ID, CategoryID: cat.ID,
		TableNumber: 1, Player1ID: &a.ID, Player2ID: &b.ID, GroupID: &g.ID,
	}
	if err := s.Matches().Create(ctx, m); err != nil {
		t.Fatalf("create match: %v", err)
	}
	if err := s.SetResults().Create(ctx, &models.SetResult{MatchID: m.ID, SetNumber: 1, Side1Points: 11, Side2Points: 3}); err != nil {
		t.Fatalf("create set: %v", err)
	}

	if err := s.Tournaments().Delete(ctx, tour.ID); err != nil {
		t.Fatalf("delete tournament: %v", err)
	}
	if _, err := s.Groups().GetByID(ctx, g.ID); !errors.Is(err, repositories.ErrRecordNotFound) {
		t.Errorf("group survived delete: %v", err)
	}
	if _, err := s.Matches().GetByID(ctx, m.ID); !errors.Is(err, repositories.ErrRecordNotFound) {
		t.Errorf("match survived delete: %v", err)
	}
	sets, _ := s.SetResults().ListByMatch(ctx, m.ID)
	if len(sets) != 0 {
		t.Errorf("sets survived delete: %d", len(sets))
	}
}

func TestDeleteMatchClearsAdvancesTo(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tour, cat := seedTournament(t, s)

	final := &models.Match{Type: models.MatchTypeIndividual, TournamentID: tour.ID, CategoryID: cat.ID, TableNumber: 1}
	if err := s.Matches().Create(ctx, final); err != nil {
		t.Fatalf("create final: %v", err)
	}
	semi := &models.Match{Type: models.MatchTypeIndividual, TournamentID: tour.ID, CategoryID: cat.ID, TableNumber: 1, AdvancesToMatchID: &final.ID}
	if err := s.Matches().Create(ctx, semi); err != nil {
		t.Fatalf("create semi: %v", err)
	}

	if err := s.Matches().Delete(ctx, final.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.Matches().GetByID(ctx, semi.ID)
	if err != nil {
		t.Fatalf("get semi: %v", err)
	}
	if got.AdvancesToMatchID != nil {
		t.Errorf("AdvancesToMatchID = %d, want nil", *got.AdvancesToMatchID)
	}
}

func TestDeletePlayerInTeamIsRestricted(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := seedPlayer(t, s, "A"), seedPlayer(t, s, "B")
	if err := s.Teams().Create(ctx, &models.Team{Player1ID: a.ID, Player2ID: b.ID}); err != nil {
		t.Fatalf("create team: %v", err)
	}

	err := s.Players().Delete(ctx, a.ID)
	if !errors.Is(err, repositories.ErrForeignKeyViolation) {
		t.Fatalf("error = %v, want foreign key violation", err)
	}
}

func TestGroupMembersKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tour, cat := seedTournament(t, s)
	g := &models.Group{Name: "A", TournamentID: tour.ID, CategoryID: cat.ID}
	if err := s.Groups().Create(ctx, g); err != nil {
		t.Fatalf("create group: %v", err)
	}

	names := []string{"C", "A", "B"}
	for _, n := range names {
		p := seedPlayer(t, s, n)
		if err := s.Groups().AddMember(ctx, &models.GroupMembership{GroupID: g.ID, PlayerID: p.ID}); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	members, err := s.Groups().ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	for i, p := range members {
		if p.Name != names[i] {
			t.Errorf("member %d = %s, want %s", i, p.Name, names[i])
		}
	}
}

func TestReturnedMatchesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tour, cat := seedTournament(t, s)
	a := seedPlayer(t, s, "A")

	m := &models.Match{Type: models.MatchTypeIndividual, TournamentID: tour.ID, CategoryID: cat.ID, TableNumber: 1, Player1ID: &a.ID}
	if err := s.Matches().Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := s.Matches().GetByID(ctx, m.ID)
	*got.Player1ID = 999

	again, _ := s.Matches().GetByID(ctx, m.ID)
	if *again.Player1ID != a.ID {
		t.Fatalf("stored match mutated through returned pointer")
	}
}
