package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/storage"
)

func TestCreateTournamentDateOrder(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		input CreateTournamentInput
		want  error
	}{
		{
			name: "registration ends after start",
			input: CreateTournamentInput{
				Name:              "Late",
				RegistrationStart: date(2026, time.March, 1),
				RegistrationEnd:   date(2026, time.April, 2),
				StartDate:         date(2026, time.April, 1),
				EndDate:           date(2026, time.April, 3),
				AvailableTables:   2,
			},
			want: ErrTournamentDateOrder,
		},
		{
			name: "ends before start",
			input: CreateTournamentInput{
				Name:              "Backwards",
				RegistrationStart: date(2026, time.March, 1),
				RegistrationEnd:   date(2026, time.March, 2),
				StartDate:         date(2026, time.April, 5),
				EndDate:           date(2026, time.April, 3),
				AvailableTables:   2,
			},
			want: ErrTournamentDateOrder,
		},
		{
			name: "single day",
			input: CreateTournamentInput{
				Name:              "One day",
				RegistrationStart: date(2026, time.March, 1),
				RegistrationEnd:   date(2026, time.April, 1),
				StartDate:         date(2026, time.April, 1),
				EndDate:           date(2026, time.April, 1),
				AvailableTables:   1,
			},
		},
		{
			name: "no tables",
			input: CreateTournamentInput{
				Name:              "Tableless",
				RegistrationStart: date(2026, time.March, 1),
				RegistrationEnd:   date(2026, time.March, 2),
				StartDate:         date(2026, time.April, 1),
				EndDate:           date(2026, time.April, 1),
			},
			want: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tournaments.CreateTournament(e.ctx, tt.input)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			expectErr(t, err, tt.want)
			expectErr(t, err, ErrInvalidState)
		})
	}
}

func TestUpdateTournamentValidatesMergedState(t *testing.T) {
	e := newEnv(t)
	tournament := e.tournament(t)

	lateEnd := date(2026, time.April, 2)
	_, err := e.tournaments.UpdateTournament(e.ctx, tournament.ID, UpdateTournamentInput{RegistrationEnd: &lateEnd})
	expectErr(t, err, ErrTournamentDateOrder)

	stored, err := e.tournaments.GetTournamentByID(e.ctx, tournament.ID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if !stored.RegistrationEnd.Equal(tournament.RegistrationEnd) {
		t.Errorf("registration end changed to %v", stored.RegistrationEnd)
	}

	tables := 8
	updated, err := e.tournaments.UpdateTournament(e.ctx, tournament.ID, UpdateTournamentInput{AvailableTables: &tables})
	if err != nil {
		t.Fatalf("update tournament: %v", err)
	}
	if updated.AvailableTables != 8 || updated.Name != tournament.Name {
		t.Errorf("unexpected update result: %+v", updated)
	}
}

func TestCategoryRules(t *testing.T) {
	e := newEnv(t)

	_, err := e.categories.CreateCategory(e.ctx, CreateCategoryInput{
		Name: "Backwards", AgeMin: 40, AgeMax: 30, Gender: models.GenderFemale, SetsPerMatch: 5, PointsPerSet: 11,
	})
	expectErr(t, err, ErrCategoryAgeRange)
	expectErr(t, err, ErrInvalidState)

	_, err = e.categories.CreateCategory(e.ctx, CreateCategoryInput{
		Name: "No sets", AgeMin: 10, AgeMax: 30, Gender: models.GenderFemale, SetsPerMatch: 0, PointsPerSet: 11,
	})
	expectErr(t, err, ErrCategoryRules)
	expectErr(t, err, ErrInvalidState)

	category := e.category(t, "Men Open")
	_, err = e.categories.CreateCategory(e.ctx, CreateCategoryInput{
		Name: "Men Open", AgeMin: 18, AgeMax: 40, Gender: models.GenderMale, SetsPerMatch: 3, PointsPerSet: 11,
	})
	expectErr(t, err, ErrCategoryNameConflict)
	expectErr(t, err, ErrConflict)

	max := 10
	_, err = e.categories.UpdateCategory(e.ctx, category.ID, UpdateCategoryInput{AgeMax: &max})
	expectErr(t, err, ErrCategoryAgeRange)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	e := newEnv(t)

	_, err := e.players.CreatePlayer(e.ctx, CreatePlayerInput{Name: "  ", Gender: "X"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "birth_date", "gender"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("missing field %q in %v", field, ve.Fields)
		}
	}
	expectErr(t, err, ErrInvalidState)
}

func TestPlayerValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.players.CreatePlayer(e.ctx, CreatePlayerInput{
		Name: "Future", BirthDate: date(2027, time.January, 1), Gender: models.GenderMale,
	})
	expectErr(t, err, ErrBirthDateInFuture)

	missing := 999
	_, err = e.players.CreatePlayer(e.ctx, CreatePlayerInput{
		Name: "Orphan", BirthDate: date(1990, time.January, 1), Gender: models.GenderMale, AssociationID: &missing,
	})
	expectErr(t, err, ErrAssociationNotFound)

	club, err := e.associations.CreateAssociation(e.ctx, CreateAssociationInput{Name: "TTC Riverside", City: "Ghent"})
	if err != nil {
		t.Fatalf("create association: %v", err)
	}
	player, err := e.players.CreatePlayer(e.ctx, CreatePlayerInput{
		Name: "Member", BirthDate: date(1990, time.January, 1), Gender: models.GenderMale, AssociationID: &club.ID,
	})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	got, err := e.players.GetPlayerByID(e.ctx, player.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Association == nil || got.Association.Name != "TTC Riverside" {
		t.Errorf("association not loaded: %+v", got.Association)
	}

	updated, err := e.players.UpdatePlayer(e.ctx, player.ID, UpdatePlayerInput{RemoveAssociation: true})
	if err != nil {
		t.Fatalf("update player: %v", err)
	}
	if updated.AssociationID != nil {
		t.Errorf("association still set: %v", *updated.AssociationID)
	}

	_, err = e.associations.CreateAssociation(e.ctx, CreateAssociationInput{Name: "TTC Riverside"})
	expectErr(t, err, ErrAssociationNameConflict)
}

func TestDeletePlayerInUse(t *testing.T) {
	e := newEnv(t)
	tournament, category := e.tournament(t), e.category(t, "Men Open")
	p := e.men(t, "A", "B")
	e.singles(t, tournament, category, p[0], p[1])

	err := e.players.DeletePlayer(e.ctx, p[0].ID)
	expectErr(t, err, ErrInUse)

	err = e.players.DeletePlayer(e.ctx, 12345)
	expectErr(t, err, ErrPlayerNotFound)
	expectErr(t, err, ErrNotFound)
}

type fakeUploader struct {
	objects map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.objects[key] = data
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.test/" + key
}

func TestUploadPlayerPhoto(t *testing.T) {
	e := newEnv(t)
	uploader := newFakeUploader()
	players := NewPlayerService(e.store, uploader, fixedClock, discardLogger())
	player := e.men(t, "Photo")[0]

	_, err := players.UploadPlayerPhoto(e.ctx, player.ID, "application/pdf", bytes.NewReader([]byte("x")))
	expectErr(t, err, ErrUnsupportedPhotoType)

	first, err := players.UploadPlayerPhoto(e.ctx, player.ID, "image/png", bytes.NewReader([]byte("one")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if first.PhotoURL == nil || !strings.HasPrefix(*first.PhotoURL, "https://cdn.example.test/players/") {
		t.Fatalf("unexpected photo url: %v", first.PhotoURL)
	}
	if !strings.HasSuffix(*first.PhotoKey, ".png") {
		t.Errorf("unexpected photo key %q", *first.PhotoKey)
	}

	second, err := players.UploadPlayerPhoto(e.ctx, player.ID, "image/jpeg", bytes.NewReader([]byte("two")))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if len(uploader.deleted) != 1 || uploader.deleted[0] != *first.PhotoKey {
		t.Errorf("previous photo not deleted: %v", uploader.deleted)
	}
	if _, ok := uploader.objects[*second.PhotoKey]; !ok {
		t.Errorf("new photo missing from storage")
	}

	_, err = e.players.UploadPlayerPhoto(e.ctx, player.ID, "image/png", bytes.NewReader(nil))
	expectErr(t, err, ErrPhotoStorageDisabled)
	expectErr(t, err, ErrPrecondition)
}

func TestTeamRules(t *testing.T) {
	e := newEnv(t)
	p := e.men(t, "A", "B", "C")

	_, err := e.teams.CreateTeam(e.ctx, CreateTeamInput{Player1ID: p[0].ID, Player2ID: p[0].ID})
	expectErr(t, err, ErrTeamSamePlayer)

	_, err = e.teams.CreateTeam(e.ctx, CreateTeamInput{Player1ID: p[0].ID, Player2ID: 999})
	expectErr(t, err, ErrPlayerNotFound)

	team := e.team(t, p[0], p[1])

	_, err = e.teams.CreateTeam(e.ctx, CreateTeamInput{Player1ID: p[1].ID, Player2ID: p[0].ID})
	expectErr(t, err, ErrTeamConflict)

	other := e.team(t, p[0], p[2])
	_, err = e.teams.UpdateTeam(e.ctx, other.ID, UpdateTeamInput{Player2ID: &p[1].ID})
	expectErr(t, err, ErrTeamConflict)

	// Rewriting a team with its own pair is not a conflict.
	same, err := e.teams.UpdateTeam(e.ctx, team.ID, UpdateTeamInput{Player1ID: &p[1].ID, Player2ID: &p[0].ID})
	if err != nil {
		t.Fatalf("update team: %v", err)
	}
	if same.Player1ID != p[1].ID || same.Player2ID != p[0].ID {
		t.Errorf("unexpected team %+v", same)
	}

	loaded, err := e.teams.GetTeamByID(e.ctx, team.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if loaded.Player1 == nil || loaded.Player2 == nil {
		t.Errorf("team players not loaded")
	}
}

func TestGroupMembership(t *testing.T) {
	e := newEnv(t)
	tournament, category := e.tournament(t), e.category(t, "Men Open")
	p := e.men(t, "A", "B")

	_, err := e.groups.CreateGroup(e.ctx, CreateGroupInput{Name: "A", TournamentID: 999, CategoryID: category.ID})
	expectErr(t, err, ErrTournamentNotFound)

	group, err := e.groups.CreateGroup(e.ctx, CreateGroupInput{Name: "Group A", TournamentID: tournament.ID, CategoryID: category.ID})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	_, err = e.groups.CreateGroup(e.ctx, CreateGroupInput{Name: "Group A", TournamentID: tournament.ID, CategoryID: category.ID})
	expectErr(t, err, ErrGroupNameConflict)

	for i, player := range []*models.Player{p[1], p[0]} {
		membership, err := e.groups.AddMember(e.ctx, group.ID, player.ID)
		if err != nil {
			t.Fatalf("add member: %v", err)
		}
		if membership.Position != i+1 {
			t.Errorf("member %d got position %d", player.ID, membership.Position)
		}
	}
	_, err = e.groups.AddMember(e.ctx, group.ID, p[0].ID)
	expectErr(t, err, ErrGroupMemberConflict)

	_, err = e.groups.AddMember(e.ctx, group.ID, 999)
	expectErr(t, err, ErrPlayerNotFound)

	members, err := e.groups.ListMembers(e.ctx, group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].ID != p[1].ID || members[1].ID != p[0].ID {
		t.Errorf("members not in join order: %+v", members)
	}

	err = e.groups.RemoveMember(e.ctx, group.ID, p[1].ID)
	if err != nil {
		t.Fatalf("remove member: %v", err)
	}
	err = e.groups.RemoveMember(e.ctx, group.ID, p[1].ID)
	expectErr(t, err, ErrGroupMemberNotFound)

	loaded, err := e.groups.GetGroupByID(e.ctx, group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if len(loaded.Members) != 1 {
		t.Errorf("expected 1 member, got %d", len(loaded.Members))
	}
}

func TestEnrollment(t *testing.T) {
	e := newEnv(t)
	tournament, category := e.tournament(t), e.category(t, "Men Open")

	adult := e.player(t, "Adult", models.GenderMale, date(2008, time.March, 10))
	minor := e.player(t, "Minor", models.GenderMale, date(2008, time.March, 11))
	woman := e.player(t, "Woman", models.GenderFemale, date(1990, time.June, 1))

	input := func(p *models.Player) EnrollPlayerInput {
		return EnrollPlayerInput{PlayerID: p.ID, TournamentID: tournament.ID, CategoryID: category.ID}
	}

	if _, err := e.enrollments.EnrollPlayer(e.ctx, input(adult)); err != nil {
		t.Fatalf("enroll adult on 18th birthday: %v", err)
	}

	_, err := e.enrollments.EnrollPlayer(e.ctx, input(minor))
	expectErr(t, err, ErrAgeNotEligible)
	expectErr(t, err, ErrInvalidState)

	_, err = e.enrollments.EnrollPlayer(e.ctx, input(woman))
	expectErr(t, err, ErrGenderNotEligible)
	expectErr(t, err, ErrInvalidState)

	_, err = e.enrollments.EnrollPlayer(e.ctx, input(adult))
	expectErr(t, err, ErrEnrollmentConflict)
	expectErr(t, err, ErrConflict)

	list, err := e.enrollments.ListEnrollments(e.ctx, repositories.EnrollmentFilter{TournamentID: &tournament.ID})
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(list) != 1 || list[0].PlayerID != adult.ID {
		t.Errorf("unexpected enrollments: %+v", list)
	}

	if err := e.enrollments.WithdrawPlayer(e.ctx, input(adult)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	expectErr(t, e.enrollments.WithdrawPlayer(e.ctx, input(adult)), ErrEnrollmentNotFound)
}

func TestEnrollmentRegistrationWindow(t *testing.T) {
	e := newEnv(t)
	category := e.category(t, "Men Open")
	closed, err := e.tournaments.CreateTournament(e.ctx, CreateTournamentInput{
		Name:              "Winter Cup",
		RegistrationStart: date(2026, time.January, 1),
		RegistrationEnd:   date(2026, time.March, 9),
		StartDate:         date(2026, time.March, 15),
		EndDate:           date(2026, time.March, 16),
		AvailableTables:   2,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	p := e.men(t, "A", "B")

	_, err = e.enrollments.EnrollPlayer(e.ctx, EnrollPlayerInput{PlayerID: p[0].ID, TournamentID: closed.ID, CategoryID: category.ID})
	expectErr(t, err, ErrRegistrationClosed)

	team := e.team(t, p[0], p[1])
	_, err = e.enrollments.EnrollTeam(e.ctx, EnrollTeamInput{TeamID: team.ID, TournamentID: closed.ID, CategoryID: category.ID})
	expectErr(t, err, ErrRegistrationClosed)

	open := e.tournament(t)
	teamInput := EnrollTeamInput{TeamID: team.ID, TournamentID: open.ID, CategoryID: category.ID}
	if _, err := e.enrollments.EnrollTeam(e.ctx, teamInput); err != nil {
		t.Fatalf("enroll team: %v", err)
	}
	_, err = e.enrollments.EnrollTeam(e.ctx, teamInput)
	expectErr(t, err, ErrEnrollmentConflict)
}

func TestTournamentOverview(t *testing.T) {
	e := newEnv(t)
	tournament, category := e.tournament(t), e.category(t, "Men Open")
	p := e.men(t, "A", "B")
	group, err := e.groups.CreateGroup(e.ctx, CreateGroupInput{Name: "Group A", TournamentID: tournament.ID, CategoryID: category.ID})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, player := range p {
		if _, err := e.groups.AddMember(e.ctx, group.ID, player.ID); err != nil {
			t.Fatalf("add member: %v", err)
		}
		if _, err := e.enrollments.EnrollPlayer(e.ctx, EnrollPlayerInput{PlayerID: player.ID, TournamentID: tournament.ID, CategoryID: category.ID}); err != nil {
			t.Fatalf("enroll: %v", err)
		}
	}
	if _, err := e.brackets.GenerateRoundRobin(e.ctx, group.ID); err != nil {
		t.Fatalf("round robin: %v", err)
	}

	overview, err := e.tournaments.GetTournamentOverview(e.ctx, tournament.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Groups) != 1 || len(overview.Groups[0].Members) != 2 {
		t.Errorf("unexpected groups: %+v", overview.Groups)
	}
	if len(overview.Matches) != 1 || len(overview.Enrollments) != 2 {
		t.Errorf("got %d matches and %d enrollments", len(overview.Matches), len(overview.Enrollments))
	}

	_, err = e.tournaments.GetTournamentOverview(e.ctx, 999)
	expectErr(t, err, ErrTournamentNotFound)
}
