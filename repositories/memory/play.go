package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type matchRepo struct{ s *Store }

func (d *state) checkMatch(m *models.Match) error {
	if m.Type != models.MatchTypeIndividual && m.Type != models.MatchTypeDoubles {
		return checkViolation("matches_type_check")
	}
	if m.TableNumber < 1 {
		return checkViolation("matches_table_number_check")
	}
	if m.Type == models.MatchTypeIndividual && (m.Team1ID != nil || m.Team2ID != nil) ||
		m.Type == models.MatchTypeDoubles && (m.Player1ID != nil || m.Player2ID != nil) {
		return checkViolation(repositories.ConstraintMatchSlots)
	}
	if _, ok := d.tournaments[m.TournamentID]; !ok {
		return fkViolation("matches_tournament_id_fkey")
	}
	if _, ok := d.categories[m.CategoryID]; !ok {
		return fkViolation("matches_category_id_fkey")
	}
	refs := []struct {
		id         *int
		exists     func(int) bool
		constraint string
	}{
		{m.Player1ID, d.hasPlayer, "matches_player1_id_fkey"},
		{m.Player2ID, d.hasPlayer, "matches_player2_id_fkey"},
		{m.Team1ID, d.hasTeam, "matches_team1_id_fkey"},
		{m.Team2ID, d.hasTeam, "matches_team2_id_fkey"},
		{m.GroupID, d.hasGroup, "matches_group_id_fkey"},
		{m.AdvancesToMatchID, d.hasMatch, "matches_advances_to_match_id_fkey"},
	}
	for _, ref := range refs {
		if ref.id != nil && !ref.exists(*ref.id) {
			return fkViolation(ref.constraint)
		}
	}
	return nil
}

func (d *state) hasPlayer(id int) bool { _, ok := d.players[id]; return ok }
func (d *state) hasTeam(id int) bool   { _, ok := d.teams[id]; return ok }
func (d *state) hasGroup(id int) bool  { _, ok := d.groups[id]; return ok }
func (d *state) hasMatch(id int) bool  { _, ok := d.matches[id]; return ok }

func (r *matchRepo) Create(ctx context.Context, m *models.Match) error {
	return r.s.run(func(d *state) error {
		if err := d.checkMatch(m); err != nil {
			return err
		}
		m.ID = d.nextID()
		m.CreatedAt = r.s.now()
		d.matches[m.ID] = cloneMatch(*m)
		return nil
	})
}

func (r *matchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	var out *models.Match
	err := r.s.run(func(d *state) error {
		m, ok := d.matches[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		m = cloneMatch(m)
		out = &m
		return nil
	})
	return out, err
}

func matchesFilter(m models.Match, f repositories.MatchFilter) bool {
	switch {
	case f.TournamentID != nil && m.TournamentID != *f.TournamentID:
		return false
	case f.CategoryID != nil && m.CategoryID != *f.CategoryID:
		return false
	case f.GroupID != nil && !intIs(m.GroupID, *f.GroupID):
		return false
	case f.Type != nil && m.Type != *f.Type:
		return false
	case f.Round != nil && (m.Round == nil || *m.Round != *f.Round):
		return false
	}
	return true
}

func (r *matchRepo) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	var out []*models.Match
	err := r.s.run(func(d *state) error {
		out = make([]*models.Match, 0)
		for _, id := range sortedIDs(d.matches) {
			m := d.matches[id]
			if !matchesFilter(m, filter) {
				continue
			}
			m = cloneMatch(m)
			out = append(out, &m)
		}
		sort.SliceStable(out, func(i, j int) bool {
			pi, pj := out[i].BracketPosition, out[j].BracketPosition
			switch {
			case pi == nil:
				return false
			case pj == nil:
				return true
			}
			return *pi < *pj
		})
		out = page(out, repositories.ListOptions{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}

func (r *matchRepo) Update(ctx context.Context, m *models.Match) error {
	return r.s.run(func(d *state) error {
		current, ok := d.matches[m.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		// type, tournament and category are not part of the UPDATE statement
		m.Type = current.Type
		m.TournamentID = current.TournamentID
		m.CategoryID = current.CategoryID
		if err := d.checkMatch(m); err != nil {
			return err
		}
		m.CreatedAt = current.CreatedAt
		d.matches[m.ID] = cloneMatch(*m)
		return nil
	})
}

func (r *matchRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.matches[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		d.deleteMatch(id)
		return nil
	})
}

// deleteMatch removes the match with its sets and clears links pointing at it.
func (d *state) deleteMatch(id int) {
	for sid, s := range d.sets {
		if s.MatchID == id {
			delete(d.sets, sid)
		}
	}
	for mid, m := range d.matches {
		if intIs(m.AdvancesToMatchID, id) {
			m.AdvancesToMatchID = nil
			d.matches[mid] = m
		}
	}
	delete(d.matches, id)
}

func (r *matchRepo) FindBetweenPlayers(ctx context.Context, l repositories.PairLookup) (*models.Match, error) {
	var out *models.Match
	err := r.s.run(func(d *state) error {
		for _, id := range sortedIDs(d.matches) {
			m := d.matches[id]
			if m.Type != models.MatchTypeIndividual || m.TournamentID != l.TournamentID || m.CategoryID != l.CategoryID {
				continue
			}
			if (m.GroupID == nil) != (l.GroupID == nil) || (l.GroupID != nil && *m.GroupID != *l.GroupID) {
				continue
			}
			if intIs(m.Player1ID, l.PlayerA) && intIs(m.Player2ID, l.PlayerB) ||
				intIs(m.Player1ID, l.PlayerB) && intIs(m.Player2ID, l.PlayerA) {
				m = cloneMatch(m)
				out = &m
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

type setResultRepo struct{ s *Store }

func (d *state) checkSet(s *models.SetResult) error {
	if s.Side1Points < 0 || s.Side2Points < 0 {
		return checkViolation(repositories.ConstraintSetPoints)
	}
	if s.SetNumber < 1 {
		return checkViolation("set_results_set_number_check")
	}
	if _, ok := d.matches[s.MatchID]; !ok {
		return fkViolation("set_results_match_id_fkey")
	}
	for id, other := range d.sets {
		if id != s.ID && other.MatchID == s.MatchID && other.SetNumber == s.SetNumber {
			return uniqueViolation(repositories.ConstraintSetNumber)
		}
	}
	return nil
}

func (r *setResultRepo) Create(ctx context.Context, s *models.SetResult) error {
	return r.s.run(func(d *state) error {
		s.ID = 0
		if err := d.checkSet(s); err != nil {
			return err
		}
		s.ID = d.nextID()
		s.CreatedAt = r.s.now()
		d.sets[s.ID] = *s
		return nil
	})
}

func (r *setResultRepo) GetByID(ctx context.Context, id int) (*models.SetResult, error) {
	var out *models.SetResult
	err := r.s.run(func(d *state) error {
		s, ok := d.sets[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *setResultRepo) ListByMatch(ctx context.Context, matchID int) ([]*models.SetResult, error) {
	var out []*models.SetResult
	err := r.s.run(func(d *state) error {
		out = make([]*models.SetResult, 0)
		for _, s := range d.sets {
			if s.MatchID == matchID {
				out = append(out, &s)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
		return nil
	})
	return out, err
}

// Update writes the points only, like the UPDATE statement of the postgres store.
func (r *setResultRepo) Update(ctx context.Context, s *models.SetResult) error {
	return r.s.run(func(d *state) error {
		current, ok := d.sets[s.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		current.Side1Points = s.Side1Points
		current.Side2Points = s.Side2Points
		if err := d.checkSet(&current); err != nil {
			return err
		}
		d.sets[s.ID] = current
		*s = current
		return nil
	})
}

func (r *setResultRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.sets[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		delete(d.sets, id)
		return nil
	})
}

type enrollmentRepo struct{ s *Store }

func (d *state) checkEnrollmentRefs(tournamentID, categoryID int, table string) error {
	if _, ok := d.tournaments[tournamentID]; !ok {
		return fkViolation(table + "_tournament_id_fkey")
	}
	if _, ok := d.categories[categoryID]; !ok {
		return fkViolation(table + "_category_id_fkey")
	}
	return nil
}

func (r *enrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	return r.s.run(func(d *state) error {
		if !d.hasPlayer(e.PlayerID) {
			return fkViolation("enrollments_player_id_fkey")
		}
		if err := d.checkEnrollmentRefs(e.TournamentID, e.CategoryID, "enrollments"); err != nil {
			return err
		}
		key := enrollmentKey{e.PlayerID, e.TournamentID, e.CategoryID}
		if _, ok := d.enrollments[key]; ok {
			return uniqueViolation(repositories.ConstraintEnrollment)
		}
		e.CreatedAt = r.s.now()
		d.enrollments[key] = storedEnrollment{seq: d.nextID(), Enrollment: *e}
		return nil
	})
}

func (r *enrollmentRepo) Get(ctx context.Context, playerID, tournamentID, categoryID int) (*models.Enrollment, error) {
	var out *models.Enrollment
	err := r.s.run(func(d *state) error {
		e, ok := d.enrollments[enrollmentKey{playerID, tournamentID, categoryID}]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &e.Enrollment
		return nil
	})
	return out, err
}

func (r *enrollmentRepo) Delete(ctx context.Context, playerID, tournamentID, categoryID int) error {
	return r.s.run(func(d *state) error {
		key := enrollmentKey{playerID, tournamentID, categoryID}
		if _, ok := d.enrollments[key]; !ok {
			return repositories.ErrRecordNotFound
		}
		delete(d.enrollments, key)
		return nil
	})
}

func enrollmentMatches(tournamentID, categoryID int, f repositories.EnrollmentFilter) bool {
	if f.TournamentID != nil && tournamentID != *f.TournamentID {
		return false
	}
	return f.CategoryID == nil || categoryID == *f.CategoryID
}

func (r *enrollmentRepo) List(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	err := r.s.run(func(d *state) error {
		stored := make([]storedEnrollment, 0)
		for _, e := range d.enrollments {
			if enrollmentMatches(e.TournamentID, e.CategoryID, filter) {
				stored = append(stored, e)
			}
		}
		sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

		out = make([]*models.Enrollment, 0, len(stored))
		for _, e := range stored {
			out = append(out, &e.Enrollment)
		}
		out = page(out, repositories.ListOptions{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}

func (r *enrollmentRepo) CreateDoubles(ctx context.Context, e *models.DoublesEnrollment) error {
	return r.s.run(func(d *state) error {
		if !d.hasTeam(e.TeamID) {
			return fkViolation("doubles_enrollments_team_id_fkey")
		}
		if err := d.checkEnrollmentRefs(e.TournamentID, e.CategoryID, "doubles_enrollments"); err != nil {
			return err
		}
		key := enrollmentKey{e.TeamID, e.TournamentID, e.CategoryID}
		if _, ok := d.doubles[key]; ok {
			return uniqueViolation(repositories.ConstraintDoublesEnrollment)
		}
		e.CreatedAt = r.s.now()
		d.doubles[key] = storedDoublesEnrollment{seq: d.nextID(), DoublesEnrollment: *e}
		return nil
	})
}

func (r *enrollmentRepo) GetDoubles(ctx context.Context, teamID, tournamentID, categoryID int) (*models.DoublesEnrollment, error) {
	var out *models.DoublesEnrollment
	err := r.s.run(func(d *state) error {
		e, ok := d.doubles[enrollmentKey{teamID, tournamentID, categoryID}]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &e.DoublesEnrollment
		return nil
	})
	return out, err
}

func (r *enrollmentRepo) DeleteDoubles(ctx context.Context, teamID, tournamentID, categoryID int) error {
	return r.s.run(func(d *state) error {
		key := enrollmentKey{teamID, tournamentID, categoryID}
		if _, ok := d.doubles[key]; !ok {
			return repositories.ErrRecordNotFound
		}
		delete(d.doubles, key)
		return nil
	})
}

func (r *enrollmentRepo) ListDoubles(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.DoublesEnrollment, error) {
	var out []*models.DoublesEnrollment
	err := r.s.run(func(d *state) error {
		stored := make([]storedDoublesEnrollment, 0)
		for _, e := range d.doubles {
			if enrollmentMatches(e.TournamentID, e.CategoryID, filter) {
				stored = append(stored, e)
			}
		}
		sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

		out = make([]*models.DoublesEnrollment, 0, len(stored))
		for _, e := range stored {
			out = append(out, &e.DoublesEnrollment)
		}
		out = page(out, repositories.ListOptions{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}
