package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type tournamentRepo struct{ s *Store }

func checkTournament(t *models.Tournament) error {
	if t.RegistrationStart.After(t.RegistrationEnd) ||
		t.RegistrationEnd.After(t.StartDate) ||
		t.StartDate.After(t.EndDate) ||
		t.AvailableTables < 1 {
		return checkViolation(repositories.ConstraintTournamentDates)
	}
	return nil
}

func (r *tournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	return r.s.run(func(d *state) error {
		if err := checkTournament(t); err != nil {
			return err
		}
		t.ID = d.nextID()
		t.CreatedAt = r.s.now()
		d.tournaments[t.ID] = *t
		return nil
	})
}

func (r *tournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var out *models.Tournament
	err := r.s.run(func(d *state) error {
		t, ok := d.tournaments[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *tournamentRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Tournament, error) {
	var out []*models.Tournament
	err := r.s.run(func(d *state) error {
		out = make([]*models.Tournament, 0, len(d.tournaments))
		for _, id := range sortedIDs(d.tournaments) {
			t := d.tournaments[id]
			out = append(out, &t)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.After(out[j].StartDate)
			}
			return out[i].ID > out[j].ID
		})
		out = page(out, opts)
		return nil
	})
	return out, err
}

func (r *tournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	return r.s.run(func(d *state) error {
		current, ok := d.tournaments[t.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		if err := checkTournament(t); err != nil {
			return err
		}
		t.CreatedAt = current.CreatedAt
		d.tournaments[t.ID] = *t
		return nil
	})
}

func (r *tournamentRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.tournaments[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		for gid, g := range d.groups {
			if g.TournamentID == id {
				d.deleteGroup(gid)
			}
		}
		for mid, m := range d.matches {
			if m.TournamentID == id {
				d.deleteMatch(mid)
			}
		}
		for k := range d.enrollments {
			if k.tournamentID == id {
				delete(d.enrollments, k)
			}
		}
		for k := range d.doubles {
			if k.tournamentID == id {
				delete(d.doubles, k)
			}
		}
		delete(d.tournaments, id)
		return nil
	})
}

type categoryRepo struct{ s *Store }

func (d *state) checkCategory(c *models.Category) error {
	if c.AgeMin > c.AgeMax {
		return checkViolation(repositories.ConstraintCategoryAges)
	}
	if c.SetsPerMatch <= 0 || c.PointsPerSet <= 0 {
		return checkViolation(repositories.ConstraintCategoryRules)
	}
	for id, other := range d.categories {
		if id != c.ID && other.Name == c.Name {
			return uniqueViolation(repositories.ConstraintCategoryName)
		}
	}
	return nil
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.s.run(func(d *state) error {
		c.ID = 0
		if err := d.checkCategory(c); err != nil {
			return err
		}
		c.ID = d.nextID()
		c.CreatedAt = r.s.now()
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *categoryRepo) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var out *models.Category
	err := r.s.run(func(d *state) error {
		c, ok := d.categories[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var out *models.Category
	err := r.s.run(func(d *state) error {
		for _, c := range d.categories {
			if c.Name == name {
				out = &c
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

func (r *categoryRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error) {
	var out []*models.Category
	err := r.s.run(func(d *state) error {
		out = make([]*models.Category, 0, len(d.categories))
		for _, id := range sortedIDs(d.categories) {
			c := d.categories[id]
			out = append(out, &c)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		out = page(out, opts)
		return nil
	})
	return out, err
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	return r.s.run(func(d *state) error {
		current, ok := d.categories[c.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		if err := d.checkCategory(c); err != nil {
			return err
		}
		c.CreatedAt = current.CreatedAt
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *categoryRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.categories[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		for _, g := range d.groups {
			if g.CategoryID == id {
				return fkViolation("groups_category_id_fkey")
			}
		}
		for _, m := range d.matches {
			if m.CategoryID == id {
				return fkViolation("matches_category_id_fkey")
			}
		}
		for k := range d.enrollments {
			if k.categoryID == id {
				delete(d.enrollments, k)
			}
		}
		for k := range d.doubles {
			if k.categoryID == id {
				delete(d.doubles, k)
			}
		}
		delete(d.categories, id)
		return nil
	})
}

type groupRepo struct{ s *Store }

func (d *state) checkGroup(g *models.Group) error {
	if _, ok := d.tournaments[g.TournamentID]; !ok {
		return fkViolation("groups_tournament_id_fkey")
	}
	if _, ok := d.categories[g.CategoryID]; !ok {
		return fkViolation("groups_category_id_fkey")
	}
	for id, other := range d.groups {
		if id != g.ID && other.TournamentID == g.TournamentID && other.CategoryID == g.CategoryID && other.Name == g.Name {
			return uniqueViolation(repositories.ConstraintGroupName)
		}
	}
	return nil
}

func storedGroup(g *models.Group) models.Group {
	stored := *g
	stored.Members = nil
	return stored
}

func (r *groupRepo) Create(ctx context.Context, g *models.Group) error {
	return r.s.run(func(d *state) error {
		g.ID = 0
		if err := d.checkGroup(g); err != nil {
			return err
		}
		g.ID = d.nextID()
		g.CreatedAt = r.s.now()
		d.groups[g.ID] = storedGroup(g)
		return nil
	})
}

func (r *groupRepo) GetByID(ctx context.Context, id int) (*models.Group, error) {
	var out *models.Group
	err := r.s.run(func(d *state) error {
		g, ok := d.groups[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *groupRepo) FindByName(ctx context.Context, tournamentID, categoryID int, name string) (*models.Group, error) {
	var out *models.Group
	err := r.s.run(func(d *state) error {
		for _, g := range d.groups {
			if g.TournamentID == tournamentID && g.CategoryID == categoryID && g.Name == name {
				out = &g
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

func (r *groupRepo) List(ctx context.Context, filter repositories.GroupFilter) ([]*models.Group, error) {
	var out []*models.Group
	err := r.s.run(func(d *state) error {
		out = make([]*models.Group, 0)
		for _, id := range sortedIDs(d.groups) {
			g := d.groups[id]
			if filter.TournamentID != nil && g.TournamentID != *filter.TournamentID {
				continue
			}
			if filter.CategoryID != nil && g.CategoryID != *filter.CategoryID {
				continue
			}
			out = append(out, &g)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		out = page(out, repositories.ListOptions{Limit: filter.Limit, Offset: filter.Offset})
		return nil
	})
	return out, err
}

func (r *groupRepo) Update(ctx context.Context, g *models.Group) error {
	return r.s.run(func(d *state) error {
		current, ok := d.groups[g.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		if err := d.checkGroup(g); err != nil {
			return err
		}
		g.CreatedAt = current.CreatedAt
		d.groups[g.ID] = storedGroup(g)
		return nil
	})
}

func (r *groupRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.groups[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		d.deleteGroup(id)
		return nil
	})
}

func (d *state) deleteGroup(id int) {
	for k := range d.members {
		if k.groupID == id {
			delete(d.members, k)
		}
	}
	for mid, m := range d.matches {
		if intIs(m.GroupID, id) {
			d.deleteMatch(mid)
		}
	}
	delete(d.groups, id)
}

func (r *groupRepo) AddMember(ctx context.Context, m *models.GroupMembership) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.groups[m.GroupID]; !ok {
			return fkViolation("group_members_group_id_fkey")
		}
		if _, ok := d.players[m.PlayerID]; !ok {
			return fkViolation("group_members_player_id_fkey")
		}
		key := memberKey{groupID: m.GroupID, playerID: m.PlayerID}
		if _, ok := d.members[key]; ok {
			return uniqueViolation(repositories.ConstraintGroupMember)
		}
		position := 0
		for k, existing := range d.members {
			if k.groupID == m.GroupID && existing.Position > position {
				position = existing.Position
			}
		}
		m.Position = position + 1
		m.CreatedAt = r.s.now()
		d.members[key] = *m
		return nil
	})
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, playerID int) error {
	return r.s.run(func(d *state) error {
		key := memberKey{groupID: groupID, playerID: playerID}
		if _, ok := d.members[key]; !ok {
			return repositories.ErrRecordNotFound
		}
		delete(d.members, key)
		return nil
	})
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID int) ([]*models.Player, error) {
	var out []*models.Player
	err := r.s.run(func(d *state) error {
		memberships := make([]models.GroupMembership, 0)
		for k, m := range d.members {
			if k.groupID == groupID {
				memberships = append(memberships, m)
			}
		}
		sort.Slice(memberships, func(i, j int) bool { return memberships[i].Position < memberships[j].Position })

		out = make([]*models.Player, 0, len(memberships))
		for _, m := range memberships {
			p := clonePlayer(d.players[m.PlayerID])
			out = append(out, &p)
		}
		return nil
	})
	return out, err
}
