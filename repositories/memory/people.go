package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type associationRepo struct{ s *Store }

func (r *associationRepo) Create(ctx context.Context, a *models.Association) error {
	return r.s.run(func(d *state) error {
		for _, other := range d.associations {
			if other.Name == a.Name {
				return uniqueViolation(repositories.ConstraintAssociationName)
			}
		}
		a.ID = d.nextID()
		a.CreatedAt = r.s.now()
		d.associations[a.ID] = *a
		return nil
	})
}

func (r *associationRepo) GetByID(ctx context.Context, id int) (*models.Association, error) {
	var out *models.Association
	err := r.s.run(func(d *state) error {
		a, ok := d.associations[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *associationRepo) GetByName(ctx context.Context, name string) (*models.Association, error) {
	var out *models.Association
	err := r.s.run(func(d *state) error {
		for _, a := range d.associations {
			if a.Name == name {
				out = &a
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

func (r *associationRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Association, error) {
	var out []*models.Association
	err := r.s.run(func(d *state) error {
		out = make([]*models.Association, 0, len(d.associations))
		for _, id := range sortedIDs(d.associations) {
			a := d.associations[id]
			out = append(out, &a)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		out = page(out, opts)
		return nil
	})
	return out, err
}

func (r *associationRepo) Update(ctx context.Context, a *models.Association) error {
	return r.s.run(func(d *state) error {
		current, ok := d.associations[a.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		for id, other := range d.associations {
			if id != a.ID && other.Name == a.Name {
				return uniqueViolation(repositories.ConstraintAssociationName)
			}
		}
		a.CreatedAt = current.CreatedAt
		d.associations[a.ID] = *a
		return nil
	})
}

func (r *associationRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.associations[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		for pid, p := range d.players {
			if intIs(p.AssociationID, id) {
				p.AssociationID = nil
				d.players[pid] = p
			}
		}
		delete(d.associations, id)
		return nil
	})
}

type playerRepo struct{ s *Store }

func (d *state) checkPlayerRefs(p *models.Player) error {
	if p.AssociationID != nil {
		if _, ok := d.associations[*p.AssociationID]; !ok {
			return fkViolation("players_association_id_fkey")
		}
	}
	return nil
}

func (r *playerRepo) Create(ctx context.Context, p *models.Player) error {
	return r.s.run(func(d *state) error {
		if err := d.checkPlayerRefs(p); err != nil {
			return err
		}
		p.ID = d.nextID()
		p.CreatedAt = r.s.now()
		d.players[p.ID] = clonePlayer(*p)
		return nil
	})
}

func (r *playerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	var out *models.Player
	err := r.s.run(func(d *state) error {
		p, ok := d.players[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		p = clonePlayer(p)
		out = &p
		return nil
	})
	return out, err
}

func (r *playerRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Player, error) {
	var out []*models.Player
	err := r.s.run(func(d *state) error {
		out = make([]*models.Player, 0, len(d.players))
		for _, id := range sortedIDs(d.players) {
			p := clonePlayer(d.players[id])
			out = append(out, &p)
		}
		out = page(out, opts)
		return nil
	})
	return out, err
}

func (r *playerRepo) Update(ctx context.Context, p *models.Player) error {
	return r.s.run(func(d *state) error {
		current, ok := d.players[p.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		if err := d.checkPlayerRefs(p); err != nil {
			return err
		}
		p.CreatedAt = current.CreatedAt
		d.players[p.ID] = clonePlayer(*p)
		return nil
	})
}

func (r *playerRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.players[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		for _, t := range d.teams {
			if t.Player1ID == id {
				return fkViolation("teams_player1_id_fkey")
			}
			if t.Player2ID == id {
				return fkViolation("teams_player2_id_fkey")
			}
		}
		for _, m := range d.matches {
			if intIs(m.Player1ID, id) {
				return fkViolation("matches_player1_id_fkey")
			}
			if intIs(m.Player2ID, id) {
				return fkViolation("matches_player2_id_fkey")
			}
		}
		for k := range d.members {
			if k.playerID == id {
				delete(d.members, k)
			}
		}
		for k := range d.enrollments {
			if k.entityID == id {
				delete(d.enrollments, k)
			}
		}
		delete(d.players, id)
		return nil
	})
}

type teamRepo struct{ s *Store }

func (d *state) checkTeam(t *models.Team, selfID int) error {
	if t.Player1ID == t.Player2ID {
		return checkViolation(repositories.ConstraintTeamDistinct)
	}
	if _, ok := d.players[t.Player1ID]; !ok {
		return fkViolation("teams_player1_id_fkey")
	}
	if _, ok := d.players[t.Player2ID]; !ok {
		return fkViolation("teams_player2_id_fkey")
	}
	a, b := t.OrderedPair()
	for id, other := range d.teams {
		if id == selfID {
			continue
		}
		if oa, ob := other.OrderedPair(); oa == a && ob == b {
			return uniqueViolation(repositories.ConstraintTeamPair)
		}
	}
	return nil
}

func (r *teamRepo) Create(ctx context.Context, t *models.Team) error {
	return r.s.run(func(d *state) error {
		if err := d.checkTeam(t, 0); err != nil {
			return err
		}
		t.ID = d.nextID()
		t.CreatedAt = r.s.now()
		stored := *t
		stored.Player1, stored.Player2 = nil, nil
		d.teams[t.ID] = stored
		return nil
	})
}

func (r *teamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	var out *models.Team
	err := r.s.run(func(d *state) error {
		t, ok := d.teams[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *teamRepo) FindByPlayers(ctx context.Context, playerA, playerB int) (*models.Team, error) {
	var out *models.Team
	err := r.s.run(func(d *state) error {
		a, b := models.Team{Player1ID: playerA, Player2ID: playerB}.OrderedPair()
		for _, id := range sortedIDs(d.teams) {
			t := d.teams[id]
			if ta, tb := t.OrderedPair(); ta == a && tb == b {
				out = &t
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

func (r *teamRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Team, error) {
	var out []*models.Team
	err := r.s.run(func(d *state) error {
		out = make([]*models.Team, 0, len(d.teams))
		for _, id := range sortedIDs(d.teams) {
			t := d.teams[id]
			out = append(out, &t)
		}
		out = page(out, opts)
		return nil
	})
	return out, err
}

func (r *teamRepo) Update(ctx context.Context, t *models.Team) error {
	return r.s.run(func(d *state) error {
		current, ok := d.teams[t.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		if err := d.checkTeam(t, t.ID); err != nil {
			return err
		}
		t.CreatedAt = current.CreatedAt
		stored := *t
		stored.Player1, stored.Player2 = nil, nil
		d.teams[t.ID] = stored
		return nil
	})
}

func (r *teamRepo) Delete(ctx context.Context, id int) error {
	return r.s.run(func(d *state) error {
		if _, ok := d.teams[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		for _, m := range d.matches {
			if intIs(m.Team1ID, id) {
				return fkViolation("matches_team1_id_fkey")
			}
			if intIs(m.Team2ID, id) {
				return fkViolation("matches_team2_id_fkey")
			}
		}
		for k := range d.doubles {
			if k.entityID == id {
				delete(d.doubles, k)
			}
		}
		delete(d.teams, id)
		return nil
	})
}
