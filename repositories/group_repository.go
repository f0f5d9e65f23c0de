package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type GroupFilter struct {
	TournamentID *int
	CategoryID   *int
	Limit        int
	Offset       int
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	FindByName(ctx context.Context, tournamentID, categoryID int, name string) (*models.Group, error)
	List(ctx context.Context, filter GroupFilter) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int) error

	// AddMember appends the player to the group. Position is assigned by the
	// repository and written back into membership.
	AddMember(ctx context.Context, membership *models.GroupMembership) error
	RemoveMember(ctx context.Context, groupID, playerID int) error
	// ListMembers returns the group's players in membership order.
	ListMembers(ctx context.Context, groupID int) ([]*models.Player, error)
}

type postgresGroupRepository struct {
	exec SQLExecutor
}

func NewPostgresGroupRepository(exec SQLExecutor) GroupRepository {
	return &postgresGroupRepository{exec: exec}
}

const groupColumns = `id, name, tournament_id, category_id, created_at`

func scanGroup(row rowScanner, g *models.Group) error {
	return row.Scan(&g.ID, &g.Name, &g.TournamentID, &g.CategoryID, &g.CreatedAt)
}

func (r *postgresGroupRepository) Create(ctx context.Context, g *models.Group) error {
	query := `
		INSERT INTO groups (name, tournament_id, category_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := r.exec.QueryRowContext(ctx, query, g.Name, g.TournamentID, g.CategoryID).Scan(&g.ID, &g.CreatedAt); err != nil {
		return fmt.Errorf("failed to create group: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresGroupRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Group, error) {
	g := &models.Group{}
	if err := scanGroup(r.exec.QueryRowContext(ctx, query, args...), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return g, nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	return r.findOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
}

func (r *postgresGroupRepository) FindByName(ctx context.Context, tournamentID, categoryID int, name string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE tournament_id = $1 AND category_id = $2 AND name = $3`
	return r.findOne(ctx, query, tournamentID, categoryID, name)
}

func (r *postgresGroupRepository) List(ctx context.Context, filter GroupFilter) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.TournamentID != nil {
		query += fmt.Sprintf(" AND tournament_id = $%d", argID)
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argID)
		args = append(args, *filter.CategoryID)
	}
	query += " ORDER BY name ASC, id ASC"
	query, args = appendPaging(query, args, ListOptions{Limit: filter.Limit, Offset: filter.Offset})

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := scanGroup(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, g *models.Group) error {
	result, err := r.exec.ExecContext(ctx,
		`UPDATE groups SET name = $1, tournament_id = $2, category_id = $3 WHERE id = $4`,
		g.Name, g.TournamentID, g.CategoryID, g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group %d: %w", g.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresGroupRepository) AddMember(ctx context.Context, m *models.GroupMembership) error {
	query := `
		INSERT INTO group_members (group_id, player_id, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM group_members WHERE group_id = $1))
		RETURNING position, created_at`

	if err := r.exec.QueryRowContext(ctx, query, m.GroupID, m.PlayerID).Scan(&m.Position, &m.CreatedAt); err != nil {
		return fmt.Errorf("failed to add player %d to group %d: %w", m.PlayerID, m.GroupID, handlePQError(err))
	}
	return nil
}

func (r *postgresGroupRepository) RemoveMember(ctx context.Context, groupID, playerID int) error {
	result, err := r.exec.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND player_id = $2`, groupID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player %d from group %d: %w", playerID, groupID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresGroupRepository) ListMembers(ctx context.Context, groupID int) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.birth_date, p.gender, p.city, p.country, p.association_id, p.photo_key, p.created_at
		FROM group_members gm
		JOIN players p ON p.id = gm.player_id
		WHERE gm.group_id = $1
		ORDER BY gm.position ASC`

	rows, err := r.exec.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan group member row: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group member rows: %w", err)
	}
	return players, nil
}
