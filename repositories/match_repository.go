package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type MatchFilter struct {
	TournamentID *int
	CategoryID   *int
	GroupID      *int
	Type         *models.MatchType
	Round        *string
	Limit        int
	Offset       int
}

// PairLookup identifies an individual pairing inside a tournament category.
// A nil GroupID matches matches without a group.
type PairLookup struct {
	TournamentID int
	CategoryID   int
	GroupID      *int
	PlayerA      int
	PlayerB      int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// List orders by bracket position (unpositioned last), then id.
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
	// FindBetweenPlayers finds an individual match between the two players in either slot order.
	FindBetweenPlayers(ctx context.Context, lookup PairLookup) (*models.Match, error)
}

type postgresMatchRepository struct {
	exec SQLExecutor
}

func NewPostgresMatchRepository(exec SQLExecutor) MatchRepository {
	return &postgresMatchRepository{exec: exec}
}

const matchColumns = `id, type, tournament_id, category_id, scheduled_at, table_number, round, is_bye,
	bracket_position, advances_to_match_id, player1_id, player2_id, team1_id, team2_id, group_id, created_at`

func scanMatch(row rowScanner, m *models.Match) error {
	var (
		round                                   sql.NullString
		bracketPos, advancesTo                  sql.NullInt64
		player1, player2, team1, team2, groupID sql.NullInt64
	)
	err := row.Scan(
		&m.ID,
		&m.Type,
		&m.TournamentID,
		&m.CategoryID,
		&m.ScheduledAt,
		&m.TableNumber,
		&round,
		&m.IsBye,
		&bracketPos,
		&advancesTo,
		&player1,
		&player2,
		&team1,
		&team2,
		&groupID,
		&m.CreatedAt,
	)
	if err != nil {
		return err
	}
	if round.Valid {
		m.Round = &round.String
	}
	m.BracketPosition = nullIntPtr(bracketPos)
	m.AdvancesToMatchID = nullIntPtr(advancesTo)
	m.Player1ID = nullIntPtr(player1)
	m.Player2ID = nullIntPtr(player2)
	m.Team1ID = nullIntPtr(team1)
	m.Team2ID = nullIntPtr(team2)
	m.GroupID = nullIntPtr(groupID)
	return nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (type, tournament_id, category_id, scheduled_at, table_number, round, is_bye,
			bracket_position, advances_to_match_id, player1_id, player2_id, team1_id, team2_id, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		m.Type, m.TournamentID, m.CategoryID, m.ScheduledAt, m.TableNumber, m.Round, m.IsBye,
		m.BracketPosition, m.AdvancesToMatchID, m.Player1ID, m.Player2ID, m.Team1ID, m.Team2ID, m.GroupID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	if err := scanMatch(r.exec.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE 1=1`
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
		argID++
	}
	if filter.GroupID != nil {
		query += fmt.Sprintf(" AND group_id = $%d", argID)
		args = append(args, *filter.GroupID)
		argID++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}
	if filter.Round != nil {
		query += fmt.Sprintf(" AND round = $%d", argID)
		args = append(args, *filter.Round)
	}
	query += " ORDER BY bracket_position ASC NULLS LAST, id ASC"
	query, args = appendPaging(query, args, ListOptions{Limit: filter.Limit, Offset: filter.Offset})

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches
		SET scheduled_at = $1, table_number = $2, round = $3, is_bye = $4, bracket_position = $5,
			advances_to_match_id = $6, player1_id = $7, player2_id = $8, team1_id = $9, team2_id = $10, group_id = $11
		WHERE id = $12`

	result, err := r.exec.ExecContext(ctx, query,
		m.ScheduledAt, m.TableNumber, m.Round, m.IsBye, m.BracketPosition,
		m.AdvancesToMatchID, m.Player1ID, m.Player2ID, m.Team1ID, m.Team2ID, m.GroupID, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", m.ID, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresMatchRepository) FindBetweenPlayers(ctx context.Context, l PairLookup) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND category_id = $2 AND type = $3
		  AND group_id IS NOT DISTINCT FROM $4
		  AND ((player1_id = $5 AND player2_id = $6) OR (player1_id = $6 AND player2_id = $5))
		ORDER BY id ASC
		LIMIT 1`

	m := &models.Match{}
	err := scanMatch(r.exec.QueryRowContext(ctx, query,
		l.TournamentID, l.CategoryID, models.MatchTypeIndividual, l.GroupID, l.PlayerA, l.PlayerB,
	), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to look up match between players %d and %d: %w", l.PlayerA, l.PlayerB, err)
	}
	return m, nil
}
