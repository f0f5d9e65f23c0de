package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type EnrollmentFilter struct {
	TournamentID *int
	CategoryID   *int
	Limit        int
	Offset       int
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Get(ctx context.Context, playerID, tournamentID, categoryID int) (*models.Enrollment, error)
	Delete(ctx context.Context, playerID, tournamentID, categoryID int) error
	List(ctx context.Context, filter EnrollmentFilter) ([]*models.Enrollment, error)

	CreateDoubles(ctx context.Context, enrollment *models.DoublesEnrollment) error
	GetDoubles(ctx context.Context, teamID, tournamentID, categoryID int) (*models.DoublesEnrollment, error)
	DeleteDoubles(ctx context.Context, teamID, tournamentID, categoryID int) error
	ListDoubles(ctx context.Context, filter EnrollmentFilter) ([]*models.DoublesEnrollment, error)
}

type postgresEnrollmentRepository struct {
	exec SQLExecutor
}

func NewPostgresEnrollmentRepository(exec SQLExecutor) EnrollmentRepository {
	return &postgresEnrollmentRepository{exec: exec}
}

func (r *postgresEnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (player_id, tournament_id, category_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if err := r.exec.QueryRowContext(ctx, query, e.PlayerID, e.TournamentID, e.CategoryID).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create enrollment: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresEnrollmentRepository) Get(ctx context.Context, playerID, tournamentID, categoryID int) (*models.Enrollment, error) {
	query := `
		SELECT player_id, tournament_id, category_id, created_at FROM enrollments
		WHERE player_id = $1 AND tournament_id = $2 AND category_id = $3`

	e := &models.Enrollment{}
	err := r.exec.QueryRowContext(ctx, query, playerID, tournamentID, categoryID).
		Scan(&e.PlayerID, &e.TournamentID, &e.CategoryID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (r *postgresEnrollmentRepository) Delete(ctx context.Context, playerID, tournamentID, categoryID int) error {
	result, err := r.exec.ExecContext(ctx,
		`DELETE FROM enrollments WHERE player_id = $1 AND tournament_id = $2 AND category_id = $3`,
		playerID, tournamentID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

// enrollmentListQuery builds the filtered listing shared by both enrollment tables.
func enrollmentListQuery(columns, table string, filter EnrollmentFilter) (string, []interface{}) {
	query := `SELECT ` + columns + ` FROM ` + table + ` WHERE 1=1`
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
	query += " ORDER BY created_at ASC"
	return appendPaging(query, args, ListOptions{Limit: filter.Limit, Offset: filter.Offset})
}

func (r *postgresEnrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]*models.Enrollment, error) {
	query, args := enrollmentListQuery("player_id, tournament_id, category_id, created_at", "enrollments", filter)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.PlayerID, &e.TournamentID, &e.CategoryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, nil
}

func (r *postgresEnrollmentRepository) CreateDoubles(ctx context.Context, e *models.DoublesEnrollment) error {
	query := `
		INSERT INTO doubles_enrollments (team_id, tournament_id, category_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if err := r.exec.QueryRowContext(ctx, query, e.TeamID, e.TournamentID, e.CategoryID).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create doubles enrollment: %w", handlePQError(err))
	}
	return nil
}

func (r *postgresEnrollmentRepository) GetDoubles(ctx context.Context, teamID, tournamentID, categoryID int) (*models.DoublesEnrollment, error) {
	query := `
		SELECT team_id, tournament_id, category_id, created_at FROM doubles_enrollments
		WHERE team_id = $1 AND tournament_id = $2 AND category_id = $3`

	e := &models.DoublesEnrollment{}
	err := r.exec.QueryRowContext(ctx, query, teamID, tournamentID, categoryID).
		Scan(&e.TeamID, &e.TournamentID, &e.CategoryID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get doubles enrollment: %w", err)
	}
	return e, nil
}

func (r *postgresEnrollmentRepository) DeleteDoubles(ctx context.Context, teamID, tournamentID, categoryID int) error {
	result, err := r.exec.ExecContext(ctx,
		`DELETE FROM doubles_enrollments WHERE team_id = $1 AND tournament_id = $2 AND category_id = $3`,
		teamID, tournamentID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete doubles enrollment: %w", handlePQError(err))
	}
	return checkAffectedRows(result, ErrRecordNotFound)
}

func (r *postgresEnrollmentRepository) ListDoubles(ctx context.Context, filter EnrollmentFilter) ([]*models.DoublesEnrollment, error) {
	query, args := enrollmentListQuery("team_id, tournament_id, category_id, created_at", "doubles_enrollments", filter)

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doubles enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.DoublesEnrollment, 0)
	for rows.Next() {
		var e models.DoublesEnrollment
		if err := rows.Scan(&e.TeamID, &e.TournamentID, &e.CategoryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan doubles enrollment row: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doubles enrollment rows: %w", err)
	}
	return enrollments, nil
}
