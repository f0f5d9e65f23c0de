package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
)

// Constraint names declared in db/schema.sql. The in-memory store reports the same names.
const (
	ConstraintAssociationName   = "associations_name_key"
	ConstraintCategoryName      = "categories_name_key"
	ConstraintTeamPair          = "teams_pair_key"
	ConstraintTeamDistinct      = "teams_distinct_players_check"
	ConstraintGroupName         = "groups_tournament_category_name_key"
	ConstraintGroupMember       = "group_members_pkey"
	ConstraintSetNumber         = "set_results_match_set_key"
	ConstraintEnrollment        = "enrollments_pkey"
	ConstraintDoublesEnrollment = "doubles_enrollments_pkey"
	ConstraintTournamentDates   = "tournaments_dates_check"
	ConstraintCategoryAges      = "categories_ages_check"
	ConstraintCategoryRules     = "categories_rules_check"
	ConstraintSetPoints         = "set_results_points_check"
	ConstraintMatchSlots        = "matches_slots_check"
)

// ConstraintError is a storage constraint violation stripped of driver details.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewConstraintError builds a ConstraintError without an underlying driver error.
func NewConstraintError(kind error, constraint string) error {
	return &ConstraintError{Kind: kind, Constraint: constraint}
}

// ConstraintName returns the violated constraint of err, if any.
func ConstraintName(err error) (string, bool) {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint, true
	}
	return "", false
}

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ListOptions pages a listing. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// handlePQError maps postgres integrity errors onto the repository sentinels.
func handlePQError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		return &ConstraintError{Kind: ErrUniqueViolation, Constraint: pqErr.Constraint, Err: err}
	case "23503": // foreign_key_violation
		return &ConstraintError{Kind: ErrForeignKeyViolation, Constraint: pqErr.Constraint, Err: err}
	case "23514": // check_violation
		return &ConstraintError{Kind: ErrCheckViolation, Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func appendPaging(query string, args []interface{}, opts ListOptions) (string, []interface{}) {
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}
