package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Store groups the entity repositories behind one unit-of-work boundary.
type Store interface {
	Players() PlayerRepository
	Associations() AssociationRepository
	Tournaments() TournamentRepository
	Categories() CategoryRepository
	Teams() TeamRepository
	Groups() GroupRepository
	Matches() MatchRepository
	SetResults() SetResultRepository
	Enrollments() EnrollmentRepository

	// WithinTx runs fn against a transactional view of the store. The work is
	// committed when fn returns nil and rolled back otherwise. Nested calls join
	// the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}

type PostgresStore struct {
	db     *sql.DB
	exec   SQLExecutor
	inTx   bool
	logger *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, exec: db, logger: logger}
}

func (s *PostgresStore) Players() PlayerRepository { return NewPostgresPlayerRepository(s.exec) }
func (s *PostgresStore) Associations() AssociationRepository {
	return NewPostgresAssociationRepository(s.exec)
}
func (s *PostgresStore) Tournaments() TournamentRepository {
	return NewPostgresTournamentRepository(s.exec)
}
func (s *PostgresStore) Categories() CategoryRepository {
	return NewPostgresCategoryRepository(s.exec)
}
func (s *PostgresStore) Teams() TeamRepository    { return NewPostgresTeamRepository(s.exec) }
func (s *PostgresStore) Groups() GroupRepository  { return NewPostgresGroupRepository(s.exec) }
func (s *PostgresStore) Matches() MatchRepository { return NewPostgresMatchRepository(s.exec) }
func (s *PostgresStore) SetResults() SetResultRepository {
	return NewPostgresSetResultRepository(s.exec)
}
func (s *PostgresStore) Enrollments() EnrollmentRepository {
	return NewPostgresEnrollmentRepository(s.exec)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) (txErr error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", handlePQError(cErr))
		}
	}()

	return fn(&PostgresStore{db: s.db, exec: tx, inTx: true, logger: s.logger})
}
