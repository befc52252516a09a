package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/platform/logger"
	"github.com/phrazzld/lexio-api/internal/store"
)

// PostgresStreakStore implements the store.StreakStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the
// StreakStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

// Ensure PostgresStreakStore implements store.StreakStore interface
var _ store.StreakStore = (*PostgresStreakStore)(nil)

// Get implements store.StreakStore.Get
// Returns store.ErrStreakNotFound if the user has no streak record yet.
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date,
		       created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`

	var streak domain.Streak
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&streak.UserID,
		&streak.Current,
		&streak.Longest,
		&streak.LastActivityDate,
		&streak.CreatedAt,
		&streak.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStreakNotFound
		}
		log.Error("failed to get streak",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &streak, nil
}

// Upsert implements store.StreakStore.Upsert
// One row per user; a conflicting insert replaces the existing row's state.
func (s *PostgresStreakStore) Upsert(ctx context.Context, streak *domain.Streak) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := streak.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO streaks
			(user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    last_activity_date = EXCLUDED.last_activity_date,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		streak.UserID,
		streak.Current,
		streak.Longest,
		streak.LastActivityDate,
		streak.CreatedAt,
		streak.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert streak",
			slog.String("user_id", streak.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// WithTx implements store.StreakStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{
		db:     tx,
		logger: s.logger,
	}
}
