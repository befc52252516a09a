package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/platform/logger"
	"github.com/phrazzld/lexio-api/internal/store"
)

// PostgresAchievementStore implements the store.AchievementStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation of the
// AchievementStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// ListByUser implements store.AchievementStore.ListByUser
func (s *PostgresAchievementStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.AchievementRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, achievement_type, progress, target, is_unlocked,
		       unlocked_at, created_at, updated_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY achievement_type ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query achievements",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.AchievementRecord
	for rows.Next() {
		var record domain.AchievementRecord
		var unlockedAt sql.NullTime
		if err := rows.Scan(
			&record.UserID,
			&record.AchievementType,
			&record.Progress,
			&record.Target,
			&record.IsUnlocked,
			&unlockedAt,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", err)
		}
		if unlockedAt.Valid {
			t := unlockedAt.Time
			record.UnlockedAt = &t
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievement rows: %w", err)
	}

	return records, nil
}

// Upsert implements store.AchievementStore.Upsert
// Records are keyed by (user, achievement type). The unlock timestamp is
// written with COALESCE so a second unlock evaluation can never move it.
func (s *PostgresAchievementStore) Upsert(ctx context.Context, record *domain.AchievementRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO achievements
			(user_id, achievement_type, progress, target, is_unlocked,
			 unlocked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, achievement_type) DO UPDATE
		SET progress = GREATEST(achievements.progress, EXCLUDED.progress),
		    target = EXCLUDED.target,
		    is_unlocked = achievements.is_unlocked OR EXCLUDED.is_unlocked,
		    unlocked_at = COALESCE(achievements.unlocked_at, EXCLUDED.unlocked_at),
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		record.UserID,
		record.AchievementType,
		record.Progress,
		record.Target,
		record.IsUnlocked,
		record.UnlockedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert achievement",
			slog.String("user_id", record.UserID.String()),
			slog.String("achievement_type", record.AchievementType),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// UpsertAll implements store.AchievementStore.UpsertAll
func (s *PostgresAchievementStore) UpsertAll(
	ctx context.Context,
	records []domain.AchievementRecord,
) error {
	for i := range records {
		if err := s.Upsert(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

// WithTx implements store.AchievementStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}
