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

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Append implements store.ActivityStore.Append
// Activity entries are append-only; there is no update or delete path.
func (s *PostgresActivityStore) Append(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := activity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO activities
			(id, user_id, type, game_type, category_id, difficulty, score,
			 total_questions, correct_answers, percentage, duration_seconds,
			 xp_earned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		activity.ID,
		activity.UserID,
		activity.Type,
		activity.GameType,
		activity.CategoryID,
		activity.Difficulty,
		activity.Score,
		activity.TotalQuestions,
		activity.CorrectAnswers,
		activity.Percentage,
		activity.DurationSeconds,
		activity.XPEarned,
		activity.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append activity",
			slog.String("activity_id", activity.ID.String()),
			slog.String("user_id", activity.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// ListByUser implements store.ActivityStore.ListByUser
// The history is returned oldest first so evaluation sees events in the order
// they happened.
func (s *PostgresActivityStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, type, game_type, category_id, difficulty, score,
		       total_questions, correct_answers, percentage, duration_seconds,
		       xp_earned, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query activities",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var activities []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		var gameType sql.NullString
		var categoryID uuid.NullUUID
		var difficulty sql.NullString
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Type,
			&gameType,
			&categoryID,
			&difficulty,
			&activity.Score,
			&activity.TotalQuestions,
			&activity.CorrectAnswers,
			&activity.Percentage,
			&activity.DurationSeconds,
			&activity.XPEarned,
			&activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activity.GameType = gameType.String
		activity.Difficulty = difficulty.String
		if categoryID.Valid {
			id := categoryID.UUID
			activity.CategoryID = &id
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return activities, nil
}

// WithTx implements store.ActivityStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{
		db:     tx,
		logger: s.logger,
	}
}
