package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/platform/logger"
	"github.com/phrazzld/lexio-api/internal/store"
)

// PostgresWordProgressStore implements the store.WordProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordProgressStore creates a new PostgreSQL implementation of the
// WordProgressStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordProgressStore(db store.DBTX, logger *slog.Logger) *PostgresWordProgressStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_progress_store")),
	}
}

// Ensure PostgresWordProgressStore implements store.WordProgressStore interface
var _ store.WordProgressStore = (*PostgresWordProgressStore)(nil)

// Create implements store.WordProgressStore.Create
// Returns store.ErrDuplicate if a record for the (user, word) pair already exists.
func (s *PostgresWordProgressStore) Create(ctx context.Context, progress *domain.WordProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO word_progress
			(user_id, word_id, memory_level, next_review_at, last_studied_at,
			 review_count, correct_count, wrong_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.WordID,
		progress.MemoryLevel,
		progress.NextReviewAt,
		progress.LastStudiedAt,
		progress.ReviewCount,
		progress.CorrectCount,
		progress.WrongCount,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create word progress",
			slog.String("user_id", progress.UserID.String()),
			slog.String("word_id", progress.WordID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// Get implements store.WordProgressStore.Get
// Returns store.ErrProgressNotFound if no record exists for the pair.
func (s *PostgresWordProgressStore) Get(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordProgress, error) {
	return s.get(ctx, userID, wordID, false)
}

// GetForUpdate implements store.WordProgressStore.GetForUpdate
// It acquires a row-level lock so concurrent transactions for the same pair
// serialize. Must be called inside a transaction to be effective.
func (s *PostgresWordProgressStore) GetForUpdate(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordProgress, error) {
	return s.get(ctx, userID, wordID, true)
}

func (s *PostgresWordProgressStore) get(
	ctx context.Context,
	userID, wordID uuid.UUID,
	forUpdate bool,
) (*domain.WordProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, word_id, memory_level, next_review_at, last_studied_at,
		       review_count, correct_count, wrong_count, created_at, updated_at
		FROM word_progress
		WHERE user_id = $1 AND word_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var progress domain.WordProgress
	err := s.db.QueryRowContext(ctx, query, userID, wordID).Scan(
		&progress.UserID,
		&progress.WordID,
		&progress.MemoryLevel,
		&progress.NextReviewAt,
		&progress.LastStudiedAt,
		&progress.ReviewCount,
		&progress.CorrectCount,
		&progress.WrongCount,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get word progress",
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &progress, nil
}

// Update implements store.WordProgressStore.Update
// Returns store.ErrProgressNotFound if no record exists for the pair.
func (s *PostgresWordProgressStore) Update(ctx context.Context, progress *domain.WordProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE word_progress
		SET memory_level = $3, next_review_at = $4, last_studied_at = $5,
		    review_count = $6, correct_count = $7, wrong_count = $8, updated_at = $9
		WHERE user_id = $1 AND word_id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.WordID,
		progress.MemoryLevel,
		progress.NextReviewAt,
		progress.LastStudiedAt,
		progress.ReviewCount,
		progress.CorrectCount,
		progress.WrongCount,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update word progress",
			slog.String("user_id", progress.UserID.String()),
			slog.String("word_id", progress.WordID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrProgressNotFound
	}

	return nil
}

// GetDue implements store.WordProgressStore.GetDue
// Entries are due when their next review time is at or before now, ordered by
// due time so the most overdue words come first.
func (s *PostgresWordProgressStore) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.WordProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, word_id, memory_level, next_review_at, last_studied_at,
		       review_count, correct_count, wrong_count, created_at, updated_at
		FROM word_progress
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now, limit)
	if err != nil {
		log.Error("failed to query due word progress",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var due []domain.WordProgress
	for rows.Next() {
		var progress domain.WordProgress
		if err := rows.Scan(
			&progress.UserID,
			&progress.WordID,
			&progress.MemoryLevel,
			&progress.NextReviewAt,
			&progress.LastStudiedAt,
			&progress.ReviewCount,
			&progress.CorrectCount,
			&progress.WrongCount,
			&progress.CreatedAt,
			&progress.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan word progress row: %w", err)
		}
		due = append(due, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating word progress rows: %w", err)
	}

	return due, nil
}

// WithTx implements store.WordProgressStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresWordProgressStore) WithTx(tx *sql.Tx) store.WordProgressStore {
	return &PostgresWordProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
