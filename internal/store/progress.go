package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
)

// WordProgressStore defines the interface for word progress data persistence.
type WordProgressStore interface {
	// Create saves a new word progress entry.
	// It handles domain validation internally.
	// Returns ErrDuplicate if an entry for the user and word already exists.
	Create(ctx context.Context, progress *domain.WordProgress) error

	// Get retrieves word progress by the combination of user ID and word ID.
	// Returns ErrProgressNotFound if the progress entry does not exist.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)

	// GetForUpdate retrieves word progress with a row-level lock using SELECT FOR UPDATE.
	// This should be used within a transaction when you plan to update the row
	// and need protection from concurrent modifications.
	// Returns ErrProgressNotFound if the progress entry does not exist.
	GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)

	// Update modifies an existing progress entry.
	// The userID and wordID fields in the progress object identify the record.
	// Returns ErrProgressNotFound if the progress entry does not exist.
	Update(ctx context.Context, progress *domain.WordProgress) error

	// GetDue retrieves up to limit progress entries for the user whose next
	// review date is at or before now, ordered by next review date ascending.
	GetDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.WordProgress, error)

	// WithTx returns a new WordProgressStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) WordProgressStore
}

// StreakStore defines the interface for streak data persistence.
type StreakStore interface {
	// Get retrieves the streak for a user.
	// Returns ErrStreakNotFound if no streak exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error)

	// Upsert creates or replaces the streak for the user in the record.
	// It handles domain validation internally.
	Upsert(ctx context.Context, streak *domain.Streak) error

	// WithTx returns a new StreakStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StreakStore
}

// ActivityStore defines the interface for the append-only activity log.
type ActivityStore interface {
	// Append writes a new activity entry. Entries are immutable once written;
	// there is no update operation.
	Append(ctx context.Context, activity *domain.Activity) error

	// ListByUser retrieves a user's full activity history ordered by
	// creation time ascending.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Activity, error)

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore
}

// AchievementStore defines the interface for achievement record persistence.
type AchievementStore interface {
	// ListByUser retrieves all achievement records for a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AchievementRecord, error)

	// Upsert creates or updates one achievement record keyed by user ID and
	// achievement type. UnlockedAt is written as-is; callers are responsible
	// for never regressing an unlocked record.
	Upsert(ctx context.Context, record *domain.AchievementRecord) error

	// UpsertAll applies Upsert to each record in order.
	UpsertAll(ctx context.Context, records []domain.AchievementRecord) error

	// WithTx returns a new AchievementStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AchievementStore
}
