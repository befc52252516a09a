// Package progress implements the learning-progress coordinator: the single
// entry point a caller uses to record a vocabulary answer. It orchestrates
// the review scheduler, the streak tracker, the activity log and the
// achievement engine, and hands the resulting records back for persistence
// inside one transaction.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
)

// Answer carries the caller-supplied details of a single answered word.
type Answer struct {
	WasCorrect      bool   `json:"was_correct"`
	GameType        string `json:"game_type"`
	Difficulty      string `json:"difficulty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// RecordAnswerResult contains every state delta produced by one recorded
// answer. All records have already been persisted when the result is
// returned; NewlyUnlocked is the subset of achievements the caller should
// turn into user-visible notifications.
type RecordAnswerResult struct {
	Progress      *domain.WordProgress       `json:"progress"`
	Streak        *domain.Streak             `json:"streak"`
	Activity      *domain.Activity           `json:"activity"`
	Achievements  []domain.AchievementRecord `json:"achievements"`
	NewlyUnlocked []domain.AchievementRecord `json:"newly_unlocked"`
}

// ProgressService coordinates all per-answer state transitions for the
// learning progress of a user.
type ProgressService interface {
	// RecordAnswer processes one answered word for a user.
	//
	// Within a single transaction it updates the word's review schedule,
	// advances the user's daily streak, appends an activity entry and
	// re-evaluates the achievement catalog against the updated history.
	// If any step fails the whole operation aborts and no state changes.
	//
	// The operation is safe to retry: the scheduler and achievement engine
	// are pure, and the streak tracker is idempotent within a calendar day.
	//
	// Returns:
	//   - (*RecordAnswerResult, nil): All updated records on success
	//   - (nil, ErrInvalidAnswer): If the submission fails validation
	//   - (nil, ErrTimestampOutOfOrder): If now precedes already recorded state
	//   - (nil, ErrCorruptProgress): If the stored progress violates invariants
	//   - (nil, error): Any storage failure, wrapped
	RecordAnswer(
		ctx context.Context,
		userID, wordID uuid.UUID,
		answer Answer,
		now time.Time,
	) (*RecordAnswerResult, error)

	// GetDueWords retrieves up to limit word progress entries due for review
	// at or before now, ordered by due date.
	GetDueWords(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		limit int,
	) ([]domain.WordProgress, error)

	// GetStreak retrieves the user's streak. A user with no activity yet
	// gets a zero-value streak rather than an error.
	GetStreak(ctx context.Context, userID uuid.UUID) (*domain.Streak, error)

	// GetAchievements retrieves the user's achievement records.
	GetAchievements(ctx context.Context, userID uuid.UUID) ([]domain.AchievementRecord, error)
}

// Common error types for ProgressService
var (
	// ErrInvalidAnswer indicates an invalid answer submission.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrInvalidUser indicates a missing or nil user ID.
	ErrInvalidUser = errors.New("invalid user ID")

	// ErrInvalidWord indicates a missing or nil word ID.
	ErrInvalidWord = errors.New("invalid word ID")

	// ErrTimestampOutOfOrder indicates the supplied time precedes state that
	// is already recorded for the word. Applying it would corrupt the
	// schedule, so the operation is rejected before any mutation.
	ErrTimestampOutOfOrder = fmt.Errorf("%w: answer", domain.ErrTimestampOutOfOrder)

	// ErrCorruptProgress indicates a fetched progress record violates its
	// own invariants. The service refuses to build on corrupted state.
	ErrCorruptProgress = fmt.Errorf("%w: word progress", domain.ErrInvariantViolation)
)

// ServiceError wraps errors from the progress service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_answer", "get_due_words")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRecordAnswerError returns a new ServiceError for the record_answer operation.
func NewRecordAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "record_answer",
		Message:   message,
		Err:       err,
	}
}
