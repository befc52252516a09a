package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Memory level bounds for the spaced repetition schedule.
const (
	MinMemoryLevel = 1
	MaxMemoryLevel = 5
)

// Common validation errors for WordProgress
var (
	ErrEmptyProgressUserID = errors.New("word progress user ID cannot be empty")
	ErrEmptyProgressWordID = errors.New("word progress word ID cannot be empty")
	ErrInvalidMemoryLevel  = errors.New("memory level must be between 1 and 5")
	ErrNegativeCount       = errors.New("review counts must be greater than or equal to 0")
	ErrCountMismatch       = errors.New("correct and wrong counts must sum to review count")
	ErrReviewBeforeStudy   = errors.New("next review date cannot be before last studied date")
)

// WordProgress tracks a user's memorization progress for a specific vocabulary
// word. The memory level drives the spaced repetition schedule: each correct
// answer raises the level one step toward MaxMemoryLevel, and any wrong answer
// resets it to MinMemoryLevel.
type WordProgress struct {
	UserID        uuid.UUID `json:"user_id"`
	WordID        uuid.UUID `json:"word_id"`
	MemoryLevel   int       `json:"memory_level"`    // Current retention level (1-5)
	NextReviewAt  time.Time `json:"next_review_at"`  // When the word is due again
	LastStudiedAt time.Time `json:"last_studied_at"` // When the word was last answered
	ReviewCount   int       `json:"review_count"`    // Total number of answers recorded
	CorrectCount  int       `json:"correct_count"`
	WrongCount    int       `json:"wrong_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewWordProgress creates fresh progress for a user and word pair. The record
// starts below MinMemoryLevel conceptually (level 0); the first recorded answer
// moves it into the 1-5 range, so MemoryLevel here is set to MinMemoryLevel and
// counts to zero with the word available for review immediately.
func NewWordProgress(userID, wordID uuid.UUID, now time.Time) (*WordProgress, error) {
	progress := &WordProgress{
		UserID:        userID,
		WordID:        wordID,
		MemoryLevel:   MinMemoryLevel,
		NextReviewAt:  now,
		LastStudiedAt: now,
		ReviewCount:   0,
		CorrectCount:  0,
		WrongCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the WordProgress has valid data.
// Returns an error if any field fails validation.
func (p *WordProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.WordID == uuid.Nil {
		return ErrEmptyProgressWordID
	}

	if p.MemoryLevel < MinMemoryLevel || p.MemoryLevel > MaxMemoryLevel {
		return ErrInvalidMemoryLevel
	}

	if p.ReviewCount < 0 || p.CorrectCount < 0 || p.WrongCount < 0 {
		return ErrNegativeCount
	}

	if p.CorrectCount+p.WrongCount != p.ReviewCount {
		return ErrCountMismatch
	}

	if p.NextReviewAt.Before(p.LastStudiedAt) {
		return ErrReviewBeforeStudy
	}

	return nil
}
