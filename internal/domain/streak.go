package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Streak
var (
	ErrEmptyStreakUserID   = errors.New("streak user ID cannot be empty")
	ErrNegativeStreak      = errors.New("streak counts must be greater than or equal to 0")
	ErrLongestBelowCurrent = errors.New("longest streak cannot be less than current streak")
)

// Streak tracks a user's run of consecutive calendar days with at least one
// recorded learning activity. LastActivityDate is always truncated to a UTC
// day boundary; time-of-day never influences streak arithmetic.
type Streak struct {
	UserID           uuid.UUID `json:"user_id"`
	Current          int       `json:"current"`
	Longest          int       `json:"longest"`
	LastActivityDate time.Time `json:"last_activity_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks if the Streak has valid data.
func (s *Streak) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStreakUserID
	}

	if s.Current < 0 || s.Longest < 0 {
		return ErrNegativeStreak
	}

	if s.Longest < s.Current {
		return ErrLongestBelowCurrent
	}

	return nil
}
