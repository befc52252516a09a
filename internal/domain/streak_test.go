package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStreakValidate(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	streak := &Streak{
		UserID:           uuid.New(),
		Current:          3,
		Longest:          5,
		LastActivityDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := streak.Validate(); err != nil {
		t.Fatalf("Expected valid streak, got %v", err)
	}

	// Test empty user ID
	streak.UserID = uuid.Nil
	if err := streak.Validate(); err != ErrEmptyStreakUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyStreakUserID, err)
	}

	// Test negative counts
	streak.UserID = uuid.New()
	streak.Current = -1
	if err := streak.Validate(); err != ErrNegativeStreak {
		t.Errorf("Expected error %v, got %v", ErrNegativeStreak, err)
	}

	// Test longest below current
	streak.Current = 6
	if err := streak.Validate(); err != ErrLongestBelowCurrent {
		t.Errorf("Expected error %v, got %v", ErrLongestBelowCurrent, err)
	}
}
