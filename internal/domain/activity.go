package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies the kind of learning event an Activity records.
type ActivityType string

// Possible activity type values
const (
	ActivityTypeTestCompleted  ActivityType = "test_completed"
	ActivityTypePracticeAnswer ActivityType = "practice_answer"
	ActivityTypeReviewSession  ActivityType = "review_session"
)

// Common validation errors for Activity
var (
	ErrEmptyActivityUserID  = errors.New("activity user ID cannot be empty")
	ErrInvalidActivityType  = errors.New("invalid activity type")
	ErrInvalidScore         = errors.New("activity score cannot be negative")
	ErrInvalidQuestionCount = errors.New("correct answers cannot exceed total questions")
	ErrZeroActivityTime     = errors.New("activity created at cannot be zero")
)

// Activity is one immutable entry in a user's learning log. Everything
// derived from the log (streaks, achievements, windowed statistics) treats
// entries as append-only and ordered by CreatedAt.
type Activity struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"user_id"`
	Type            ActivityType `json:"activity_type"`
	GameType        string       `json:"game_type"`
	CategoryID      *uuid.UUID   `json:"category_id,omitempty"`
	Difficulty      string       `json:"difficulty"`
	Score           int          `json:"score"`
	TotalQuestions  int          `json:"total_questions"`
	CorrectAnswers  int          `json:"correct_answers"`
	Percentage      float64      `json:"percentage"`
	DurationSeconds int          `json:"duration_seconds"`
	XPEarned        int          `json:"xp_earned"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewActivity creates a new Activity with a generated ID and the given
// creation time. Percentage is derived from the answer counts when total
// questions is non-zero.
func NewActivity(
	userID uuid.UUID,
	activityType ActivityType,
	totalQuestions, correctAnswers int,
	now time.Time,
) (*Activity, error) {
	activity := &Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           activityType,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correctAnswers,
		CreatedAt:      now,
	}

	if totalQuestions > 0 {
		activity.Percentage = float64(correctAnswers) / float64(totalQuestions) * 100
		activity.Score = correctAnswers * 100 / totalQuestions
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}

	return activity, nil
}

// Validate checks if the Activity has valid data.
func (a *Activity) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrEmptyActivityUserID
	}

	if !a.Type.IsValid() {
		return ErrInvalidActivityType
	}

	if a.Score < 0 || a.XPEarned < 0 {
		return ErrInvalidScore
	}

	if a.CorrectAnswers > a.TotalQuestions {
		return ErrInvalidQuestionCount
	}

	if a.CreatedAt.IsZero() {
		return ErrZeroActivityTime
	}

	return nil
}

// IsValid checks if the activity type is one of the known values.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeTestCompleted,
		ActivityTypePracticeAnswer,
		ActivityTypeReviewSession:
		return true
	default:
		return false
	}
}
