package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequirementType tags an achievement definition with the rule used to decide
// whether a user's activity history unlocks it. Each tag has exactly one
// evaluation function in the achievement engine; there is no runtime dispatch
// beyond this enum.
type RequirementType string

// Possible requirement type values
const (
	// RequirementActivityCount unlocks after a minimum number of activities
	// of a given type.
	RequirementActivityCount RequirementType = "activity_count"

	// RequirementPerfectScore unlocks on any activity with a perfect score,
	// optionally restricted to a difficulty.
	RequirementPerfectScore RequirementType = "perfect_score"

	// RequirementActiveDays unlocks after activity on a minimum number of
	// distinct calendar days within a trailing window.
	RequirementActiveDays RequirementType = "active_days"

	// RequirementTotalXP unlocks once cumulative XP reaches the target.
	RequirementTotalXP RequirementType = "total_xp"
)

// Common validation errors for achievements
var (
	ErrEmptyAchievementType   = errors.New("achievement type cannot be empty")
	ErrEmptyAchievementUserID = errors.New("achievement user ID cannot be empty")
	ErrInvalidTarget          = errors.New("achievement target must be greater than 0")
	ErrInvalidProgress        = errors.New("achievement progress must be between 0 and target")
	ErrMissingUnlockTime      = errors.New("unlocked achievement must have an unlock time")
)

// AchievementDefinition describes one milestone in the static achievement
// catalog. Definitions are configuration, not user data: they are loaded once
// at process start and never mutated.
type AchievementDefinition struct {
	Type        string          `json:"type"` // Unique key, e.g. "test_champion_bronze"
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Category    string          `json:"category"`
	Target      int             `json:"target"`
	Requirement RequirementType `json:"requirement"`

	// Requirement parameters; which ones apply depends on Requirement.
	ActivityType ActivityType `json:"activity_type,omitempty"`
	MinScore     int          `json:"min_score,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	WindowDays   int          `json:"window_days,omitempty"`
}

// Validate checks if the AchievementDefinition has valid data.
func (d *AchievementDefinition) Validate() error {
	if d.Type == "" {
		return ErrEmptyAchievementType
	}

	if d.Target <= 0 {
		return ErrInvalidTarget
	}

	return nil
}

// AchievementRecord is a user's state against one achievement definition.
// Records are created lazily on first evaluation and are never deleted. Once
// IsUnlocked is true it never reverts, and UnlockedAt is immutable after the
// first unlock.
type AchievementRecord struct {
	UserID          uuid.UUID  `json:"user_id"`
	AchievementType string     `json:"achievement_type"`
	Progress        int        `json:"progress"`
	Target          int        `json:"target"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks if the AchievementRecord has valid data.
func (r *AchievementRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrEmptyAchievementUserID
	}

	if r.AchievementType == "" {
		return ErrEmptyAchievementType
	}

	if r.Target <= 0 {
		return ErrInvalidTarget
	}

	if r.Progress < 0 || r.Progress > r.Target {
		return ErrInvalidProgress
	}

	if r.IsUnlocked && r.UnlockedAt == nil {
		return ErrMissingUnlockTime
	}

	return nil
}
