package achievement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
)

// Common errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrUnknownRequirement  = errors.New("unknown requirement type")
	ErrInvalidDefinition   = errors.New("invalid achievement definition")
	ErrMixedUserActivities = errors.New("activities must all belong to the evaluated user")
)

// Evaluate computes achievement records for a user against the given catalog.
//
// For each definition the requirement predicate is evaluated over the full
// activity history. Existing records constrain the result: an already
// unlocked record is carried through untouched (UnlockedAt is immutable), and
// progress never decreases below a value a previous evaluation produced.
// Records for definitions never evaluated before are created lazily.
//
// Parameters:
//   - userID: The user whose history is being evaluated
//   - defs: The achievement catalog (static configuration)
//   - activities: The user's full activity history
//   - existing: Previously persisted records for this user, if any
//   - now: The evaluation time, used as the unlock timestamp for fresh unlocks
//
// Returns:
//   - One record per definition, in catalog order
//
// Evaluation is deterministic: the same inputs always yield the same output.
func Evaluate(
	userID uuid.UUID,
	defs []domain.AchievementDefinition,
	activities []domain.Activity,
	existing []domain.AchievementRecord,
	now time.Time,
) ([]domain.AchievementRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	for i := range activities {
		if activities[i].UserID != userID {
			return nil, ErrMixedUserActivities
		}
	}

	existingByType := make(map[string]*domain.AchievementRecord, len(existing))
	for i := range existing {
		existingByType[existing[i].AchievementType] = &existing[i]
	}

	records := make([]domain.AchievementRecord, 0, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDefinition, def.Type, err)
		}

		record, err := evaluateOne(userID, def, activities, existingByType[def.Type], now)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

// evaluateOne produces the record for a single definition.
func evaluateOne(
	userID uuid.UUID,
	def domain.AchievementDefinition,
	activities []domain.Activity,
	prior *domain.AchievementRecord,
	now time.Time,
) (*domain.AchievementRecord, error) {
	// Unlocks are permanent: a record that unlocked once is never re-derived,
	// so UnlockedAt stays at the first unlock.
	if prior != nil && prior.IsUnlocked {
		copied := *prior
		return &copied, nil
	}

	unlocked, err := requirementMet(def, activities, now)
	if err != nil {
		return nil, err
	}

	record := &domain.AchievementRecord{
		UserID:          userID,
		AchievementType: def.Type,
		Target:          def.Target,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if prior != nil {
		record.CreatedAt = prior.CreatedAt
	}

	if unlocked {
		record.IsUnlocked = true
		record.Progress = def.Target
		unlockTime := now
		record.UnlockedAt = &unlockTime
		return record, nil
	}

	record.Progress = displayProgress(def, activities, now)

	// Progress already shown to the user never goes backwards
	if prior != nil && prior.Progress > record.Progress {
		record.Progress = prior.Progress
	}

	return record, nil
}

// requirementMet evaluates the unlock predicate for one definition.
func requirementMet(
	def domain.AchievementDefinition,
	activities []domain.Activity,
	now time.Time,
) (bool, error) {
	switch def.Requirement {
	case domain.RequirementActivityCount:
		return countByType(activities, def.ActivityType) >= def.Target, nil

	case domain.RequirementPerfectScore:
		return countPerfectScores(activities, def) >= def.Target, nil

	case domain.RequirementActiveDays:
		return countActiveDays(activities, def.WindowDays, now) >= def.Target, nil

	case domain.RequirementTotalXP:
		return totalXP(activities) >= def.Target, nil

	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownRequirement, def.Requirement)
	}
}

// displayProgress approximates progress toward a locked achievement.
//
// For count-based families (type names containing "test" or "champion") the
// shown value is the total activity count capped one below target - reaching
// the target would imply the achievement had unlocked. This intentionally
// counts all activities, not only those satisfying the requirement's filter;
// it is a display heuristic, not an exact qualifying count.
func displayProgress(
	def domain.AchievementDefinition,
	activities []domain.Activity,
	now time.Time,
) int {
	if strings.Contains(def.Type, "test") || strings.Contains(def.Type, "champion") {
		return capBelowTarget(len(activities), def.Target)
	}

	switch def.Requirement {
	case domain.RequirementPerfectScore:
		return capBelowTarget(countPerfectScores(activities, def), def.Target)
	case domain.RequirementActiveDays:
		return capBelowTarget(countActiveDays(activities, def.WindowDays, now), def.Target)
	case domain.RequirementTotalXP:
		return capBelowTarget(totalXP(activities), def.Target)
	default:
		return capBelowTarget(len(activities), def.Target)
	}
}

func capBelowTarget(value, target int) int {
	if value > target-1 {
		return target - 1
	}
	return value
}

func countByType(activities []domain.Activity, activityType domain.ActivityType) int {
	count := 0
	for i := range activities {
		if activities[i].Type == activityType {
			count++
		}
	}
	return count
}

// countPerfectScores counts activities with a perfect score, honoring the
// definition's optional activity-type and difficulty filters. Without the
// type filter a single-question practice answer would qualify.
func countPerfectScores(activities []domain.Activity, def domain.AchievementDefinition) int {
	count := 0
	for i := range activities {
		if activities[i].Score != 100 {
			continue
		}
		if def.ActivityType != "" && activities[i].Type != def.ActivityType {
			continue
		}
		if def.Difficulty != "" && activities[i].Difficulty != def.Difficulty {
			continue
		}
		count++
	}
	return count
}

// countActiveDays counts distinct UTC calendar days with activity inside the
// trailing window ending at now. A windowDays of 0 means unbounded.
func countActiveDays(activities []domain.Activity, windowDays int, now time.Time) int {
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = now.UTC().AddDate(0, 0, -windowDays)
	}

	days := make(map[string]struct{})
	for i := range activities {
		created := activities[i].CreatedAt.UTC()
		if windowDays > 0 && created.Before(cutoff) {
			continue
		}
		days[created.Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

func totalXP(activities []domain.Activity) int {
	total := 0
	for i := range activities {
		total += activities[i].XPEarned
	}
	return total
}

// NewlyUnlocked returns the records in after that transitioned from
// not-unlocked (or absent) in before to unlocked. The caller turns these into
// user-visible notifications.
func NewlyUnlocked(before, after []domain.AchievementRecord) []domain.AchievementRecord {
	unlockedBefore := make(map[string]bool, len(before))
	for i := range before {
		if before[i].IsUnlocked {
			unlockedBefore[before[i].AchievementType] = true
		}
	}

	var fresh []domain.AchievementRecord
	for i := range after {
		if after[i].IsUnlocked && !unlockedBefore[after[i].AchievementType] {
			fresh = append(fresh, after[i])
		}
	}
	return fresh
}
