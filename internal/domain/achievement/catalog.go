// Package achievement implements the declarative achievement engine.
//
// Achievements are described by a static catalog of definitions, each tagged
// with a requirement type. The engine evaluates the catalog against a user's
// full activity history and produces per-user achievement records. Evaluation
// is a pure function of its inputs, which makes re-runs after partial
// failures safe.
package achievement

import (
	"github.com/phrazzld/lexio-api/internal/domain"
)

// DefaultCatalog returns the built-in achievement definitions.
//
// The catalog is configuration, not user data: it is loaded once at process
// start and treated as read-only afterwards. Types are unique keys and must
// never be renamed once records referencing them exist.
func DefaultCatalog() []domain.AchievementDefinition {
	return []domain.AchievementDefinition{
		{
			Type:         "first_test",
			Title:        "First Steps",
			Description:  "Complete your first vocabulary test",
			Icon:         "footprints",
			Category:     "milestone",
			Target:       1,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
		{
			Type:         "test_champion_bronze",
			Title:        "Bronze Champion",
			Description:  "Complete 10 vocabulary tests",
			Icon:         "medal-bronze",
			Category:     "tests",
			Target:       10,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
		{
			Type:         "test_champion_silver",
			Title:        "Silver Champion",
			Description:  "Complete 50 vocabulary tests",
			Icon:         "medal-silver",
			Category:     "tests",
			Target:       50,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
		{
			Type:         "test_champion_gold",
			Title:        "Gold Champion",
			Description:  "Complete 100 vocabulary tests",
			Icon:         "medal-gold",
			Category:     "tests",
			Target:       100,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
		{
			Type:         "perfect_score",
			Title:        "Flawless",
			Description:  "Score 100% on any test",
			Icon:         "star",
			Category:     "mastery",
			Target:       1,
			Requirement:  domain.RequirementPerfectScore,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
		{
			Type:         "hard_perfectionist",
			Title:        "Perfectionist",
			Description:  "Score 100% on a hard difficulty test",
			Icon:         "gem",
			Category:     "mastery",
			Target:       1,
			Requirement:  domain.RequirementPerfectScore,
			ActivityType: domain.ActivityTypeTestCompleted,
			Difficulty:   "hard",
		},
		{
			Type:        "week_warrior",
			Title:       "Week Warrior",
			Description: "Practice on 7 days within a single week",
			Icon:        "flame",
			Category:    "dedication",
			Target:      7,
			Requirement: domain.RequirementActiveDays,
			WindowDays:  7,
		},
		{
			Type:        "xp_collector",
			Title:       "XP Collector",
			Description: "Earn 1000 XP from learning activities",
			Icon:        "trophy",
			Category:    "milestone",
			Target:      1000,
			Requirement: domain.RequirementTotalXP,
		},
	}
}
