package achievement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeActivities(
	userID uuid.UUID,
	activityType domain.ActivityType,
	count int,
	start time.Time,
) []domain.Activity {
	activities := make([]domain.Activity, 0, count)
	for i := 0; i < count; i++ {
		activities = append(activities, domain.Activity{
			ID:             uuid.New(),
			UserID:         userID,
			Type:           activityType,
			TotalQuestions: 10,
			CorrectAnswers: 8,
			Score:          80,
			XPEarned:       10,
			CreatedAt:      start.Add(time.Duration(i) * time.Hour),
		})
	}
	return activities
}

func TestEvaluateUnlocksCountAchievement(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:         "test_champion_bronze",
			Title:        "Bronze Champion",
			Target:       10,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
	}
	activities := makeActivities(userID, domain.ActivityTypeTestCompleted, 10, now.AddDate(0, 0, -1))

	records, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.True(t, record.IsUnlocked)
	assert.Equal(t, 10, record.Progress)
	require.NotNil(t, record.UnlockedAt)
	assert.Equal(t, now, *record.UnlockedAt)
	assert.NoError(t, record.Validate())
}

func TestEvaluateCappedProgressHeuristic(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:         "test_champion_bronze",
			Title:        "Bronze Champion",
			Target:       10,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
	}

	// Practice answers do not satisfy the requirement filter, but the display
	// heuristic counts every activity whose achievement family matches by name
	activities := makeActivities(userID, domain.ActivityTypePracticeAnswer, 4, now.AddDate(0, 0, -1))

	records, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.False(t, records[0].IsUnlocked)
	assert.Equal(t, 4, records[0].Progress)

	// With more activities than target, progress caps at target-1 while locked
	many := makeActivities(userID, domain.ActivityTypePracticeAnswer, 25, now.AddDate(0, 0, -1))
	records, err = Evaluate(userID, defs, many, nil, now)
	require.NoError(t, err)
	assert.False(t, records[0].IsUnlocked)
	assert.Equal(t, 9, records[0].Progress)
}

func TestEvaluateUnlockIsMonotonic(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:         "first_test",
			Title:        "First Steps",
			Target:       1,
			Requirement:  domain.RequirementActivityCount,
			ActivityType: domain.ActivityTypeTestCompleted,
		},
	}
	activities := makeActivities(userID, domain.ActivityTypeTestCompleted, 1, now.AddDate(0, 0, -1))

	first, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)
	require.True(t, first[0].IsUnlocked)
	firstUnlockedAt := *first[0].UnlockedAt

	// Re-evaluating later with a superset of activities must not change the
	// unlock state or its timestamp
	later := now.AddDate(0, 0, 3)
	more := append(activities, makeActivities(userID, domain.ActivityTypeTestCompleted, 5, later)...)

	second, err := Evaluate(userID, defs, more, first, later)
	require.NoError(t, err)
	assert.True(t, second[0].IsUnlocked)
	require.NotNil(t, second[0].UnlockedAt)
	assert.Equal(t, firstUnlockedAt, *second[0].UnlockedAt)
}

func TestEvaluateProgressNeverDecreases(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:        "xp_collector",
			Title:       "XP Collector",
			Target:      1000,
			Requirement: domain.RequirementTotalXP,
		},
	}

	existing := []domain.AchievementRecord{
		{
			UserID:          userID,
			AchievementType: "xp_collector",
			Progress:        400,
			Target:          1000,
			CreatedAt:       now.AddDate(0, 0, -30),
		},
	}

	// A history that computes lower than the persisted progress must not
	// lower the displayed value
	activities := makeActivities(userID, domain.ActivityTypePracticeAnswer, 3, now.AddDate(0, 0, -1))

	records, err := Evaluate(userID, defs, activities, existing, now)
	require.NoError(t, err)
	assert.Equal(t, 400, records[0].Progress)
}

func TestEvaluatePerfectScoreRequirement(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:        "hard_perfectionist",
			Title:       "Perfectionist",
			Target:      1,
			Requirement: domain.RequirementPerfectScore,
			Difficulty:  "hard",
		},
	}

	perfectEasy := domain.Activity{
		ID: uuid.New(), UserID: userID, Type: domain.ActivityTypeTestCompleted,
		Score: 100, TotalQuestions: 10, CorrectAnswers: 10, Difficulty: "easy",
		CreatedAt: now.AddDate(0, 0, -2),
	}
	perfectHard := domain.Activity{
		ID: uuid.New(), UserID: userID, Type: domain.ActivityTypeTestCompleted,
		Score: 100, TotalQuestions: 10, CorrectAnswers: 10, Difficulty: "hard",
		CreatedAt: now.AddDate(0, 0, -1),
	}

	records, err := Evaluate(userID, defs, []domain.Activity{perfectEasy}, nil, now)
	require.NoError(t, err)
	assert.False(t, records[0].IsUnlocked, "easy perfect score must not unlock the hard achievement")

	records, err = Evaluate(userID, defs, []domain.Activity{perfectEasy, perfectHard}, nil, now)
	require.NoError(t, err)
	assert.True(t, records[0].IsUnlocked)
}

func TestEvaluateActiveDaysWindow(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := []domain.AchievementDefinition{
		{
			Type:        "week_warrior",
			Title:       "Week Warrior",
			Target:      7,
			Requirement: domain.RequirementActiveDays,
			WindowDays:  7,
		},
	}

	// One activity per day for the 7 days leading up to now
	var activities []domain.Activity
	for i := 0; i < 7; i++ {
		activities = append(activities, domain.Activity{
			ID: uuid.New(), UserID: userID, Type: domain.ActivityTypePracticeAnswer,
			CreatedAt: now.AddDate(0, 0, -i),
		})
	}

	records, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)
	assert.True(t, records[0].IsUnlocked)

	// Activity spread outside the window does not count
	stale := []domain.Activity{
		{ID: uuid.New(), UserID: userID, Type: domain.ActivityTypePracticeAnswer, CreatedAt: now.AddDate(0, 0, -20)},
		{ID: uuid.New(), UserID: userID, Type: domain.ActivityTypePracticeAnswer, CreatedAt: now},
	}
	records, err = Evaluate(userID, defs, stale, nil, now)
	require.NoError(t, err)
	assert.False(t, records[0].IsUnlocked)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	defs := DefaultCatalog()
	activities := makeActivities(userID, domain.ActivityTypeTestCompleted, 12, now.AddDate(0, 0, -3))

	first, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)

	second, err := Evaluate(userID, defs, activities, nil, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateRejectsForeignActivities(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	foreign := makeActivities(uuid.New(), domain.ActivityTypeTestCompleted, 1, now)

	_, err := Evaluate(userID, DefaultCatalog(), foreign, nil, now)
	assert.ErrorIs(t, err, ErrMixedUserActivities)
}

func TestNewlyUnlocked(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	before := []domain.AchievementRecord{
		{UserID: userID, AchievementType: "first_test", IsUnlocked: true, Target: 1},
		{UserID: userID, AchievementType: "test_champion_bronze", IsUnlocked: false, Target: 10},
	}
	after := []domain.AchievementRecord{
		{UserID: userID, AchievementType: "first_test", IsUnlocked: true, Target: 1},
		{UserID: userID, AchievementType: "test_champion_bronze", IsUnlocked: true, Target: 10, UnlockedAt: &now},
		{UserID: userID, AchievementType: "perfect_score", IsUnlocked: true, Target: 1, UnlockedAt: &now},
	}

	fresh := NewlyUnlocked(before, after)
	require.Len(t, fresh, 2)
	assert.Equal(t, "test_champion_bronze", fresh[0].AchievementType)
	assert.Equal(t, "perfect_score", fresh[1].AchievementType)
}

func TestDefaultCatalogIsValid(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, def := range DefaultCatalog() {
		assert.NoError(t, def.Validate(), "definition %q", def.Type)
		assert.False(t, seen[def.Type], "duplicate achievement type %q", def.Type)
		seen[def.Type] = true
	}
}
