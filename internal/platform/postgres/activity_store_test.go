package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var activityColumns = []string{
	"id", "user_id", "type", "game_type", "category_id", "difficulty", "score",
	"total_questions", "correct_answers", "percentage", "duration_seconds",
	"xp_earned", "created_at",
}

func TestActivityStoreAppend(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresActivityStore(db, nil)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	activity, err := domain.NewActivity(uuid.New(), domain.ActivityTypeTestCompleted, 10, 8, now)
	require.NoError(t, err)
	activity.GameType = "flashcards"
	activity.XPEarned = 40

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities")).
		WithArgs(
			activity.ID, activity.UserID, activity.Type, activity.GameType,
			activity.CategoryID, activity.Difficulty, activity.Score,
			activity.TotalQuestions, activity.CorrectAnswers, activity.Percentage,
			activity.DurationSeconds, activity.XPEarned, activity.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Append(context.Background(), activity))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityStoreAppendRejectsInvalid(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresActivityStore(db, nil)

	err = s.Append(context.Background(), &domain.Activity{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   "bogus_type",
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestActivityStoreListByUser(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresActivityStore(db, nil)
	userID := uuid.New()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(activityColumns).
		AddRow(uuid.New(), userID, domain.ActivityTypePracticeAnswer, "flashcards",
			nil, nil, 100, 1, 1, 100.0, 4, 10, now.Add(-time.Hour)).
		AddRow(uuid.New(), userID, domain.ActivityTypeTestCompleted, nil,
			nil, "hard", 80, 10, 8, 80.0, 120, 40, now)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC")).
		WithArgs(userID).
		WillReturnRows(rows)

	activities, err := s.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, domain.ActivityTypePracticeAnswer, activities[0].Type)
	assert.Equal(t, "flashcards", activities[0].GameType)
	assert.Empty(t, activities[0].Difficulty)

	assert.Equal(t, domain.ActivityTypeTestCompleted, activities[1].Type)
	assert.Empty(t, activities[1].GameType)
	assert.Equal(t, "hard", activities[1].Difficulty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityStoreListByUserEmpty(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresActivityStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activities")).
		WillReturnRows(sqlmock.NewRows(activityColumns))

	activities, err := s.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}
