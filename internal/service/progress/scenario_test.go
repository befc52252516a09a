package progress_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/domain/achievement"
	"github.com/phrazzld/lexio-api/internal/domain/srs"
	"github.com/phrazzld/lexio-api/internal/events"
	"github.com/phrazzld/lexio-api/internal/service/progress"
	"github.com/phrazzld/lexio-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory store fakes. Unlike the testify mocks in service_test.go these
// carry state across calls, which lets a test walk a user through several
// days of answers and observe the accumulated effect.

type fakeProgressStore struct {
	mu      sync.Mutex
	records map[string]domain.WordProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]domain.WordProgress)}
}

func progressKey(userID, wordID uuid.UUID) string {
	return userID.String() + "/" + wordID.String()
}

func (f *fakeProgressStore) Create(ctx context.Context, p *domain.WordProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey(p.UserID, p.WordID)
	if _, ok := f.records[key]; ok {
		return store.ErrDuplicate
	}
	f.records[key] = *p
	return nil
}

func (f *fakeProgressStore) Get(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[progressKey(userID, wordID)]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return &record, nil
}

func (f *fakeProgressStore) GetForUpdate(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordProgress, error) {
	return f.Get(ctx, userID, wordID)
}

func (f *fakeProgressStore) Update(ctx context.Context, p *domain.WordProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey(p.UserID, p.WordID)
	if _, ok := f.records[key]; !ok {
		return store.ErrProgressNotFound
	}
	f.records[key] = *p
	return nil
}

func (f *fakeProgressStore) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.WordProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []domain.WordProgress
	for _, record := range f.records {
		if record.UserID == userID && !record.NextReviewAt.After(now) {
			due = append(due, record)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeProgressStore) WithTx(tx *sql.Tx) store.WordProgressStore { return f }

type fakeStreakStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.Streak
}

func newFakeStreakStore() *fakeStreakStore {
	return &fakeStreakStore{records: make(map[uuid.UUID]domain.Streak)}
}

func (f *fakeStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	return &record, nil
}

func (f *fakeStreakStore) Upsert(ctx context.Context, s *domain.Streak) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[s.UserID] = *s
	return nil
}

func (f *fakeStreakStore) WithTx(tx *sql.Tx) store.StreakStore { return f }

type fakeActivityStore struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (f *fakeActivityStore) Append(ctx context.Context, a *domain.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *a)
	return nil
}

func (f *fakeActivityStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Activity
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return f }

type fakeAchievementStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]map[string]domain.AchievementRecord
}

func newFakeAchievementStore() *fakeAchievementStore {
	return &fakeAchievementStore{records: make(map[uuid.UUID]map[string]domain.AchievementRecord)}
}

func (f *fakeAchievementStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.AchievementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byType := f.records[userID]
	out := make([]domain.AchievementRecord, 0, len(byType))
	for _, record := range byType {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AchievementType < out[j].AchievementType
	})
	return out, nil
}

func (f *fakeAchievementStore) Upsert(ctx context.Context, r *domain.AchievementRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	byType, ok := f.records[r.UserID]
	if !ok {
		byType = make(map[string]domain.AchievementRecord)
		f.records[r.UserID] = byType
	}
	byType[r.AchievementType] = *r
	return nil
}

func (f *fakeAchievementStore) UpsertAll(
	ctx context.Context,
	rs []domain.AchievementRecord,
) error {
	for i := range rs {
		if err := f.Upsert(ctx, &rs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore { return f }

// recordingHandler captures emitted events for assertions.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.NotificationEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.NotificationEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

type scenarioEnv struct {
	service       progress.ProgressService
	dbMock        sqlmock.Sqlmock
	progressStore *fakeProgressStore
	streakStore   *fakeStreakStore
	activityStore *fakeActivityStore
	achieveStore  *fakeAchievementStore
	handler       *recordingHandler
}

func newScenarioEnv(t *testing.T) *scenarioEnv {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := events.NewInMemoryEventEmitter(discard)
	handler := &recordingHandler{}
	emitter.RegisterHandler(handler)

	progressStore := newFakeProgressStore()
	streakStore := newFakeStreakStore()
	activityStore := &fakeActivityStore{}
	achieveStore := newFakeAchievementStore()

	svc := progress.NewProgressService(
		db,
		progressStore,
		streakStore,
		activityStore,
		achieveStore,
		srs.NewDefaultService(),
		achievement.DefaultCatalog(),
		emitter,
		discard,
	)

	return &scenarioEnv{
		service:       svc,
		dbMock:        dbMock,
		progressStore: progressStore,
		streakStore:   streakStore,
		activityStore: activityStore,
		achieveStore:  achieveStore,
		handler:       handler,
	}
}

// expectCommits queues transaction expectations for n successful answers.
func (e *scenarioEnv) expectCommits(n int) {
	for i := 0; i < n; i++ {
		e.dbMock.ExpectBegin()
		e.dbMock.ExpectCommit()
	}
}

func TestRecordAnswerMultiDayScenario(t *testing.T) {
	t.Parallel()

	env := newScenarioEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	wordID := uuid.New()
	answer := func(correct bool) progress.Answer {
		return progress.Answer{WasCorrect: correct, GameType: "flashcards"}
	}

	env.expectCommits(4)

	// Day 1: first answer, correct. The word enters the schedule at the
	// lowest level, due tomorrow.
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	result, err := env.service.RecordAnswer(ctx, userID, wordID, answer(true), day1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Progress.MemoryLevel)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Progress.NextReviewAt)
	assert.Equal(t, 1, result.Streak.Current)
	assert.Empty(t, result.NewlyUnlocked)

	// Day 2: correct again. Level climbs to 2, due in three days, and the
	// streak extends.
	day2 := time.Date(2024, 1, 2, 11, 30, 0, 0, time.UTC)
	result, err = env.service.RecordAnswer(ctx, userID, wordID, answer(true), day2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Progress.MemoryLevel)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), result.Progress.NextReviewAt)
	assert.Equal(t, 2, result.Streak.Current)
	assert.Equal(t, 2, result.Streak.Longest)

	// Day 5: wrong. The level resets to 1 regardless of how high it was, and
	// the two-day gap since day 2 broke the streak.
	day5 := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	result, err = env.service.RecordAnswer(ctx, userID, wordID, answer(false), day5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Progress.MemoryLevel)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), result.Progress.NextReviewAt)
	assert.Equal(t, 3, result.Progress.ReviewCount)
	assert.Equal(t, 2, result.Progress.CorrectCount)
	assert.Equal(t, 1, result.Progress.WrongCount)
	assert.Equal(t, 1, result.Streak.Current)
	assert.Equal(t, 2, result.Streak.Longest, "longest streak survives the break")

	// Later on day 5: correct. The level climbs again from the reset point
	// and the streak does not double-count the day.
	day5Later := day5.Add(2 * time.Hour)
	result, err = env.service.RecordAnswer(ctx, userID, wordID, answer(true), day5Later)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Progress.MemoryLevel)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), result.Progress.NextReviewAt)
	assert.Equal(t, 1, result.Streak.Current)

	// Four practice answers: three correct at 10 XP, one wrong at 2 XP.
	history, err := env.activityStore.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	totalXP := 0
	for _, entry := range history {
		totalXP += entry.XPEarned
	}
	assert.Equal(t, 32, totalXP)

	// Achievement records exist for the whole catalog, none unlocked by
	// practice answers alone, and the count-family display progress tracks
	// the activity count.
	achievements, err := env.service.GetAchievements(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, achievements, len(achievement.DefaultCatalog()))
	for _, record := range achievements {
		assert.False(t, record.IsUnlocked, record.AchievementType)
		if record.AchievementType == "test_champion_bronze" {
			assert.Equal(t, 4, record.Progress)
		}
		if record.AchievementType == "xp_collector" {
			assert.Equal(t, 32, record.Progress)
		}
	}
	assert.Empty(t, env.handler.events)

	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestRecordAnswerEmitsUnlockNotifications(t *testing.T) {
	t.Parallel()

	env := newScenarioEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	wordID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Seed a completed test with a perfect score; the next recorded answer
	// triggers evaluation over this history.
	seeded := domain.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           domain.ActivityTypeTestCompleted,
		Score:          100,
		TotalQuestions: 10,
		CorrectAnswers: 10,
		Percentage:     100,
		XPEarned:       50,
		CreatedAt:      now.Add(-time.Hour),
	}
	require.NoError(t, env.activityStore.Append(ctx, &seeded))

	env.expectCommits(1)

	result, err := env.service.RecordAnswer(
		ctx, userID, wordID, progress.Answer{WasCorrect: true}, now)
	require.NoError(t, err)

	unlockedTypes := make([]string, 0, len(result.NewlyUnlocked))
	for _, record := range result.NewlyUnlocked {
		require.NotNil(t, record.UnlockedAt)
		assert.Equal(t, now, *record.UnlockedAt)
		unlockedTypes = append(unlockedTypes, record.AchievementType)
	}
	assert.ElementsMatch(t, []string{"first_test", "perfect_score"}, unlockedTypes)

	// One notification per fresh unlock, carrying the catalog metadata.
	require.Len(t, env.handler.events, 2)
	for _, event := range env.handler.events {
		assert.Equal(t, userID, event.UserID)
		assert.Equal(t, events.TypeAchievementUnlocked, event.Type)

		var payload events.AchievementUnlockedPayload
		require.NoError(t, event.UnmarshalPayload(&payload))
		assert.Contains(t, []string{"first_test", "perfect_score"}, payload.AchievementType)
		assert.NotEmpty(t, payload.Title)
	}

	// A second answer the same day must not re-announce the unlocks.
	env.expectCommits(1)
	result, err = env.service.RecordAnswer(
		ctx, userID, wordID, progress.Answer{WasCorrect: true}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, result.NewlyUnlocked)
	require.Len(t, env.handler.events, 2)

	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}
