package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/domain/achievement"
	"github.com/phrazzld/lexio-api/internal/domain/srs"
	"github.com/phrazzld/lexio-api/internal/domain/streak"
	"github.com/phrazzld/lexio-api/internal/events"
	"github.com/phrazzld/lexio-api/internal/platform/logger"
	"github.com/phrazzld/lexio-api/internal/store"
)

// XP awarded per recorded answer.
const (
	xpCorrectAnswer = 10
	xpWrongAnswer   = 2
)

// Verify interface compliance at compile time
var _ ProgressService = (*progressServiceImpl)(nil)

// progressServiceImpl implements the ProgressService interface.
type progressServiceImpl struct {
	db               *sql.DB
	progressStore    store.WordProgressStore
	streakStore      store.StreakStore
	activityStore    store.ActivityStore
	achievementStore store.AchievementStore
	srsService       srs.Service
	catalog          []domain.AchievementDefinition
	catalogByType    map[string]domain.AchievementDefinition
	emitter          events.EventEmitter
	logger           *slog.Logger

	// pairLocks serializes read-modify-write per (user, word) pair;
	// userLocks serializes streak and achievement evaluation per user.
	pairLocks keyedMutex
	userLocks keyedMutex
}

// NewProgressService creates a new ProgressService implementation.
// The emitter may be nil, in which case unlock notifications are skipped.
func NewProgressService(
	db *sql.DB,
	progressStore store.WordProgressStore,
	streakStore store.StreakStore,
	activityStore store.ActivityStore,
	achievementStore store.AchievementStore,
	srsService srs.Service,
	catalog []domain.AchievementDefinition,
	emitter events.EventEmitter,
	logger *slog.Logger,
) ProgressService {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if streakStore == nil {
		panic("streakStore cannot be nil")
	}
	if activityStore == nil {
		panic("activityStore cannot be nil")
	}
	if achievementStore == nil {
		panic("achievementStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	byType := make(map[string]domain.AchievementDefinition, len(catalog))
	for _, def := range catalog {
		byType[def.Type] = def
	}

	return &progressServiceImpl{
		db:               db,
		progressStore:    progressStore,
		streakStore:      streakStore,
		activityStore:    activityStore,
		achievementStore: achievementStore,
		srsService:       srsService,
		catalog:          catalog,
		catalogByType:    byType,
		emitter:          emitter,
		logger:           logger.With(slog.String("component", "progress_service")),
	}
}

// RecordAnswer implements ProgressService.RecordAnswer.
func (s *progressServiceImpl) RecordAnswer(
	ctx context.Context,
	userID, wordID uuid.UUID,
	answer Answer,
	now time.Time,
) (*RecordAnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, ErrInvalidUser
	}
	if wordID == uuid.Nil {
		return nil, ErrInvalidWord
	}
	if now.IsZero() {
		return nil, fmt.Errorf("%w: zero timestamp", ErrInvalidAnswer)
	}

	log.Debug("recording answer",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.Bool("was_correct", answer.WasCorrect))

	// Serialize concurrent answers for the same (user, word) pair; answers
	// for other pairs and other users proceed in parallel. The nested user
	// lock additionally serializes streak and achievement updates across a
	// user's pairs.
	unlockPair := s.pairLocks.Lock(userID.String() + "/" + wordID.String())
	defer unlockPair()
	unlockUser := s.userLocks.Lock(userID.String())
	defer unlockUser()

	var result *RecordAnswerResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var txErr error
		result, txErr = s.recordAnswerTx(ctx, tx, userID, wordID, answer, now)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrCorruptProgress) ||
			errors.Is(err, ErrTimestampOutOfOrder) ||
			errors.Is(err, ErrInvalidAnswer) {
			return nil, err
		}

		log.Error("failed to record answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()))
		return nil, NewRecordAnswerError("transaction failed", err)
	}

	// Notifications are best-effort: the state transition has committed, so
	// a delivery failure is logged rather than surfaced.
	s.notifyUnlocks(ctx, userID, result.NewlyUnlocked)

	log.Debug("answer recorded",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.Int("memory_level", result.Progress.MemoryLevel),
		slog.Time("next_review_at", result.Progress.NextReviewAt),
		slog.Int("streak_current", result.Streak.Current),
		slog.Int("newly_unlocked", len(result.NewlyUnlocked)))

	return result, nil
}

// recordAnswerTx runs the full orchestration inside one transaction.
func (s *progressServiceImpl) recordAnswerTx(
	ctx context.Context,
	tx *sql.Tx,
	userID, wordID uuid.UUID,
	answer Answer,
	now time.Time,
) (*RecordAnswerResult, error) {
	progressStore := s.progressStore.WithTx(tx)
	streakStore := s.streakStore.WithTx(tx)
	activityStore := s.activityStore.WithTx(tx)
	achievementStore := s.achievementStore.WithTx(tx)

	// Step 1: fetch prior progress; absence means this is the first answer
	// for the pair (upsert semantics).
	prior, err := progressStore.GetForUpdate(ctx, userID, wordID)
	isNew := false
	if err != nil {
		if !errors.Is(err, store.ErrProgressNotFound) {
			return nil, fmt.Errorf("failed to get word progress: %w", err)
		}
		isNew = true
		prior, err = domain.NewWordProgress(userID, wordID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create word progress: %w", err)
		}
	}

	if !isNew {
		if err := prior.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptProgress, err)
		}
		if now.Before(prior.LastStudiedAt) {
			return nil, ErrTimestampOutOfOrder
		}
	}

	// Step 2: compute the new review schedule.
	updated, err := s.srsService.CalculateNextReview(prior, answer.WasCorrect, now)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate next review: %w", err)
	}

	// Step 3: advance the daily streak.
	priorStreak, err := streakStore.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrStreakNotFound) {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	updatedStreak := streak.Advance(priorStreak, userID, now)
	if err := streakStore.Upsert(ctx, updatedStreak); err != nil {
		return nil, fmt.Errorf("failed to upsert streak: %w", err)
	}

	// Step 4: append the activity entry for this answer.
	activity, err := s.buildActivity(userID, answer, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	if err := activityStore.Append(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}

	// Step 5: re-evaluate achievements against the updated history.
	history, err := activityStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	existing, err := achievementStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	evaluated, err := achievement.Evaluate(userID, s.catalog, history, existing, now)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}
	if err := achievementStore.UpsertAll(ctx, evaluated); err != nil {
		return nil, fmt.Errorf("failed to upsert achievements: %w", err)
	}

	// Step 6: persist the new progress and diff the unlocks.
	if isNew {
		if err := progressStore.Create(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to create word progress: %w", err)
		}
	} else {
		if err := progressStore.Update(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to update word progress: %w", err)
		}
	}

	return &RecordAnswerResult{
		Progress:      updated,
		Streak:        updatedStreak,
		Activity:      activity,
		Achievements:  evaluated,
		NewlyUnlocked: achievement.NewlyUnlocked(existing, evaluated),
	}, nil
}

// buildActivity constructs the activity entry for one answered word.
func (s *progressServiceImpl) buildActivity(
	userID uuid.UUID,
	answer Answer,
	now time.Time,
) (*domain.Activity, error) {
	correct := 0
	xp := xpWrongAnswer
	if answer.WasCorrect {
		correct = 1
		xp = xpCorrectAnswer
	}

	activity, err := domain.NewActivity(userID, domain.ActivityTypePracticeAnswer, 1, correct, now)
	if err != nil {
		return nil, err
	}

	activity.GameType = answer.GameType
	activity.Difficulty = answer.Difficulty
	activity.DurationSeconds = answer.DurationSeconds
	activity.XPEarned = xp
	return activity, nil
}

// notifyUnlocks emits one notification event per newly unlocked achievement.
func (s *progressServiceImpl) notifyUnlocks(
	ctx context.Context,
	userID uuid.UUID,
	unlocked []domain.AchievementRecord,
) {
	if s.emitter == nil || len(unlocked) == 0 {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	for _, record := range unlocked {
		def := s.catalogByType[record.AchievementType]
		event, err := events.NewNotificationEvent(userID, events.TypeAchievementUnlocked,
			events.AchievementUnlockedPayload{
				AchievementType: record.AchievementType,
				Title:           def.Title,
				Message:         def.Description,
				Icon:            def.Icon,
			})
		if err != nil {
			log.Error("failed to build unlock notification",
				slog.String("error", err.Error()),
				slog.String("achievement_type", record.AchievementType))
			continue
		}

		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Error("failed to emit unlock notification",
				slog.String("error", err.Error()),
				slog.String("achievement_type", record.AchievementType))
		}
	}
}

// GetDueWords implements ProgressService.GetDueWords.
func (s *progressServiceImpl) GetDueWords(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]domain.WordProgress, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUser
	}

	due, err := s.progressStore.GetDue(ctx, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due words: %w", err)
	}
	return due, nil
}

// GetStreak implements ProgressService.GetStreak.
// A user with no recorded activity gets a zero-value streak.
func (s *progressServiceImpl) GetStreak(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Streak, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUser
	}

	record, err := s.streakStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrStreakNotFound) {
			return &domain.Streak{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return record, nil
}

// GetAchievements implements ProgressService.GetAchievements.
func (s *progressServiceImpl) GetAchievements(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.AchievementRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUser
	}

	records, err := s.achievementStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return records, nil
}
