package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/api/shared"
	"github.com/phrazzld/lexio-api/internal/domain"
	"github.com/phrazzld/lexio-api/internal/platform/logger"
	"github.com/phrazzld/lexio-api/internal/redact"
	"github.com/phrazzld/lexio-api/internal/service/progress"
)

// defaultDueWordsLimit caps GET /words/due responses when the client does not
// ask for a specific page size.
const defaultDueWordsLimit = 20

// maxDueWordsLimit is the hard ceiling on a single due-words page.
const maxDueWordsLimit = 100

// AnswerRequest represents the request body for recording an answer.
// WasCorrect is a pointer so that an explicit false survives the required check.
type AnswerRequest struct {
	WordID          string `json:"word_id" validate:"required,uuid"`
	WasCorrect      *bool  `json:"was_correct" validate:"required"`
	GameType        string `json:"game_type" validate:"omitempty,max=64"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	DurationSeconds int    `json:"duration_seconds" validate:"omitempty,min=0"`
}

// WordProgressResponse represents the review schedule state for one word.
type WordProgressResponse struct {
	UserID        string    `json:"user_id"`
	WordID        string    `json:"word_id"`
	MemoryLevel   int       `json:"memory_level"`
	NextReviewAt  time.Time `json:"next_review_at"`
	LastStudiedAt time.Time `json:"last_studied_at"`
	ReviewCount   int       `json:"review_count"`
	CorrectCount  int       `json:"correct_count"`
	WrongCount    int       `json:"wrong_count"`
}

// StreakResponse represents a user's streak state.
type StreakResponse struct {
	UserID           string     `json:"user_id"`
	Current          int        `json:"current"`
	Longest          int        `json:"longest"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// AchievementResponse represents one achievement record.
type AchievementResponse struct {
	AchievementType string     `json:"achievement_type"`
	Progress        int        `json:"progress"`
	Target          int        `json:"target"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
}

// RecordAnswerResponse represents the full outcome of one recorded answer.
type RecordAnswerResponse struct {
	Progress      WordProgressResponse  `json:"progress"`
	Streak        StreakResponse        `json:"streak"`
	NewlyUnlocked []AchievementResponse `json:"newly_unlocked"`
}

// ProgressHandler handles learning-progress HTTP requests
type ProgressHandler struct {
	progressService progress.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(
	progressService progress.ProgressService,
	logger *slog.Logger,
) *ProgressHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// RecordAnswer handles POST /users/{id}/answers requests
// It records one answered word and returns the updated schedule, streak and
// any freshly unlocked achievements.
func (h *ProgressHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid user ID in path", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	// Parse request body
	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Validate request
	if err := shared.ValidateRequest(&req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	wordID, err := uuid.Parse(req.WordID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid word ID format")
		return
	}

	result, err := h.progressService.RecordAnswer(
		r.Context(),
		userID,
		wordID,
		progress.Answer{
			WasCorrect:      *req.WasCorrect,
			GameType:        req.GameType,
			Difficulty:      req.Difficulty,
			DurationSeconds: req.DurationSeconds,
		},
		time.Now().UTC(),
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to record answer"
		}

		// Log the full error but only send sanitized message to client
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("answer recorded",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.Int("memory_level", result.Progress.MemoryLevel),
		slog.Int("newly_unlocked", len(result.NewlyUnlocked)))
	shared.RespondWithJSON(w, r, http.StatusOK, recordAnswerToResponse(result))
}

// GetDueWords handles GET /users/{id}/words/due requests
// It lists the words whose next review time has passed, most overdue first.
func (h *ProgressHandler) GetDueWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	limit := defaultDueWordsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		if parsed > maxDueWordsLimit {
			parsed = maxDueWordsLimit
		}
		limit = parsed
	}

	due, err := h.progressService.GetDueWords(r.Context(), userID, time.Now().UTC(), limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get due words"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	response := make([]WordProgressResponse, 0, len(due))
	for i := range due {
		response = append(response, progressToResponse(&due[i]))
	}

	log.Debug("due words retrieved",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(response)))
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetStreak handles GET /users/{id}/streak requests
func (h *ProgressHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	streak, err := h.progressService.GetStreak(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get streak"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streakToResponse(streak))
}

// GetAchievements handles GET /users/{id}/achievements requests
func (h *ProgressHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	records, err := h.progressService.GetAchievements(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get achievements"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	response := make([]AchievementResponse, 0, len(records))
	for i := range records {
		response = append(response, achievementToResponse(&records[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

func progressToResponse(p *domain.WordProgress) WordProgressResponse {
	return WordProgressResponse{
		UserID:        p.UserID.String(),
		WordID:        p.WordID.String(),
		MemoryLevel:   p.MemoryLevel,
		NextReviewAt:  p.NextReviewAt,
		LastStudiedAt: p.LastStudiedAt,
		ReviewCount:   p.ReviewCount,
		CorrectCount:  p.CorrectCount,
		WrongCount:    p.WrongCount,
	}
}

func streakToResponse(s *domain.Streak) StreakResponse {
	response := StreakResponse{
		UserID:  s.UserID.String(),
		Current: s.Current,
		Longest: s.Longest,
	}
	if !s.LastActivityDate.IsZero() {
		d := s.LastActivityDate
		response.LastActivityDate = &d
	}
	return response
}

func achievementToResponse(a *domain.AchievementRecord) AchievementResponse {
	return AchievementResponse{
		AchievementType: a.AchievementType,
		Progress:        a.Progress,
		Target:          a.Target,
		IsUnlocked:      a.IsUnlocked,
		UnlockedAt:      a.UnlockedAt,
	}
}

func recordAnswerToResponse(result *progress.RecordAnswerResult) RecordAnswerResponse {
	response := RecordAnswerResponse{
		Progress:      progressToResponse(result.Progress),
		Streak:        streakToResponse(result.Streak),
		NewlyUnlocked: make([]AchievementResponse, 0, len(result.NewlyUnlocked)),
	}
	for i := range result.NewlyUnlocked {
		response.NewlyUnlocked = append(response.NewlyUnlocked, achievementToResponse(&result.NewlyUnlocked[i]))
	}
	return response
}
