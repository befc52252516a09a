package srs

import (
	"time"

	"github.com/phrazzld/lexio-api/internal/domain"
)

// calculateNewLevel determines the new memory level based on the answer outcome.
//
// The memory level represents how firmly the user has retained a word - higher
// levels mean longer gaps until the next review. The transition rule is
// intentionally asymmetric: correct answers climb one step at a time while a
// single wrong answer collapses the level all the way back down.
//
// Parameters:
//   - priorLevel: The current memory level, or nil when no progress exists yet
//     (a first answer is treated as coming from level 0)
//   - wasCorrect: Whether the user answered the word correctly
//   - params: Configuration parameters for the scheduling algorithm
//
// Returns:
//   - The new memory level, always within [params.ResetLevel, params.MaxMemoryLevel]
//
// Algorithm behavior:
//   - Correct answer: level rises by one, capped at params.MaxMemoryLevel
//   - Wrong answer: level resets to params.ResetLevel regardless of the prior
//     level - a punitive reset, not a gradual decay
//   - nil priorLevel with a correct answer lands on level 1 (0 + 1)
func calculateNewLevel(priorLevel *int, wasCorrect bool, params *Params) int {
	if !wasCorrect {
		return params.ResetLevel
	}

	prior := 0
	if priorLevel != nil {
		prior = *priorLevel
	}

	newLevel := prior + 1
	if newLevel > params.MaxMemoryLevel {
		newLevel = params.MaxMemoryLevel
	}

	return newLevel
}

// calculateNextReviewDate determines when the word should next be reviewed.
//
// The interval is looked up from the fixed table keyed by the new memory
// level and applied with calendar-day arithmetic: the review time is first
// truncated to its UTC day boundary, then the interval is added with AddDate.
// The due date therefore always lands on a day boundary, independent of the
// time of day the review occurred.
//
// Parameters:
//   - newLevel: The memory level produced by calculateNewLevel
//   - now: The current time, usually the time when the answer was recorded
//   - params: Configuration parameters for the scheduling algorithm
//
// Returns:
//   - A time.Time at a UTC midnight boundary when the word is next due
func calculateNextReviewDate(newLevel int, now time.Time, params *Params) time.Time {
	intervalDays, ok := params.ReviewIntervals[newLevel]
	if !ok {
		// Levels missing from the table fall back to the longest configured
		// gap, so a sparse custom table can never schedule a zero-day review.
		for _, days := range params.ReviewIntervals {
			if days > intervalDays {
				intervalDays = days
			}
		}
	}

	day := now.UTC()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, intervalDays)
}

// calculateNextProgress creates a new WordProgress with updated values based on the answer.
//
// This function orchestrates the full process of calculating the next state of
// a word after an answer, following immutability principles by creating a new
// progress object rather than modifying the existing one.
//
// Parameters:
//   - progress: The current WordProgress object
//   - wasCorrect: Whether the user answered the word correctly
//   - now: The current time, usually the time when the answer was recorded
//   - params: Configuration parameters for the scheduling algorithm
//
// Returns:
//   - A new WordProgress object with updated values
//
// Algorithm behavior:
//   - Creates a complete copy of the original progress to maintain immutability
//   - Increments review count and the matching correct/wrong counter
//   - Updates last studied time to now
//   - Computes the new memory level and next review date from the prior level
//   - Updates the updated timestamp to now
func calculateNextProgress(
	progress *domain.WordProgress,
	wasCorrect bool,
	now time.Time,
	params *Params,
) *domain.WordProgress {
	newProgress := &domain.WordProgress{
		UserID:        progress.UserID,
		WordID:        progress.WordID,
		MemoryLevel:   progress.MemoryLevel,
		NextReviewAt:  progress.NextReviewAt,
		LastStudiedAt: progress.LastStudiedAt,
		ReviewCount:   progress.ReviewCount,
		CorrectCount:  progress.CorrectCount,
		WrongCount:    progress.WrongCount,
		CreatedAt:     progress.CreatedAt,
		UpdatedAt:     progress.UpdatedAt,
	}

	newProgress.ReviewCount++
	if wasCorrect {
		newProgress.CorrectCount++
	} else {
		newProgress.WrongCount++
	}

	newProgress.LastStudiedAt = now

	// A record with no recorded reviews has no prior level yet; the first
	// answer transitions from the implicit level 0.
	var priorLevel *int
	if progress.ReviewCount > 0 {
		level := progress.MemoryLevel
		priorLevel = &level
	}
	newProgress.MemoryLevel = calculateNewLevel(priorLevel, wasCorrect, params)
	newProgress.NextReviewAt = calculateNextReviewDate(newProgress.MemoryLevel, now, params)
	newProgress.UpdatedAt = now

	return newProgress
}
