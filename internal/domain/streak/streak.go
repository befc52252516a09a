// Package streak implements daily streak tracking over calendar days.
//
// Streak arithmetic is purely a function of UTC day boundaries: repeated
// activity inside one day is idempotent, activity on the next day extends the
// run, and any larger gap breaks it. All functions follow the immutable
// update pattern and never modify the record they are given.
package streak

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexio-api/internal/domain"
)

// Advance computes the streak state after activity at the given time.
//
// Parameters:
//   - record: The user's current streak, or nil when none exists yet
//   - now: The time of the activity being recorded
//
// Returns:
//   - A new Streak object reflecting the activity
//
// Behavior:
//   - nil record: a fresh streak of 1 starting today
//   - same calendar day as the last activity: unchanged copy (idempotent)
//   - exactly one day later: current extends by one, longest tracks the max
//   - more than one day later: the run breaks, current resets to 1, longest keeps
//   - now earlier than the last recorded day: unchanged copy - out-of-order
//     activity must never corrupt streak state
func Advance(record *domain.Streak, userID uuid.UUID, now time.Time) *domain.Streak {
	today := truncateToDay(now)

	if record == nil {
		return &domain.Streak{
			UserID:           userID,
			Current:          1,
			Longest:          1,
			LastActivityDate: today,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	updated := &domain.Streak{
		UserID:           record.UserID,
		Current:          record.Current,
		Longest:          record.Longest,
		LastActivityDate: record.LastActivityDate,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}

	lastDay := truncateToDay(record.LastActivityDate)
	gapDays := daysBetween(lastDay, today)

	switch {
	case gapDays <= 0:
		// Same day or clock skew: leave the streak untouched
		return updated
	case gapDays == 1:
		updated.Current++
		if updated.Current > updated.Longest {
			updated.Longest = updated.Current
		}
	default:
		updated.Current = 1
	}

	updated.LastActivityDate = today
	updated.UpdatedAt = now
	return updated
}

// truncateToDay drops the time-of-day component, keeping the UTC date.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of calendar days from a to b.
// Both inputs must already be day-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
