package engine

import (
	"time"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// DateLayout is the calendar-date format used for habit entries.
const DateLayout = "2006-01-02"

// IsEntryComplete applies the habit's completion predicate to one entry.
func IsEntryComplete(h storage.Habit, e storage.HabitEntry) bool {
	switch HabitType(h.Type) {
	case HabitCounter:
		if h.TargetValue != nil {
			return e.Value >= *h.TargetValue
		}
		return e.Value > 0
	default:
		return e.Completed
	}
}

// ComputeStreak walks back one day at a time from today and counts
// consecutive dates whose entry satisfies the completion predicate.
// A date without an entry ends the run. When several entries share a
// date, the one created last is used.
func ComputeStreak(h storage.Habit, entries []storage.HabitEntry, today time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	latest := make(map[string]storage.HabitEntry, len(entries))
	for _, e := range entries {
		prev, ok := latest[e.Date]
		if !ok || e.CreatedAt.After(prev.CreatedAt) || (e.CreatedAt.Equal(prev.CreatedAt) && e.ID > prev.ID) {
			latest[e.Date] = e
		}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	streak := 0
	for {
		e, ok := latest[day.Format(DateLayout)]
		if !ok || !IsEntryComplete(h, e) {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
