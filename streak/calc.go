// Package streak derives streak state from ledger entries. Everything here
// is a pure function over a slice of entries: deterministic, re-runnable,
// and safe to call with empty input, which yields zero/false baselines.
package streak

import (
	"sort"
	"time"

	"github.com/oceanwatch/tidestreak/models"
)

// Milestones is the fixed ascending milestone ladder, in days.
var Milestones = []int{7, 30, 100, 365, 1000}

// satisfiedDays builds a set of day keys that count toward a streak.
func satisfiedDays(entries []models.StreakEntry) map[string]bool {
	days := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Satisfies() {
			days[e.DateKey()] = true
		}
	}
	return days
}

// CurrentStreak walks backward day by day from asOf and counts consecutive
// satisfied days. An unsatisfied asOf day does not break the run by itself:
// a streak kept alive through yesterday still stands until the day is
// actually missed, so the walk may start one day back.
func CurrentStreak(entries []models.StreakEntry, asOf time.Time) int {
	days := satisfiedDays(entries)
	if len(days) == 0 {
		return 0
	}

	cursor := models.Day(asOf)
	if !days[cursor.Format(models.DayFormat)] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	count := 0
	for days[cursor.Format(models.DayFormat)] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// BestStreak scans all satisfied days in chronological order and returns the
// longest consecutive-day run. Entries are sparse, so gaps are detected by
// date arithmetic rather than by entry order.
func BestStreak(entries []models.StreakEntry) int {
	days := satisfiedDays(entries)
	if len(days) == 0 {
		return 0
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, run := 0, 0
	var prev time.Time
	for i, k := range keys {
		day, err := time.Parse(models.DayFormat, k)
		if err != nil {
			continue
		}
		if i == 0 || day.Sub(prev) > 24*time.Hour {
			run = 1
		} else {
			run++
		}
		if run > best {
			best = run
		}
		prev = day
	}
	return best
}

// TodayCompleted reports whether a satisfying entry exists for the given day.
func TodayCompleted(entries []models.StreakEntry, today time.Time) bool {
	key := models.Day(today).Format(models.DayFormat)
	for _, e := range entries {
		if e.DateKey() == key && e.Satisfies() {
			return true
		}
	}
	return false
}

// NextMilestone returns the smallest milestone strictly greater than the
// current streak. ok is false past the top of the ladder; callers should
// then treat progress as complete against the final milestone.
func NextMilestone(currentStreak int) (int, bool) {
	for _, m := range Milestones {
		if m > currentStreak {
			return m, true
		}
	}
	return 0, false
}

// MilestoneReached reports whether the streak landed exactly on a milestone,
// which is the celebratory signal the caller surfaces once.
func MilestoneReached(currentStreak int) (int, bool) {
	for _, m := range Milestones {
		if m == currentStreak {
			return m, true
		}
	}
	return 0, false
}
