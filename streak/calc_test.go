package streak

import (
	"testing"
	"time"

	"github.com/oceanwatch/tidestreak/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(date string, completed, lifeline bool) models.StreakEntry {
	return models.StreakEntry{
		Category:     models.CategoryPlasticFree,
		EntryDate:    day(date),
		Completed:    completed,
		LifelineUsed: lifeline,
	}
}

func TestCurrentStreakEmptyLedger(t *testing.T) {
	if got := CurrentStreak(nil, day("2024-03-10")); got != 0 {
		t.Fatalf("expected 0 for empty ledger, got %d", got)
	}
}

func TestCurrentStreakConsecutiveDays(t *testing.T) {
	entries := []models.StreakEntry{
		entry("2024-03-08", true, false),
		entry("2024-03-09", true, false),
		entry("2024-03-10", true, false),
	}
	if got := CurrentStreak(entries, day("2024-03-10")); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestCurrentStreakGapBreaksRun(t *testing.T) {
	// Days 1 and 2 completed, day 3 skipped, day 4 completed.
	entries := []models.StreakEntry{
		entry("2024-03-01", true, false),
		entry("2024-03-02", true, false),
		entry("2024-03-04", true, false),
	}
	if got := CurrentStreak(entries, day("2024-03-04")); got != 1 {
		t.Fatalf("expected 1 after a gap, got %d", got)
	}
	if got := BestStreak(entries); got != 2 {
		t.Fatalf("expected best streak 2, got %d", got)
	}
}

func TestCurrentStreakUncheckedTodayDoesNotBreak(t *testing.T) {
	// Streak through yesterday still stands before today's check-in.
	entries := []models.StreakEntry{
		entry("2024-03-07", true, false),
		entry("2024-03-08", true, false),
		entry("2024-03-09", true, false),
	}
	if got := CurrentStreak(entries, day("2024-03-10")); got != 3 {
		t.Fatalf("expected 3 with today pending, got %d", got)
	}
	if got := CurrentStreak(entries, day("2024-03-11")); got != 0 {
		t.Fatalf("expected 0 once a full day is missed, got %d", got)
	}
}

func TestCurrentStreakLifelineBridgesGap(t *testing.T) {
	// Ten completed days, then a lifeline entry on the day after.
	entries := make([]models.StreakEntry, 0, 11)
	for d := 1; d <= 10; d++ {
		entries = append(entries, entry(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC).Format(models.DayFormat), true, false))
	}
	entries = append(entries, entry("2024-03-11", false, true))

	if got := CurrentStreak(entries, day("2024-03-11")); got != 11 {
		t.Fatalf("expected lifeline day to count, got %d", got)
	}
}

func TestBestStreakNeverBelowCurrent(t *testing.T) {
	entries := []models.StreakEntry{
		entry("2024-03-05", true, false),
		entry("2024-03-06", false, true),
		entry("2024-03-07", true, false),
	}
	cur := CurrentStreak(entries, day("2024-03-07"))
	best := BestStreak(entries)
	if best < cur {
		t.Fatalf("best streak %d below current %d", best, cur)
	}
	if best != 3 {
		t.Fatalf("expected best 3, got %d", best)
	}
}

func TestBestStreakIgnoresUnsatisfiedEntries(t *testing.T) {
	entries := []models.StreakEntry{
		entry("2024-03-01", true, false),
		entry("2024-03-02", false, false), // recorded but not satisfied
		entry("2024-03-03", true, false),
	}
	if got := BestStreak(entries); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestTodayCompleted(t *testing.T) {
	entries := []models.StreakEntry{
		entry("2024-03-10", false, true),
		entry("2024-03-09", true, false),
	}
	if !TodayCompleted(entries, day("2024-03-10")) {
		t.Fatal("lifeline entry should count as completed today")
	}
	if TodayCompleted(entries, day("2024-03-11")) {
		t.Fatal("no entry for 03-11")
	}
}

func TestNextMilestone(t *testing.T) {
	cases := []struct {
		streak int
		want   int
		ok     bool
	}{
		{0, 7, true},
		{6, 7, true},
		{7, 30, true},
		{29, 30, true},
		{100, 365, true},
		{999, 1000, true},
		{1000, 0, false},
		{1500, 0, false},
	}
	for _, c := range cases {
		got, ok := NextMilestone(c.streak)
		if got != c.want || ok != c.ok {
			t.Errorf("NextMilestone(%d) = %d,%v want %d,%v", c.streak, got, ok, c.want, c.ok)
		}
	}
}

func TestMilestoneReached(t *testing.T) {
	if _, ok := MilestoneReached(6); ok {
		t.Fatal("6 is not a milestone")
	}
	if m, ok := MilestoneReached(7); !ok || m != 7 {
		t.Fatalf("expected milestone 7, got %d/%v", m, ok)
	}
	if m, ok := MilestoneReached(1000); !ok || m != 1000 {
		t.Fatalf("expected milestone 1000, got %d/%v", m, ok)
	}
}
