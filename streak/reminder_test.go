package streak

import (
	"testing"

	"github.com/oceanwatch/tidestreak/models"
)

func TestAtRiskCategories(t *testing.T) {
	snapshots := []CategorySnapshot{
		{Category: models.CategoryPlasticFree, CurrentStreak: 45, TodayCompleted: false},
		{Category: models.CategoryConservation, CurrentStreak: 12, TodayCompleted: false},
		{Category: models.CategoryLearning, CurrentStreak: 50, TodayCompleted: true},
		{Category: models.CategoryCommunity, CurrentStreak: 7, TodayCompleted: false},
	}

	risks := AtRiskCategories(snapshots)
	if len(risks) != 2 {
		t.Fatalf("expected 2 at-risk categories, got %d", len(risks))
	}
	if risks[0].Category != models.CategoryPlasticFree || risks[0].RiskLevel != "high" {
		t.Errorf("expected plasticFree high, got %+v", risks[0])
	}
	if risks[1].Category != models.CategoryConservation || risks[1].RiskLevel != "medium" {
		t.Errorf("expected conservation medium, got %+v", risks[1])
	}
}

func TestSuggestedTimesSmart(t *testing.T) {
	prefs := models.NotificationPreferences{
		Enabled:        true,
		PreferredTimes: []string{"09:00", "18:00"},
		SmartTiming:    true,
	}
	got := SuggestedTimes(prefs)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	if got[0].Time != "08:30" || got[0].Engagement != "high" {
		t.Errorf("expected 08:30/high, got %+v", got[0])
	}
	if got[1].Time != "09:00" || got[1].Engagement != "medium" {
		t.Errorf("expected 09:00/medium, got %+v", got[1])
	}
}

func TestSuggestedTimesSmartWrapsMidnight(t *testing.T) {
	prefs := models.NotificationPreferences{PreferredTimes: []string{"00:15"}, SmartTiming: true}
	got := SuggestedTimes(prefs)
	if got[0].Time != "23:45" {
		t.Errorf("expected wrap to 23:45, got %s", got[0].Time)
	}
}

func TestSuggestedTimesStoredWhenNotSmart(t *testing.T) {
	prefs := models.NotificationPreferences{PreferredTimes: []string{"09:00", "18:00"}}
	got := SuggestedTimes(prefs)
	if len(got) != 2 || got[0].Time != "09:00" || got[1].Time != "18:00" {
		t.Fatalf("expected stored times back, got %+v", got)
	}
}

func TestSuggestedTimesEmptyPrefs(t *testing.T) {
	if got := SuggestedTimes(models.NotificationPreferences{}); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
