package streak

import (
	"time"

	"github.com/oceanwatch/tidestreak/models"
)

// CategorySnapshot is the per-category input to the reminder advisor.
type CategorySnapshot struct {
	Category       models.Category `json:"category"`
	CurrentStreak  int             `json:"current_streak"`
	TodayCompleted bool            `json:"today_completed"`
}

// RiskItem flags a streak that would break if today goes unchecked.
type RiskItem struct {
	Category  models.Category `json:"category"`
	Streak    int             `json:"streak"`
	RiskLevel string          `json:"risk_level"`
}

// SuggestedTime is a candidate reminder slot.
type SuggestedTime struct {
	Time       string `json:"time"` // "HH:MM"
	Engagement string `json:"engagement"`
}

// AtRiskCategories lists categories that are unchecked today and carry a
// streak worth protecting. Streaks over 30 days are flagged high, the rest
// medium. Advisory only; it never blocks a core flow.
func AtRiskCategories(snapshots []CategorySnapshot) []RiskItem {
	var risks []RiskItem
	for _, s := range snapshots {
		if s.TodayCompleted || s.CurrentStreak <= 7 {
			continue
		}
		level := "medium"
		if s.CurrentStreak > 30 {
			level = "high"
		}
		risks = append(risks, RiskItem{Category: s.Category, Streak: s.CurrentStreak, RiskLevel: level})
	}
	return risks
}

// SuggestedTimes derives reminder slots from the stored preferences. With
// smart timing on, it shifts the first preferred time 30 minutes earlier as
// the high-engagement slot and keeps the time itself as the medium slot.
// This is a fixed deterministic heuristic, not a learned model.
func SuggestedTimes(prefs models.NotificationPreferences) []SuggestedTime {
	if len(prefs.PreferredTimes) == 0 {
		return nil
	}

	if !prefs.SmartTiming {
		out := make([]SuggestedTime, 0, len(prefs.PreferredTimes))
		for _, t := range prefs.PreferredTimes {
			out = append(out, SuggestedTime{Time: t, Engagement: "preferred"})
		}
		return out
	}

	first, err := time.Parse("15:04", prefs.PreferredTimes[0])
	if err != nil {
		// Unparseable preference: fall back to the stored values.
		out := make([]SuggestedTime, 0, len(prefs.PreferredTimes))
		for _, t := range prefs.PreferredTimes {
			out = append(out, SuggestedTime{Time: t, Engagement: "preferred"})
		}
		return out
	}

	return []SuggestedTime{
		{Time: first.Add(-30 * time.Minute).Format("15:04"), Engagement: "high"},
		{Time: first.Format("15:04"), Engagement: "medium"},
	}
}
