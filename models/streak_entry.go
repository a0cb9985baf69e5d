package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Category is a streak category. Free-form category strings are rejected at
// the API boundary; everything past it carries one of these values.
type Category string

const (
	CategoryPlasticFree  Category = "plasticFree"
	CategoryConservation Category = "conservation"
	CategoryLearning     Category = "learning"
	CategoryCommunity    Category = "community"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPlasticFree,
	CategoryConservation,
	CategoryLearning,
	CategoryCommunity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPlasticFree, CategoryConservation, CategoryLearning, CategoryCommunity:
		return true
	}
	return false
}

// DayFormat is the canonical calendar-day encoding used across the ledger.
const DayFormat = "2006-01-02"

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StreakEntry is one ledger record per (user, category, day). Entries are
// append-only: never updated, never deleted. A day counts toward a streak
// when Completed or LifelineUsed is set.
type StreakEntry struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	UserID          uint         `gorm:"not null;uniqueIndex:idx_streak_entries_user_category_date" json:"user_id"`
	Category        Category     `gorm:"type:varchar(16);not null;uniqueIndex:idx_streak_entries_user_category_date" json:"category"`
	EntryDate       time.Time    `gorm:"type:date;not null;uniqueIndex:idx_streak_entries_user_category_date" json:"date"`
	Completed       bool         `gorm:"not null;default:false" json:"completed"`
	Activities      ActivityList `gorm:"type:json" json:"activities"`
	ExtraActivities ActivityList `gorm:"type:json" json:"extra_activities"`
	LifelineUsed    bool         `gorm:"not null;default:false" json:"lifeline_used"`
	BonusXP         int          `gorm:"not null;default:0" json:"bonus_xp"`
	CreatedAt       time.Time    `json:"created_at"`
}

// TableName pins the table name.
func (StreakEntry) TableName() string {
	return "streak_entries"
}

// Satisfies reports whether the entry makes its day count toward a streak.
func (e StreakEntry) Satisfies() bool {
	return e.Completed || e.LifelineUsed
}

// DateKey returns the entry's day as a DayFormat string.
func (e StreakEntry) DateKey() string {
	return e.EntryDate.Format(DayFormat)
}

// ActivityList is a JSON-encoded list of activity ids.
type ActivityList []string

// Value implements driver.Valuer.
func (l ActivityList) Value() (driver.Value, error) {
	if l == nil {
		l = ActivityList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *ActivityList) Scan(value interface{}) error {
	if value == nil {
		*l = ActivityList{}
		return nil
	}
	b, err := jsonColumnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}
