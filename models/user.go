package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// DefaultLifelineTokens is the starting lifeline balance granted on signup.
const DefaultLifelineTokens = 3

// User represents an account plus its streak profile. Passwords are stored
// as bcrypt hashes only.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64;uniqueIndex" json:"username"`
	Email        string `gorm:"size:255" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	RegisterIP   string `gorm:"size:45" json:"register_ip"`
	AvatarURL    string `gorm:"size:512" json:"avatar_url"`
	Bio          string `gorm:"size:255" json:"bio"`

	TotalXP              int                     `gorm:"default:0" json:"total_xp"`
	LifelineTokens       int                     `gorm:"default:0" json:"lifeline_tokens"`
	TotalLifelinesEarned int                     `gorm:"default:0" json:"total_lifelines_earned"`
	Achievements         IDList                  `gorm:"type:json" json:"achievements"`
	NotificationPrefs    NotificationPreferences `gorm:"type:json" json:"notification_preferences"`
	Recovery             RecoveryState           `gorm:"embedded;embeddedPrefix:recovery_" json:"recovery_state"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// RecoveryState tracks the educational recovery flow entered after a
// lifeline is spent. The educational counters are cumulative across
// recovery cycles and are never reset on completion.
type RecoveryState struct {
	InRecovery       bool       `gorm:"not null;default:false" json:"in_recovery"`
	BrokenCategory   *Category  `gorm:"type:varchar(16)" json:"broken_streak_category"`
	StartedAt        *time.Time `json:"recovery_start_date"`
	ArticlesRead     int        `gorm:"not null;default:0" json:"articles_read"`
	VideosWatched    int        `gorm:"not null;default:0" json:"videos_watched"`
	QuizzesCompleted int        `gorm:"not null;default:0" json:"quizzes_completed"`
}

// NotificationPreferences is stored as a JSON column on the users table.
type NotificationPreferences struct {
	Enabled        bool     `json:"enabled"`
	PreferredTimes []string `json:"preferred_times"` // "HH:MM" wall-clock values
	Timezone       string   `json:"timezone"`
	SmartTiming    bool     `json:"smart_timing"`
}

// DefaultNotificationPreferences returns the signup defaults.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:        true,
		PreferredTimes: []string{"09:00", "18:00"},
		Timezone:       "UTC",
		SmartTiming:    true,
	}
}

// Value implements driver.Valuer so GORM persists the struct as JSON.
func (p NotificationPreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (p *NotificationPreferences) Scan(value interface{}) error {
	if value == nil {
		*p = NotificationPreferences{}
		return nil
	}
	b, err := jsonColumnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, p)
}

// IDList is a JSON-encoded list of achievement ids.
type IDList []int

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	b, err := jsonColumnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether id is already present.
func (l IDList) Contains(id int) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func jsonColumnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported json column type")
	}
}
