package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oceanwatch/tidestreak/models"
)

// GormStore persists users and ledger entries through GORM/MySQL.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm DB.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateUser inserts a new user row.
func (s *GormStore) CreateUser(u *models.User) error {
	return s.db.Create(u).Error
}

// UserByID loads a user by primary key.
func (s *GormStore) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserByUsername loads a user by unique username.
func (s *GormStore) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// LockUser loads a user with SELECT ... FOR UPDATE semantics.
func (s *GormStore) LockUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SaveUser persists all user fields.
func (s *GormStore) SaveUser(u *models.User) error {
	return s.db.Save(u).Error
}

// TopUsersByXP returns up to limit users ordered by total XP descending.
func (s *GormStore) TopUsersByXP(limit int) ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("total_xp DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the number of registered users.
func (s *GormStore) CountUsers() (int64, error) {
	var n int64
	err := s.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

// AppendEntry inserts a ledger entry. The unique (user, category, date)
// index is the last line of defense; duplicates surface as ErrDuplicateEntry.
func (s *GormStore) AppendEntry(e *models.StreakEntry) error {
	exists, err := s.HasEntry(e.UserID, e.Category, e.EntryDate)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEntry
	}
	if err := s.db.Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// EntriesByUserCategory returns the category ledger, newest day first.
func (s *GormStore) EntriesByUserCategory(userID uint, category models.Category) ([]models.StreakEntry, error) {
	var entries []models.StreakEntry
	err := s.db.Where("user_id = ? AND category = ?", userID, category).
		Order("entry_date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByUser returns every ledger entry for the user across categories.
func (s *GormStore) EntriesByUser(userID uint) ([]models.StreakEntry, error) {
	var entries []models.StreakEntry
	err := s.db.Where("user_id = ?", userID).
		Order("entry_date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HasEntry reports whether an entry exists for the given calendar day.
func (s *GormStore) HasEntry(userID uint, category models.Category, day time.Time) (bool, error) {
	var n int64
	// String date equality avoids timezone/type mismatches with the DATE column.
	err := s.db.Model(&models.StreakEntry{}).
		Where("user_id = ? AND category = ? AND entry_date = ?", userID, category, models.Day(day).Format(models.DayFormat)).
		Count(&n).Error
	return n > 0, err
}

// CountEntries returns the total ledger size.
func (s *GormStore) CountEntries() (int64, error) {
	var n int64
	err := s.db.Model(&models.StreakEntry{}).Count(&n).Error
	return n, err
}

// InTx runs fn inside a single database transaction.
func (s *GormStore) InTx(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
