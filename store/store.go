// Package store abstracts persistence for the streak ledger and user
// profiles so the engine can run against MySQL in production and an
// in-memory fake in tests.
package store

import (
	"errors"
	"time"

	"github.com/oceanwatch/tidestreak/models"
)

var (
	// ErrDuplicateEntry signals an append for a (user, category, day) that
	// already has a ledger entry.
	ErrDuplicateEntry = errors.New("duplicate streak entry")
	// ErrUserNotFound signals a lookup for an unknown or deleted user.
	ErrUserNotFound = errors.New("user not found")
)

// Store is the persistence surface for users and the streak ledger.
// Ledger entries are append-only: there is deliberately no update or delete.
type Store interface {
	CreateUser(u *models.User) error
	UserByID(id uint) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	// LockUser loads a user for update. Inside InTx the row stays locked
	// until the transaction ends; outside it behaves like UserByID.
	LockUser(id uint) (*models.User, error)
	SaveUser(u *models.User) error
	TopUsersByXP(limit int) ([]models.User, error)
	CountUsers() (int64, error)

	AppendEntry(e *models.StreakEntry) error
	// EntriesByUserCategory returns the category's ledger ordered by entry
	// date descending.
	EntriesByUserCategory(userID uint, category models.Category) ([]models.StreakEntry, error)
	EntriesByUser(userID uint) ([]models.StreakEntry, error)
	HasEntry(userID uint, category models.Category, day time.Time) (bool, error)
	CountEntries() (int64, error)

	// InTx runs fn against a transactional view of the store. All writes in
	// fn commit together or roll back together.
	InTx(fn func(Store) error) error
}
