package store

import (
	"sort"
	"sync"
	"time"

	"github.com/oceanwatch/tidestreak/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// A single mutex serializes everything, so InTx provides the same
// all-or-nothing observation guarantees as long as callers validate before
// writing, which the engine does.
type MemoryStore struct {
	mu         sync.Mutex
	intx       bool
	users      map[uint]models.User
	entries    map[uint]models.StreakEntry
	nextUserID uint
	nextID     uint
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]models.User),
		entries:    make(map[uint]models.StreakEntry),
		nextUserID: 1,
		nextID:     1,
	}
}

func (s *MemoryStore) lock() func() {
	if s.intx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// CreateUser assigns an id and stores a copy.
func (s *MemoryStore) CreateUser(u *models.User) error {
	defer s.lock()()
	if u.ID == 0 {
		u.ID = s.nextUserID
		s.nextUserID++
	} else if u.ID >= s.nextUserID {
		s.nextUserID = u.ID + 1
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = *u
	return nil
}

// UserByID returns a copy of the stored user.
func (s *MemoryStore) UserByID(id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

// UserByUsername scans for a username match.
func (s *MemoryStore) UserByUsername(username string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

// LockUser behaves like UserByID; the store mutex already serializes writers.
func (s *MemoryStore) LockUser(id uint) (*models.User, error) {
	return s.UserByID(id)
}

// SaveUser overwrites the stored user.
func (s *MemoryStore) SaveUser(u *models.User) error {
	defer s.lock()()
	if _, ok := s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

// TopUsersByXP returns up to limit users ordered by XP descending.
func (s *MemoryStore) TopUsersByXP(limit int) ([]models.User, error) {
	defer s.lock()()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].TotalXP > users[j].TotalXP })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// CountUsers returns the user count.
func (s *MemoryStore) CountUsers() (int64, error) {
	defer s.lock()()
	return int64(len(s.users)), nil
}

// AppendEntry stores a new ledger entry, enforcing one per (user, category, day).
func (s *MemoryStore) AppendEntry(e *models.StreakEntry) error {
	defer s.lock()()
	key := e.EntryDate.Format(models.DayFormat)
	for _, existing := range s.entries {
		if existing.UserID == e.UserID && existing.Category == e.Category && existing.DateKey() == key {
			return ErrDuplicateEntry
		}
	}
	e.ID = s.nextID
	s.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.entries[e.ID] = *e
	return nil
}

// EntriesByUserCategory returns the category ledger, newest day first.
func (s *MemoryStore) EntriesByUserCategory(userID uint, category models.Category) ([]models.StreakEntry, error) {
	defer s.lock()()
	var entries []models.StreakEntry
	for _, e := range s.entries {
		if e.UserID == userID && e.Category == category {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntryDate.After(entries[j].EntryDate) })
	return entries, nil
}

// EntriesByUser returns all of a user's entries, newest day first.
func (s *MemoryStore) EntriesByUser(userID uint) ([]models.StreakEntry, error) {
	defer s.lock()()
	var entries []models.StreakEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntryDate.After(entries[j].EntryDate) })
	return entries, nil
}

// HasEntry reports whether an entry exists for the calendar day.
func (s *MemoryStore) HasEntry(userID uint, category models.Category, day time.Time) (bool, error) {
	defer s.lock()()
	key := models.Day(day).Format(models.DayFormat)
	for _, e := range s.entries {
		if e.UserID == userID && e.Category == category && e.DateKey() == key {
			return true, nil
		}
	}
	return false, nil
}

// CountEntries returns the ledger size.
func (s *MemoryStore) CountEntries() (int64, error) {
	defer s.lock()()
	return int64(len(s.entries)), nil
}

// InTx serializes fn under the store mutex.
func (s *MemoryStore) InTx(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := &MemoryStore{
		intx:       true,
		users:      s.users,
		entries:    s.entries,
		nextUserID: s.nextUserID,
		nextID:     s.nextID,
	}
	err := fn(view)
	s.nextUserID = view.nextUserID
	s.nextID = view.nextID
	return err
}
