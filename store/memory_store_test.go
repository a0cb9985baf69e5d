package store

import (
	"errors"
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

func TestMemoryStoreAppendRejectsDuplicateDay(t *testing.T) {
	s := NewMemoryStore()
	entry := models.StreakEntry{UserID: 1, Category: models.CategoryPlasticFree, EntryDate: day("2024-03-01"), Completed: true}
	if err := s.AppendEntry(&entry); err != nil {
		t.Fatalf("first append: %v", err)
	}
	dup := models.StreakEntry{UserID: 1, Category: models.CategoryPlasticFree, EntryDate: day("2024-03-01"), LifelineUsed: true}
	if err := s.AppendEntry(&dup); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}

	// Same day is fine for another category or another user.
	other := models.StreakEntry{UserID: 1, Category: models.CategoryLearning, EntryDate: day("2024-03-01"), Completed: true}
	if err := s.AppendEntry(&other); err != nil {
		t.Fatalf("other category: %v", err)
	}
	otherUser := models.StreakEntry{UserID: 2, Category: models.CategoryPlasticFree, EntryDate: day("2024-03-01"), Completed: true}
	if err := s.AppendEntry(&otherUser); err != nil {
		t.Fatalf("other user: %v", err)
	}
}

func TestMemoryStoreEntriesOrderedNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	for _, d := range []string{"2024-03-02", "2024-03-05", "2024-03-01"} {
		e := models.StreakEntry{UserID: 1, Category: models.CategoryPlasticFree, EntryDate: day(d), Completed: true}
		if err := s.AppendEntry(&e); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.EntriesByUserCategory(1, models.CategoryPlasticFree)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-05", "2024-03-02", "2024-03-01"}
	for i, w := range want {
		if entries[i].DateKey() != w {
			t.Fatalf("position %d: expected %s, got %s", i, w, entries[i].DateKey())
		}
	}
}

func TestMemoryStoreUserLifecycle(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.UserByID(1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	u := models.User{Username: "tide"}
	if err := s.CreateUser(&u); err != nil {
		t.Fatal(err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned id")
	}

	u.TotalXP = 50
	if err := s.SaveUser(&u); err != nil {
		t.Fatal(err)
	}
	got, err := s.UserByUsername("tide")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalXP != 50 {
		t.Fatalf("expected saved XP, got %d", got.TotalXP)
	}
}

func TestMemoryStoreTopUsersByXP(t *testing.T) {
	s := NewMemoryStore()
	for i, xp := range []int{10, 300, 200} {
		u := models.User{Username: string(rune('a' + i)), TotalXP: xp}
		if err := s.CreateUser(&u); err != nil {
			t.Fatal(err)
		}
	}
	top, err := s.TopUsersByXP(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].TotalXP != 300 || top[1].TotalXP != 200 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
}

func TestMemoryStoreInTxErrorPropagates(t *testing.T) {
	s := NewMemoryStore()
	sentinel := errors.New("boom")
	if err := s.InTx(func(tx Store) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
}
