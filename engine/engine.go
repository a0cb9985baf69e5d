// Package engine implements the streak and recovery rules: check-ins feed
// the append-only ledger, bonus activity funds the lifeline economy, and a
// spent lifeline opens the educational recovery flow.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/oceanwatch/tidestreak/models"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/streak"
	"github.com/oceanwatch/tidestreak/utils"
)

var (
	// ErrAlreadyCheckedIn signals a second check-in or lifeline for a day
	// that already has an entry.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	// ErrNoActivitySelected signals a check-in with no required activity.
	ErrNoActivitySelected = errors.New("no activity selected")
	// ErrInsufficientTokens signals a lifeline request with a zero balance.
	ErrInsufficientTokens = errors.New("no lifeline tokens available")
	// ErrNotInRecovery signals a recovery challenge outside recovery mode
	// or against the wrong category.
	ErrNotInRecovery = errors.New("not in recovery for this category")
	// ErrInvalidCategory signals an unknown category value.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidChallenge signals an unknown recovery challenge type.
	ErrInvalidChallenge = errors.New("invalid challenge type")
)

// ChallengeType identifies a recovery challenge.
type ChallengeType string

const (
	ChallengeArticle ChallengeType = "article"
	ChallengeVideo   ChallengeType = "video"
	ChallengeQuiz    ChallengeType = "quiz"
)

// XP awards for recovery challenges.
const (
	xpArticle = 10
	xpVideo   = 15
	xpQuiz    = 25
)

// Config carries the tunable rule parameters. Zero values are replaced by
// the defaults the product shipped with.
type Config struct {
	BaseCheckInXP   int // XP for any successful check-in
	BonusXPPerExtra int // XP per bonus activity
	ExtrasPerToken  int // bonus activities needed per lifeline token
	RecoveryMinDays int // calendar days before recovery can complete
	QuizPassScore   int // minimum quiz score for recovery progress
}

// DefaultConfig returns the shipped rule parameters.
func DefaultConfig() Config {
	return Config{
		BaseCheckInXP:   5,
		BonusXPPerExtra: 5,
		ExtrasPerToken:  2,
		RecoveryMinDays: 3,
		QuizPassScore:   80,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BaseCheckInXP == 0 {
		c.BaseCheckInXP = def.BaseCheckInXP
	}
	if c.BonusXPPerExtra == 0 {
		c.BonusXPPerExtra = def.BonusXPPerExtra
	}
	if c.ExtrasPerToken == 0 {
		c.ExtrasPerToken = def.ExtrasPerToken
	}
	if c.RecoveryMinDays == 0 {
		c.RecoveryMinDays = def.RecoveryMinDays
	}
	if c.QuizPassScore == 0 {
		c.QuizPassScore = def.QuizPassScore
	}
	return c
}

// Engine orchestrates all streak mutations. Mutations for the same user are
// serialized through a per-user mutex; different users proceed in parallel.
type Engine struct {
	store store.Store
	cfg   Config

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// New creates an Engine on top of a Store.
func New(s store.Store, cfg Config) *Engine {
	return &Engine{
		store: s,
		cfg:   cfg.withDefaults(),
		locks: make(map[uint]*sync.Mutex),
	}
}

func (e *Engine) userLock(userID uint) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// CheckInResult is returned from a successful check-in.
type CheckInResult struct {
	NewStreak        int  `json:"new_streak"`
	BonusXP          int  `json:"bonus_xp"`
	TokensEarned     int  `json:"tokens_earned"`
	MilestoneReached int  `json:"milestone_reached,omitempty"`
	TotalXPAwarded   int  `json:"total_xp_awarded"`
	LifelineTokens   int  `json:"lifeline_tokens"`
	TodayCompleted   bool `json:"today_completed"`
}

// CheckIn records today's activities for a category, credits XP and any
// lifeline tokens earned from bonus activities, and returns the recomputed
// streak. The ledger append and the profile credit happen in one
// transaction.
func (e *Engine) CheckIn(userID uint, category models.Category, activities, extras []string, now time.Time) (*CheckInResult, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if len(activities) == 0 {
		return nil, ErrNoActivitySelected
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var result CheckInResult
	err := e.store.InTx(func(tx store.Store) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}

		exists, err := tx.HasEntry(userID, category, now)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyCheckedIn
		}

		bonusXP := e.cfg.BonusXPPerExtra * len(extras)
		tokens := len(extras) / e.cfg.ExtrasPerToken

		entry := models.StreakEntry{
			UserID:          userID,
			Category:        category,
			EntryDate:       models.Day(now),
			Completed:       true,
			Activities:      activities,
			ExtraActivities: extras,
			BonusXP:         bonusXP,
		}
		if err := tx.AppendEntry(&entry); err != nil {
			return err
		}

		totalXP := e.cfg.BaseCheckInXP + bonusXP
		user.TotalXP += totalXP
		user.LifelineTokens += tokens
		user.TotalLifelinesEarned += tokens
		if err := tx.SaveUser(user); err != nil {
			return err
		}

		entries, err := tx.EntriesByUserCategory(userID, category)
		if err != nil {
			return err
		}
		newStreak := streak.CurrentStreak(entries, now)

		result = CheckInResult{
			NewStreak:      newStreak,
			BonusXP:        bonusXP,
			TokensEarned:   tokens,
			TotalXPAwarded: totalXP,
			LifelineTokens: user.LifelineTokens,
			TodayCompleted: true,
		}
		if m, ok := streak.MilestoneReached(newStreak); ok {
			result.MilestoneReached = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.MilestoneReached > 0 && utils.Sugar != nil {
		utils.Sugar.Infof("user %d reached %d-day milestone in %s", userID, result.MilestoneReached, category)
	}
	return &result, nil
}

// LifelineResult is returned from a successful lifeline use.
type LifelineResult struct {
	RemainingTokens int             `json:"remaining_tokens"`
	CurrentStreak   int             `json:"current_streak"`
	RecoveryContent RecoveryContent `json:"recovery_content"`
}

// UseLifeline spends one token to write a protective entry for today and
// moves the user into recovery mode for the category. Debit, append, and
// state transition commit together.
func (e *Engine) UseLifeline(userID uint, category models.Category, now time.Time) (*LifelineResult, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var result LifelineResult
	err := e.store.InTx(func(tx store.Store) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		if user.LifelineTokens <= 0 {
			return ErrInsufficientTokens
		}

		exists, err := tx.HasEntry(userID, category, now)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyCheckedIn
		}

		entry := models.StreakEntry{
			UserID:       userID,
			Category:     category,
			EntryDate:    models.Day(now),
			LifelineUsed: true,
		}
		if err := tx.AppendEntry(&entry); err != nil {
			return err
		}

		user.LifelineTokens--
		cat := category
		started := now
		user.Recovery.InRecovery = true
		user.Recovery.BrokenCategory = &cat
		user.Recovery.StartedAt = &started
		if err := tx.SaveUser(user); err != nil {
			return err
		}

		entries, err := tx.EntriesByUserCategory(userID, category)
		if err != nil {
			return err
		}

		result = LifelineResult{
			RemainingTokens: user.LifelineTokens,
			CurrentStreak:   streak.CurrentStreak(entries, now),
			RecoveryContent: RecoveryContentFor(category),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if utils.Sugar != nil {
		utils.Sugar.Infof("user %d used a lifeline for %s, %d tokens left", userID, category, result.RemainingTokens)
	}
	return &result, nil
}

// ChallengeData carries challenge-specific inputs; only quizzes use it.
type ChallengeData struct {
	Score int `json:"score"`
}

// RecoveryResult is returned from a recovery challenge attempt.
type RecoveryResult struct {
	ProgressMade     bool                 `json:"progress_made"`
	XPAwarded        int                  `json:"xp_awarded"`
	RecoveryComplete bool                 `json:"recovery_complete"`
	Message          string               `json:"message"`
	State            models.RecoveryState `json:"recovery_state"`
}

// CompleteRecoveryChallenge records progress on an educational challenge and
// checks the completion condition afterwards. The educational counters are
// cumulative across recovery cycles and never reset.
func (e *Engine) CompleteRecoveryChallenge(userID uint, category models.Category, challenge ChallengeType, data ChallengeData, now time.Time) (*RecoveryResult, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	switch challenge {
	case ChallengeArticle, ChallengeVideo, ChallengeQuiz:
	default:
		return nil, ErrInvalidChallenge
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var result RecoveryResult
	err := e.store.InTx(func(tx store.Store) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		if !user.Recovery.InRecovery || user.Recovery.BrokenCategory == nil || *user.Recovery.BrokenCategory != category {
			return ErrNotInRecovery
		}

		switch challenge {
		case ChallengeArticle:
			user.Recovery.ArticlesRead++
			result = RecoveryResult{ProgressMade: true, XPAwarded: xpArticle, Message: "Article completed"}
		case ChallengeVideo:
			user.Recovery.VideosWatched++
			result = RecoveryResult{ProgressMade: true, XPAwarded: xpVideo, Message: "Video completed"}
		case ChallengeQuiz:
			if data.Score < e.cfg.QuizPassScore {
				// A failed quiz is not an error: no progress, no XP.
				result = RecoveryResult{Message: "Quiz score too low, try again", State: user.Recovery}
				return nil
			}
			user.Recovery.QuizzesCompleted++
			result = RecoveryResult{ProgressMade: true, XPAwarded: xpQuiz, Message: "Quiz passed"}
		}

		user.TotalXP += result.XPAwarded

		if e.recoveryEligible(user.Recovery, now) {
			user.Recovery.InRecovery = false
			user.Recovery.BrokenCategory = nil
			user.Recovery.StartedAt = nil
			result.RecoveryComplete = true
			result.Message = "Recovery journey completed"
		}

		if err := tx.SaveUser(user); err != nil {
			return err
		}
		result.State = user.Recovery
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.RecoveryComplete && utils.Sugar != nil {
		utils.Sugar.Infof("user %d completed recovery for %s", userID, category)
	}
	return &result, nil
}

// recoveryEligible checks the completion condition: at least RecoveryMinDays
// calendar days since the lifeline, plus progress of every content type.
func (e *Engine) recoveryEligible(state models.RecoveryState, now time.Time) bool {
	if state.StartedAt == nil {
		return false
	}
	elapsed := int(models.Day(now).Sub(models.Day(*state.StartedAt)).Hours() / 24)
	return elapsed >= e.cfg.RecoveryMinDays &&
		state.ArticlesRead > 0 &&
		state.VideosWatched > 0 &&
		state.QuizzesCompleted > 0
}

// CategoryOverview is the derived streak state for one category.
type CategoryOverview struct {
	Category       models.Category `json:"category"`
	CurrentStreak  int             `json:"current_streak"`
	BestStreak     int             `json:"best_streak"`
	TodayCompleted bool            `json:"today_completed"`
	NextMilestone  *int            `json:"next_milestone"`
	TotalDays      int             `json:"total_days"`
}

// StreaksOverview is the full per-user streak dashboard payload.
type StreaksOverview struct {
	Categories      map[models.Category]CategoryOverview `json:"categories"`
	LifelineTokens  int                                  `json:"lifeline_tokens"`
	Recovery        models.RecoveryState                 `json:"recovery_state"`
	RecoveryContent *RecoveryContent                     `json:"recovery_content,omitempty"`
	AtRisk          []streak.RiskItem                    `json:"at_risk_categories"`
	SuggestedTimes  []streak.SuggestedTime               `json:"suggested_reminder_times"`
}

// UserStreaks recomputes every category's streak state from the ledger and
// bundles it with the lifeline balance, recovery state, and reminder advice.
func (e *Engine) UserStreaks(userID uint, now time.Time) (*StreaksOverview, error) {
	user, err := e.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.EntriesByUser(userID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[models.Category][]models.StreakEntry)
	for _, entry := range entries {
		byCategory[entry.Category] = append(byCategory[entry.Category], entry)
	}

	overview := &StreaksOverview{
		Categories:     make(map[models.Category]CategoryOverview, len(models.Categories)),
		LifelineTokens: user.LifelineTokens,
		Recovery:       user.Recovery,
	}

	var snapshots []streak.CategorySnapshot
	for _, c := range models.Categories {
		catEntries := byCategory[c]
		current := streak.CurrentStreak(catEntries, now)
		co := CategoryOverview{
			Category:       c,
			CurrentStreak:  current,
			BestStreak:     streak.BestStreak(catEntries),
			TodayCompleted: streak.TodayCompleted(catEntries, now),
		}
		if m, ok := streak.NextMilestone(current); ok {
			co.NextMilestone = &m
		}
		for _, entry := range catEntries {
			if entry.Satisfies() {
				co.TotalDays++
			}
		}
		overview.Categories[c] = co
		snapshots = append(snapshots, streak.CategorySnapshot{
			Category:       c,
			CurrentStreak:  current,
			TodayCompleted: co.TodayCompleted,
		})
	}

	overview.AtRisk = streak.AtRiskCategories(snapshots)
	if user.NotificationPrefs.Enabled {
		overview.SuggestedTimes = streak.SuggestedTimes(user.NotificationPrefs)
	}
	if user.Recovery.InRecovery && user.Recovery.BrokenCategory != nil {
		content := RecoveryContentFor(*user.Recovery.BrokenCategory)
		overview.RecoveryContent = &content
	}
	return overview, nil
}

// HistoryDay is one day in the check-in history window.
type HistoryDay struct {
	Date         string              `json:"date"`
	Completed    bool                `json:"completed"`
	LifelineUsed bool                `json:"lifeline_used"`
	Activities   models.ActivityList `json:"activities"`
	BonusXP      int                 `json:"bonus_xp"`
}

// History returns a day-by-day window over the category's ledger, most
// recent day first. Days without an entry appear as not completed.
func (e *Engine) History(userID uint, category models.Category, days int, now time.Time) ([]HistoryDay, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if days <= 0 {
		days = 30
	}

	entries, err := e.store.EntriesByUserCategory(userID, category)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.StreakEntry, len(entries))
	for _, entry := range entries {
		byDay[entry.DateKey()] = entry
	}

	history := make([]HistoryDay, 0, days+1)
	end := models.Day(now)
	for d := 0; d <= days; d++ {
		day := end.AddDate(0, 0, -d)
		key := day.Format(models.DayFormat)
		hd := HistoryDay{Date: key, Activities: models.ActivityList{}}
		if entry, ok := byDay[key]; ok {
			hd.Completed = entry.Completed
			hd.LifelineUsed = entry.LifelineUsed
			hd.Activities = entry.Activities
			hd.BonusXP = entry.BonusXP
		}
		history = append(history, hd)
	}
	return history, nil
}
