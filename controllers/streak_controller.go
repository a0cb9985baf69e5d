package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanwatch/tidestreak/engine"
	"github.com/oceanwatch/tidestreak/middleware"
	"github.com/oceanwatch/tidestreak/models"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/utils"
)

// StreakController handles check-ins, lifelines, recovery challenges and
// streak dashboards.
type StreakController struct {
	eng   *engine.Engine
	store store.Store
}

func NewStreakController(eng *engine.Engine, s store.Store) *StreakController {
	return &StreakController{eng: eng, store: s}
}

func streakCacheKey(userID uint) string {
	return fmt.Sprintf("cache:streaks:%d", userID)
}

// writeEngineError maps engine and store sentinels onto the API error scheme.
func writeEngineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrAlreadyCheckedIn):
		utils.Error(ctx, http.StatusBadRequest, 40031, "already checked in for this category today")
	case errors.Is(err, engine.ErrNoActivitySelected):
		utils.Error(ctx, http.StatusBadRequest, 40032, "select at least one activity")
	case errors.Is(err, engine.ErrInsufficientTokens):
		utils.Error(ctx, http.StatusBadRequest, 40033, "no lifeline tokens available")
	case errors.Is(err, engine.ErrNotInRecovery):
		utils.Error(ctx, http.StatusBadRequest, 40034, "not in recovery for this category")
	case errors.Is(err, store.ErrDuplicateEntry):
		utils.Error(ctx, http.StatusBadRequest, 40035, "a ledger entry already exists for this day")
	case errors.Is(err, engine.ErrInvalidCategory):
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid category")
	case errors.Is(err, engine.ErrInvalidChallenge):
		utils.Error(ctx, http.StatusBadRequest, 40037, "invalid challenge type")
	case errors.Is(err, store.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50030, "streak operation failed")
	}
}

// CheckIn records today's completed activities for a category.
func (s *StreakController) CheckIn(ctx *gin.Context) {
	type request struct {
		Category        models.Category `json:"category" binding:"required"`
		Activities      []string        `json:"activities"`
		ExtraActivities []string        `json:"extra_activities"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	result, err := s.eng.CheckIn(userID, req.Category, req.Activities, req.ExtraActivities, time.Now())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(streakCacheKey(userID))
	utils.InvalidateByPrefix("cache:leaderboard")
	utils.Success(ctx, result)
}

// UseLifeline spends a token to bridge today's gap and enter recovery.
func (s *StreakController) UseLifeline(ctx *gin.Context) {
	type request struct {
		Category models.Category `json:"category" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	result, err := s.eng.UseLifeline(userID, req.Category, time.Now())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(streakCacheKey(userID))
	utils.Success(ctx, result)
}

// CompleteRecoveryChallenge records an educational challenge attempt.
func (s *StreakController) CompleteRecoveryChallenge(ctx *gin.Context) {
	type request struct {
		Category      models.Category      `json:"category" binding:"required"`
		ChallengeType engine.ChallengeType `json:"challenge_type" binding:"required"`
		Score         int                  `json:"score"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	result, err := s.eng.CompleteRecoveryChallenge(userID, req.Category, req.ChallengeType, engine.ChallengeData{Score: req.Score}, time.Now())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(streakCacheKey(userID))
	utils.InvalidateByPrefix("cache:leaderboard")
	utils.Success(ctx, result)
}

// Overview returns the full per-category streak dashboard.
func (s *StreakController) Overview(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	key := streakCacheKey(userID)
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	overview, err := s.eng.UserStreaks(userID, time.Now())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: overview}
	utils.CacheSetJSON(key, wrapper, time.Minute)
	utils.Success(ctx, overview)
}

// History returns the day-by-day ledger window for one category.
func (s *StreakController) History(ctx *gin.Context) {
	category := models.Category(strings.TrimSpace(ctx.Query("category")))
	if !category.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid category")
		return
	}

	days := 30
	if v := strings.TrimSpace(ctx.Query("days")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	history, err := s.eng.History(userID, category, days, time.Now())
	if err != nil {
		writeEngineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"category": category,
		"days":     days,
		"history":  history,
	})
}

// Activities returns the required and bonus activity catalog for a category.
func (s *StreakController) Activities(ctx *gin.Context) {
	category := models.Category(strings.TrimSpace(ctx.Query("category")))
	if !category.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid category")
		return
	}

	describe := func(ids []string) []gin.H {
		items := make([]gin.H, 0, len(ids))
		for _, id := range ids {
			items = append(items, gin.H{"id": id, "name": engine.ActivityDisplayName(id)})
		}
		return items
	}

	utils.Success(ctx, gin.H{
		"category":         category,
		"activities":       describe(engine.RequiredActivities(category)),
		"extra_activities": describe(engine.ExtraActivities(category)),
	})
}
