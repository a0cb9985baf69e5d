package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanwatch/tidestreak/config"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/utils"
)

// StatsController serves public leaderboard and community stat endpoints.
type StatsController struct {
	store store.Store
}

func NewStatsController(s store.Store) *StatsController {
	return &StatsController{store: s}
}

// Leaderboard returns the top users ranked by total XP.
func (s *StatsController) Leaderboard(ctx *gin.Context) {
	limit := 10
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	key := "cache:leaderboard:" + strconv.Itoa(limit)
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	users, err := s.store.TopUsersByXP(limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load leaderboard")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i, u := range users {
		items = append(items, gin.H{
			"rank":       i + 1,
			"username":   u.Username,
			"avatar_url": u.AvatarURL,
			"total_xp":   u.TotalXP,
		})
	}

	payload := gin.H{"leaderboard": items}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	ttl := time.Duration(config.Get().LeaderboardCacheSec) * time.Second
	utils.CacheSetJSON(key, wrapper, ttl)
	utils.Success(ctx, payload)
}

// CommunityStats returns aggregate activity counters for the whole community.
func (s *StatsController) CommunityStats(ctx *gin.Context) {
	key := "cache:stats:community"
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	userCount, err := s.store.CountUsers()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count users")
		return
	}
	entryCount, err := s.store.CountEntries()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to count entries")
		return
	}

	payload := gin.H{
		"users":        userCount,
		"checkins":     entryCount,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(key, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}
