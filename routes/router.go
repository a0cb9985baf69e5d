package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oceanwatch/tidestreak/config"
	"github.com/oceanwatch/tidestreak/controllers"
	"github.com/oceanwatch/tidestreak/engine"
	"github.com/oceanwatch/tidestreak/middleware"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(s store.Store, eng *engine.Engine) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(s)
	streakController := controllers.NewStreakController(eng, s)
	statsController := controllers.NewStatsController(s)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	streaksGroup := api.Group("/streaks")
	streaksGroup.GET("/activities", streakController.Activities)
	streaksGroup.Use(middleware.AuthRequired())
	streaksGroup.GET("", streakController.Overview)
	streaksGroup.GET("/history", streakController.History)
	streaksGroup.POST("/checkin", streakController.CheckIn)
	streaksGroup.POST("/lifeline", streakController.UseLifeline)
	streaksGroup.POST("/recovery/complete", streakController.CompleteRecoveryChallenge)

	// Public community endpoints
	api.GET("/leaderboard", statsController.Leaderboard)
	api.GET("/stats", statsController.CommunityStats)

	return r
}
