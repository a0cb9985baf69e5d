package main

import (
	"github.com/oceanwatch/tidestreak/config"
	"github.com/oceanwatch/tidestreak/engine"
	"github.com/oceanwatch/tidestreak/models"
	"github.com/oceanwatch/tidestreak/routes"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.StreakEntry{})

	st := store.NewGormStore(db)
	eng := engine.New(st, engine.Config{
		BaseCheckInXP:   cfg.CheckInBaseXP,
		BonusXPPerExtra: cfg.BonusXPPerExtra,
		ExtrasPerToken:  cfg.ExtrasPerLifeline,
		RecoveryMinDays: cfg.RecoveryMinDays,
		QuizPassScore:   cfg.RecoveryQuizPass,
	})

	r := routes.SetupRouter(st, eng)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
