package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanwatch/tidestreak/config"
	"github.com/oceanwatch/tidestreak/middleware"
	"github.com/oceanwatch/tidestreak/models"
	"github.com/oceanwatch/tidestreak/store"
	"github.com/oceanwatch/tidestreak/utils"
)

// AuthController handles registration, login and profile endpoints.
type AuthController struct {
	store store.Store
}

func NewAuthController(s store.Store) *AuthController {
	return &AuthController{store: s}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// userResponse strips credential fields for API payloads.
func userResponse(u models.User) gin.H {
	return gin.H{
		"id":                     u.ID,
		"username":               u.Username,
		"email":                  u.Email,
		"avatar_url":             u.AvatarURL,
		"bio":                    u.Bio,
		"total_xp":               u.TotalXP,
		"lifeline_tokens":        u.LifelineTokens,
		"total_lifelines_earned": u.TotalLifelinesEarned,
		"achievements":           u.Achievements,
		"notification_prefs":     u.NotificationPrefs,
		"created_at":             u.CreatedAt,
	}
}

// Register creates a new account with starter lifeline tokens and default
// notification preferences.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=3,max=32"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may only contain letters, digits, '-' and '_'")
		return
	}

	if _, err := a.store.UserByUsername(req.Username); err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	cfg := config.Get()
	user := models.User{
		Username:             req.Username,
		Email:                strings.TrimSpace(req.Email),
		PasswordHash:         hash,
		RegisterIP:           ctx.ClientIP(),
		LifelineTokens:       cfg.InitialLifelines,
		TotalLifelinesEarned: cfg.InitialLifelines,
		NotificationPrefs:    models.DefaultNotificationPreferences(),
	}

	if err := a.store.CreateUser(&user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	user, err := a.store.UserByUsername(strings.TrimSpace(req.Username))
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(*user),
	})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	user, err := a.store.UserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}
	utils.Success(ctx, userResponse(*user))
}

// UpdateProfile updates mutable profile fields and notification preferences.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	type request struct {
		AvatarURL         *string                         `json:"avatar_url"`
		Bio               *string                         `json:"bio"`
		NotificationPrefs *models.NotificationPreferences `json:"notification_prefs"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	user, err := a.store.UserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}

	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Bio != nil {
		user.Bio = utils.Sanitize(strings.TrimSpace(*req.Bio))
	}
	if req.NotificationPrefs != nil {
		prefs := *req.NotificationPrefs
		for i, t := range prefs.PreferredTimes {
			prefs.PreferredTimes[i] = strings.TrimSpace(t)
		}
		user.NotificationPrefs = prefs
	}

	if err := a.store.SaveUser(user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to update profile")
		return
	}

	utils.Success(ctx, userResponse(*user))
}
