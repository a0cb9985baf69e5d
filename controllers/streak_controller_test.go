package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oceanwatch/tidestreak/engine"
	"github.com/oceanwatch/tidestreak/middleware"
	"github.com/oceanwatch/tidestreak/models"
	"github.com/oceanwatch/tidestreak/store"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeAuth stamps a fixed user id into the context, standing in for the JWT
// middleware.
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, store.Store, uint) {
	t.Helper()

	st := store.NewMemoryStore()
	user := &models.User{
		Username:             "kelpfan",
		PasswordHash:         "x",
		LifelineTokens:       models.DefaultLifelineTokens,
		TotalLifelinesEarned: models.DefaultLifelineTokens,
		NotificationPrefs:    models.DefaultNotificationPreferences(),
	}
	if err := st.CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	eng := engine.New(st, engine.DefaultConfig())
	streaks := NewStreakController(eng, st)
	stats := NewStatsController(st)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/streaks/activities", streaks.Activities)
	api.GET("/leaderboard", stats.Leaderboard)
	api.GET("/stats", stats.CommunityStats)

	authed := api.Group("", fakeAuth(user.ID))
	authed.GET("/streaks", streaks.Overview)
	authed.GET("/streaks/history", streaks.History)
	authed.POST("/streaks/checkin", streaks.CheckIn)
	authed.POST("/streaks/lifeline", streaks.UseLifeline)
	authed.POST("/streaks/recovery/complete", streaks.CompleteRecoveryChallenge)

	return r, st, user.ID
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

func TestCheckInEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", gin.H{
		"category":         "plasticFree",
		"activities":       []string{"avoided-plastic-bag"},
		"extra_activities": []string{"glass-containers", "bamboo-toothbrush"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Code != 0 {
		t.Fatalf("envelope code = %d, want 0", env.Code)
	}

	var result engine.CheckInResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.NewStreak != 1 {
		t.Errorf("NewStreak = %d, want 1", result.NewStreak)
	}
	if result.BonusXP != 10 {
		t.Errorf("BonusXP = %d, want 10", result.BonusXP)
	}
	if result.TokensEarned != 1 {
		t.Errorf("TokensEarned = %d, want 1", result.TokensEarned)
	}
}

func TestCheckInEndpointDuplicateDay(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body := gin.H{"category": "learning", "activities": []string{"read-ocean-article"}}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", body); w.Code != http.StatusOK {
		t.Fatalf("first check-in status = %d (body %s)", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 40031 {
		t.Errorf("envelope code = %d, want 40031", env.Code)
	}
}

func TestCheckInEndpointNoActivities(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", gin.H{"category": "conservation"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 40032 {
		t.Errorf("envelope code = %d, want 40032", env.Code)
	}
}

func TestLifelineEndpointWithoutTokens(t *testing.T) {
	r, st, userID := newTestRouter(t)

	user, err := st.UserByID(userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	user.LifelineTokens = 0
	if err := st.SaveUser(user); err != nil {
		t.Fatalf("save user: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/lifeline", gin.H{"category": "plasticFree"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 40033 {
		t.Errorf("envelope code = %d, want 40033", env.Code)
	}
}

func TestLifelineEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/lifeline", gin.H{"category": "community"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var result engine.LifelineResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.RemainingTokens != models.DefaultLifelineTokens-1 {
		t.Errorf("RemainingTokens = %d, want %d", result.RemainingTokens, models.DefaultLifelineTokens-1)
	}
	if len(result.RecoveryContent.Articles) == 0 {
		t.Error("expected recovery content articles")
	}
}

func TestRecoveryEndpointOutsideRecovery(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/recovery/complete", gin.H{
		"category":       "plasticFree",
		"challenge_type": "article",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 40034 {
		t.Errorf("envelope code = %d, want 40034", env.Code)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	if w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", gin.H{
		"category":   "plasticFree",
		"activities": []string{"avoided-plastic-bag"},
	}); w.Code != http.StatusOK {
		t.Fatalf("check-in status = %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/streaks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var overview engine.StreaksOverview
	if err := json.Unmarshal(env.Data, &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if got := overview.Categories[models.CategoryPlasticFree].CurrentStreak; got != 1 {
		t.Errorf("plasticFree CurrentStreak = %d, want 1", got)
	}
	if got := len(overview.Categories); got != len(models.Categories) {
		t.Errorf("categories in overview = %d, want %d", got, len(models.Categories))
	}
	if overview.LifelineTokens != models.DefaultLifelineTokens {
		t.Errorf("LifelineTokens = %d, want %d", overview.LifelineTokens, models.DefaultLifelineTokens)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	if w := doJSON(t, r, http.MethodPost, "/api/v1/streaks/checkin", gin.H{
		"category":   "learning",
		"activities": []string{"read-ocean-article"},
	}); w.Code != http.StatusOK {
		t.Fatalf("check-in status = %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/streaks/history?category=learning&days=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var payload struct {
		Category string              `json:"category"`
		Days     int                 `json:"days"`
		History  []engine.HistoryDay `json:"history"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Days != 7 || len(payload.History) != 8 {
		t.Fatalf("history window = %d entries (days %d), want today plus 7 back", len(payload.History), payload.Days)
	}
	if !payload.History[0].Completed {
		t.Error("most recent day should be completed")
	}
}

func TestHistoryEndpointInvalidCategory(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/streaks/history?category=swimming", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestActivitiesEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/streaks/activities?category=plasticFree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var payload struct {
		Activities []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"activities"`
		ExtraActivities []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"extra_activities"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Activities) == 0 || len(payload.ExtraActivities) == 0 {
		t.Fatal("expected non-empty activity catalogs")
	}
	for _, a := range payload.Activities {
		if a.Name == "" {
			t.Errorf("activity %s has no display name", a.ID)
		}
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	r, st, _ := newTestRouter(t)

	for i, xp := range []int{40, 90, 10} {
		u := &models.User{
			Username:     fmt.Sprintf("diver%d", i),
			PasswordHash: "x",
			TotalXP:      xp,
		}
		if err := st.CreateUser(u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/leaderboard?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var payload struct {
		Leaderboard []struct {
			Rank     int    `json:"rank"`
			Username string `json:"username"`
			TotalXP  int    `json:"total_xp"`
		} `json:"leaderboard"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Leaderboard) != 2 {
		t.Fatalf("leaderboard size = %d, want 2", len(payload.Leaderboard))
	}
	if payload.Leaderboard[0].Username != "diver1" || payload.Leaderboard[0].TotalXP != 90 {
		t.Errorf("top entry = %+v, want diver1 with 90 XP", payload.Leaderboard[0])
	}
}

func TestCommunityStatsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var payload struct {
		Users    int64 `json:"users"`
		Checkins int64 `json:"checkins"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Users != 1 {
		t.Errorf("users = %d, want 1", payload.Users)
	}
}
