package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
	"github.com/houzhh15/autopilot/pkg/auth"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db := setupTestDB(t)
	logger := zap.NewNop()
	svc := NewService(
		repository.NewSubscriptionRepository(db, logger),
		repository.NewConnectionRepository(db, logger),
		nil, logger)
	return svc, db
}

func TestPlan_DefaultsToFree(t *testing.T) {
	svc, _ := setupService(t)

	plan, err := svc.Plan(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, plan.PlanType)
	assert.Equal(t, "Free", plan.Name)
}

func TestPlan_ActiveSubscription(t *testing.T) {
	svc, db := setupService(t)
	p := &models.Plan{PlanType: models.PlanAgency, Price: 14900, MonthlyLimit: 2000}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Create(&models.Subscription{UserID: "u1", PriceID: p.ID, Status: models.SubscriptionStatusActive}).Error)

	plan, err := svc.Plan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanAgency, plan.PlanType)
	assert.Equal(t, "Agency", plan.Name)
	assert.Equal(t, 2000, plan.MonthlyLimit)
}

func TestConnections(t *testing.T) {
	svc, db := setupService(t)
	require.NoError(t, db.Create(&models.PlatformConnection{UserID: "u1", Platform: "linkedin", Connected: true}).Error)

	conns, err := svc.Connections(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conns, 6)
	assert.Equal(t, "twitter", conns[0].ID)
	assert.False(t, conns[0].Connected)
	assert.Equal(t, "linkedin", conns[1].ID)
	assert.True(t, conns[1].Connected)

	require.NoError(t, svc.Disconnect(context.Background(), "u1", "linkedin"))
	conns, err = svc.Connections(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, conns[1].Connected)
}

func TestConnect_ComingSoon(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.Connect(context.Background(), "u1", "bluesky")
	assert.ErrorIs(t, err, ErrComingSoon)
	assert.ErrorIs(t, svc.Connect(context.Background(), "u1", "myspace"), ErrUnknownPlatform)
	assert.ErrorIs(t, svc.Disconnect(context.Background(), "u1", "myspace"), ErrUnknownPlatform)
}

func TestAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t)
	manager := auth.NewTokenManager(auth.DefaultTokenConfig([]byte("secret")))
	token, err := manager.GenerateToken("u1", "u1@acme.io", "")
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api/v1", auth.Middleware(manager)))

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/settings/connections/twitter/connect")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_IMPLEMENTED","message":"Coming Soon - OAuth integration will be available in a future update"}}`, w.Body.String())

	w = do(http.MethodPost, "/api/v1/settings/connections/twitter/disconnect")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodGet, "/api/v1/settings/plan")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plan_type":"free"`)

	w = do(http.MethodGet, "/api/v1/settings/connections")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"bluesky"`)
}
