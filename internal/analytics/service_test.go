package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/houzhh15/autopilot/internal/cache"
	"github.com/houzhh15/autopilot/internal/event"
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

func newRepos(db *gorm.DB) Repositories {
	logger := zap.NewNop()
	return Repositories{
		Campaigns:     repository.NewCampaignRepository(db, logger),
		Leads:         repository.NewLeadRepository(db, logger),
		Posts:         repository.NewPostRepository(db, logger),
		Subscriptions: repository.NewSubscriptionRepository(db, logger),
		Reports:       repository.NewReportRepository(db, logger),
		Stats:         repository.NewStatsRepository(db, logger),
	}
}

type fixture struct {
	db    *gorm.DB
	store *cache.MemoryStore
	svc   *Service
}

func setupFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	store := cache.NewMemoryStore()
	svc := NewService(newRepos(db), store, time.Minute, nil, zap.NewNop())
	return &fixture{db: db, store: store, svc: svc}
}

func (f *fixture) seed(t *testing.T) *models.Campaign {
	tenant := &models.Tenant{BrandName: "Acme"}
	require.NoError(t, f.db.Create(tenant).Error)
	c := &models.Campaign{TenantID: tenant.ID, Name: "Launch", Objective: "leads"}
	require.NoError(t, f.db.Create(c).Error)

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&models.Post{CampaignID: c.ID, Platform: "LinkedIn", Content: "a", CreatedAt: now.Add(-2 * time.Hour)}).Error)
	require.NoError(t, f.db.Create(&models.Post{CampaignID: c.ID, Platform: "X", Content: "b", CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, f.db.Create(&models.Lead{Email: "a@b.co"}).Error)

	plan := &models.Plan{PlanType: models.PlanPro, Price: 4900, MonthlyLimit: 500}
	require.NoError(t, f.db.Create(plan).Error)
	require.NoError(t, f.db.Create(&models.Subscription{UserID: "u1", PriceID: plan.ID}).Error)
	return c
}

func TestService_Dashboard(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Campaigns)
	assert.EqualValues(t, 1, d.Leads)
	assert.EqualValues(t, 2, d.Posts)
	require.Len(t, d.RecentCampaigns, 1)
	assert.Equal(t, "Launch", d.RecentCampaigns[0].Name)

	// 缓存命中，新线索不可见
	require.NoError(t, f.db.Create(&models.Lead{Email: "c@d.co"}).Error)
	d, err = f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Leads)

	handler := InvalidationHandler(f.store, zap.NewNop())
	evt, err := event.New(event.TypeLeadCaptured, "lead", nil)
	require.NoError(t, err)
	require.NoError(t, handler(ctx, evt))

	d, err = f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, d.Leads)
}

func TestInvalidationHandler_IgnoresUnrelated(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, "analytics:dashboard", []byte(`{}`), time.Minute, CacheTag))

	evt, err := event.New(event.TypeConnectionChanged, "u1", nil)
	require.NoError(t, err)
	require.NoError(t, InvalidationHandler(f.store, nil)(ctx, evt))

	_, err = f.store.Get(ctx, "analytics:dashboard")
	assert.NoError(t, err)

	require.NoError(t, InvalidationHandler(nil, nil)(ctx, evt))
}

func TestService_CampaignReport(t *testing.T) {
	f := setupFixture(t)
	c := f.seed(t)
	ctx := context.Background()

	all, err := f.svc.CampaignReport(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalPosts)

	one, err := f.svc.CampaignReport(ctx, &c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, one.TotalPosts)
	assert.Equal(t, "X", one.MostUsedPlatform)

	other := uuid.New()
	none, err := f.svc.CampaignReport(ctx, &other)
	require.NoError(t, err)
	assert.Equal(t, "N/A", none.MostUsedPlatform)
}

func TestService_Admin(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)

	a, err := f.svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, a.TotalPosts)
	assert.InDelta(t, 49.0, a.MonthlyRevenue, 1e-9)
	require.Len(t, a.TopCampaigns, 1)
	assert.Equal(t, 2, a.TopCampaigns[0].Posts)
	assert.NotNil(t, a.Reports)
}

func TestService_GenerateReport(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	_, err := f.svc.GenerateReport(ctx, "hourly")
	assert.ErrorIs(t, err, ErrInvalidReportType)

	report, err := f.svc.GenerateReport(ctx, models.ReportDaily)
	require.NoError(t, err)
	assert.Equal(t, models.ReportDaily, report.ReportType)
	assert.EqualValues(t, 2, report.Summary["new_posts"])
	assert.EqualValues(t, 1, report.Summary["new_leads"])
	assert.Equal(t, "0.02", report.Summary["total_api_cost"])

	reports, err := f.svc.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)
}

func setupRouter(t *testing.T, role string) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)
	f := setupFixture(t)
	f.seed(t)
	h := NewHandler(f.svc, zap.NewNop())

	manager := auth.NewTokenManager(auth.DefaultTokenConfig([]byte("secret")))
	token, err := manager.GenerateToken("u1", "u1@acme.io", role)
	require.NoError(t, err)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1", auth.Middleware(manager)))
	return r, token
}

func request(r *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPI_AdminRequiresRole(t *testing.T) {
	r, token := setupRouter(t, auth.RoleUser)

	w := request(r, token, http.MethodGet, "/api/v1/admin/analytics", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(r, token, http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"campaigns":1`)
}

func TestAPI_Admin(t *testing.T) {
	r, token := setupRouter(t, auth.RoleAdmin)

	w := request(r, token, http.MethodGet, "/api/v1/admin/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_posts":2`)

	w = request(r, token, http.MethodPost, "/api/v1/admin/reports", `{"type":"weekly"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"report_type":"weekly"`)

	w = request(r, token, http.MethodPost, "/api/v1/admin/reports", `{"type":"yearly"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, token, http.MethodGet, "/api/v1/admin/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"weekly"`)
}

func TestAPI_CampaignReport(t *testing.T) {
	r, token := setupRouter(t, auth.RoleUser)

	w := request(r, token, http.MethodGet, "/api/v1/reports?campaign_id=all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_posts":2`)

	w = request(r, token, http.MethodGet, "/api/v1/reports?campaign_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
