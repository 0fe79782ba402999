package campaign

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...*event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

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

func setupService(t *testing.T) (*Service, *gorm.DB, *recordingPublisher) {
	db := setupTestDB(t)
	logger := zap.NewNop()
	pub := &recordingPublisher{}
	svc := NewService(db,
		repository.NewTenantRepository(db, logger),
		repository.NewCampaignRepository(db, logger),
		pub, logger)
	return svc, db, pub
}

func TestService_CreateResolvesTenant(t *testing.T) {
	svc, db, pub := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, Form{Name: "First", Objective: "leads", BrandName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, first.Status)

	var tenants []models.Tenant
	require.NoError(t, db.Find(&tenants).Error)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Acme", tenants[0].BrandName)
	assert.Equal(t, tenants[0].ID, first.TenantID)

	second, err := svc.Create(ctx, Form{Name: "Second", Objective: "sales", BrandName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, first.TenantID, second.TenantID)

	var count int64
	db.Model(&models.Tenant{}).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, []event.Type{event.TypeCampaignCreated, event.TypeCampaignCreated}, pub.types())
}

func TestService_CreateDefaultBrand(t *testing.T) {
	svc, db, _ := setupService(t)

	_, err := svc.Create(context.Background(), Form{Name: "X", Objective: "traffic"})
	require.NoError(t, err)

	var tenant models.Tenant
	require.NoError(t, db.First(&tenant).Error)
	assert.Equal(t, models.DefaultBrandName, tenant.BrandName)
}

func TestService_CreateMissingFields(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), Form{Name: "only name"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestService_UpdateAndGet(t *testing.T) {
	svc, _, pub := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, Form{Name: "Before", Objective: "leads"})
	require.NoError(t, err)

	form := Form{Name: "After", Objective: "authority", Platforms: []string{"LinkedIn"}}
	updated, err := svc.Update(ctx, c.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "authority", got.Objective)
	assert.Equal(t, []string{"LinkedIn"}, got.Details.Platforms)
	assert.Contains(t, pub.types(), event.TypeCampaignUpdated)

	_, err = svc.Update(ctx, uuid.New(), form)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestService_Duplicate(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	src, err := svc.Create(ctx, Form{Name: "Launch", Objective: "sales", Industry: "SaaS"})
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Launch (Copy)", dup.Name)
	assert.Equal(t, models.CampaignStatusPaused, dup.Status)
	assert.Equal(t, "SaaS", dup.Details.Industry)
	assert.Equal(t, src.TenantID, dup.TenantID)

	_, err = svc.Duplicate(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestService_ToggleStatus(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, Form{Name: "T", Objective: "traffic"})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused, toggled.Status)

	toggled, err = svc.ToggleStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, toggled.Status)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, got.Status)
}

func TestService_Delete(t *testing.T) {
	svc, _, pub := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, Form{Name: "D", Objective: "leads"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), ErrCampaignNotFound)
	assert.Contains(t, pub.types(), event.TypeCampaignDeleted)
}

func TestService_Onboard(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	result, err := svc.Onboard(ctx, "jane@example.com", "leads")
	require.NoError(t, err)
	assert.Equal(t, "jane", result.Tenant.BrandName)
	assert.Equal(t, "leads", result.Campaign.Objective)
	assert.Equal(t, result.Tenant.ID, result.Campaign.TenantID)
	assert.Equal(t, models.CampaignStatusActive, result.Campaign.Status)
	assert.Equal(t, "leads", result.Campaign.DisplayName())

	_, err = svc.Onboard(ctx, "jane@example.com", "fame")
	assert.ErrorIs(t, err, ErrInvalidGoal)
}

func TestBrandFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@example.com", "jane"},
		{"no-at-sign", "no-at-sign"},
		{"@example.com", models.DefaultBrandName},
		{"", models.DefaultBrandName},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BrandFromEmail(tt.email), tt.email)
	}
}

func TestService_List(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, Form{Name: name, Objective: "traffic"})
		require.NoError(t, err)
	}

	opts := models.DefaultListOptions()
	opts.Limit = 2
	list, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
