package lead

import (
	"context"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/houzhh15/autopilot/internal/apierror"
	"github.com/houzhh15/autopilot/internal/event"
	"github.com/houzhh15/autopilot/internal/models"
	"github.com/houzhh15/autopilot/internal/repository"
)

// staticLocator 固定返回国家代码
type staticLocator map[string]string

func (l staticLocator) Country(ip string) string { return l[ip] }

type countingPublisher struct {
	events []*event.DomainEvent
}

func (p *countingPublisher) Publish(ctx context.Context, events ...*event.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *countingPublisher) Close() error { return nil }

// failingLeadRepository Create 总是返回唯一约束冲突
type failingLeadRepository struct {
	repository.LeadRepository
}

func (failingLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return repository.WrapError(&pgconn.PgError{
		Code:    "23505",
		Message: `duplicate key value violates unique constraint "leads_email_key"`,
		Detail:  "Key (email)=(hello@acme.io) already exists.",
	}, "create lead")
}

func setupFailingService(t *testing.T) (*Service, *countingPublisher) {
	db := setupTestDB(t)
	pub := &countingPublisher{}
	svc := NewService(
		repository.NewTenantRepository(db, zap.NewNop()),
		failingLeadRepository{},
		nil, pub, zap.NewNop())
	return svc, pub
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

func setupService(t *testing.T, locator Locator) (*Service, *gorm.DB, *countingPublisher) {
	db := setupTestDB(t)
	logger := zap.NewNop()
	pub := &countingPublisher{}
	svc := NewService(
		repository.NewTenantRepository(db, logger),
		repository.NewLeadRepository(db, logger),
		locator, pub, logger)
	return svc, db, pub
}

func TestCapture_RequiresEmail(t *testing.T) {
	svc, _, _ := setupService(t, nil)

	_, err := svc.Capture(context.Background(), CaptureRequest{Email: "  "}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailRequired)
	assert.Equal(t, "Email is required", ErrEmailRequired.Message)
}

func TestCapture_SaveFailed(t *testing.T) {
	svc, pub := setupFailingService(t)

	_, err := svc.Capture(context.Background(), CaptureRequest{Email: "hello@acme.io"}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t,
		`Failed to save lead: duplicate key value violates unique constraint "leads_email_key": Key (email)=(hello@acme.io) already exists.`,
		apierror.As(err).Message)
	assert.Empty(t, pub.events)
}

func TestCapture_DefaultsWithoutTenant(t *testing.T) {
	svc, _, pub := setupService(t, nil)

	lead, err := svc.Capture(context.Background(), CaptureRequest{Email: "a@b.co"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.LeadSourceCaptureForm, lead.Source)
	assert.Nil(t, lead.TenantID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TypeLeadCaptured, pub.events[0].Type)
}

func TestCapture_UsesFirstTenant(t *testing.T) {
	svc, db, _ := setupService(t, nil)
	tenant := &models.Tenant{BrandName: "Acme"}
	require.NoError(t, db.Create(tenant).Error)

	lead, err := svc.Capture(context.Background(), CaptureRequest{Email: "a@b.co", Source: "website"}, "")
	require.NoError(t, err)
	require.NotNil(t, lead.TenantID)
	assert.Equal(t, tenant.ID, *lead.TenantID)
	assert.Equal(t, "website", lead.Source)
}

func TestCapture_ExplicitTenant(t *testing.T) {
	svc, db, _ := setupService(t, nil)
	tenant := &models.Tenant{BrandName: "Explicit"}
	require.NoError(t, db.Create(tenant).Error)

	lead, err := svc.Capture(context.Background(), CaptureRequest{Email: "a@b.co", TenantID: tenant.ID.String()}, "")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, *lead.TenantID)

	_, err = svc.Capture(context.Background(), CaptureRequest{Email: "a@b.co", TenantID: "nope"}, "")
	assert.ErrorIs(t, err, ErrInvalidTenant)
}

func TestCapture_Country(t *testing.T) {
	svc, _, _ := setupService(t, staticLocator{"81.2.69.142": "GB"})

	lead, err := svc.Capture(context.Background(), CaptureRequest{Email: "a@b.co"}, "81.2.69.142")
	require.NoError(t, err)
	assert.Equal(t, "GB", lead.Metadata["country"])

	lead, err = svc.Capture(context.Background(), CaptureRequest{Email: "c@d.co"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotContains(t, lead.Metadata, "country")
}

func TestAudit(t *testing.T) {
	svc, db, _ := setupService(t, nil)

	lead, err := svc.Audit(context.Background(), AuditRequest{
		Email:    "ops@acme.io",
		LinkedIn: "linkedin.com/company/acme",
		Twitter:  "@acme",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, models.LeadSourceMaintenanceAudit, lead.Source)

	var stored models.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, "@acme", stored.Metadata["twitter"])
	assert.Equal(t, "linkedin.com/company/acme", stored.Metadata["linkedin"])
}

func TestList(t *testing.T) {
	svc, _, _ := setupService(t, nil)
	for _, e := range []string{"1@x.io", "2@x.io"} {
		_, err := svc.Capture(context.Background(), CaptureRequest{Email: e}, "")
		require.NoError(t, err)
	}

	leads, err := svc.List(context.Background(), models.DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestGeoIPLocator_Disabled(t *testing.T) {
	l := NewGeoIPLocator("", nil)
	assert.False(t, l.Enabled())
	assert.Empty(t, l.Country("8.8.8.8"))
	assert.NoError(t, l.Close())

	l = NewGeoIPLocator("/nonexistent/GeoLite2-Country.mmdb", zap.NewNop())
	assert.False(t, l.Enabled())
}

func TestIsPrivateIP(t *testing.T) {
	for _, ip := range []string{"10.1.2.3", "192.168.0.1", "127.0.0.1", "::1", "fe80::1"} {
		assert.True(t, isPrivateIP(net.ParseIP(ip)), ip)
	}
	assert.False(t, isPrivateIP(net.ParseIP("8.8.8.8")))
}
