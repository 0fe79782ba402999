package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/houzhh15/autopilot/internal/models"
)

// ConnectionRepository 平台连接仓储接口
type ConnectionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.PlatformConnection, error)
	Upsert(ctx context.Context, conn *models.PlatformConnection) error
}

type connectionRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConnectionRepository 创建 ConnectionRepository 实例
func NewConnectionRepository(db *gorm.DB, logger *zap.Logger) ConnectionRepository {
	return &connectionRepositoryImpl{
		db:     db,
		logger: logger.Named("connection_repository"),
	}
}

// ListByUser 查询用户的平台连接
func (r *connectionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*models.PlatformConnection, error) {
	var conns []*models.PlatformConnection
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&conns).Error; err != nil {
		return nil, WrapError(err, "list platform connections")
	}
	return conns, nil
}

// Upsert 写入或更新平台连接状态
func (r *connectionRepositoryImpl) Upsert(ctx context.Context, conn *models.PlatformConnection) error {
	conn.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
			DoUpdates: clause.AssignmentColumns([]string{"connected", "updated_at"}),
		}).
		Create(conn).Error
	if err != nil {
		return WrapError(err, "upsert platform connection")
	}
	return nil
}

// ReportRepository 报告仓储接口
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	ListRecent(ctx context.Context, limit int) ([]*models.Report, error)
}

type reportRepositoryImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReportRepository 创建 ReportRepository 实例
func NewReportRepository(db *gorm.DB, logger *zap.Logger) ReportRepository {
	return &reportRepositoryImpl{
		db:     db,
		logger: logger.Named("report_repository"),
	}
}

// Create 保存报告
func (r *reportRepositoryImpl) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return WrapError(err, "create report")
	}
	r.logger.Info("Report created",
		zap.String("id", report.ID.String()),
		zap.String("type", string(report.ReportType)),
	)
	return nil
}

// ListRecent 查询最近的报告
func (r *reportRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.Report, error) {
	var reports []*models.Report
	err := r.db.WithContext(ctx).
		Scopes(OrderScope("created_at", "desc"), PaginationScope(limit, 0)).
		Find(&reports).Error
	if err != nil {
		return nil, WrapError(err, "list reports")
	}
	return reports, nil
}
