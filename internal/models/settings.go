package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformConnection 用户与社交平台的连接状态
type PlatformConnection struct {
	UserID    string    `gorm:"column:user_id;type:varchar(64);primaryKey" json:"user_id"`
	Platform  string    `gorm:"column:platform;type:varchar(32);primaryKey" json:"platform"`
	Connected bool      `gorm:"column:connected;not null" json:"connected"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName 指定表名
func (PlatformConnection) TableName() string {
	return "mfs_platform_connections"
}

// ReportType 报告周期
type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
)

// IsValid 验证报告周期
func (t ReportType) IsValid() bool {
	switch t {
	case ReportDaily, ReportWeekly, ReportMonthly:
		return true
	}
	return false
}

// Report 管理员生成的周期报告
type Report struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportType ReportType `gorm:"column:report_type;type:varchar(16);not null" json:"report_type"`
	Summary    JSONMap    `gorm:"column:summary;type:jsonb" json:"summary"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (Report) TableName() string {
	return "mfs_reports"
}

// BeforeCreate GORM hook
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// All 返回全部模型，用于测试环境自动建表
func All() []interface{} {
	return []interface{}{
		&Tenant{}, &Campaign{}, &Post{}, &Lead{},
		&Plan{}, &Subscription{}, &PlatformConnection{}, &Report{},
	}
}
