package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 线索来源
const (
	LeadSourceCaptureForm      = "capture_form"
	LeadSourceWebsite          = "website"
	LeadSourceMaintenanceAudit = "maintenance-audit"
)

// Lead 公开表单采集的联系人
type Lead struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid" json:"tenant_id"`
	Email     string     `gorm:"column:email;type:varchar(320);not null" json:"email"`
	Source    string     `gorm:"column:source;type:varchar(64);not null" json:"source"`
	Metadata  JSONMap    `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;index:idx_leads_created" json:"created_at"`
}

// TableName 指定表名
func (Lead) TableName() string {
	return "mfs_leads"
}

// BeforeCreate GORM hook
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.Source == "" {
		l.Source = LeadSourceCaptureForm
	}
	return nil
}
