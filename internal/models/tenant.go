package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultBrandName 未提供品牌名时的租户名称
const DefaultBrandName = "My Brand"

// Tenant 租户：活动的计费和归属分组
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BrandName string    `gorm:"column:brand_name;type:varchar(255);not null" json:"brand_name"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "mfs_tenants"
}

// BeforeCreate GORM hook
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.BrandName == "" {
		t.BrandName = DefaultBrandName
	}
	return nil
}
