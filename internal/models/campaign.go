package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
)

// IsValid 验证状态值
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusPaused:
		return true
	}
	return false
}

// Toggle 在 active 和 paused 之间切换
func (s CampaignStatus) Toggle() CampaignStatus {
	if s == CampaignStatusActive {
		return CampaignStatusPaused
	}
	return CampaignStatusActive
}

// CampaignDetails 活动的定向、语气和排期信息 (JSONB)
type CampaignDetails struct {
	BrandName        string   `json:"brandName"`
	Industry         string   `json:"industry"`
	TargetAudience   string   `json:"targetAudience"`
	ToneOfVoice      []string `json:"toneOfVoice"`
	Platforms        []string `json:"platforms"`
	KeyMessages      string   `json:"keyMessages"`
	CallToAction     string   `json:"callToAction"`
	ContentThemes    string   `json:"contentThemes"`
	PostingFrequency string   `json:"postingFrequency"`
	CampaignDuration string   `json:"campaignDuration"`
}

// Value 实现 driver.Valuer 接口
func (d CampaignDetails) Value() (driver.Value, error) {
	if d.ToneOfVoice == nil {
		d.ToneOfVoice = []string{}
	}
	if d.Platforms == nil {
		d.Platforms = []string{}
	}
	return json.Marshal(d)
}

// Scan 实现 sql.Scanner 接口
func (d *CampaignDetails) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// Campaign 营销活动
type Campaign struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_campaigns_tenant" json:"tenant_id"`
	Name      string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Objective string          `gorm:"column:objective;type:varchar(32);not null" json:"objective"`
	Details   CampaignDetails `gorm:"column:details;type:jsonb" json:"details"`
	Status    CampaignStatus  `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "mfs_campaigns"
}

// BeforeCreate GORM hook
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = CampaignStatusActive
	}
	return nil
}

// DisplayName 列表中展示的名称，未命名时回退到目标
func (c *Campaign) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Objective
}
