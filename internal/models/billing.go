package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanType 套餐类型
type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanStarter PlanType = "starter"
	PlanPro     PlanType = "pro"
	PlanAgency  PlanType = "agency"
)

// DisplayName 套餐展示名称
func (p PlanType) DisplayName() string {
	switch p {
	case PlanStarter:
		return "Starter"
	case PlanPro:
		return "Pro"
	case PlanAgency:
		return "Agency"
	default:
		return "Free"
	}
}

// Plan 套餐，价格单位为分
type Plan struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanType     PlanType  `gorm:"column:plan_type;type:varchar(16);not null" json:"plan_type"`
	Price        int64     `gorm:"column:price;not null" json:"price"`
	MonthlyLimit int       `gorm:"column:monthly_limit;not null" json:"monthly_limit"`
}

// TableName 指定表名
func (Plan) TableName() string {
	return "mfs_plans"
}

// BeforeCreate GORM hook
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SubscriptionStatusActive 有效订阅
const SubscriptionStatusActive = "active"

// Subscription 用户订阅，PriceID 指向 Plan
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null" json:"user_id"`
	PriceID   uuid.UUID `gorm:"column:price_id;type:uuid;not null" json:"price_id"`
	Status    string    `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`

	Plan *Plan `gorm:"foreignKey:PriceID" json:"mfs_plans,omitempty"`
}

// TableName 指定表名
func (Subscription) TableName() string {
	return "mfs_subscriptions"
}

// BeforeCreate GORM hook
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = SubscriptionStatusActive
	}
	return nil
}
