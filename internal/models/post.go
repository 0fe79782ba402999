package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostStatus 帖子状态
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
)

// Post 某个活动在某个平台上生成的内容
type Post struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID uuid.UUID  `gorm:"column:campaign_id;type:uuid;not null;index:idx_posts_campaign" json:"campaign_id"`
	Platform   string     `gorm:"column:platform;type:varchar(32);not null" json:"platform"`
	Content    string     `gorm:"column:content;type:text;not null" json:"content"`
	Status     PostStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	ImageURL   *string    `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "mfs_posts"
}

// BeforeCreate GORM hook
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = PostStatusDraft
	}
	return nil
}

// HasImage 是否附带图片
func (p *Post) HasImage() bool {
	return p.ImageURL != nil && *p.ImageURL != ""
}
