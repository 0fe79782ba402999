package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignScope 按活动过滤，nil 表示全部
func CampaignScope(campaignID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if campaignID == nil {
			return db
		}
		return db.Where("campaign_id = ?", *campaignID)
	}
}

// StatusScope 状态过滤
func StatusScope(status string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// PaginationScope 分页
func PaginationScope(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if offset < 0 {
			offset = 0
		}
		return db.Offset(offset).Limit(limit)
	}
}

// orderColumns 允许排序的列
var orderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"platform":   true,
	"status":     true,
}

// OrderScope 排序，未知列回退到 created_at
func OrderScope(orderBy, order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !orderColumns[orderBy] {
			orderBy = "created_at"
		}
		if order != "asc" && order != "desc" {
			order = "desc"
		}
		return db.Order(orderBy + " " + order)
	}
}
