// Package models 定义数据库模型和公共类型
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap JSONB 类型的 map
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer 接口
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan 实现 sql.Scanner 接口
func (m *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// scanJSON 解析 JSONB 列，兼容 []byte 和 string 两种驱动返回值
func scanJSON(value interface{}, dest interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan JSON: expected []byte or string, got %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// ListOptions 分页和排序选项
type ListOptions struct {
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
	OrderBy string `json:"order_by"`
	Order   string `json:"order"` // "asc" or "desc"
}

// DefaultListOptions 默认分页选项
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:  0,
		Limit:   50,
		OrderBy: "created_at",
		Order:   "desc",
	}
}

// Normalize 规范化分页选项
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.OrderBy == "" {
		o.OrderBy = "created_at"
	}
	if o.Order != "asc" && o.Order != "desc" {
		o.Order = "desc"
	}
}
