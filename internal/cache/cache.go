// Package cache 提供 JSON 缓存存储，Redis 实现用于生产，内存实现用于测试和单机部署
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// Store 键值缓存接口
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 写入缓存，tags 用于批量失效
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	// SetNX 键不存在时写入，返回是否写入成功
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	// InvalidateTag 删除带有该标签的全部键
	InvalidateTag(ctx context.Context, tag string) error
}

// GetJSON 读取并解析 JSON 缓存
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON 序列化并写入缓存
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl, tags...)
}

// Remember 命中时返回缓存值，否则调用 load 并写回缓存
// 缓存读写失败不影响结果
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, tag string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if s != nil {
		if err := GetJSON(ctx, s, key, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if s != nil {
		var tags []string
		if tag != "" {
			tags = []string{tag}
		}
		_ = SetJSON(ctx, s, key, value, ttl, tags...)
	}
	return value, nil
}
