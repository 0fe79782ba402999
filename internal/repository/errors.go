// Package repository 提供基于 GORM 的数据访问层
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 预定义错误
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrForeignKey = errors.New("foreign key constraint violation")
	ErrInvalid    = errors.New("invalid value")
)

// pgErrors PostgreSQL 错误码到仓储错误的映射
var pgErrors = map[string]error{
	"23505": ErrDuplicate,  // unique_violation
	"23503": ErrForeignKey, // foreign_key_violation
	"23502": ErrInvalid,    // not_null_violation
	"22P02": ErrInvalid,    // invalid_text_representation
}

// IsNotFound 是否为未找到错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// WrapError 包装数据库错误，已知的 PostgreSQL 错误码映射为仓储错误，原始错误保留在链上
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := pgErrors[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w: %w", operation, mapped, err)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// ErrorDetail 返回给调用方的错误描述
// PostgreSQL 错误取 Message 和 Detail，其余错误取 Error()
func ErrorDetail(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	if pgErr.Detail != "" {
		return pgErr.Message + ": " + pgErr.Detail
	}
	return pgErr.Message
}
