// Package migrations 内嵌数据库迁移脚本
package migrations

import "embed"

// FS 迁移脚本文件系统，供 database.Migrator 使用
//
//go:embed *.sql
var FS embed.FS
