// Package repository 提供数据访问层
// 本核心是对已持久化数据的只读分析层，仓储只暴露查询接口，没有写路径
package repository

import (
	"context"
	"database/sql"
)

// DB 只读数据库接口
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}
