//go:build !no_sqlite && cgo

package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/pdfvault/pkg/configs"
)

// createSQLiteDialector 创建SQLite dialector (CGo版本).
func createSQLiteDialector(cfg *configs.DBConfig) gorm.Dialector {
	fk := 0
	if cfg.ForeignKeys {
		fk = 1
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=%d",
		cfg.GetDSN(), cfg.BusyTimeoutMS, fk)

	return sqlite.Open(dsn)
}

// 注册SQLite dialector工厂函数 (CGo版本).
func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
