//go:build !no_sqlite && !cgo

package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/pdfvault/pkg/configs"
)

// createSQLiteDialector 创建SQLite dialector (纯 Go 版本).
// modernc 驱动通过 _pragma 参数对每个新连接执行 PRAGMA.
func createSQLiteDialector(cfg *configs.DBConfig) gorm.Dialector {
	fk := 0
	if cfg.ForeignKeys {
		fk = 1
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(%d)",
		cfg.GetDSN(), cfg.BusyTimeoutMS, fk)

	return sqlite.Open(dsn)
}

// 注册SQLite dialector工厂函数.
func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
