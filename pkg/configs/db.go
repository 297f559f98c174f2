package configs

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type (
	DBType string
)

const (
	// SQLite 协议.
	SQLite DBType = "sqlite"
)

const (
	DefaultDatabaseDir       = "data"         // 默认数据库目录
	DefaultDatabaseName      = "contracts.db" // 默认数据库文件名
	DefaultBusyTimeoutMillis = 30000          // 默认锁等待时间（毫秒），并发写入排队而不是立即失败
	DefaultForeignKeys       = true           // 默认开启外键约束
	DefaultMaxOpenConns      = 1              // SQLite 同一时刻只允许一个写入者
	DefaultMaxIdleConns      = 1              // 默认最大空闲连接数
	DefaultDBLogLevel        = "warn"         // 默认 GORM 日志级别
)

// DBConfig 数据库配置.
type DBConfig struct {
	Type          DBType `mapstructure:"type"            rule:"oneof=sqlite"`
	Dir           string `mapstructure:"dir"             rule:"required"`
	Name          string `mapstructure:"name"            rule:"required"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" rule:"min=0"`
	ForeignKeys   bool   `mapstructure:"foreign_keys"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"  rule:"min=0"`
	MaxIdleConns  int    `mapstructure:"max_idle_conns"  rule:"min=0"`
	LogLevel      string `mapstructure:"log_level"       rule:"oneof=silent error warn info"`
}

// GetDBType 返回数据库类型的字符串表示.
func (c *DBConfig) GetDBType() string {
	switch c.Type {
	case SQLite:
		return "SQLite"
	default:
		return "Unknown"
	}
}

// GetPath 返回数据库文件的绝对路径，无法解析时退回相对路径.
func (c *DBConfig) GetPath() string {
	p := filepath.Join(c.Dir, c.Name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}

	return p
}

// GetBusyTimeout 返回锁等待时间.
func (c *DBConfig) GetBusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// GetDSN 获取数据库的连接字符串. 各 SQLite 驱动的连接参数写法不同，
// 这里只返回文件路径，参数由 dialector 工厂拼接.
func (c *DBConfig) GetDSN() string {
	dsnMap := map[DBType]func() string{
		SQLite: c.getSQLiteDSN,
	}

	if fn, ok := dsnMap[c.Type]; ok {
		return fn()
	}

	return ""
}

// getSQLiteDSN 获取SQLite的DSN.
func (c *DBConfig) getSQLiteDSN() string {
	return fmt.Sprintf("file:%s", (&url.URL{Path: c.GetPath()}).EscapedPath())
}

// setDefaults 设置数据库配置的默认值.
func (c *DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", SQLite)
	v.SetDefault("db.dir", DefaultDatabaseDir)
	v.SetDefault("db.name", DefaultDatabaseName)
	v.SetDefault("db.busy_timeout_ms", DefaultBusyTimeoutMillis)
	v.SetDefault("db.foreign_keys", DefaultForeignKeys)
	v.SetDefault("db.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("db.max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("db.log_level", DefaultDBLogLevel)
}
