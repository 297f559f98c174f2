// Package db 处理上传记录的数据库存储操作：建表、连接、插入与查询.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/pdfvault/pkg/configs"
	nlog "github.com/yeisme/pdfvault/pkg/log"
)

// DialectorFactory 定义创建 dialector 的函数类型. 各驱动的连接参数写法不同，
// 由工厂自行在 cfg.GetDSN() 之后拼接.
type DialectorFactory func(cfg *configs.DBConfig) gorm.Dialector

// dialectorFactories 存储数据库类型到 dialector 工厂的映射.
var dialectorFactories = map[configs.DBType]DialectorFactory{}

// RegisterDialectorFactory 注册数据库 dialector 工厂函数.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 包装 GORM DB 客户端. 数据库文件在运行期被删除时 EnsureSchema 会重新打开连接池，
// 读写操作在 mu 的读锁下进行，重开时持有写锁.
type Client struct {
	mu   sync.RWMutex
	db   *gorm.DB
	cfg  configs.DBConfig
	path string
}

// New 打开 SQLite 数据库文件并探测连接. 锁等待时间与外键约束通过 DSN 设置，
// 连接池中的每个连接都会带上这些参数.
func New(ctx context.Context, cfg *configs.DBConfig) (*Client, error) {
	c := &Client{cfg: *cfg, path: cfg.GetPath()}

	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}

	c.db = db

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("path", c.path).
		Dur("busy_timeout", cfg.GetBusyTimeout()).
		Msg("数据库连接成功")

	return c, nil
}

// open 创建目录并打开一个新的连接池.
func (c *Client) open(ctx context.Context) (*gorm.DB, error) {
	if dsn := c.cfg.GetDSN(); dsn == "" {
		return nil, fmt.Errorf("%w: failed to generate DSN for database type: %s", ErrConnection, c.cfg.Type)
	}

	factory, exists := dialectorFactories[c.cfg.Type]
	if !exists {
		return nil, fmt.Errorf("%w: unsupported database type: %s", ErrConnection, c.cfg.Type)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create database dir: %w", ErrSchemaIO, err)
	}

	// 配置 GORM 日志
	gormLogger := logger.New(
		nlog.Logger(),
		logger.Config{
			SlowThreshold:             0, // 慢查询阈值，0表示不记录慢查询
			LogLevel:                  parseGormLogLevel(c.cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(factory(&c.cfg), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrConnection, err)
	}

	// 获取底层 SQL DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get underlying sql.DB: %w", ErrConnection, err)
	}

	// 配置连接池
	sqlDB.SetMaxOpenConns(c.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.cfg.MaxIdleConns)

	// 测试连接
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrConnection, err)
	}

	return db, nil
}

// parseGormLogLevel 将配置中的日志级别映射为 GORM 日志级别.
func parseGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Path 返回数据库文件的绝对路径.
func (c *Client) Path() string {
	return c.path
}

// GetDB 返回当前的 GORM DB 实例. 重开之后旧实例会被关闭，调用方不要长期持有.
func (c *Client) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.db
}

// Ping 探测数据库是否可用.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return nil
}

// Close 关闭连接池.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

const defaultGORMMetricsRefreshInterval = 15 // 秒

// RegisterGORMMetrics 注册GORM连接池指标到默认注册表.
func (c *Client) RegisterGORMMetrics(dbName string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// 使用现有的注册表而不是让插件创建新的
	promConfig := gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: defaultGORMMetricsRefreshInterval,
		StartServer:     false, // 不启动独立的服务器
	}

	if err := c.db.Use(gormPrometheus.New(promConfig)); err != nil {
		return fmt.Errorf("failed to register GORM prometheus plugin: %w", err)
	}

	return nil
}
