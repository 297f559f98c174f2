// Package storage 聚合数据库、上传目录与消息队列，按配置统一初始化与关闭.
//
// Example:
//
//	mgr, err := storage.Init(ctx, configs.GetConfig())
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/yeisme/pdfvault/pkg/configs"
	dbc "github.com/yeisme/pdfvault/pkg/internal/storage/db"
	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
	mqc "github.com/yeisme/pdfvault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/metrics"
)

// Manager 聚合所有存储资源. MQ 未启用时为 nil.
type Manager struct {
	DB    *dbc.Client
	Files *local.Store
	MQ    *mqc.Client
}

// Option 调整 Init 的行为.
type Option func(*options)

type options struct {
	fs afero.Fs
}

// WithFs 指定上传目录所在的文件系统，默认使用操作系统文件系统.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// Init 按配置初始化存储. 数据库打开后立即建表，失败即返回错误.
func Init(ctx context.Context, cfg *configs.AppConfig, opts ...Option) (*Manager, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	l := nlog.Logger()
	m := &Manager{}

	db, err := dbc.New(ctx, &cfg.DB)
	if err != nil {
		return nil, err
	}

	m.DB = db

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, errors.Join(err, m.Close())
	}

	if cfg.Metrics.Enabled && cfg.Metrics.DBMetrics {
		if err := db.RegisterGORMMetrics(cfg.DB.Name); err != nil {
			l.Warn().Err(err).Msg("gorm metrics not registered")
		}
	}

	files, err := local.New(o.fs, cfg.Upload.GetDir())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init upload dir: %w", err), m.Close())
	}

	m.Files = files

	if cfg.MQ.Enabled {
		var reg prometheus.Registerer
		if cfg.Metrics.Enabled {
			reg = metrics.GetRegistry()
		}

		mq, err := mqc.New(ctx, &cfg.MQ, reg)
		if err != nil {
			return nil, errors.Join(err, m.Close())
		}

		m.MQ = mq
	}

	l.Info().
		Str("db", db.Path()).
		Str("uploads", files.Dir()).
		Bool("mq", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetFileStore 获取上传目录.
func (m *Manager) GetFileStore() *local.Store {
	return m.Files
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 关闭所有已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
