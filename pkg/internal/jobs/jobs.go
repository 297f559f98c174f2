// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/metrics"
	"github.com/yeisme/pdfvault/pkg/scheduler"
)

// SchemaChecker 数据库巡检所需的能力.
type SchemaChecker interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RegisterJobs 配置后台任务：按固定间隔执行数据库结构巡检.
func RegisterJobs(ctx context.Context, sched *scheduler.Scheduler, cfg configs.JobsConfig, dbc SchemaChecker) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if dbc == nil {
		return fmt.Errorf("db client is nil")
	}

	return sched.AddInterval(ctx, JobSchemaCheck, cfg.SchemaCheckInterval, func(ctx context.Context) error {
		return CheckSchema(ctx, dbc)
	})
}

// CheckSchema 确认数据表存在且连接可用，结果写入 DBHealthy 指标.
func CheckSchema(ctx context.Context, dbc SchemaChecker) error {
	l := log.Logger().With().Str("job", JobSchemaCheck).Logger()

	err := errors.Join(dbc.EnsureSchema(ctx), dbc.Ping(ctx))
	if err != nil {
		metrics.DBHealthy.Set(0)
		l.Error().Err(err).Msg("schema check failed")

		return err
	}

	metrics.DBHealthy.Set(1)
	l.Debug().Msg("schema check passed")

	return nil
}
