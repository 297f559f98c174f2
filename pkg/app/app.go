// Package app 提供应用程序的初始化和运行功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/internal/jobs"
	"github.com/yeisme/pdfvault/pkg/internal/router"
	"github.com/yeisme/pdfvault/pkg/internal/service"
	"github.com/yeisme/pdfvault/pkg/internal/storage"
	"github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/metrics"
	"github.com/yeisme/pdfvault/pkg/middleware"
	"github.com/yeisme/pdfvault/pkg/scheduler"
	"github.com/yeisme/pdfvault/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// App 持有 HTTP 引擎以及它依赖的全部资源.
type App struct {
	Engine *gin.Engine

	config    *configs.AppConfig
	storage   *storage.Manager
	scheduler *scheduler.Scheduler
	server    *http.Server

	closeOnce sync.Once
	closeErr  error
}

// NewApp 按配置组装应用. ctx 结束时停止限流器的后台清理.
// 数据库无法打开或建表失败时返回错误.
func NewApp(ctx context.Context, config *configs.AppConfig) (*App, error) {
	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: config, storage: manager}

	svc := service.NewPDFService(manager.DB, manager.Files, serviceOptions(config, manager)...)

	a.Engine = newEngine(config)

	deps := router.Deps{
		Uploader:       svc,
		DB:             manager.DB,
		RateLimit:      config.RateLimit,
		CircuitBreaker: config.CircuitBreaker,
	}
	if manager.MQ != nil {
		deps.MQ = manager.MQ
		deps.MQType = string(manager.MQ.Type())
	}

	router.Register(ctx, a.Engine, deps)

	if err := metrics.StartMetricsServer(config.Metrics, a.Engine); err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}

	if config.Jobs.Enabled {
		sched, err := scheduler.NewScheduler()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("init scheduler: %w", err), a.Close(ctx))
		}

		a.scheduler = sched

		if err := jobs.RegisterJobs(ctx, sched, config.Jobs, manager.DB); err != nil {
			return nil, errors.Join(fmt.Errorf("register jobs: %w", err), a.Close(ctx))
		}
	}

	a.server = &http.Server{
		Addr:         config.Server.GetAddr(),
		Handler:      a.Engine,
		ReadTimeout:  config.Server.GetTimeoutDuration(),
		WriteTimeout: config.Server.GetTimeoutDuration(),
	}

	return a, nil
}

// serviceOptions 根据配置决定上传大小限制以及是否发布事件.
func serviceOptions(config *configs.AppConfig, manager *storage.Manager) []service.Option {
	opts := []service.Option{service.WithMaxSize(config.Upload.GetMaxSize())}

	if manager.MQ != nil && config.Events.Enabled && config.Events.PDFStored {
		opts = append(opts, service.WithEvents(manager.MQ.Publisher(), config.Events.Producer))
	}

	return opts
}

// newEngine 创建 gin 引擎并挂载全局中间件.
func newEngine(config *configs.AppConfig) *gin.Engine {
	engine := gin.New()
	engine.MaxMultipartMemory = config.Upload.GetMaxMultipartMemory()

	engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
	)

	if config.Metrics.Enabled {
		engine.Use(middleware.PrometheusMiddleware())
	}

	if config.Server.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	return engine
}

// Run 启动后台任务与 HTTP 服务，ctx 结束后优雅关闭并释放资源.
func (a *App) Run(ctx context.Context) error {
	l := log.Logger()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info().Str("addr", a.server.Addr).Msg("http server listening")

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		l.Info().Msg("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(err, a.Close(closeCtx))
}

// Close 停止后台任务并关闭存储与追踪，重复调用返回第一次的结果.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() { a.closeErr = a.close(ctx) })

	return a.closeErr
}

func (a *App) close(ctx context.Context) error {
	var errs []error

	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Stop())
	}

	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}

	errs = append(errs, tracing.ShutdownTracer(ctx))

	return errors.Join(errs...)
}

// Storage 返回应用使用的存储聚合.
func (a *App) Storage() *storage.Manager {
	return a.storage
}
