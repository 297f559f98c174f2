// Package router 管理路由配置，将路径和处理器绑定到 gin 引擎.
package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/internal/handle"
)

// Deps 由应用层注入的处理器依赖.
type Deps struct {
	Uploader handle.Uploader
	DB       handle.DBChecker
	// MQ 为 nil 表示未启用消息队列
	MQ     handle.MQChecker
	MQType string

	RateLimit      configs.RateLimitConfig
	CircuitBreaker configs.CircuitBreakerConfig
}

// Register 注册全部业务路由. ctx 结束时停止限流器的后台清理.
//
//	POST /upload-pdf/  -> 上传
//	GET  /health/db    -> 数据库健康检查
//	GET  /health/mq    -> 消息队列健康检查
func Register(ctx context.Context, r gin.IRouter, deps Deps) {
	RegisterUploadRoute(ctx, r, deps)
	RegisterHealthCheckRoute(r, deps)
}
