package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/internal/handle"
	"github.com/yeisme/pdfvault/pkg/middleware"
)

// UploadPath 上传接口路径.
const UploadPath = "/upload-pdf/"

// RegisterUploadRoute 注册上传路由，限流与熔断只作用于该路由.
func RegisterUploadRoute(ctx context.Context, r gin.IRouter, deps Deps) {
	r.POST(UploadPath,
		middleware.RateLimitMiddleware(ctx, deps.RateLimit),
		middleware.CircuitBreakerMiddleware("upload-pdf", deps.CircuitBreaker),
		handle.UploadPDF(deps.Uploader),
	)
}
