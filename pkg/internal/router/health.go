package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(r gin.IRouter, deps Deps) {
	healthRoutes := r.Group("/health")
	{
		healthRoutes.GET("/db", handle.HealthDB(deps.DB))
		healthRoutes.GET("/mq", handle.HealthMQ(deps.MQ, deps.MQType))
	}
}
