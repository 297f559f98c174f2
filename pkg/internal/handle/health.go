package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/internal/types"
)

const timeout = 2 * time.Second

// DBChecker 数据库健康检查所需的能力.
type DBChecker interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

// MQChecker 消息队列健康检查所需的能力.
type MQChecker interface {
	Ping(ctx context.Context) error
}

// HealthDB 数据库健康检查：建表检查并 ping.
func HealthDB(dbc DBChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dbc == nil {
			unhealthy(c, "db", "db client not initialized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := dbc.EnsureSchema(ctx); err != nil {
			unhealthy(c, "db", err.Error())
			return
		}

		if err := dbc.Ping(ctx); err != nil {
			unhealthy(c, "db", err.Error())
			return
		}

		c.JSON(http.StatusOK, types.HealthResponse{Component: "db", Status: "ok"})
	}
}

// HealthMQ 消息队列健康检查. mqType 为空表示未启用消息队列.
func HealthMQ(mqc MQChecker, mqType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mqc == nil {
			c.JSON(http.StatusOK, types.HealthResponse{Component: "mq", Status: "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := mqc.Ping(ctx); err != nil {
			unhealthy(c, "mq", err.Error())
			return
		}

		c.JSON(http.StatusOK, types.HealthResponse{Component: "mq", Type: mqType, Status: "ok"})
	}
}

func unhealthy(c *gin.Context, component, msg string) {
	c.JSON(http.StatusServiceUnavailable, types.HealthResponse{Component: component, Status: "unhealthy", Error: msg})
}
