// Package middleware 提供 gin 中间件：请求 ID、请求日志、指标、追踪、CORS、限流与熔断.
package middleware

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid"
)

// HeaderRequestID 请求 ID 的请求/响应头.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID gin.Context 中保存请求 ID 的键.
const ContextKeyRequestID = "request_id"

// maxRequestIDLen 客户端传入的请求 ID 最大长度，超过时重新生成.
const maxRequestIDLen = 128

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewRequestID 生成按时间排序的 ULID.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RequestIDMiddleware 沿用客户端传入的 X-Request-ID，缺失时生成 ULID，并写回响应头.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = NewRequestID()
		}

		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID 返回当前请求的 ID，未经过 RequestIDMiddleware 时为空.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// abortJSON 以统一的错误结构终止请求.
func abortJSON(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"status": code, "message": msg})
}
