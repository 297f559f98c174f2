// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/internal/types"
)

// errorJSON 以统一的错误结构响应.
func errorJSON(c *gin.Context, code int, msg string) {
	c.JSON(code, types.ErrorResponse{Status: code, Message: msg})
}
