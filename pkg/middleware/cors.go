package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/configs"
)

// CORSMiddleware CORS中间件. 上传表单可能来自任意来源的页面.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = append(config.AllowHeaders, HeaderRequestID)
	config.ExposeHeaders = []string{HeaderRequestID}

	if cfg.Debug {
		config.AllowFiles = true
	}

	return cors.New(config)
}
