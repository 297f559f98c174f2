package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/pdfvault/pkg/configs"
)

const (
	// limiterIdleTTL 超过该时间未出现的 key 会被清理.
	limiterIdleTTL = 10 * time.Minute
	// retryAfterSeconds 被限流时 Retry-After 的值.
	retryAfterSeconds = "1"
)

// keyedLimiter 按 key 维护独立的令牌桶.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	return &keyedLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
	}
}

func (k *keyedLimiter) allow(key string, now time.Time) bool {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}

	e.lastSeen = now
	k.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// sweep 删除闲置的 key，返回删除数量.
func (k *keyedLimiter) sweep(now time.Time) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	n := 0

	for key, e := range k.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(k.entries, key)
			n++
		}
	}

	return n
}

// rateLimitKey 按配置选择限流维度：global、ip 或 header:Header-Name，请求头缺失时退回客户端 IP.
func rateLimitKey(mode string) func(c *gin.Context) string {
	mode = strings.TrimSpace(mode)

	switch {
	case mode == "" || strings.EqualFold(mode, "global"):
		return func(*gin.Context) string { return "global" }
	case strings.HasPrefix(strings.ToLower(mode), "header:"):
		header := mode[len("header:"):]

		return func(c *gin.Context) string {
			if v := c.GetHeader(header); v != "" {
				return "h:" + v
			}

			return "ip:" + c.ClientIP()
		}
	default:
		return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
	}
}

// RateLimitMiddleware 返回一个基于配置的限流中间件，超限时返回 429.
// 闲置的 key 由后台协程定期清理，协程随 ctx 结束.
func RateLimitMiddleware(ctx context.Context, cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newKeyedLimiter(cfg.RPS, cfg.Burst)
	keyOf := rateLimitKey(cfg.Key)

	go func() {
		ticker := time.NewTicker(limiterIdleTTL)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiters.sweep(now)
			}
		}
	}()

	return func(c *gin.Context) {
		if !limiters.allow(keyOf(c), time.Now()) {
			c.Header("Retry-After", retryAfterSeconds)
			abortJSON(c, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		c.Next()
	}
}
