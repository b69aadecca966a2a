package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/redis"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// RateLimit 写接口限流（Redis 滑动窗口）
// 按 用户 + 方法 + 路由 计数，防止脚本反复触发整门课的汇总重算。
// rdb 为 nil 或 limit<=0 时不限流；Redis 故障时放行并记录告警。
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.GetString(ContextUserID)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := "rate_limit:" + subject + ":" + c.Request.Method + ":" + c.FullPath()

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，已放行",
				zap.String("key", key),
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "写操作过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
