package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 接口只返回 JSON 与 iCalendar，不渲染页面：
// CSP 禁止加载任何资源，响应默认不缓存（日历导出由 Handler 自行放宽）
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")

		c.Next()
	}
}
