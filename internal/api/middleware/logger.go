package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
)

// Logger 访问日志（Zap 结构化日志）
// Handler 通过 c.Error 登记的业务错误在这里展开：依赖故障额外输出协作方与 key，
// 配合 request_id 可从一条 503 定位到具体的存储或锁服务
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if uid := c.GetString("user_id"); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		fields = append(fields, errorFields(c.Errors)...)

		switch {
		case status >= 500:
			logger.Error("请求处理失败", fields...)
		case status >= 400:
			logger.Warn("客户端错误", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}

func errorFields(errs []*gin.Error) []zap.Field {
	if len(errs) == 0 {
		return nil
	}
	last := errs[len(errs)-1].Err

	fields := []zap.Field{zap.Error(last)}
	var appErr *apperrors.AppError
	if errors.As(last, &appErr) {
		fields = append(fields, zap.String("op", appErr.Op))
		if appErr.Collaborator != "" {
			fields = append(fields,
				zap.String("collaborator", appErr.Collaborator),
				zap.String("key", appErr.Key),
			)
		}
	}
	return fields
}
