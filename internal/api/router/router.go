package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/config"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/api/handler"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/api/middleware"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/jwt"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时写接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("注册校验规则失败: %w", err)
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	writeLimit := middleware.RateLimit(rdb, cfg.Server.WriteLimit, time.Minute, logger)
	writers := middleware.RoleAuth(middleware.RoleAdmin, middleware.RoleStaff)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 课表例外
		exceptions := v1.Group("/exceptions")
		{
			exceptions.GET("", h.Exception.ListExceptions)
			exceptions.POST("/absences", writers, writeLimit, h.Exception.RecordAbsence)
			exceptions.POST("/reschedules", writers, writeLimit, h.Exception.RecordReschedule)
			exceptions.DELETE("/:id", writers, writeLimit, h.Exception.RemoveException)
		}

		// 有效课表
		courses := v1.Group("/courses")
		{
			courses.GET("/:id/calendar", h.Calendar.GetCalendar)
			courses.GET("/:id/calendar.ics", h.Calendar.ExportICS)
		}

		// 月度考勤汇总
		summaries := v1.Group("/attendance-summaries")
		{
			summaries.GET("", h.AttendanceSummary.ListSummaries)
			summaries.GET("/:student_id/:course_id", h.AttendanceSummary.GetSummary)
			summaries.POST("/refresh", writers, writeLimit, h.AttendanceSummary.Refresh)
			summaries.POST("/refresh-course", writers, writeLimit, h.AttendanceSummary.RefreshCourse)
		}
	}

	return r, nil
}
