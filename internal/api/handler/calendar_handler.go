package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/service"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// CalendarHandler 有效课表 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// GetCalendar 获取课程某月有效课表
// GET /api/v1/courses/:id/calendar?month=1&year=2025
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	var path dto.CoursePath
	if err := c.ShouldBindUri(&path); err != nil {
		bindFailed(c, err)
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.calendarSvc.GetCalendar(c.Request.Context(), path.ID, *q.Month, q.Year)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportICS 导出课程某月有效课表为 iCalendar
// GET /api/v1/courses/:id/calendar.ics?month=1&year=2025
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	var path dto.CoursePath
	if err := c.ShouldBindUri(&path); err != nil {
		bindFailed(c, err)
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	body, err := h.calendarSvc.ExportICS(c.Request.Context(), path.ID, *q.Month, q.Year)
	if err != nil {
		handleAppError(c, err)
		return
	}

	filename := fmt.Sprintf("course-%s-%04d-%02d.ics", path.ID, q.Year, *q.Month+1)
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}
