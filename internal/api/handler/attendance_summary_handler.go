package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/service"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// AttendanceSummaryHandler 月度考勤汇总 HTTP 处理器
type AttendanceSummaryHandler struct {
	summarySvc service.AttendanceSummaryService
}

// NewAttendanceSummaryHandler 创建 AttendanceSummaryHandler
func NewAttendanceSummaryHandler(summarySvc service.AttendanceSummaryService) *AttendanceSummaryHandler {
	return &AttendanceSummaryHandler{summarySvc: summarySvc}
}

// Refresh 重新计算单个学生的月度汇总
// POST /api/v1/attendance-summaries/refresh
func (h *AttendanceSummaryHandler) Refresh(c *gin.Context) {
	var req dto.RefreshSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.summarySvc.Aggregate(c.Request.Context(), req.StudentID, req.CourseID, *req.Month, req.Year)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshCourse 重新计算整门课程的月度汇总
// POST /api/v1/attendance-summaries/refresh-course
func (h *AttendanceSummaryHandler) RefreshCourse(c *gin.Context) {
	var req dto.RefreshCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.summarySvc.AggregateCourse(c.Request.Context(), req.CourseID, *req.Month, req.Year)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSummary 读取已计算的月度汇总
// GET /api/v1/attendance-summaries/:student_id/:course_id?month=1&year=2025
func (h *AttendanceSummaryHandler) GetSummary(c *gin.Context) {
	var path dto.SummaryPath
	if err := c.ShouldBindUri(&path); err != nil {
		bindFailed(c, err)
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.summarySvc.GetSummary(c.Request.Context(), path.StudentID, path.CourseID, *q.Month, q.Year)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSummaries 分页查询月度汇总
// GET /api/v1/attendance-summaries?course_id=xxx&month=1&year=2025&page=1
func (h *AttendanceSummaryHandler) ListSummaries(c *gin.Context) {
	var req dto.SummaryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.summarySvc.ListSummaries(c.Request.Context(), &req)
	if err != nil {
		handleAppError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
