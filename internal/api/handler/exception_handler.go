package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/service"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// ExceptionHandler 课表例外 HTTP 处理器
type ExceptionHandler struct {
	exceptionSvc service.ExceptionService
}

// NewExceptionHandler 创建 ExceptionHandler
func NewExceptionHandler(exceptionSvc service.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{exceptionSvc: exceptionSvc}
}

// ListExceptions 按月查询停课与调课
// GET /api/v1/exceptions?course_id=xxx&month=1&year=2025
func (h *ExceptionHandler) ListExceptions(c *gin.Context) {
	var req dto.ExceptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.exceptionSvc.ListExceptions(c.Request.Context(), &req)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, result)
}

// RecordAbsence 登记停课
// POST /api/v1/exceptions/absences
func (h *ExceptionHandler) RecordAbsence(c *gin.Context) {
	var req dto.RecordAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.exceptionSvc.RecordAbsence(c.Request.Context(), &req, caller)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.Created(c, result)
}

// RecordReschedule 登记调课
// POST /api/v1/exceptions/reschedules
func (h *ExceptionHandler) RecordReschedule(c *gin.Context) {
	var req dto.RecordRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	caller, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.exceptionSvc.RecordReschedule(c.Request.Context(), &req, caller)
	if err != nil {
		handleAppError(c, err)
		return
	}

	response.Created(c, result)
}

// RemoveException 删除停课或调课（幂等）
// DELETE /api/v1/exceptions/:id
func (h *ExceptionHandler) RemoveException(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, codeBadRequest, "例外ID不能为空")
		return
	}

	if err := h.exceptionSvc.RemoveException(c.Request.Context(), id); err != nil {
		handleAppError(c, err)
		return
	}

	response.OK(c, nil)
}
