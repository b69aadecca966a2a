package handler

import "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Exception         *ExceptionHandler
	Calendar          *CalendarHandler
	AttendanceSummary *AttendanceSummaryHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Exception:         NewExceptionHandler(svc.Exception),
		Calendar:          NewCalendarHandler(svc.Calendar),
		AttendanceSummary: NewAttendanceSummaryHandler(svc.AttendanceSummary),
	}
}
