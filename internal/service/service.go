package service

import (
	"go.uber.org/zap"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/config"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Exception         ExceptionService
	Calendar          CalendarService
	AttendanceSummary AttendanceSummaryService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker SummaryLocker,
	logger *zap.Logger,
) *Service {
	return &Service{
		Exception:         NewExceptionService(repo, logger),
		Calendar:          NewCalendarService(repo, cfg.Server.CalendarName, logger),
		AttendanceSummary: NewAttendanceSummaryService(&cfg.Attendance, repo, locker, logger),
	}
}
