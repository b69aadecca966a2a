package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/config"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/repository"
	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
	applogger "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/logger"
)

// AttendanceSummaryService 月度考勤汇总业务接口
type AttendanceSummaryService interface {
	// Aggregate 重新计算并覆盖 (学生, 课程, 月份) 的汇总；同一输入重复调用结果一致
	Aggregate(ctx context.Context, studentID, courseID string, month, year int) (*dto.AttendanceSummaryResponse, error)
	// AggregateCourse 对课程全部选课学生执行 Aggregate，单个学生失败不影响其他学生
	AggregateCourse(ctx context.Context, courseID string, month, year int) (*dto.CourseRefreshResponse, error)
	GetSummary(ctx context.Context, studentID, courseID string, month, year int) (*dto.AttendanceSummaryResponse, error)
	ListSummaries(ctx context.Context, req *dto.SummaryListRequest) ([]dto.AttendanceSummaryResponse, int64, error)
}

type attendanceSummaryService struct {
	repo    *repository.Repository
	locker  SummaryLocker
	workers int
	now     func() time.Time
	logger  *zap.Logger
}

// NewAttendanceSummaryService 创建 AttendanceSummaryService 实例
func NewAttendanceSummaryService(
	cfg *config.AttendanceConfig,
	repo *repository.Repository,
	locker SummaryLocker,
	logger *zap.Logger,
) AttendanceSummaryService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &attendanceSummaryService{
		repo:    repo,
		locker:  locker,
		workers: workers,
		now:     time.Now,
		logger:  logger,
	}
}

// ────────────────────── Aggregate ──────────────────────

func (s *attendanceSummaryService) Aggregate(ctx context.Context, studentID, courseID string, month, year int) (*dto.AttendanceSummaryResponse, error) {
	const op = "Aggregate"

	if studentID == "" {
		return nil, apperrors.Validation(op, "student_id 不能为空")
	}
	if err := validateMonth(op, month, year); err != nil {
		return nil, err
	}

	key := summaryKey(studentID, courseID, month, year)
	release, err := s.locker.Lock(ctx, key)
	if err != nil {
		if errors.Is(err, errLockTimeout) {
			return nil, apperrors.Conflict(op, "该学生 %d-%02d 的考勤汇总正在计算中，请稍后重试", year, month+1)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		applogger.FromContext(ctx, s.logger).Error("获取汇总锁失败", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Dependency(op, collabLock, key, err)
	}
	defer release()

	course, cal, err := loadEffectiveCalendar(ctx, s.repo, op, courseID, month, year)
	if err != nil {
		s.logDependency(ctx, err, key)
		return nil, err
	}

	first, last := MonthBounds(month, year)
	checkIns, err := s.repo.CheckIn.ListDates(ctx, studentID, course.CourseID, first, last)
	if err != nil {
		applogger.FromContext(ctx, s.logger).Error("读取考勤日志失败", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Dependency(op, collabCheckIns, key, err)
	}

	summary := ComputeSummary(studentID, course.CourseID, cal, checkIns)
	summary.ComputedAt = s.now().UTC()

	if err := s.repo.AttendanceSummary.Upsert(ctx, summary); err != nil {
		applogger.FromContext(ctx, s.logger).Error("写入考勤汇总失败", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Dependency(op, collabSummaries, key, err)
	}

	s.logger.Info("考勤汇总已更新",
		zap.String("student_id", studentID),
		zap.String("course_id", course.CourseID),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("total", summary.TotalSessions),
		zap.Int("attended", summary.AttendedSessions),
	)
	return toSummaryResponse(summary), nil
}

// ────────────────────── AggregateCourse ──────────────────────

func (s *attendanceSummaryService) AggregateCourse(ctx context.Context, courseID string, month, year int) (*dto.CourseRefreshResponse, error) {
	const op = "AggregateCourse"

	if err := validateMonth(op, month, year); err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, op, courseID)
	if err != nil {
		s.logDependency(ctx, err, courseID)
		return nil, err
	}

	studentIDs, err := s.repo.Course.ListStudentIDs(ctx, course.CourseID)
	if err != nil {
		applogger.FromContext(ctx, s.logger).Error("读取选课名单失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, apperrors.Dependency(op, collabCatalog, courseID, err)
	}

	var (
		mu        sync.Mutex
		refreshed = make([]dto.AttendanceSummaryResponse, 0, len(studentIDs))
		failed    = make([]dto.RefreshFailure, 0)
	)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, studentID := range studentIDs {
		studentID := studentID
		g.Go(func() error {
			resp, err := s.Aggregate(ctx, studentID, course.CourseID, month, year)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				msg := apperrors.PublicMessage(err)
				if msg == "" {
					msg = err.Error()
				}
				failed = append(failed, dto.RefreshFailure{StudentID: studentID, Message: msg})
				return nil
			}
			refreshed = append(refreshed, *resp)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(refreshed, func(i, j int) bool { return refreshed[i].StudentID < refreshed[j].StudentID })
	sort.Slice(failed, func(i, j int) bool { return failed[i].StudentID < failed[j].StudentID })

	if len(failed) > 0 {
		s.logger.Warn("课程考勤汇总部分失败",
			zap.String("course_id", course.CourseID),
			zap.Int("refreshed", len(refreshed)),
			zap.Int("failed", len(failed)),
		)
	}

	return &dto.CourseRefreshResponse{
		CourseID:  course.CourseID,
		Month:     month,
		Year:      year,
		Refreshed: refreshed,
		Failed:    failed,
	}, nil
}

// ────────────────────── GetSummary ──────────────────────

func (s *attendanceSummaryService) GetSummary(ctx context.Context, studentID, courseID string, month, year int) (*dto.AttendanceSummaryResponse, error) {
	const op = "GetSummary"

	if err := validateMonth(op, month, year); err != nil {
		return nil, err
	}

	summary, err := s.repo.AttendanceSummary.Get(ctx, studentID, courseID, month, year)
	if err != nil {
		key := summaryKey(studentID, courseID, month, year)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, "尚未计算该月考勤汇总: %s", key)
		}
		applogger.FromContext(ctx, s.logger).Error("查询考勤汇总失败", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Dependency(op, collabSummaries, key, err)
	}
	return toSummaryResponse(summary), nil
}

// ────────────────────── ListSummaries ──────────────────────

func (s *attendanceSummaryService) ListSummaries(ctx context.Context, req *dto.SummaryListRequest) ([]dto.AttendanceSummaryResponse, int64, error) {
	const op = "ListSummaries"

	if req.Month != nil && (*req.Month < 0 || *req.Month > 11) {
		return nil, 0, apperrors.Validation(op, "month 取值应为 0-11，实际 %d", *req.Month)
	}

	filter := repository.SummaryFilter{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Month:     req.Month,
		Year:      req.Year,
	}
	summaries, total, err := s.repo.AttendanceSummary.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		applogger.FromContext(ctx, s.logger).Error("列出考勤汇总失败", zap.Error(err))
		return nil, 0, apperrors.Dependency(op, collabSummaries, "list", err)
	}

	result := make([]dto.AttendanceSummaryResponse, 0, len(summaries))
	for i := range summaries {
		result = append(result, *toSummaryResponse(&summaries[i]))
	}
	return result, total, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *attendanceSummaryService) logDependency(ctx context.Context, err error, key string) {
	if errors.Is(err, apperrors.ErrDependency) {
		applogger.FromContext(ctx, s.logger).Error("汇总依赖不可用", zap.String("key", key), zap.Error(err))
	}
}

func summaryKey(studentID, courseID string, month, year int) string {
	return fmt.Sprintf("%s/%s/%d-%02d", studentID, courseID, year, month+1)
}

func toSummaryResponse(m *model.AttendanceSummary) *dto.AttendanceSummaryResponse {
	details := m.Details.Data()
	return &dto.AttendanceSummaryResponse{
		StudentID:            m.StudentID,
		CourseID:             m.CourseID,
		Month:                m.Month,
		Year:                 m.Year,
		TotalSessions:        m.TotalSessions,
		AttendedSessions:     m.AttendedSessions,
		AbsentSessions:       m.AbsentSessions,
		AttendancePercentage: m.AttendancePercentage,
		Details: dto.SummaryDetailsResponse{
			RegularSessions:     details.RegularSessions,
			ExtraSessions:       details.ExtraSessions,
			AbsentSessions:      details.AbsentSessions,
			RescheduledSessions: details.RescheduledSessions,
		},
	}
}
