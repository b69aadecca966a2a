package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/repository"
	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
	applogger "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/logger"
)

// 外部协作方标识，写入 Dependency 错误便于定位
const (
	collabCatalog    = "catalog"
	collabExceptions = "exception_store"
	collabCheckIns   = "attendance_log"
	collabSummaries  = "summary_store"
	collabLock       = "lock_store"
)

// ExceptionService 课表例外（停课、调课）业务接口
type ExceptionService interface {
	RecordAbsence(ctx context.Context, req *dto.RecordAbsenceRequest, callerID string) (*dto.AbsentDayResponse, error)
	RecordReschedule(ctx context.Context, req *dto.RecordRescheduleRequest, callerID string) (*dto.RescheduledSessionResponse, error)
	// RemoveException 按 ID 删除停课或调课；ID 不存在时视为已删除
	RemoveException(ctx context.Context, id string) error
	ListExceptions(ctx context.Context, req *dto.ExceptionListRequest) (*dto.ExceptionListResponse, error)
}

type exceptionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExceptionService 创建 ExceptionService 实例
func NewExceptionService(repo *repository.Repository, logger *zap.Logger) ExceptionService {
	return &exceptionService{repo: repo, logger: logger}
}

// ────────────────────── RecordAbsence ──────────────────────

func (s *exceptionService) RecordAbsence(ctx context.Context, req *dto.RecordAbsenceRequest, callerID string) (*dto.AbsentDayResponse, error) {
	const op = "RecordAbsence"

	date, err := ParseDate(req.AbsentDate)
	if err != nil {
		return nil, apperrors.Validation(op, "absent_date: %v", err)
	}

	course, err := loadCourseForWrite(ctx, s.repo, op, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := checkSessionDate(op, "absent_date", course, date); err != nil {
		return nil, err
	}

	day := &model.AbsentDay{
		CourseID:   course.CourseID,
		AbsentDate: model.NewDate(date),
		Reason:     req.Reason,
	}
	if callerID != "" {
		day.CreatedBy = &callerID
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Slot.LockCourseDate(ctx, course.CourseID, date); err != nil {
			return err
		}

		if _, err := tx.RescheduledSession.GetByCourseAndOriginalDate(ctx, course.CourseID, date); err == nil {
			return apperrors.Conflict(op, "%s 已登记调课，不能再登记停课", FormatDate(date))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.AbsentDay.Create(ctx, day)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(op, "课程在 %s 已登记停课", FormatDate(date))
		}
		return nil, s.storeError(ctx, op, course.CourseID+"/"+FormatDate(date), err)
	}

	s.logger.Info("登记停课",
		zap.String("course_id", course.CourseID),
		zap.String("absent_date", FormatDate(date)),
		zap.String("caller_id", callerID),
	)
	return toAbsentDayResponse(day), nil
}

// ────────────────────── RecordReschedule ──────────────────────

func (s *exceptionService) RecordReschedule(ctx context.Context, req *dto.RecordRescheduleRequest, callerID string) (*dto.RescheduledSessionResponse, error) {
	const op = "RecordReschedule"

	original, err := ParseDate(req.OriginalDate)
	if err != nil {
		return nil, apperrors.Validation(op, "original_date: %v", err)
	}
	newDate, err := ParseDate(req.NewDate)
	if err != nil {
		return nil, apperrors.Validation(op, "new_date: %v", err)
	}
	if !newDate.After(original) {
		return nil, apperrors.Validation(op, "new_date 必须晚于 original_date: expected after %s, got %s",
			FormatDate(original), FormatDate(newDate))
	}

	course, err := loadCourseForWrite(ctx, s.repo, op, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := checkSessionDate(op, "original_date", course, original); err != nil {
		return nil, err
	}

	session := &model.RescheduledSession{
		CourseID:     course.CourseID,
		OriginalDate: model.NewDate(original),
		NewDate:      model.NewDate(newDate),
		Reason:       req.Reason,
	}
	if callerID != "" {
		session.CreatedBy = &callerID
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 按日期升序加锁（original < new），并发调课不会互相等待成环
		if err := tx.Slot.LockCourseDate(ctx, course.CourseID, original); err != nil {
			return err
		}
		if err := tx.Slot.LockCourseDate(ctx, course.CourseID, newDate); err != nil {
			return err
		}

		if _, err := tx.AbsentDay.GetByCourseAndDate(ctx, course.CourseID, original); err == nil {
			return apperrors.Conflict(op, "%s 已登记停课，不能再登记调课", FormatDate(original))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 同一日期只能有一次课，两次调课调入同一天会被合并而少计课次
		if other, err := tx.RescheduledSession.GetByCourseAndNewDate(ctx, course.CourseID, newDate); err == nil {
			return apperrors.Conflict(op, "%s 已有从 %s 调入的课次",
				FormatDate(newDate), FormatDate(model.DateOf(other.OriginalDate)))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.RescheduledSession.Create(ctx, session)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(op, "课程在 %s 的课次已调课，或 %s 已有调入课次",
				FormatDate(original), FormatDate(newDate))
		}
		return nil, s.storeError(ctx, op, course.CourseID+"/"+FormatDate(original), err)
	}

	s.logger.Info("登记调课",
		zap.String("course_id", course.CourseID),
		zap.String("original_date", FormatDate(original)),
		zap.String("new_date", FormatDate(newDate)),
		zap.String("caller_id", callerID),
	)
	return toRescheduledSessionResponse(session), nil
}

// ────────────────────── RemoveException ──────────────────────

func (s *exceptionService) RemoveException(ctx context.Context, id string) error {
	const op = "RemoveException"

	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation(op, "id 格式不正确: %q", id)
	}

	deleted, err := s.repo.AbsentDay.Delete(ctx, id)
	if err != nil {
		return s.storeError(ctx, op, id, err)
	}
	if deleted {
		s.logger.Info("删除停课登记", zap.String("id", id))
		return nil
	}

	deleted, err = s.repo.RescheduledSession.Delete(ctx, id)
	if err != nil {
		return s.storeError(ctx, op, id, err)
	}
	if deleted {
		s.logger.Info("删除调课登记", zap.String("id", id))
	}
	return nil
}

// ────────────────────── ListExceptions ──────────────────────

func (s *exceptionService) ListExceptions(ctx context.Context, req *dto.ExceptionListRequest) (*dto.ExceptionListResponse, error) {
	const op = "ListExceptions"

	if req.Month == nil {
		return nil, apperrors.Validation(op, "month 不能为空")
	}
	month, year := *req.Month, req.Year
	if err := validateMonth(op, month, year); err != nil {
		return nil, err
	}

	first, last := MonthBounds(month, year)
	absences, err := s.repo.AbsentDay.ListInRange(ctx, req.CourseID, first, last)
	if err != nil {
		return nil, s.storeError(ctx, op, req.CourseID, err)
	}
	reschedules, err := s.repo.RescheduledSession.ListByOriginalRange(ctx, req.CourseID, first, last)
	if err != nil {
		return nil, s.storeError(ctx, op, req.CourseID, err)
	}
	arrivals, err := s.repo.RescheduledSession.ListByNewRange(ctx, req.CourseID, first, last)
	if err != nil {
		return nil, s.storeError(ctx, op, req.CourseID, err)
	}

	resp := &dto.ExceptionListResponse{
		Month:               month,
		Year:                year,
		AbsentDays:          make([]dto.AbsentDayResponse, 0, len(absences)),
		RescheduledSessions: make([]dto.RescheduledSessionResponse, 0, len(reschedules)),
		MovedIn:             make([]dto.RescheduledSessionResponse, 0),
	}
	for i := range absences {
		resp.AbsentDays = append(resp.AbsentDays, *toAbsentDayResponse(&absences[i]))
	}
	for i := range reschedules {
		resp.RescheduledSessions = append(resp.RescheduledSessions, *toRescheduledSessionResponse(&reschedules[i]))
	}
	// 原定日期在本月的调课已在 RescheduledSessions 中，MovedIn 只放从其他月份调入的
	for i := range arrivals {
		if InMonth(model.DateOf(arrivals[i].OriginalDate), month, year) {
			continue
		}
		resp.MovedIn = append(resp.MovedIn, *toRescheduledSessionResponse(&arrivals[i]))
	}
	return resp, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *exceptionService) storeError(ctx context.Context, op, key string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	applogger.FromContext(ctx, s.logger).Error("例外存储访问失败",
		zap.String("op", op),
		zap.String("collaborator", collabExceptions),
		zap.String("key", key),
		zap.Error(err),
	)
	return apperrors.Dependency(op, collabExceptions, key, err)
}

// loadCourse 读取课程定义，不存在返回 NotFound，存储异常返回 Dependency
func loadCourse(ctx context.Context, repo *repository.Repository, op, courseID string) (*model.Course, error) {
	if courseID == "" {
		return nil, apperrors.Validation(op, "course_id 不能为空")
	}
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, "课程不存在: %s", courseID)
		}
		return nil, apperrors.Dependency(op, collabCatalog, courseID, err)
	}
	if !course.DayOfWeek.Valid() {
		return nil, apperrors.Dependency(op, collabCatalog, courseID,
			errors.New("课程 day_of_week 超出 0-6"))
	}
	return course, nil
}

// loadCourseForWrite 登记例外时课程不存在属于请求参数错误，返回 Validation
func loadCourseForWrite(ctx context.Context, repo *repository.Repository, op, courseID string) (*model.Course, error) {
	course, err := loadCourse(ctx, repo, op, courseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Validation(op, "course_id 对应的课程不存在: %s", courseID)
	}
	return course, err
}

// checkSessionDate 日期须为课程上课日且在开课期内
func checkSessionDate(op, field string, course *model.Course, date time.Time) error {
	if got := model.WeekdayOf(date); got != course.DayOfWeek {
		return apperrors.Validation(op, "%s %s 不是课程上课日: expected %s, got %s",
			field, FormatDate(date), course.DayOfWeek, got)
	}
	if course.StartsOn != nil && date.Before(model.DateOf(*course.StartsOn)) {
		return apperrors.Validation(op, "%s %s 早于课程开始日期 %s",
			field, FormatDate(date), FormatDate(model.DateOf(*course.StartsOn)))
	}
	if course.EndsOn != nil && date.After(model.DateOf(*course.EndsOn)) {
		return apperrors.Validation(op, "%s %s 晚于课程结束日期 %s",
			field, FormatDate(date), FormatDate(model.DateOf(*course.EndsOn)))
	}
	return nil
}

func validateMonth(op string, month, year int) error {
	if month < 0 || month > 11 {
		return apperrors.Validation(op, "month 取值应为 0-11，实际 %d", month)
	}
	if year < 1 || year > 9999 {
		return apperrors.Validation(op, "year 取值应为 1-9999，实际 %d", year)
	}
	return nil
}

// listReschedulesTouching 原定日期或调入日期落在 [from, to] 的调课，按原定日期排序
func listReschedulesTouching(ctx context.Context, repo *repository.Repository, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	byOriginal, err := repo.RescheduledSession.ListByOriginalRange(ctx, courseID, from, to)
	if err != nil {
		return nil, err
	}
	byNew, err := repo.RescheduledSession.ListByNewRange(ctx, courseID, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(byOriginal)+len(byNew))
	merged := make([]model.RescheduledSession, 0, len(byOriginal)+len(byNew))
	for _, list := range [][]model.RescheduledSession{byOriginal, byNew} {
		for _, r := range list {
			if seen[r.RescheduledSessionID] {
				continue
			}
			seen[r.RescheduledSessionID] = true
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		oi, oj := model.DateOf(merged[i].OriginalDate), model.DateOf(merged[j].OriginalDate)
		if !oi.Equal(oj) {
			return oi.Before(oj)
		}
		return merged[i].CourseID < merged[j].CourseID
	})
	return merged, nil
}

func toAbsentDayResponse(d *model.AbsentDay) *dto.AbsentDayResponse {
	date := model.DateOf(d.AbsentDate)
	return &dto.AbsentDayResponse{
		ID:         d.AbsentDayID,
		CourseID:   d.CourseID,
		AbsentDate: FormatDate(date),
		Weekday:    model.WeekdayOf(date).String(),
		Reason:     d.Reason,
		CreatedAt:  formatTimestamp(d.CreatedAt),
	}
}

func toRescheduledSessionResponse(r *model.RescheduledSession) *dto.RescheduledSessionResponse {
	return &dto.RescheduledSessionResponse{
		ID:           r.RescheduledSessionID,
		CourseID:     r.CourseID,
		OriginalDate: FormatDate(model.DateOf(r.OriginalDate)),
		NewDate:      FormatDate(model.DateOf(r.NewDate)),
		Reason:       r.Reason,
		CreatedAt:    formatTimestamp(r.CreatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
