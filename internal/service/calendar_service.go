package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/repository"
	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
)

// CalendarService 有效课表查询与 iCalendar 导出
type CalendarService interface {
	GetCalendar(ctx context.Context, courseID string, month, year int) (*dto.CalendarResponse, error)
	ExportICS(ctx context.Context, courseID string, month, year int) ([]byte, error)
}

type calendarService struct {
	repo         *repository.Repository
	calendarName string
	now          func() time.Time
	logger       *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, calendarName string, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, calendarName: calendarName, now: time.Now, logger: logger}
}

// ────────────────────── GetCalendar ──────────────────────

func (s *calendarService) GetCalendar(ctx context.Context, courseID string, month, year int) (*dto.CalendarResponse, error) {
	course, cal, err := loadEffectiveCalendar(ctx, s.repo, "GetCalendar", courseID, month, year)
	if err != nil {
		return nil, err
	}

	resp := &dto.CalendarResponse{
		CourseID:   course.CourseID,
		CourseName: course.Name,
		DayOfWeek:  course.DayOfWeek.String(),
		Month:      month,
		Year:       year,
		Sessions:   make([]dto.CalendarSessionResponse, 0, len(cal.Sessions)),
		Cancelled:  make([]string, 0, len(cal.Cancelled)),
		MovedOut:   make([]dto.MovedSessionResponse, 0, len(cal.MovedOut)),
	}
	for _, sess := range cal.Sessions {
		item := dto.CalendarSessionResponse{
			Date:      FormatDate(sess.Date),
			Weekday:   model.WeekdayOf(sess.Date).String(),
			Kind:      string(sess.Kind),
			StartTime: trimClock(course.StartTime),
			EndTime:   trimClock(course.EndTime),
		}
		if sess.Kind == SessionExtra {
			item.OriginalDate = FormatDate(sess.OriginalDate)
		}
		resp.Sessions = append(resp.Sessions, item)
	}
	for _, d := range cal.Cancelled {
		resp.Cancelled = append(resp.Cancelled, FormatDate(d))
	}
	for _, m := range cal.MovedOut {
		resp.MovedOut = append(resp.MovedOut, dto.MovedSessionResponse{
			OriginalDate: FormatDate(m.OriginalDate),
			NewDate:      FormatDate(m.NewDate),
		})
	}
	return resp, nil
}

// ────────────────────── ExportICS ──────────────────────

// icsLocalFormat 浮动时间（无时区），由订阅方按本地时间解释
const icsLocalFormat = "20060102T150405"

func (s *calendarService) ExportICS(ctx context.Context, courseID string, month, year int) ([]byte, error) {
	const op = "ExportICS"

	course, cal, err := loadEffectiveCalendar(ctx, s.repo, op, courseID, month, year)
	if err != nil {
		return nil, err
	}

	start, err := parseClock(course.StartTime)
	if err != nil {
		return nil, apperrors.Dependency(op, collabCatalog, course.CourseID, err)
	}
	end, err := parseClock(course.EndTime)
	if err != nil {
		return nil, apperrors.Dependency(op, collabCatalog, course.CourseID, err)
	}

	feed := ics.NewCalendar()
	feed.SetMethod(ics.MethodPublish)
	feed.SetProductId("-//Unicorn Institute//Attendance//ZH")
	feed.SetXWRCalName(fmt.Sprintf("%s %s", s.calendarName, course.Name))

	stamp := s.now().UTC()
	for _, sess := range cal.Sessions {
		day := FormatDate(sess.Date)
		event := feed.AddEvent(fmt.Sprintf("%s-%s@unicorn-institute", course.CourseID, day))
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, sess.Date.Add(start).Format(icsLocalFormat))
		event.SetProperty(ics.ComponentPropertyDtEnd, sess.Date.Add(end).Format(icsLocalFormat))
		event.SetSummary(course.Name)
		if sess.Kind == SessionExtra {
			event.SetProperty(ics.ComponentPropertyCategories, "RESCHEDULED")
			event.SetDescription("调课自 " + FormatDate(sess.OriginalDate))
		}
	}

	s.logger.Debug("导出课表",
		zap.String("course_id", course.CourseID),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("sessions", len(cal.Sessions)),
	)
	return []byte(feed.Serialize()), nil
}

// ────────────────────── 内部方法 ──────────────────────

// loadEffectiveCalendar 读取课程与当月相关例外并推算有效课表
func loadEffectiveCalendar(ctx context.Context, repo *repository.Repository, op, courseID string, month, year int) (*model.Course, *EffectiveCalendar, error) {
	if err := validateMonth(op, month, year); err != nil {
		return nil, nil, err
	}
	course, err := loadCourse(ctx, repo, op, courseID)
	if err != nil {
		return nil, nil, err
	}

	first, last := MonthBounds(month, year)
	key := fmt.Sprintf("%s/%d-%02d", courseID, year, month+1)

	absences, err := repo.AbsentDay.ListInRange(ctx, course.CourseID, first, last)
	if err != nil {
		return nil, nil, apperrors.Dependency(op, collabExceptions, key, err)
	}
	reschedules, err := listReschedulesTouching(ctx, repo, course.CourseID, first, last)
	if err != nil {
		return nil, nil, apperrors.Dependency(op, collabExceptions, key, err)
	}

	return course, BuildEffectiveCalendar(course, month, year, absences, reschedules), nil
}

// parseClock 解析 "HH:MM" 或 "HH:MM:SS"，返回当天零点起的偏移
func parseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("无法解析上课时间: %q", s)
}

// trimClock "09:00:00" → "09:00"
func trimClock(s string) string {
	if len(s) == len("15:04:05") && strings.HasSuffix(s, ":00") {
		return s[:5]
	}
	return s
}
