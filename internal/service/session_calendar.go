package service

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// ── 有效课表推算 ──────────────────────────────────────────────
//
// 纯函数，不访问存储：
//   - 名义课次：当月所有星期等于课程上课日的日期（受课程起止日期约束）
//   - 停课：从名义课次中移除
//   - 调课：原定日期在本月则移除，调入日期在本月则作为加课计入
//   - 每个日历日期至多一次课，加课落在常规课次日期上时合并
// ─────────────────────────────────────────────────────────────

// SessionKind 课次类型
type SessionKind string

const (
	SessionRegular SessionKind = "regular"
	SessionExtra   SessionKind = "extra"
)

// SessionInstance 一次实际发生的课次
type SessionInstance struct {
	Date         time.Time
	Kind         SessionKind
	OriginalDate time.Time // 仅 extra 有效
}

// MovedSession 调出本月的课次
type MovedSession struct {
	OriginalDate time.Time
	NewDate      time.Time
}

// EffectiveCalendar 课程某月的有效课表
type EffectiveCalendar struct {
	Month     int
	Year      int
	Sessions  []SessionInstance // 按日期升序
	Cancelled []time.Time       // 因停课移除的名义日期
	MovedOut  []MovedSession    // 原定日期在本月的调课
}

// RegularCount 常规课次数
func (c *EffectiveCalendar) RegularCount() int { return c.count(SessionRegular) }

// ExtraCount 加课次数
func (c *EffectiveCalendar) ExtraCount() int { return c.count(SessionExtra) }

func (c *EffectiveCalendar) count(kind SessionKind) int {
	n := 0
	for _, s := range c.Sessions {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// ParseDate 严格解析 YYYY-MM-DD，返回 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式应为 YYYY-MM-DD: %q", s)
	}
	return t, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string { return t.Format(dto.DateLayout) }

// MonthBounds 返回月份（0-11）的首日与末日
func MonthBounds(month, year int) (first, last time.Time) {
	first = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// InMonth 日期是否落在给定月份
func InMonth(d time.Time, month, year int) bool {
	return d.Year() == year && int(d.Month())-1 == month
}

// NominalDates 当月所有上课日（按课程起止日期裁剪）
func NominalDates(course *model.Course, month, year int) []time.Time {
	first, last := MonthBounds(month, year)
	if course.StartsOn != nil {
		if s := model.DateOf(*course.StartsOn); s.After(first) {
			first = s
		}
	}
	if course.EndsOn != nil {
		if e := model.DateOf(*course.EndsOn); e.Before(last) {
			last = e
		}
	}

	var dates []time.Time
	offset := (int(course.DayOfWeek) - int(first.Weekday()) + 7) % 7
	for d := first.AddDate(0, 0, offset); !d.After(last); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

// BuildEffectiveCalendar 由名义课次与例外推算某月有效课表
//
// reschedules 可同时包含按原定日期与按调入日期查询到的记录，重复 ID 只计一次。
func BuildEffectiveCalendar(
	course *model.Course,
	month, year int,
	absences []model.AbsentDay,
	reschedules []model.RescheduledSession,
) *EffectiveCalendar {
	cal := &EffectiveCalendar{Month: month, Year: year}

	removed := make(map[time.Time]bool)
	for _, a := range absences {
		if a.CourseID != course.CourseID {
			continue
		}
		d := model.DateOf(a.AbsentDate)
		if InMonth(d, month, year) {
			removed[d] = true
		}
	}

	seen := make(map[string]bool, len(reschedules))
	var extras []SessionInstance
	for _, r := range reschedules {
		if r.CourseID != course.CourseID || seen[r.RescheduledSessionID] {
			continue
		}
		seen[r.RescheduledSessionID] = true

		orig, next := model.DateOf(r.OriginalDate), model.DateOf(r.NewDate)
		if InMonth(orig, month, year) {
			cal.MovedOut = append(cal.MovedOut, MovedSession{OriginalDate: orig, NewDate: next})
			removed[orig] = true
		}
		if InMonth(next, month, year) {
			extras = append(extras, SessionInstance{Date: next, Kind: SessionExtra, OriginalDate: orig})
		}
	}

	occupied := make(map[time.Time]bool)
	for _, d := range NominalDates(course, month, year) {
		if removed[d] {
			if !isMovedOut(cal.MovedOut, d) {
				cal.Cancelled = append(cal.Cancelled, d)
			}
			continue
		}
		cal.Sessions = append(cal.Sessions, SessionInstance{Date: d, Kind: SessionRegular})
		occupied[d] = true
	}

	for _, e := range extras {
		if occupied[e.Date] {
			continue
		}
		cal.Sessions = append(cal.Sessions, e)
		occupied[e.Date] = true
	}

	sort.Slice(cal.Sessions, func(i, j int) bool { return cal.Sessions[i].Date.Before(cal.Sessions[j].Date) })
	sort.Slice(cal.MovedOut, func(i, j int) bool { return cal.MovedOut[i].OriginalDate.Before(cal.MovedOut[j].OriginalDate) })
	return cal
}

func isMovedOut(moved []MovedSession, d time.Time) bool {
	for _, m := range moved {
		if m.OriginalDate.Equal(d) {
			return true
		}
	}
	return false
}

// ── 汇总计算 ──

// RoundPercentage 出勤率取整（四舍五入，.5 进位）；total 为 0 时返回 0
func RoundPercentage(attended, total int) int {
	if total <= 0 {
		return 0
	}
	return (attended*200 + total) / (2 * total)
}

// ComputeSummary 由有效课表与打卡日期计算月度汇总
// 只有落在有效课次上的打卡计为出勤，非上课日的打卡忽略
func ComputeSummary(studentID, courseID string, cal *EffectiveCalendar, checkIns []time.Time) *model.AttendanceSummary {
	present := make(map[time.Time]bool, len(checkIns))
	for _, d := range checkIns {
		present[time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)] = true
	}

	total := len(cal.Sessions)
	attended := 0
	for _, s := range cal.Sessions {
		if present[s.Date] {
			attended++
		}
	}

	return &model.AttendanceSummary{
		StudentID:            studentID,
		CourseID:             courseID,
		Month:                cal.Month,
		Year:                 cal.Year,
		TotalSessions:        total,
		AttendedSessions:     attended,
		AbsentSessions:       total - attended,
		AttendancePercentage: RoundPercentage(attended, total),
		Details:              datatypes.NewJSONType(SummaryDetailsOf(cal, total-attended)),
	}
}

// SummaryDetailsOf 汇总分类明细
func SummaryDetailsOf(cal *EffectiveCalendar, absentSessions int) model.SummaryDetails {
	return model.SummaryDetails{
		RegularSessions:     cal.RegularCount(),
		ExtraSessions:       cal.ExtraCount(),
		AbsentSessions:      absentSessions,
		RescheduledSessions: len(cal.MovedOut),
	}
}
