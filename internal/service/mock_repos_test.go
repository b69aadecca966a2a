package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/repository"
)

var errMockUnavailable = errors.New("mock: connection refused")

// ── 测试夹具 ──

const (
	testCourseID  = "c0000000-0000-0000-0000-000000000001"
	testStudentID = "50000000-0000-0000-0000-000000000001"
)

func mustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// mondayCourse 每周一 09:00-10:30 上课
func mondayCourse() *model.Course {
	return &model.Course{
		CourseID:  testCourseID,
		Name:      "Mathematics",
		DayOfWeek: model.Monday,
		StartTime: "09:00:00",
		EndTime:   "10:30:00",
	}
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	mu          sync.Mutex
	courses     map[string]*model.Course
	enrollments map[string][]string
	err         error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:     make(map[string]*model.Course),
		enrollments: make(map[string][]string),
	}
}

func (m *mockCourseRepo) add(c *model.Course, students ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.CourseID] = c
	m.enrollments[c.CourseID] = append(m.enrollments[c.CourseID], students...)
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListStudentIDs(_ context.Context, courseID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := append([]string(nil), m.enrollments[courseID]...)
	sort.Strings(ids)
	return ids, nil
}

// ── Mock AbsentDayRepository ──

type mockAbsentDayRepo struct {
	mu   sync.Mutex
	days map[string]*model.AbsentDay
	err  error
}

func newMockAbsentDayRepo() *mockAbsentDayRepo {
	return &mockAbsentDayRepo{days: make(map[string]*model.AbsentDay)}
}

// Create 模拟 (course_id, absent_date) 唯一约束
func (m *mockAbsentDayRepo) Create(_ context.Context, day *model.AbsentDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, d := range m.days {
		if d.CourseID == day.CourseID && model.DateOf(d.AbsentDate).Equal(model.DateOf(day.AbsentDate)) {
			return gorm.ErrDuplicatedKey
		}
	}
	if day.AbsentDayID == "" {
		day.AbsentDayID = uuid.NewString()
	}
	day.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *day
	m.days[day.AbsentDayID] = &cp
	return nil
}

func (m *mockAbsentDayRepo) GetByCourseAndDate(_ context.Context, courseID string, date time.Time) (*model.AbsentDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.days {
		if d.CourseID == courseID && model.DateOf(d.AbsentDate).Equal(date) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAbsentDayRepo) ListInRange(_ context.Context, courseID string, from, to time.Time) ([]model.AbsentDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var result []model.AbsentDay
	for _, d := range m.days {
		date := model.DateOf(d.AbsentDate)
		if (courseID == "" || d.CourseID == courseID) && !date.Before(from) && !date.After(to) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return model.DateOf(result[i].AbsentDate).Before(model.DateOf(result[j].AbsentDate))
	})
	return result, nil
}

func (m *mockAbsentDayRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.days[id]
	delete(m.days, id)
	return ok, nil
}

// ── Mock RescheduledSessionRepository ──

type mockRescheduledSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.RescheduledSession
	err      error
}

func newMockRescheduledSessionRepo() *mockRescheduledSessionRepo {
	return &mockRescheduledSessionRepo{sessions: make(map[string]*model.RescheduledSession)}
}

// Create 模拟 (course_id, original_date) 与 (course_id, new_date) 唯一约束
func (m *mockRescheduledSessionRepo) Create(_ context.Context, session *model.RescheduledSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, s := range m.sessions {
		if s.CourseID != session.CourseID {
			continue
		}
		if model.DateOf(s.OriginalDate).Equal(model.DateOf(session.OriginalDate)) ||
			model.DateOf(s.NewDate).Equal(model.DateOf(session.NewDate)) {
			return gorm.ErrDuplicatedKey
		}
	}
	if session.RescheduledSessionID == "" {
		session.RescheduledSessionID = uuid.NewString()
	}
	session.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *session
	m.sessions[session.RescheduledSessionID] = &cp
	return nil
}

func (m *mockRescheduledSessionRepo) GetByCourseAndOriginalDate(_ context.Context, courseID string, date time.Time) (*model.RescheduledSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.sessions {
		if s.CourseID == courseID && model.DateOf(s.OriginalDate).Equal(date) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRescheduledSessionRepo) GetByCourseAndNewDate(_ context.Context, courseID string, date time.Time) (*model.RescheduledSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.sessions {
		if s.CourseID == courseID && model.DateOf(s.NewDate).Equal(date) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRescheduledSessionRepo) ListByOriginalRange(_ context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	return m.list(courseID, from, to, func(s *model.RescheduledSession) time.Time { return model.DateOf(s.OriginalDate) })
}

func (m *mockRescheduledSessionRepo) ListByNewRange(_ context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	return m.list(courseID, from, to, func(s *model.RescheduledSession) time.Time { return model.DateOf(s.NewDate) })
}

func (m *mockRescheduledSessionRepo) list(courseID string, from, to time.Time, dateOf func(*model.RescheduledSession) time.Time) ([]model.RescheduledSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var result []model.RescheduledSession
	for _, s := range m.sessions {
		d := dateOf(s)
		if (courseID == "" || s.CourseID == courseID) && !d.Before(from) && !d.After(to) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return dateOf(&result[i]).Before(dateOf(&result[j])) })
	return result, nil
}

func (m *mockRescheduledSessionRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok, nil
}

// ── Mock CheckInRepository ──

type mockCheckInRepo struct {
	mu     sync.Mutex
	dates  map[string][]time.Time // key: student/course
	err    error
	failOn map[string]bool // 指定学生读取失败
}

func newMockCheckInRepo() *mockCheckInRepo {
	return &mockCheckInRepo{dates: make(map[string][]time.Time), failOn: make(map[string]bool)}
}

func (m *mockCheckInRepo) add(studentID, courseID string, dates ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := studentID + "/" + courseID
	m.dates[key] = append(m.dates[key], dates...)
}

func (m *mockCheckInRepo) Get(_ context.Context, studentID, courseID string, date time.Time) (*model.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.dates[studentID+"/"+courseID] {
		if d.Equal(date) {
			return &model.CheckIn{StudentID: studentID, CourseID: courseID, CheckInDate: model.NewDate(d)}, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckInRepo) ListDates(_ context.Context, studentID, courseID string, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn[studentID] {
		return nil, errMockUnavailable
	}
	var result []time.Time
	for _, d := range m.dates[studentID+"/"+courseID] {
		if !d.Before(from) && !d.After(to) {
			result = append(result, d)
		}
	}
	return result, nil
}

// ── Mock AttendanceSummaryRepository ──

type mockAttendanceSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]*model.AttendanceSummary
	upserts   int
	err       error
}

func newMockAttendanceSummaryRepo() *mockAttendanceSummaryRepo {
	return &mockAttendanceSummaryRepo{summaries: make(map[string]*model.AttendanceSummary)}
}

func (m *mockAttendanceSummaryRepo) Upsert(_ context.Context, summary *model.AttendanceSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts++
	cp := *summary
	m.summaries[summaryKey(summary.StudentID, summary.CourseID, summary.Month, summary.Year)] = &cp
	return nil
}

func (m *mockAttendanceSummaryRepo) Get(_ context.Context, studentID, courseID string, month, year int) (*model.AttendanceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.summaries[summaryKey(studentID, courseID, month, year)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceSummaryRepo) List(_ context.Context, filter repository.SummaryFilter, offset, limit int) ([]model.AttendanceSummary, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []model.AttendanceSummary
	for _, s := range m.summaries {
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && s.CourseID != filter.CourseID {
			continue
		}
		if filter.Month != nil && s.Month != *filter.Month {
			continue
		}
		if filter.Year != 0 && s.Year != filter.Year {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StudentID < all[j].StudentID })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.AttendanceSummary{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock SlotLocker ──

type mockSlotLocker struct{}

func (mockSlotLocker) LockCourseDate(context.Context, string, time.Time) error { return nil }

// ── 组装 ──

type mockRepos struct {
	course      *mockCourseRepo
	absent      *mockAbsentDayRepo
	rescheduled *mockRescheduledSessionRepo
	checkIn     *mockCheckInRepo
	summary     *mockAttendanceSummaryRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		course:      newMockCourseRepo(),
		absent:      newMockAbsentDayRepo(),
		rescheduled: newMockRescheduledSessionRepo(),
		checkIn:     newMockCheckInRepo(),
		summary:     newMockAttendanceSummaryRepo(),
	}
	repo := &repository.Repository{
		Course:             m.course,
		AbsentDay:          m.absent,
		RescheduledSession: m.rescheduled,
		CheckIn:            m.checkIn,
		AttendanceSummary:  m.summary,
		Slot:               mockSlotLocker{},
	}
	return repo, m
}
