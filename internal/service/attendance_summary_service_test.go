package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/config"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/dto"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
)

// ── 测试辅助 ──

func setupTestSummaryService() (AttendanceSummaryService, *mockRepos) {
	repo, mocks := newMockRepository()
	mocks.course.add(mondayCourse(), testStudentID)
	cfg := &config.AttendanceConfig{Workers: 4, LockTTL: time.Second, LockWait: time.Second}
	svc := NewAttendanceSummaryService(cfg, repo, NewKeyedLocker(cfg.LockWait), zap.NewNop())
	return svc, mocks
}

// stubLocker 固定返回指定错误
type stubLocker struct{ err error }

func (l stubLocker) Lock(context.Context, string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}

// ── Aggregate 测试 ──

func TestSummaryService_Aggregate_FourMondaysThreeAttended(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	mocks.checkIn.add(testStudentID, testCourseID,
		mustDate("2025-02-03"), mustDate("2025-02-10"), mustDate("2025-02-17"))

	resp, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("Aggregate 应成功: %v", err)
	}
	if resp.TotalSessions != 4 || resp.AttendedSessions != 3 || resp.AbsentSessions != 1 {
		t.Errorf("期望 4/3/1，实际 %d/%d/%d", resp.TotalSessions, resp.AttendedSessions, resp.AbsentSessions)
	}
	if resp.AttendancePercentage != 75 {
		t.Errorf("期望出勤率 75，实际=%d", resp.AttendancePercentage)
	}

	stored, err := mocks.summary.Get(context.Background(), testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("期望汇总已持久化: %v", err)
	}
	if stored.ComputedAt.IsZero() {
		t.Error("期望记录计算时间")
	}
}

func TestSummaryService_Aggregate_AbsenceReducesTotal(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	mocks.absent.days["a1"] = &model.AbsentDay{
		AbsentDayID: "a1", CourseID: testCourseID, AbsentDate: model.NewDate(mustDate("2025-02-10")),
	}
	mocks.checkIn.add(testStudentID, testCourseID, mustDate("2025-02-03"), mustDate("2025-02-10"))

	resp, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("Aggregate 应成功: %v", err)
	}
	if resp.TotalSessions != 3 {
		t.Errorf("停课后期望 total=3，实际=%d", resp.TotalSessions)
	}
	if resp.AttendedSessions != 1 {
		t.Errorf("停课日打卡不计出勤，期望 attended=1，实际=%d", resp.AttendedSessions)
	}
	if resp.AttendancePercentage != 33 {
		t.Errorf("期望出勤率 33，实际=%d", resp.AttendancePercentage)
	}
}

func TestSummaryService_Aggregate_RescheduleWithinMonth(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	mocks.rescheduled.sessions["r1"] = &model.RescheduledSession{
		RescheduledSessionID: "r1",
		CourseID:             testCourseID,
		OriginalDate:         model.NewDate(mustDate("2025-02-10")),
		NewDate:              model.NewDate(mustDate("2025-02-12")),
	}
	mocks.checkIn.add(testStudentID, testCourseID, mustDate("2025-02-12"))

	resp, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("Aggregate 应成功: %v", err)
	}
	if resp.TotalSessions != 4 || resp.AttendedSessions != 1 {
		t.Errorf("期望 total=4 attended=1，实际 %d/%d", resp.TotalSessions, resp.AttendedSessions)
	}
	if resp.Details.RegularSessions != 3 || resp.Details.ExtraSessions != 1 || resp.Details.RescheduledSessions != 1 {
		t.Errorf("明细不符: %+v", resp.Details)
	}
}

func TestSummaryService_Aggregate_NoSessions(t *testing.T) {
	repo, mocks := newMockRepository()
	course := mondayCourse()
	ended := model.NewDate(mustDate("2025-01-31"))
	course.EndsOn = &ended
	mocks.course.add(course, testStudentID)
	svc := NewAttendanceSummaryService(&config.AttendanceConfig{Workers: 1}, repo, NewKeyedLocker(time.Second), zap.NewNop())

	resp, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("Aggregate 应成功: %v", err)
	}
	if resp.TotalSessions != 0 || resp.AttendancePercentage != 0 {
		t.Errorf("无课次时期望 0/0，实际 %d/%d", resp.TotalSessions, resp.AttendancePercentage)
	}
}

func TestSummaryService_Aggregate_Idempotent(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	mocks.checkIn.add(testStudentID, testCourseID, mustDate("2025-02-03"), mustDate("2025-02-24"))
	ctx := context.Background()

	first, err := svc.Aggregate(ctx, testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("首次 Aggregate 应成功: %v", err)
	}
	second, err := svc.Aggregate(ctx, testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("再次 Aggregate 应成功: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("重复计算结果应完全一致:\n%s\n%s", a, b)
	}
	if len(mocks.summary.summaries) != 1 {
		t.Errorf("期望仅 1 条汇总记录，实际=%d", len(mocks.summary.summaries))
	}
}

func TestSummaryService_Aggregate_ConcurrentSameKey(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	mocks.checkIn.add(testStudentID, testCourseID, mustDate("2025-02-03"))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("第 %d 次并发计算失败: %v", i, err)
		}
	}
	stored, _ := mocks.summary.Get(context.Background(), testStudentID, testCourseID, 1, 2025)
	if stored == nil || stored.AttendancePercentage != 25 {
		t.Errorf("期望最终出勤率 25，实际=%+v", stored)
	}
}

func TestSummaryService_Aggregate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *mockRepos)
		courseID string
		month    int
		kind     error
		collab   string
	}{
		{"invalid month", func(m *mockRepos) {}, testCourseID, 12, apperrors.ErrValidation, ""},
		{"negative month", func(m *mockRepos) {}, testCourseID, -1, apperrors.ErrValidation, ""},
		{"course missing", func(m *mockRepos) {}, "missing", 1, apperrors.ErrNotFound, ""},
		{"catalog down", func(m *mockRepos) { m.course.err = errMockUnavailable }, testCourseID, 1, apperrors.ErrDependency, "catalog"},
		{"exceptions down", func(m *mockRepos) { m.absent.err = errMockUnavailable }, testCourseID, 1, apperrors.ErrDependency, "exception_store"},
		{"attendance log down", func(m *mockRepos) { m.checkIn.err = errMockUnavailable }, testCourseID, 1, apperrors.ErrDependency, "attendance_log"},
		{"summary store down", func(m *mockRepos) { m.summary.err = errMockUnavailable }, testCourseID, 1, apperrors.ErrDependency, "summary_store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mocks := setupTestSummaryService()
			tt.mutate(mocks)

			_, err := svc.Aggregate(context.Background(), testStudentID, tt.courseID, tt.month, 2025)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("期望 %v，实际=%v", tt.kind, err)
			}
			if tt.collab != "" {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Collaborator != tt.collab {
					t.Errorf("期望协作方 %s，实际=%+v", tt.collab, appErr)
				}
			}
			if mocks.summary.upserts != 0 {
				t.Error("失败时不应写入汇总")
			}
		})
	}
}

func TestSummaryService_Aggregate_LockTimeout(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.course.add(mondayCourse(), testStudentID)
	svc := NewAttendanceSummaryService(&config.AttendanceConfig{Workers: 1}, repo, stubLocker{err: errLockTimeout}, zap.NewNop())

	_, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("锁等待超时期望 ErrConflict，实际=%v", err)
	}
}

func TestSummaryService_Aggregate_LockStoreDown(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.course.add(mondayCourse(), testStudentID)
	svc := NewAttendanceSummaryService(&config.AttendanceConfig{Workers: 1}, repo, stubLocker{err: errMockUnavailable}, zap.NewNop())

	_, err := svc.Aggregate(context.Background(), testStudentID, testCourseID, 1, 2025)
	if !errors.Is(err, apperrors.ErrDependency) {
		t.Errorf("锁服务异常期望 ErrDependency，实际=%v", err)
	}
}

// ── AggregateCourse 测试 ──

func TestSummaryService_AggregateCourse_PartialFailure(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	const (
		s2 = "50000000-0000-0000-0000-000000000002"
		s3 = "50000000-0000-0000-0000-000000000003"
	)
	mocks.course.add(&model.Course{
		CourseID: testCourseID, Name: "Mathematics", DayOfWeek: model.Monday, StartTime: "09:00", EndTime: "10:30",
	}, s2, s3)
	mocks.checkIn.add(s2, testCourseID, mustDate("2025-02-03"))
	mocks.checkIn.failOn[s3] = true

	resp, err := svc.AggregateCourse(context.Background(), testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("AggregateCourse 应成功: %v", err)
	}
	if len(resp.Refreshed) != 2 {
		t.Errorf("期望刷新 2 名学生，实际=%d", len(resp.Refreshed))
	}
	if len(resp.Failed) != 1 || resp.Failed[0].StudentID != s3 {
		t.Errorf("期望 %s 失败，实际=%+v", s3, resp.Failed)
	}
	if resp.Refreshed[0].StudentID > resp.Refreshed[1].StudentID {
		t.Error("期望结果按 student_id 排序")
	}
}

func TestSummaryService_AggregateCourse_CourseNotFound(t *testing.T) {
	svc, _ := setupTestSummaryService()

	_, err := svc.AggregateCourse(context.Background(), "missing", 1, 2025)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际=%v", err)
	}
}

// ── GetSummary / ListSummaries 测试 ──

func TestSummaryService_GetSummary(t *testing.T) {
	svc, _ := setupTestSummaryService()
	ctx := context.Background()

	_, err := svc.GetSummary(ctx, testStudentID, testCourseID, 1, 2025)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("未计算时期望 ErrNotFound，实际=%v", err)
	}

	computed, err := svc.Aggregate(ctx, testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("Aggregate 应成功: %v", err)
	}
	got, err := svc.GetSummary(ctx, testStudentID, testCourseID, 1, 2025)
	if err != nil {
		t.Fatalf("GetSummary 应成功: %v", err)
	}
	if *got != *computed {
		t.Errorf("读取结果应与计算结果一致: %+v vs %+v", got, computed)
	}
}

func TestSummaryService_ListSummaries(t *testing.T) {
	svc, mocks := setupTestSummaryService()
	ctx := context.Background()
	for _, sid := range []string{"s-1", "s-2", "s-3"} {
		mocks.course.add(mondayCourse(), sid)
		if _, err := svc.Aggregate(ctx, sid, testCourseID, 1, 2025); err != nil {
			t.Fatalf("Aggregate 应成功: %v", err)
		}
	}

	list, total, err := svc.ListSummaries(ctx, &dto.SummaryListRequest{
		CourseID:          testCourseID,
		Month:             intPtr(1),
		PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("ListSummaries 应成功: %v", err)
	}
	if total != 3 {
		t.Errorf("期望 total=3，实际=%d", total)
	}
	if len(list) != 2 {
		t.Errorf("期望本页 2 条，实际=%d", len(list))
	}

	_, _, err = svc.ListSummaries(ctx, &dto.SummaryListRequest{Month: intPtr(15)})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际=%v", err)
	}
}
