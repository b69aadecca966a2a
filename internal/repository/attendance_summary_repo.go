package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// SummaryFilter 汇总列表筛选条件，零值字段不参与过滤
type SummaryFilter struct {
	StudentID string
	CourseID  string
	Month     *int
	Year      int
}

// AttendanceSummaryRepository 月度汇总数据访问接口
type AttendanceSummaryRepository interface {
	// Upsert 按 (student_id, course_id, month, year) 单语句整行覆盖
	Upsert(ctx context.Context, summary *model.AttendanceSummary) error
	Get(ctx context.Context, studentID, courseID string, month, year int) (*model.AttendanceSummary, error)
	List(ctx context.Context, filter SummaryFilter, offset, limit int) ([]model.AttendanceSummary, int64, error)
}

type attendanceSummaryRepo struct {
	db *gorm.DB
}

// NewAttendanceSummaryRepo 创建 AttendanceSummaryRepository 实例
func NewAttendanceSummaryRepo(db *gorm.DB) AttendanceSummaryRepository {
	return &attendanceSummaryRepo{db: db}
}

func (r *attendanceSummaryRepo) Upsert(ctx context.Context, summary *model.AttendanceSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "course_id"}, {Name: "month"}, {Name: "year"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_sessions",
				"attended_sessions",
				"absent_sessions",
				"attendance_percentage",
				"details",
				"computed_at",
			}),
		}).
		Create(summary).Error
}

func (r *attendanceSummaryRepo) Get(ctx context.Context, studentID, courseID string, month, year int) (*model.AttendanceSummary, error) {
	var summary model.AttendanceSummary
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND month = ? AND year = ?", studentID, courseID, month, year).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *attendanceSummaryRepo) List(ctx context.Context, filter SummaryFilter, offset, limit int) ([]model.AttendanceSummary, int64, error) {
	var summaries []model.AttendanceSummary
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AttendanceSummary{})
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("year DESC, month DESC, course_id ASC, student_id ASC").
		Offset(offset).Limit(limit).
		Find(&summaries).Error
	return summaries, total, err
}
