package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// CheckInRepository 考勤日志只读访问接口
type CheckInRepository interface {
	Get(ctx context.Context, studentID, courseID string, date time.Time) (*model.CheckIn, error)
	// ListDates 一次取回 [from, to] 内有打卡的日期（去重、升序）
	ListDates(ctx context.Context, studentID, courseID string, from, to time.Time) ([]time.Time, error)
}

type checkInRepo struct {
	db *gorm.DB
}

// NewCheckInRepo 创建 CheckInRepository 实例
func NewCheckInRepo(db *gorm.DB) CheckInRepository {
	return &checkInRepo{db: db}
}

func (r *checkInRepo) Get(ctx context.Context, studentID, courseID string, date time.Time) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND check_in_date = ?", studentID, courseID, model.NewDate(date)).
		Order("checked_in_at ASC").
		First(&checkIn).Error
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *checkInRepo) ListDates(ctx context.Context, studentID, courseID string, from, to time.Time) ([]time.Time, error) {
	var rows []model.CheckIn
	err := r.db.WithContext(ctx).
		Model(&model.CheckIn{}).
		Distinct("check_in_date").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Where("check_in_date BETWEEN ? AND ?", model.NewDate(from), model.NewDate(to)).
		Order("check_in_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, model.DateOf(row.CheckInDate))
	}
	return dates, nil
}
