package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// AbsentDayRepository 停课登记数据访问接口
type AbsentDayRepository interface {
	Create(ctx context.Context, day *model.AbsentDay) error
	GetByCourseAndDate(ctx context.Context, courseID string, date time.Time) (*model.AbsentDay, error)
	// ListInRange 查询 [from, to] 内的停课；courseID 为空时不按课程过滤
	ListInRange(ctx context.Context, courseID string, from, to time.Time) ([]model.AbsentDay, error)
	// Delete 硬删除，返回是否确有记录被删除
	Delete(ctx context.Context, id string) (bool, error)
}

type absentDayRepo struct {
	db *gorm.DB
}

// NewAbsentDayRepo 创建 AbsentDayRepository 实例
func NewAbsentDayRepo(db *gorm.DB) AbsentDayRepository {
	return &absentDayRepo{db: db}
}

func (r *absentDayRepo) Create(ctx context.Context, day *model.AbsentDay) error {
	return r.db.WithContext(ctx).Create(day).Error
}

func (r *absentDayRepo) GetByCourseAndDate(ctx context.Context, courseID string, date time.Time) (*model.AbsentDay, error) {
	var day model.AbsentDay
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND absent_date = ?", courseID, model.NewDate(date)).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *absentDayRepo) ListInRange(ctx context.Context, courseID string, from, to time.Time) ([]model.AbsentDay, error) {
	var days []model.AbsentDay
	query := r.db.WithContext(ctx).
		Where("absent_date BETWEEN ? AND ?", model.NewDate(from), model.NewDate(to))
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	err := query.Order("absent_date ASC, course_id ASC").Find(&days).Error
	return days, err
}

func (r *absentDayRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("absent_day_id = ?", id).
		Delete(&model.AbsentDay{})
	return result.RowsAffected > 0, result.Error
}
