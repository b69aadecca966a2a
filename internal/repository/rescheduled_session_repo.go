package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// RescheduledSessionRepository 调课登记数据访问接口
type RescheduledSessionRepository interface {
	Create(ctx context.Context, session *model.RescheduledSession) error
	GetByCourseAndOriginalDate(ctx context.Context, courseID string, date time.Time) (*model.RescheduledSession, error)
	GetByCourseAndNewDate(ctx context.Context, courseID string, date time.Time) (*model.RescheduledSession, error)
	// ListByOriginalRange 按原定日期查询；courseID 为空时不按课程过滤
	ListByOriginalRange(ctx context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error)
	// ListByNewRange 按调入日期查询（跨月调入的课次计入新月份）
	ListByNewRange(ctx context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type rescheduledSessionRepo struct {
	db *gorm.DB
}

// NewRescheduledSessionRepo 创建 RescheduledSessionRepository 实例
func NewRescheduledSessionRepo(db *gorm.DB) RescheduledSessionRepository {
	return &rescheduledSessionRepo{db: db}
}

func (r *rescheduledSessionRepo) Create(ctx context.Context, session *model.RescheduledSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *rescheduledSessionRepo) GetByCourseAndOriginalDate(ctx context.Context, courseID string, date time.Time) (*model.RescheduledSession, error) {
	var session model.RescheduledSession
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND original_date = ?", courseID, model.NewDate(date)).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *rescheduledSessionRepo) GetByCourseAndNewDate(ctx context.Context, courseID string, date time.Time) (*model.RescheduledSession, error) {
	var session model.RescheduledSession
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND new_date = ?", courseID, model.NewDate(date)).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *rescheduledSessionRepo) ListByOriginalRange(ctx context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	return r.listInRange(ctx, "original_date", courseID, from, to)
}

func (r *rescheduledSessionRepo) ListByNewRange(ctx context.Context, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	return r.listInRange(ctx, "new_date", courseID, from, to)
}

func (r *rescheduledSessionRepo) listInRange(ctx context.Context, column, courseID string, from, to time.Time) ([]model.RescheduledSession, error) {
	var sessions []model.RescheduledSession
	query := r.db.WithContext(ctx).
		Where(column+" BETWEEN ? AND ?", model.NewDate(from), model.NewDate(to))
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	err := query.Order(column + " ASC, course_id ASC").Find(&sessions).Error
	return sessions, err
}

func (r *rescheduledSessionRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("rescheduled_session_id = ?", id).
		Delete(&model.RescheduledSession{})
	return result.RowsAffected > 0, result.Error
}
