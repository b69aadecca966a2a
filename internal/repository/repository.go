package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course             CourseRepository
	AbsentDay          AbsentDayRepository
	RescheduledSession RescheduledSessionRepository
	CheckIn            CheckInRepository
	AttendanceSummary  AttendanceSummaryRepository
	Slot               SlotLocker

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Course:             NewCourseRepo(db),
		AbsentDay:          NewAbsentDayRepo(db),
		RescheduledSession: NewRescheduledSessionRepo(db),
		CheckIn:            NewCheckInRepo(db),
		AttendanceSummary:  NewAttendanceSummaryRepo(db),
		Slot:               NewSlotLocker(db),
		db:                 db,
	}
}

// Transaction 在同一数据库事务中执行 fn，fn 收到绑定该事务的 Repository
//
// 未绑定数据库（单元测试直接组装接口）时直接以自身执行。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
