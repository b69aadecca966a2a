package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// SlotLocker 对 (课程, 日期) 加事务级咨询锁
// 停课与调课分表存储，跨表互斥需在同一把锁下先查后写
type SlotLocker interface {
	LockCourseDate(ctx context.Context, courseID string, date time.Time) error
}

type slotLocker struct {
	db *gorm.DB
}

// NewSlotLocker 创建 SlotLocker 实例；须在事务内使用
func NewSlotLocker(db *gorm.DB) SlotLocker {
	return &slotLocker{db: db}
}

func (l *slotLocker) LockCourseDate(ctx context.Context, courseID string, date time.Time) error {
	key := courseID + "/" + date.Format("2006-01-02")
	return l.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
