package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditModel 创建审计字段（例外登记只增删，不更新，故无 updated_* 字段）
type AuditModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
}

// DateOf 将 datatypes.Date 还原为 UTC 零点的日历日期
//
// 数据库驱动可能按连接时区返回 date 列，这里只取年月日，保证星期计算与时区无关。
func DateOf(d datatypes.Date) time.Time {
	t := time.Time(d)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate 构造 date 列取值
func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}
