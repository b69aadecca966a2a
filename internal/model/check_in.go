package model

import (
	"time"

	"gorm.io/datatypes"
)

// CheckIn 考勤打卡 — 对应 attendance_check_ins（签到服务写入，本服务只读）
type CheckIn struct {
	CheckInID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"check_in_id"`
	StudentID   string         `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID    string         `gorm:"type:uuid;not null"                             json:"course_id"`
	CheckInDate datatypes.Date `gorm:"type:date;not null"                             json:"check_in_date"`
	CheckedInAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"checked_in_at"`
}

// TableName 指定表名
func (CheckIn) TableName() string { return "attendance_check_ins" }
