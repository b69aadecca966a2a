package model

import "gorm.io/datatypes"

// AbsentDay 停课登记 — 对应 absent_days
// (course_id, absent_date) 唯一；absent_date 的星期必须等于课程上课日
type AbsentDay struct {
	AbsentDayID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"absent_day_id"`
	CourseID    string         `gorm:"type:uuid;not null"                             json:"course_id"`
	AbsentDate  datatypes.Date `gorm:"type:date;not null"                             json:"absent_date"`
	Reason      string         `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	AuditModel
}

// TableName 指定表名
func (AbsentDay) TableName() string { return "absent_days" }
