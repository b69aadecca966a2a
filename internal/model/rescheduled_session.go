package model

import "gorm.io/datatypes"

// RescheduledSession 调课登记 — 对应 rescheduled_sessions
// (course_id, original_date) 唯一；new_date 必须晚于 original_date
type RescheduledSession struct {
	RescheduledSessionID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rescheduled_session_id"`
	CourseID             string         `gorm:"type:uuid;not null"                             json:"course_id"`
	OriginalDate         datatypes.Date `gorm:"type:date;not null"                             json:"original_date"`
	NewDate              datatypes.Date `gorm:"type:date;not null"                             json:"new_date"`
	Reason               string         `gorm:"type:varchar(200)"                              json:"reason,omitempty"`
	AuditModel
}

// TableName 指定表名
func (RescheduledSession) TableName() string { return "rescheduled_sessions" }
