package model

import (
	"time"

	"gorm.io/datatypes"
)

// SummaryDetails 汇总分类明细（jsonb）
type SummaryDetails struct {
	RegularSessions     int `json:"regular_sessions"`
	ExtraSessions       int `json:"extra_sessions"`
	AbsentSessions      int `json:"absent_sessions"`
	RescheduledSessions int `json:"rescheduled_sessions"` // 本月调出的课次，仅审计，不计入 total
}

// AttendanceSummary 月度考勤汇总 — 对应 attendance_summaries
// 主键 (student_id, course_id, month, year)；month 取 0-11
type AttendanceSummary struct {
	StudentID            string                             `gorm:"type:uuid;primaryKey"        json:"student_id"`
	CourseID             string                             `gorm:"type:uuid;primaryKey"        json:"course_id"`
	Month                int                                `gorm:"type:smallint;primaryKey"    json:"month"`
	Year                 int                                `gorm:"primaryKey"                  json:"year"`
	TotalSessions        int                                `gorm:"not null"                    json:"total_sessions"`
	AttendedSessions     int                                `gorm:"not null"                    json:"attended_sessions"`
	AbsentSessions       int                                `gorm:"not null"                    json:"absent_sessions"`
	AttendancePercentage int                                `gorm:"type:smallint;not null"      json:"attendance_percentage"`
	Details              datatypes.JSONType[SummaryDetails] `gorm:"type:jsonb;not null"         json:"details"`
	ComputedAt           time.Time                          `gorm:"not null"                    json:"computed_at"`
}

// TableName 指定表名
func (AttendanceSummary) TableName() string { return "attendance_summaries" }
