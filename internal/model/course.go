package model

import (
	"time"

	"gorm.io/datatypes"
)

// Weekday 星期枚举，0=Sunday … 6=Saturday，与 time.Weekday 取值一致
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Valid 是否为合法星期
func (d Weekday) Valid() bool { return d >= Sunday && d <= Saturday }

func (d Weekday) String() string { return time.Weekday(d).String() }

// WeekdayOf 由日历日期计算星期（公历推算，不依赖区域设置）
func WeekdayOf(t time.Time) Weekday { return Weekday(t.Weekday()) }

// Course 课程周期定义 — 对应 courses（由课程目录服务维护，本服务只读）
type Course struct {
	CourseID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name      string          `gorm:"type:varchar(100);not null"                     json:"name"`
	DayOfWeek Weekday         `gorm:"type:smallint;not null"                         json:"day_of_week"`
	StartTime string          `gorm:"type:time;not null"                             json:"start_time"`
	EndTime   string          `gorm:"type:time;not null"                             json:"end_time"`
	StartsOn  *datatypes.Date `gorm:"type:date"                                      json:"starts_on,omitempty"` // 首次开课日期，NULL 表示不限
	EndsOn    *datatypes.Date `gorm:"type:date"                                      json:"ends_on,omitempty"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseEnrollment 选课关系 — 对应 course_enrollments（只读）
type CourseEnrollment struct {
	CourseID   string    `gorm:"type:uuid;primaryKey" json:"course_id"`
	StudentID  string    `gorm:"type:uuid;primaryKey" json:"student_id"`
	EnrolledAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"enrolled_at"`
}

// TableName 指定表名
func (CourseEnrollment) TableName() string { return "course_enrollments" }
