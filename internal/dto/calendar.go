package dto

// ── 有效课表 DTO ──

// CalendarSessionResponse 单次有效课次
type CalendarSessionResponse struct {
	Date         string `json:"date"`
	Weekday      string `json:"weekday"`
	Kind         string `json:"kind"`                    // regular / extra
	OriginalDate string `json:"original_date,omitempty"` // 仅 extra
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// MovedSessionResponse 本月调出的课次
type MovedSessionResponse struct {
	OriginalDate string `json:"original_date"`
	NewDate      string `json:"new_date"`
}

// CalendarResponse 课程某月有效课表
type CalendarResponse struct {
	CourseID   string                    `json:"course_id"`
	CourseName string                    `json:"course_name"`
	DayOfWeek  string                    `json:"day_of_week"`
	Month      int                       `json:"month"`
	Year       int                       `json:"year"`
	Sessions   []CalendarSessionResponse `json:"sessions"`
	Cancelled  []string                  `json:"cancelled"`
	MovedOut   []MovedSessionResponse    `json:"moved_out"`
}
