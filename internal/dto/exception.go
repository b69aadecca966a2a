package dto

// ── 课表例外模块 DTO ──

// RecordAbsenceRequest 登记停课请求
type RecordAbsenceRequest struct {
	CourseID   string `json:"course_id"   binding:"required,uuid"`
	AbsentDate string `json:"absent_date" binding:"required,isodate"` // "2025-03-10"
	Reason     string `json:"reason"      binding:"omitempty,max=200"`
}

// RecordRescheduleRequest 登记调课请求
type RecordRescheduleRequest struct {
	CourseID     string `json:"course_id"     binding:"required,uuid"`
	OriginalDate string `json:"original_date" binding:"required,isodate"`
	NewDate      string `json:"new_date"      binding:"required,isodate"`
	Reason       string `json:"reason"        binding:"omitempty,max=200"`
}

// ExceptionListRequest 按月查询例外
type ExceptionListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	MonthQuery
}

// AbsentDayResponse 停课登记响应
type AbsentDayResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	AbsentDate string `json:"absent_date"`
	Weekday    string `json:"weekday"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RescheduledSessionResponse 调课登记响应
type RescheduledSessionResponse struct {
	ID           string `json:"id"`
	CourseID     string `json:"course_id"`
	OriginalDate string `json:"original_date"`
	NewDate      string `json:"new_date"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ExceptionListResponse 某月例外列表
// AbsentDays / RescheduledSessions 按停课日期、原定日期归属月份；
// MovedIn 为原定日期在其他月份、调入本月的调课
type ExceptionListResponse struct {
	Month               int                          `json:"month"`
	Year                int                          `json:"year"`
	AbsentDays          []AbsentDayResponse          `json:"absent_days"`
	RescheduledSessions []RescheduledSessionResponse `json:"rescheduled_sessions"`
	MovedIn             []RescheduledSessionResponse `json:"moved_in"`
}
