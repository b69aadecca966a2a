package dto

// ── 考勤汇总 DTO ──

// RefreshSummaryRequest 重新计算单个学生的月度汇总
type RefreshSummaryRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	CourseID  string `json:"course_id"  binding:"required,uuid"`
	MonthQuery
}

// RefreshCourseRequest 重新计算整门课程全部学生的月度汇总
type RefreshCourseRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	MonthQuery
}

// SummaryListRequest 汇总列表查询
type SummaryListRequest struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	CourseID  string `form:"course_id"  binding:"omitempty,uuid"`
	Month     *int   `form:"month"      binding:"omitempty,min=0,max=11"`
	Year      int    `form:"year"       binding:"omitempty,min=1,max=9999"`
	PaginationRequest
}

// SummaryDetailsResponse 汇总分类明细
type SummaryDetailsResponse struct {
	RegularSessions     int `json:"regular_sessions"`
	ExtraSessions       int `json:"extra_sessions"`
	AbsentSessions      int `json:"absent_sessions"`
	RescheduledSessions int `json:"rescheduled_sessions"`
}

// AttendanceSummaryResponse 月度考勤汇总
// 不含计算时间戳，同一输入重复计算得到完全相同的响应
type AttendanceSummaryResponse struct {
	StudentID            string                 `json:"student_id"`
	CourseID             string                 `json:"course_id"`
	Month                int                    `json:"month"`
	Year                 int                    `json:"year"`
	TotalSessions        int                    `json:"total_sessions"`
	AttendedSessions     int                    `json:"attended_sessions"`
	AbsentSessions       int                    `json:"absent_sessions"`
	AttendancePercentage int                    `json:"attendance_percentage"`
	Details              SummaryDetailsResponse `json:"details"`
}

// RefreshFailure 批量刷新中单个学生的失败原因
type RefreshFailure struct {
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
}

// CourseRefreshResponse 按课程批量刷新结果
type CourseRefreshResponse struct {
	CourseID  string                      `json:"course_id"`
	Month     int                         `json:"month"`
	Year      int                         `json:"year"`
	Refreshed []AttendanceSummaryResponse `json:"refreshed"`
	Failed    []RefreshFailure            `json:"failed"`
}
