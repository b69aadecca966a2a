package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// MonthQuery 月份定位参数，month 为 0-11
type MonthQuery struct {
	Month *int `form:"month" json:"month" binding:"required,min=0,max=11"`
	Year  int  `form:"year"  json:"year"  binding:"required,min=1,max=9999"`
}

// CoursePath 课程路径参数
type CoursePath struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// SummaryPath 汇总路径参数
type SummaryPath struct {
	StudentID string `uri:"student_id" binding:"required,uuid"`
	CourseID  string `uri:"course_id"  binding:"required,uuid"`
}
