package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/model"
)

// CourseRepository 课程目录只读访问接口
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListStudentIDs(ctx context.Context, courseID string) ([]string, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Where("course_id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListStudentIDs 返回课程的全部选课学生，按 student_id 排序
func (r *courseRepo) ListStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}
