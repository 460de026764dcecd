package repository

import (
	"context"
	"time"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Create 依赖 (student_id, course_id) 唯一索引；已存在时不写入并返回 created=false
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "enrollment %s", id)
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&e).Error
	if err != nil {
		return nil, notFound(err, "enrollment for student %s in course %s", studentID, courseID)
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("enrolled_at ASC").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("enrolled_at ASC").Find(&list).Error
	return list, err
}

// UpdateWithVersion 仅当版本号未变时写入，成功后 e.Version 自增
func (r *EnrollmentRepository) UpdateWithVersion(ctx context.Context, e *model.Enrollment) error {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]interface{}{
			"completed_modules":  e.CompletedModules,
			"progress":           e.Progress,
			"completed":          e.Completed,
			"first_completed_at": e.FirstCompletedAt,
			"completed_at":       e.CompletedAt,
			"version":            e.Version + 1,
			"updated_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.Conflictf("enrollment %s was modified concurrently, please retry", e.ID)
	}
	e.Version++
	e.UpdatedAt = now
	return nil
}

func (r *EnrollmentRepository) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.DB.WithContext(ctx).Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error
}

// CourseStats 单门课程的选课汇总
type CourseStats struct {
	CourseID        string  `json:"courseId"`
	Enrollments     int64   `json:"enrollments"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"averageProgress"`
}

func (r *EnrollmentRepository) StatsByCourses(ctx context.Context, courseIDs []string) (map[string]CourseStats, error) {
	out := make(map[string]CourseStats, len(courseIDs))
	if len(courseIDs) == 0 {
		return out, nil
	}
	var rows []CourseStats
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollments, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed, AVG(progress) AS average_progress").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	for _, row := range rows {
		out[row.CourseID] = row
	}
	return out, err
}
