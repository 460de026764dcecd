package repository

import (
	"context"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

type CourseFilter struct {
	InstructorID string
	Title        string
}

func toLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit("Modules").Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "course %s", id)
	}
	return &course, nil
}

// FindTree 加载课程及完整的模块树，模块按 position、资源按 order 排序
func (r *CourseRepository) FindTree(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Modules.Resources", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Modules.Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Modules.Quizzes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Modules.Quizzes.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Modules.Quizzes.Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "course %s", id)
	}
	return &course, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit("Modules").Save(course).Error
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Course{}, "id = ?", id).Error
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("created_at ASC").Find(&courses).Error
	return courses, err
}

var courseSortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *CourseRepository) List(ctx context.Context, filter CourseFilter, page util.Page) ([]model.Course, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Course{})
	if filter.InstructorID != "" {
		q = q.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+toLower(filter.Title)+"%")
	}

	var courses []model.Course
	total, err := paginate(q, page, page.OrderClause(courseSortColumns, "created_at DESC"), &courses)
	return courses, total, err
}
