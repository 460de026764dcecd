package repository

import (
	"context"

	"eduverse_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(ctx context.Context, module *model.Module) error {
	return r.DB.WithContext(ctx).Omit("Resources", "Assignments", "Quizzes").Create(module).Error
}

func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.DB.WithContext(ctx).First(&module, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "module %s", id)
	}
	return &module, nil
}

// FindInCourse 模块不属于该课程时同样返回 NotFound
func (r *ModuleRepository) FindInCourse(ctx context.Context, courseID, moduleID string) (*model.Module, error) {
	var module model.Module
	err := r.DB.WithContext(ctx).Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error
	if err != nil {
		return nil, notFound(err, "module %s in course %s", moduleID, courseID)
	}
	return &module, nil
}

func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("position ASC").Find(&modules).Error
	return modules, err
}

// IDsByCourse 课程下的模块 ID，用于计算进度
func (r *ModuleRepository) IDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountByCourses 每门课程的模块数
func (r *ModuleRepository) CountByCourses(ctx context.Context, courseIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CourseID string
		Total    int
	}
	err := r.DB.WithContext(ctx).Model(&model.Module{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	for _, row := range rows {
		out[row.CourseID] = row.Total
	}
	return out, err
}

func (r *ModuleRepository) MaxPosition(ctx context.Context, courseID string) (int, error) {
	var max int
	err := r.DB.WithContext(ctx).Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *ModuleRepository) Update(ctx context.Context, module *model.Module) error {
	return r.DB.WithContext(ctx).Omit("Resources", "Assignments", "Quizzes").Save(module).Error
}

// ShiftPositionsAfter 删除模块后把后面的模块前移
func (r *ModuleRepository) ShiftPositionsAfter(ctx context.Context, courseID string, position, delta int) error {
	return r.DB.WithContext(ctx).Model(&model.Module{}).
		Where("course_id = ? AND position > ?", courseID, position).
		UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}

func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Module{}, "id = ?", id).Error
}

// ShiftPositionsRange 平移 position 在 [from, to] 内的模块
func (r *ModuleRepository) ShiftPositionsRange(ctx context.Context, courseID string, from, to, delta int) error {
	return r.DB.WithContext(ctx).Model(&model.Module{}).
		Where("course_id = ? AND position BETWEEN ? AND ?", courseID, from, to).
		UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}

func (r *ModuleRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Module{}).Error
}
