package repository

import (
	"context"

	"eduverse_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "assignment %s", id)
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByModule(ctx context.Context, moduleID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.DB.WithContext(ctx).Where("module_id = ?", moduleID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Assignment{}, "id = ?", id).Error
}

func (r *AssignmentRepository) DeleteByModules(ctx context.Context, moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Where("module_id IN ?", moduleIDs).Delete(&model.Assignment{}).Error
}
