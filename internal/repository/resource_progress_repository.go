package repository

import (
	"context"

	"eduverse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceProgressRepository struct {
	DB *gorm.DB
}

func NewResourceProgressRepository(db *gorm.DB) *ResourceProgressRepository {
	return &ResourceProgressRepository{DB: db}
}

func (r *ResourceProgressRepository) Find(ctx context.Context, userID, resourceID string) (*model.ResourceProgress, error) {
	var p model.ResourceProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, "progress of user %s on resource %s", userID, resourceID)
	}
	return &p, nil
}

// CreateIfAbsent 并发首次访问时只有一条记录写入成功
func (r *ResourceProgressRepository) CreateIfAbsent(ctx context.Context, p *model.ResourceProgress) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ResourceProgressRepository) Update(ctx context.Context, p *model.ResourceProgress) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *ResourceProgressRepository) ListForResources(ctx context.Context, userID string, resourceIDs []string) ([]model.ResourceProgress, error) {
	var list []model.ResourceProgress
	if len(resourceIDs) == 0 {
		return list, nil
	}
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND resource_id IN ?", userID, resourceIDs).
		Find(&list).Error
	return list, err
}

func (r *ResourceProgressRepository) CountCompletedByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.ResourceProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *ResourceProgressRepository) DeleteByResources(ctx context.Context, resourceIDs []string) error {
	if len(resourceIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Where("resource_id IN ?", resourceIDs).Delete(&model.ResourceProgress{}).Error
}
