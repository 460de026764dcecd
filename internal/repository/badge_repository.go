package repository

import (
	"context"

	"eduverse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

// Award 已获得时不覆盖，保留最早的 earned_at
func (r *BadgeRepository) Award(ctx context.Context, ub *model.UserBadge) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(ub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BadgeRepository) ListByUser(ctx context.Context, userID string) ([]model.UserBadge, error) {
	var list []model.UserBadge
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at ASC").Find(&list).Error
	return list, err
}

func (r *BadgeRepository) Find(ctx context.Context, userID string, badgeID model.BadgeID) (*model.UserBadge, error) {
	var ub model.UserBadge
	err := r.DB.WithContext(ctx).Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&ub).Error
	if err != nil {
		return nil, notFound(err, "badge %s of user %s", badgeID, userID)
	}
	return &ub, nil
}
