package repository

import (
	"context"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

type UserFilter struct {
	Name  string
	Email string
	Role  model.UserRole
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Omit("Badges").Create(user).Error
	return duplicate(err, "user with email %s already exists", user.Email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return &user, nil
}

// FindWithBadges 同时加载已获得的徽章
func (r *UserRepository) FindWithBadges(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Preload("Badges", func(db *gorm.DB) *gorm.DB { return db.Order("earned_at ASC") }).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return &user, nil
}

// FindByIDs 批量加载用户，不存在的 id 直接跳过
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user with email %s", email)
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

var userSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter, page util.Page) ([]model.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.User{})
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+toLower(filter.Name)+"%")
	}
	if filter.Email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+toLower(filter.Email)+"%")
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	var users []model.User
	total, err := paginate(q, page, page.OrderClause(userSortColumns, "created_at DESC"), &users)
	return users, total, err
}
