package service

import (
	"context"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserService 用户档案；不处理登录认证
type UserService struct {
	Store     repository.Store
	Validator *validator.Validator
}

func NewUserService(store repository.Store, v *validator.Validator) *UserService {
	return &UserService{Store: store, Validator: v}
}

func (s *UserService) Create(ctx context.Context, req *validator.UserRequest) (*model.User, error) {
	if err := s.Validator.ValidateUser(req); err != nil {
		return nil, err
	}
	user := &model.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Role:   model.UserRole(req.Role),
		Avatar: req.Avatar,
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("User created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Get 同时返回已获得的徽章
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.Store.Users().FindWithBadges(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter, page util.Page) ([]model.User, int64, error) {
	return s.Store.Users().List(ctx, filter, page)
}
