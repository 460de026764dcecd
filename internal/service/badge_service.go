package service

import (
	"context"
	"time"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"
	"eduverse_backend/pkg/logger"
	"eduverse_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// BadgeService 把领域事件转换为徽章并持久化；徽章一旦获得不会被收回
type BadgeService struct {
	Store  repository.Store
	Events events.Publisher
	Now    func() time.Time
}

func NewBadgeService(store repository.Store, pub events.Publisher) *BadgeService {
	return &BadgeService{
		Store:  store,
		Events: pub,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent 处理单个事件，返回新授予的徽章
func (s *BadgeService) HandleEvent(ctx context.Context, userID string, event badge.Event) (model.BadgeID, bool, error) {
	id, awarded, err := s.handleEventWith(ctx, s.Store, userID, event)
	if err != nil || !awarded {
		return id, awarded, err
	}
	s.announce(ctx, userID, id)
	return id, true, nil
}

// handleEventWith 使用调用方的事务，事件由调用方在提交后发布
func (s *BadgeService) handleEventWith(ctx context.Context, store repository.Store, userID string, event badge.Event) (model.BadgeID, bool, error) {
	user, err := store.Users().FindWithBadges(ctx, userID)
	if err != nil {
		return "", false, err
	}
	id, ok := badge.Evaluate(event, user)
	if !ok {
		return "", false, nil
	}
	return s.persist(ctx, store, user, id)
}

func (s *BadgeService) persist(ctx context.Context, store repository.Store, user *model.User, id model.BadgeID) (model.BadgeID, bool, error) {
	now := s.Now()
	if !badge.Award(user, id, now) {
		return id, false, nil
	}
	// 并发授予同一徽章时唯一索引保证只有一条记录
	created, err := store.Badges().Award(ctx, &model.UserBadge{
		UserID:   user.ID,
		BadgeID:  id,
		EarnedAt: now,
	})
	if err != nil {
		return "", false, err
	}
	return id, created, nil
}

// Award 直接授予目录中的某个徽章，已获得时返回 false
func (s *BadgeService) Award(ctx context.Context, userID string, id model.BadgeID) (bool, error) {
	if _, ok := badge.Lookup(id); !ok {
		return false, util.NotFoundf("badge %s", id)
	}
	user, err := s.Store.Users().FindWithBadges(ctx, userID)
	if err != nil {
		return false, err
	}
	_, created, err := s.persist(ctx, s.Store, user, id)
	if err != nil || !created {
		return false, err
	}
	s.announce(ctx, userID, id)
	return true, nil
}

func (s *BadgeService) announce(ctx context.Context, userID string, id model.BadgeID) {
	monitoring.BadgesAwarded.WithLabelValues(string(id)).Inc()
	b, _ := badge.Lookup(id)
	logger.Log.Info("Badge awarded", zap.String("user_id", userID), zap.String("badge_id", string(id)))
	publishEvent(ctx, s.Events, events.BadgeAwarded, userID, map[string]interface{}{
		"badgeId": string(id),
		"title":   b.Title,
		"message": b.Message,
	})
}

// ListUserBadges 完整徽章目录加上用户的获得状态
func (s *BadgeService) ListUserBadges(ctx context.Context, userID string) ([]model.BadgeStatus, error) {
	if _, err := s.Store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	earned, err := s.Store.Badges().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return badge.Merge(earned), nil
}
