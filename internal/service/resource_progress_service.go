package service

import (
	"context"
	"time"

	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
)

// ResourceProgressService 记录用户对单个资源的访问与完成状态
type ResourceProgressService struct {
	Store     repository.Store
	Locker    lock.Locker
	Validator *validator.Validator
	Events    events.Publisher
	Now       func() time.Time
}

func NewResourceProgressService(store repository.Store, locker lock.Locker, v *validator.Validator, pub events.Publisher) *ResourceProgressService {
	return &ResourceProgressService{
		Store:     store,
		Locker:    locker,
		Validator: v,
		Events:    pub,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// ResourceWithProgress 资源及当前用户的进度
type ResourceWithProgress struct {
	model.Resource
	Status         model.ProgressStatus `json:"status"`
	Progress       int                  `json:"progress"`
	TimeSpent      int64                `json:"timeSpent"`
	LastAccessedAt *time.Time           `json:"lastAccessedAt,omitempty"`
	CompletedAt    *time.Time           `json:"completedAt,omitempty"`
}

// applyProgressUpdate timeSpent 累加，状态只前进不后退，completedAt 只在第一次完成时写入
func applyProgressUpdate(p *model.ResourceProgress, status *model.ProgressStatus, timeSpent *int64, now time.Time) {
	t := now
	p.LastAccessedAt = &t
	if timeSpent != nil {
		p.TimeSpent += *timeSpent
	}
	if status == nil || status.Rank() < p.Status.Rank() {
		return
	}
	p.Status = *status
	if *status == model.StatusCompleted {
		p.Progress = 100
		if p.CompletedAt == nil {
			c := now
			p.CompletedAt = &c
		}
	}
}

func newProgress(userID, resourceID string, now time.Time) *model.ResourceProgress {
	t := now
	return &model.ResourceProgress{
		UserID:         userID,
		ResourceID:     resourceID,
		Status:         model.StatusNotStarted,
		LastAccessedAt: &t,
	}
}

// findOrCreate 并发创建时以唯一索引为准，再读一次
func findOrCreate(ctx context.Context, store repository.Store, userID, resourceID string, now time.Time) (*model.ResourceProgress, bool, error) {
	p, err := store.ResourceProgress().Find(ctx, userID, resourceID)
	if err == nil {
		return p, false, nil
	}
	if !util.IsNotFound(err) {
		return nil, false, err
	}
	fresh := newProgress(userID, resourceID, now)
	created, err := store.ResourceProgress().CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, false, err
	}
	if created {
		return fresh, true, nil
	}
	p, err = store.ResourceProgress().Find(ctx, userID, resourceID)
	return p, false, err
}

// RecordAccess 首次访问创建 not_started 记录，之后只更新 lastAccessedAt
func (s *ResourceProgressService) RecordAccess(ctx context.Context, userID, resourceID string) (*model.ResourceProgress, error) {
	if _, err := s.Store.Resources().FindByID(ctx, resourceID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}

	release, err := acquire(ctx, s.Locker, "resource progress", lock.ResourceProgressKey(userID, resourceID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.Now()
	p, created, err := findOrCreate(ctx, s.Store, userID, resourceID, now)
	if err != nil {
		return nil, err
	}
	if !created {
		t := now
		p.LastAccessedAt = &t
		if err := s.Store.ResourceProgress().Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpdateStatus 不存在时先创建再应用更新
func (s *ResourceProgressService) UpdateStatus(ctx context.Context, resourceID string, req *validator.ProgressUpdateRequest) (*model.ResourceProgress, error) {
	if err := s.Validator.ValidateProgressUpdate(req); err != nil {
		return nil, err
	}
	if _, err := s.Store.Resources().FindByID(ctx, resourceID); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	var status *model.ProgressStatus
	if req.Status != nil {
		st := model.ProgressStatus(*req.Status)
		status = &st
	}

	release, err := acquire(ctx, s.Locker, "resource progress", lock.ResourceProgressKey(req.UserID, resourceID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.Now()
	var p *model.ResourceProgress
	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		current, _, err := findOrCreate(ctx, tx, req.UserID, resourceID, now)
		if err != nil {
			return err
		}
		applyProgressUpdate(current, status, req.TimeSpent, now)
		p = current
		return tx.ResourceProgress().Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Resource progress updated",
		zap.String("user_id", req.UserID),
		zap.String("resource_id", resourceID),
		zap.String("status", string(p.Status)),
		zap.Int64("time_spent", p.TimeSpent))
	publishEvent(ctx, s.Events, events.ResourceProgressUpdate, req.UserID, map[string]interface{}{
		"resourceId": resourceID,
		"status":     string(p.Status),
		"timeSpent":  p.TimeSpent,
	})
	return p, nil
}

// ListModuleProgress 模块资源按 order 排列，未访问过的资源为 not_started
func (s *ResourceProgressService) ListModuleProgress(ctx context.Context, userID, moduleID string) ([]ResourceWithProgress, error) {
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	resources, err := s.Store.Resources().ListByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resources))
	for _, r := range resources {
		ids = append(ids, r.ID)
	}

	byResource := make(map[string]model.ResourceProgress)
	if userID != "" && len(ids) > 0 {
		list, err := s.Store.ResourceProgress().ListForResources(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			byResource[p.ResourceID] = p
		}
	}

	out := make([]ResourceWithProgress, 0, len(resources))
	for _, r := range resources {
		item := ResourceWithProgress{Resource: r, Status: model.StatusNotStarted}
		if p, ok := byResource[r.ID]; ok {
			item.Status = p.Status
			item.Progress = p.Progress
			item.TimeSpent = p.TimeSpent
			item.LastAccessedAt = p.LastAccessedAt
			item.CompletedAt = p.CompletedAt
		}
		out = append(out, item)
	}
	return out, nil
}
