package service

import (
	"context"
	"strings"

	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"
	"eduverse_backend/pkg/monitoring"
	"eduverse_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ResourceSequencer 维护模块内资源 order 连续为 1..N，同一模块的写操作串行执行
type ResourceSequencer struct {
	Store     repository.Store
	Locker    lock.Locker
	Validator *validator.Validator
	Events    events.Publisher
}

func NewResourceSequencer(store repository.Store, locker lock.Locker, v *validator.Validator, pub events.Publisher) *ResourceSequencer {
	return &ResourceSequencer{
		Store:     store,
		Locker:    locker,
		Validator: v,
		Events:    pub,
	}
}

func newResource(moduleID string, req *validator.ResourceRequest) *model.Resource {
	tags := datatypes.JSONSlice[string]{}
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	published := false
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	return &model.Resource{
		ModuleID:    moduleID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        model.NormalizeResourceType(req.Type),
		URL:         req.URL,
		FilePath:    req.FilePath,
		Content:     req.Content,
		Tags:        tags,
		IsPublished: published,
		Duration:    req.Duration,
		CreatedBy:   req.CreatedBy,
	}
}

// Append 追加到模块末尾，order = 当前最大值 + 1
func (s *ResourceSequencer) Append(ctx context.Context, moduleID string, req *validator.ResourceRequest) (res *model.Resource, err error) {
	ctx, span := tracing.StartSpan(ctx, "ResourceSequencer.Append", attribute.String("module.id", moduleID))
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.Validator.ValidateResource(req); err != nil {
		return nil, err
	}

	release, err := acquire(ctx, s.Locker, "module resources", lock.ModuleResourcesKey(moduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	resource := newResource(moduleID, req)
	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Modules().FindByID(ctx, moduleID); err != nil {
			return err
		}
		max, err := tx.Resources().MaxOrder(ctx, moduleID)
		if err != nil {
			return err
		}
		resource.Order = max + 1
		return tx.Resources().Create(ctx, resource)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Resource appended",
		zap.String("module_id", moduleID),
		zap.String("resource_id", resource.ID),
		zap.Int("order", resource.Order))
	publishEvent(ctx, s.Events, events.ResourceAppended, resource.CreatedBy, map[string]interface{}{
		"moduleId":   moduleID,
		"resourceId": resource.ID,
		"order":      resource.Order,
	})
	return resource, nil
}

// Remove 删除资源及其学习进度，并把后面的资源前移一位
func (s *ResourceSequencer) Remove(ctx context.Context, resourceID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ResourceSequencer.Remove", attribute.String("resource.id", resourceID))
	defer func() { tracing.EndSpan(span, err) }()

	// 资源不会跨模块移动，先读出模块 ID 用于加锁
	existing, err := s.Store.Resources().FindByID(ctx, resourceID)
	if err != nil {
		return err
	}
	moduleID := existing.ModuleID

	release, err := acquire(ctx, s.Locker, "module resources", lock.ModuleResourcesKey(moduleID))
	if err != nil {
		return err
	}
	defer release()

	var removed *model.Resource
	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		r, err := tx.Resources().FindByID(ctx, resourceID)
		if err != nil {
			return err
		}
		removed = r
		if err := tx.ResourceProgress().DeleteByResources(ctx, []string{r.ID}); err != nil {
			return err
		}
		if err := tx.Resources().Delete(ctx, r.ID); err != nil {
			return err
		}
		return tx.Resources().ShiftOrdersAfter(ctx, moduleID, r.Order, -1)
	})
	if err != nil {
		return err
	}

	logger.Log.Info("Resource removed",
		zap.String("module_id", moduleID),
		zap.String("resource_id", resourceID),
		zap.Int("order", removed.Order))
	publishEvent(ctx, s.Events, events.ResourceRemoved, "", map[string]interface{}{
		"moduleId":   moduleID,
		"resourceId": resourceID,
	})
	return nil
}

// Reorder 整批校验后在一个事务内写入；orders 必须恰好是 1..N 的一个排列
func (s *ResourceSequencer) Reorder(ctx context.Context, moduleID string, items []validator.ReorderItem) (list []model.Resource, err error) {
	ctx, span := tracing.StartSpan(ctx, "ResourceSequencer.Reorder",
		attribute.String("module.id", moduleID),
		attribute.Int("batch.size", len(items)))
	defer func() { tracing.EndSpan(span, err) }()

	if len(items) == 0 {
		return nil, util.InvalidArgumentf("resourceOrders must be a non-empty array")
	}
	for i := range items {
		if errs := s.Validator.Struct(&items[i]); len(errs) > 0 {
			return nil, util.InvalidArgumentf("resourceOrders[%d]: %s", i, errs.Error())
		}
	}

	release, err := acquire(ctx, s.Locker, "module resources", lock.ModuleResourcesKey(moduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Modules().FindByID(ctx, moduleID); err != nil {
			return err
		}
		current, err := tx.Resources().ListByModule(ctx, moduleID)
		if err != nil {
			return err
		}
		changes, err := planReorder(moduleID, current, items)
		if err != nil {
			return err
		}
		for id, order := range changes {
			if err := tx.Resources().UpdateOrder(ctx, id, order); err != nil {
				return err
			}
		}
		list, err = tx.Resources().ListByModule(ctx, moduleID)
		return err
	})
	if err != nil {
		if errorsIsConflict(err) {
			monitoring.ResourceOrderConflicts.Inc()
		}
		return nil, err
	}

	logger.Log.Info("Resources reordered", zap.String("module_id", moduleID), zap.Int("count", len(items)))
	publishEvent(ctx, s.Events, events.ResourcesReordered, "", map[string]interface{}{
		"moduleId": moduleID,
		"count":    len(items),
	})
	return list, nil
}

// planReorder 校验整批请求，返回需要修改 order 的资源
func planReorder(moduleID string, current []model.Resource, items []validator.ReorderItem) (map[string]int, error) {
	currentOrder := make(map[string]int, len(current))
	for _, r := range current {
		currentOrder[r.ID] = r.Order
	}
	for _, item := range items {
		if _, ok := currentOrder[item.ID]; !ok {
			return nil, util.NotFoundf("resource %s not found in module %s", item.ID, moduleID)
		}
	}

	n := len(current)
	if len(items) != n {
		return nil, util.Conflictf("reorder must cover all %d resources of module %s, got %d", n, moduleID, len(items))
	}
	seenIDs := make(map[string]bool, n)
	seenOrders := make(map[int]bool, n)
	changes := make(map[string]int)
	for _, item := range items {
		if seenIDs[item.ID] {
			return nil, util.Conflictf("resource %s appears more than once", item.ID)
		}
		seenIDs[item.ID] = true
		if item.Order < 1 || item.Order > n {
			return nil, util.Conflictf("order %d for resource %s is outside 1..%d", item.Order, item.ID, n)
		}
		if seenOrders[item.Order] {
			return nil, util.Conflictf("order %d is assigned more than once", item.Order)
		}
		seenOrders[item.Order] = true
		if currentOrder[item.ID] != item.Order {
			changes[item.ID] = item.Order
		}
	}
	return changes, nil
}

// List 按 order 返回模块内资源
func (s *ResourceSequencer) List(ctx context.Context, moduleID string) ([]model.Resource, error) {
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.Store.Resources().ListByModule(ctx, moduleID)
}
