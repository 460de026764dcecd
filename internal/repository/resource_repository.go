package repository

import (
	"context"
	"encoding/json"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

// ResourceFilter 资源列表的过滤条件，Tags 命中任意一个即可
type ResourceFilter struct {
	Title     string
	Type      model.ResourceType
	ModuleID  string
	Tags      []string
	Published *bool
}

func (r *ResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	return r.DB.WithContext(ctx).Create(resource).Error
}

func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.WithContext(ctx).First(&resource, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "resource %s", id)
	}
	return &resource, nil
}

func (r *ResourceRepository) ListByModule(ctx context.Context, moduleID string) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("sort_order ASC").
		Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) MaxOrder(ctx context.Context, moduleID string) (int, error) {
	var max int
	err := r.DB.WithContext(ctx).Model(&model.Resource{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *ResourceRepository) UpdateOrder(ctx context.Context, id string, order int) error {
	return r.DB.WithContext(ctx).Model(&model.Resource{}).
		Where("id = ?", id).
		UpdateColumn("sort_order", order).Error
}

// ShiftOrdersAfter 把 order 大于给定值的资源整体平移 delta
func (r *ResourceRepository) ShiftOrdersAfter(ctx context.Context, moduleID string, order, delta int) error {
	return r.DB.WithContext(ctx).Model(&model.Resource{}).
		Where("module_id = ? AND sort_order > ?", moduleID, order).
		UpdateColumn("sort_order", gorm.Expr("sort_order + ?", delta)).Error
}

func (r *ResourceRepository) Update(ctx context.Context, resource *model.Resource) error {
	return r.DB.WithContext(ctx).Save(resource).Error
}

func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Resource{}, "id = ?", id).Error
}

func (r *ResourceRepository) IDsByModules(ctx context.Context, moduleIDs []string) ([]string, error) {
	var ids []string
	if len(moduleIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.Resource{}).
		Where("module_id IN ?", moduleIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ResourceRepository) DeleteByModules(ctx context.Context, moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Where("module_id IN ?", moduleIDs).Delete(&model.Resource{}).Error
}

var resourceSortColumns = map[string]string{
	"order":     "sort_order",
	"title":     "title",
	"type":      "type",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *ResourceRepository) List(ctx context.Context, filter ResourceFilter, page util.Page) ([]model.Resource, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Resource{})
	if filter.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+toLower(filter.Title)+"%")
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ModuleID != "" {
		q = q.Where("module_id = ?", filter.ModuleID)
	}
	if filter.Published != nil {
		q = q.Where("is_published = ?", *filter.Published)
	}
	if cond, args := r.tagsCondition(filter.Tags); cond != "" {
		q = q.Where("("+cond+")", args...)
	}

	var resources []model.Resource
	total, err := paginate(q, page, page.OrderClause(resourceSortColumns, "sort_order ASC"), &resources)
	return resources, total, err
}

// tagsCondition tags 以 JSON 数组文本存储，按带引号的元素做包含匹配
func (r *ResourceRepository) tagsCondition(tags []string) (string, []interface{}) {
	column := "tags"
	if r.DB.Dialector.Name() == "postgres" {
		column = "tags::text"
	}
	var parts []string
	var args []interface{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		quoted, _ := json.Marshal(tag)
		parts = append(parts, column+" LIKE ?")
		args = append(args, "%"+string(quoted)+"%")
	}
	return strings.Join(parts, " OR "), args
}
