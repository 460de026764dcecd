package model

import (
	"strings"

	"gorm.io/datatypes"
)

type ResourceType string

const (
	ResourcePDF   ResourceType = "pdf"
	ResourceVideo ResourceType = "video"
	ResourceLink  ResourceType = "link"
	ResourceFile  ResourceType = "file"
	ResourceText  ResourceType = "text"
)

var ResourceTypes = []ResourceType{ResourcePDF, ResourceVideo, ResourceLink, ResourceFile, ResourceText}

// 旧版前后端使用过的类型到统一类型的映射
var legacyResourceTypes = map[string]ResourceType{
	"document":  ResourceFile,
	"image":     ResourceFile,
	"worksheet": ResourceFile,
	"article":   ResourceText,
}

// NormalizeResourceType 统一大小写并映射旧类型，无法识别时原样返回
func NormalizeResourceType(raw string) ResourceType {
	t := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := legacyResourceTypes[t]; ok {
		return mapped
	}
	return ResourceType(t)
}

func (t ResourceType) Valid() bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsMedia 媒体类资源需要 url 或 filePath，text 类资源需要 content
func (t ResourceType) IsMedia() bool {
	return t.Valid() && t != ResourceText
}

// Resource 模块内的学习资源，Order 在模块内连续且从 1 开始
// swagger:model Resource
type Resource struct {
	UUIDBase
	ModuleID    string                      `gorm:"type:varchar(36);not null;index:idx_resources_module_order,priority:1" json:"moduleId"`
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description,omitempty"`
	Type        ResourceType                `gorm:"size:20;not null" json:"type"`
	URL         string                      `gorm:"size:512" json:"url,omitempty"`
	FilePath    string                      `gorm:"size:512" json:"filePath,omitempty"`
	Content     string                      `gorm:"type:text" json:"content,omitempty"`
	Order       int                         `gorm:"column:sort_order;not null;index:idx_resources_module_order,priority:2" json:"order"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	IsPublished bool                        `json:"isPublished"`
	Duration    float64                     `json:"duration,omitempty"` // 视频时长（秒）
	CreatedBy   string                      `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}
