package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// Rank not_started < in_progress < completed，未知状态为 -1
func (s ProgressStatus) Rank() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ResourceProgress 用户对单个资源的学习状态
// swagger:model ResourceProgress
type ResourceProgress struct {
	UUIDBase
	UserID         string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_resource_progress_user_resource,priority:1" json:"userId"`
	ResourceID     string         `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_resource_progress_user_resource,priority:2" json:"resourceId"`
	Status         ProgressStatus `gorm:"size:20;not null" json:"status"`
	LastAccessedAt *time.Time     `json:"lastAccessedAt,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	TimeSpent      int64          `gorm:"not null" json:"timeSpent"` // 秒，只增不减
	Progress       int            `gorm:"not null" json:"progress"`  // 0-100，完成时置为 100
}

func (ResourceProgress) TableName() string {
	return "resource_progress"
}
