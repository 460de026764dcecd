package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "eduverse"
	EventVersion = "1.0"
)

// 事件类型
const (
	ModuleToggled          = "enrollment.module_toggled"
	FirstModuleCompleted   = "enrollment.first_module_completed"
	CourseCompleted        = "enrollment.course_completed"
	PuzzleSolved           = "puzzle.solved"
	BadgeAwarded           = "badge.awarded"
	ResourcesReordered     = "catalog.resources_reordered"
	ResourceAppended       = "catalog.resource_appended"
	ResourceRemoved        = "catalog.resource_removed"
	ResourceProgressUpdate = "progress.resource_updated"
)

// Event 领域事件的统一信封
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    string                 `json:"userId,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func NewEvent(eventType, userID string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Data:      data,
	}
}

// Publisher 发布领域事件；发布失败不影响已提交的业务数据
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }
