package service

import (
	"context"

	"eduverse_backend/internal/events"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
)

// publishEvent 在事务提交之后调用，发布失败只记录日志
func publishEvent(ctx context.Context, pub events.Publisher, eventType, userID string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	e := events.NewEvent(eventType, userID, data)
	if err := pub.Publish(ctx, e); err != nil {
		logger.Log.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("event_id", e.ID),
			zap.Error(err))
	}
}
