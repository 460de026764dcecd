package events

import (
	"context"
	"encoding/json"
	"fmt"

	"eduverse_backend/internal/config"
	"eduverse_backend/pkg/logger"
	"eduverse_backend/pkg/monitoring"

	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// WatermillPublisher 把事件序列化为 JSON 发布到 watermill 的 topic
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillPublisher(publisher message.Publisher, topic string) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, topic: topic}
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	if event.UserID != "" {
		msg.Metadata.Set("user_id", event.UserID)
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		monitoring.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	monitoring.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// Bus 根据配置创建的发布端以及可选的进程内订阅端
type Bus struct {
	Publisher  Publisher
	Subscriber message.Subscriber
	Topic      string
}

// NewBus gochannel 同时提供发布和订阅；kafka 只发布，由下游服务消费
func NewBus(cfg config.EventsConfig) (*Bus, error) {
	wmLogger := NewZapAdapter(logger.Log.Named("watermill"))

	switch cfg.Driver {
	case "kafka":
		pub, err := kafka.NewPublisher(
			kafka.PublisherConfig{
				Brokers:   cfg.Brokers,
				Marshaler: kafka.DefaultMarshaler{},
			},
			wmLogger,
		)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		return &Bus{Publisher: NewWatermillPublisher(pub, cfg.Topic), Topic: cfg.Topic}, nil
	case "none":
		return &Bus{Publisher: NopPublisher{}, Topic: cfg.Topic}, nil
	default:
		goChannel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger)
		return &Bus{
			Publisher:  NewWatermillPublisher(goChannel, cfg.Topic),
			Subscriber: goChannel,
			Topic:      cfg.Topic,
		}, nil
	}
}

// Handler 处理订阅到的事件
type Handler func(ctx context.Context, event *Event) error

// Listen 消费 topic 直到 ctx 结束；解析失败的消息直接确认丢弃
func Listen(ctx context.Context, sub message.Subscriber, topic string, handler Handler) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Log.Warn("Dropping malformed event", zap.String("message_id", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}
			monitoring.EventsConsumed.WithLabelValues(event.Type).Inc()
			if err := handler(msg.Context(), &event); err != nil {
				logger.Log.Error("Event handler failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", event.Type),
					zap.Error(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

// LogEvent 默认的订阅处理：记录审计日志
func LogEvent(_ context.Context, event *Event) error {
	logger.Log.Info("Domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("user_id", event.UserID),
		zap.Any("data", event.Data))
	return nil
}
