package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event 领域事件
// Type同时作为消息的routing key
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewEvent 创建事件，ID为UUID
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}

// EventPublisher 事件发布接口
// 只在事务提交之后调用；发布失败不影响已提交的业务操作
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
