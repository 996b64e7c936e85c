package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/pkg/mq"
)

// envelope 消息体，Payload延迟解析
type envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// StockAlerts 处理低库存事件
// 同一商品在quiet时间内只告警一次，之后的事件只记DEBUG日志
type StockAlerts struct {
	logger *slog.Logger
	quiet  time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[uint]time.Time
}

// NewStockAlerts 创建低库存告警处理器
func NewStockAlerts(logger *slog.Logger, quiet time.Duration) *StockAlerts {
	return &StockAlerts{
		logger: logger,
		quiet:  quiet,
		now:    time.Now,
		last:   map[uint]time.Time{},
	}
}

// Handle 实现mq.Handler
// 无法解析的消息记录后丢弃，重新入队也不会成功
func (a *StockAlerts) Handle(ctx context.Context, d mq.Delivery) error {
	var env envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		a.logger.ErrorContext(ctx, "丢弃无法解析的消息", slog.String("routing_key", d.RoutingKey), slog.Any("error", err))
		return nil
	}
	if env.Type != inventory.EventStockLow {
		a.logger.DebugContext(ctx, "忽略非低库存事件", slog.String("type", env.Type))
		return nil
	}

	var evt inventory.StockLowEvent
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		a.logger.ErrorContext(ctx, "丢弃无法解析的低库存事件", slog.String("event_id", env.ID), slog.Any("error", err))
		return nil
	}

	if !a.shouldAlert(evt.ProductID) {
		a.logger.DebugContext(ctx, "低库存告警已抑制", slog.Uint64("product_id", uint64(evt.ProductID)), slog.Int("stock", evt.Stock))
		return nil
	}

	a.logger.WarnContext(ctx, "低库存告警",
		slog.String("event_id", env.ID),
		slog.Uint64("product_id", uint64(evt.ProductID)),
		slog.String("code", evt.Code),
		slog.String("name", evt.Name),
		slog.Int("stock", evt.Stock),
		slog.Int("threshold", evt.Threshold),
		slog.Time("occurred_at", env.OccurredAt),
	)
	return nil
}

func (a *StockAlerts) shouldAlert(productID uint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	// 过了静默期的记录不再有用，顺手清掉
	for id, at := range a.last {
		if now.Sub(at) >= a.quiet {
			delete(a.last, id)
		}
	}
	if _, ok := a.last[productID]; ok {
		return false
	}
	a.last[productID] = now
	return true
}
