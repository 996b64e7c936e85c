// Package events 领域事件发布
//
// BrokerPublisher把事件发到RabbitMQ，外层套熔断器；
// 未启用消息队列时使用LogPublisher，只写日志。
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/pkg/circuitbreaker"
	"github.com/xiebiao/licoreria/pkg/metrics"
)

// MessagePublisher 消息发布者(pkg/mq.Publisher)
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// BrokerPublisher 经熔断器发布事件
type BrokerPublisher struct {
	pub     MessagePublisher
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

var _ shared.EventPublisher = (*BrokerPublisher)(nil)

// NewBrokerPublisher 创建事件发布者
func NewBrokerPublisher(pub MessagePublisher, breaker *circuitbreaker.CircuitBreaker, timeout time.Duration, logger *slog.Logger) *BrokerPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &BrokerPublisher{pub: pub, breaker: breaker, timeout: timeout, logger: logger}
}

// NewBreaker 按配置创建保护消息队列的熔断器，状态变化写日志并更新指标
func NewBreaker(cfg config.MQConfig, logger *slog.Logger) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker("rabbitmq", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
	})
	metrics.CircuitBreakerState.WithLabelValues(cb.Name()).Set(float64(cb.State()))
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		logger.Warn("熔断器状态变化",
			slog.String("name", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return cb
}

// Publish 逐个发布事件
// 调用方的ctx被取消不会中断发布(业务已提交)，每条消息有独立超时
func (p *BrokerPublisher) Publish(ctx context.Context, events ...shared.Event) error {
	var errs []error
	for _, evt := range events {
		err := p.breaker.Execute(func() error {
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
			defer cancel()
			return p.pub.Publish(pctx, evt.Type, evt)
		})

		switch {
		case err == nil:
			metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), "success").Inc()
			continue
		case errors.Is(err, circuitbreaker.ErrOpenState):
			metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), "rejected").Inc()
			metrics.MessagesPublishedTotal.WithLabelValues(evt.Type, "dropped").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), "failure").Inc()
		}

		p.logger.WarnContext(ctx, "事件发布失败",
			slog.String("event_id", evt.ID),
			slog.String("type", evt.Type),
			slog.Any("error", err),
		)
		errs = append(errs, fmt.Errorf("发布事件%s失败: %w", evt.Type, err))
	}
	return errors.Join(errs...)
}

// LogPublisher 只记录日志的发布者
type LogPublisher struct {
	logger *slog.Logger
}

var _ shared.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher 创建日志发布者
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...shared.Event) error {
	for _, evt := range events {
		p.logger.DebugContext(ctx, "领域事件",
			slog.String("event_id", evt.ID),
			slog.String("type", evt.Type),
			slog.Any("payload", evt.Payload),
		)
	}
	return nil
}
