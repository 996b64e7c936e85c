// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP请求：请求数、耗时、处理中的请求数
//   - 销售台账（Ledger）：操作次数与耗时、库存不足拒绝数、并发冲突重试数
//   - 基础设施：熔断器状态、消息发布结果
//
// 所有指标在包加载时通过promauto注册到默认Registry，/metrics端点由Handler()暴露。
//
// 命名规范：
//   - Counter以_total结尾
//   - Histogram以单位结尾（_seconds）
//   - 避免高基数标签：不要用product_id、order_id作为标签
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "licoreria"

var (
	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，不是原始URL）、status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	// LedgerOperationsTotal 台账操作总数
	// 标签：operation（create_line_item等）、result（success/failure）
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "销售台账操作总数",
		},
		[]string{"operation", "result"},
	)

	// LedgerOperationDuration 台账操作耗时（包含重试）
	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "销售台账操作耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// LedgerConflictRetriesTotal 并发冲突导致的重试次数
	LedgerConflictRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_conflict_retries_total",
			Help:      "并发冲突重试次数",
		},
		[]string{"operation"},
	)

	// InsufficientStockTotal 因库存不足被拒绝的请求数
	InsufficientStockTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_stock_total",
			Help:      "库存不足拒绝次数",
		},
	)

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：result（success/failure/rejected）
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// MessagesPublishedTotal 消息发布总数
	// 标签：routing_key、result（success/failure/dropped）
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)

	// MessagesConsumedTotal 消息消费总数
	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "消息消费总数",
		},
		[]string{"queue", "result"},
	)
)

// Handler 返回/metrics端点处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result 将error转换为result标签值
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// ObserveLedgerOperation 记录一次台账操作的结果与耗时
func ObserveLedgerOperation(operation string, err error, seconds float64) {
	LedgerOperationsTotal.WithLabelValues(operation, Result(err)).Inc()
	LedgerOperationDuration.WithLabelValues(operation).Observe(seconds)
}
