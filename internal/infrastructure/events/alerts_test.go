package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/pkg/mq"
)

func delivery(t *testing.T, evt shared.Event) mq.Delivery {
	t.Helper()
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	return mq.Delivery{RoutingKey: evt.Type, Body: body, Timestamp: evt.OccurredAt}
}

func TestStockAlerts_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	alerts := NewStockAlerts(log, time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	alerts.now = func() time.Time { return now }

	low := shared.NewEvent(inventory.EventStockLow, inventory.StockLowEvent{
		ProductID: 7, Code: "000000007", Name: "Singani", Stock: 2, Threshold: 5,
	})
	ctx := context.Background()

	require.NoError(t, alerts.Handle(ctx, delivery(t, low)))
	assert.Contains(t, buf.String(), "Singani")
	assert.Equal(t, 1, strings.Count(buf.String(), "低库存告警"))

	// 静默期内同一商品不重复告警
	now = now.Add(30 * time.Second)
	require.NoError(t, alerts.Handle(ctx, delivery(t, low)))
	assert.Equal(t, 1, strings.Count(buf.String(), "低库存告警"))

	now = now.Add(time.Minute)
	require.NoError(t, alerts.Handle(ctx, delivery(t, low)))
	assert.Equal(t, 2, strings.Count(buf.String(), "低库存告警"))
}

func TestStockAlerts_IgnoresOtherMessages(t *testing.T) {
	var buf bytes.Buffer
	alerts := NewStockAlerts(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})), time.Minute)
	ctx := context.Background()

	require.NoError(t, alerts.Handle(ctx, delivery(t, shared.NewEvent(sale.EventLineItemCreated, sale.LineItemEvent{OrderID: 1}))))
	assert.Empty(t, buf.String())

	// 无法解析的消息丢弃，不重新入队
	assert.NoError(t, alerts.Handle(ctx, mq.Delivery{RoutingKey: inventory.EventStockLow, Body: []byte("{")}))
	assert.Contains(t, buf.String(), "丢弃")
}

func TestStockAlerts_ForgetsExpiredProducts(t *testing.T) {
	alerts := NewStockAlerts(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	alerts.now = func() time.Time { return now }
	ctx := context.Background()

	for id := uint(1); id <= 50; id++ {
		evt := shared.NewEvent(inventory.EventStockLow, inventory.StockLowEvent{ProductID: id, Stock: 1, Threshold: 5})
		require.NoError(t, alerts.Handle(ctx, delivery(t, evt)))
	}
	assert.Len(t, alerts.last, 50)

	now = now.Add(2 * time.Minute)
	evt := shared.NewEvent(inventory.EventStockLow, inventory.StockLowEvent{ProductID: 99, Stock: 1, Threshold: 5})
	require.NoError(t, alerts.Handle(ctx, delivery(t, evt)))
	assert.Len(t, alerts.last, 1, "静默期已过的商品不再保留")
	assert.Contains(t, alerts.last, uint(99))
}
