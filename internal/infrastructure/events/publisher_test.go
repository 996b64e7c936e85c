package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/pkg/circuitbreaker"
	"github.com/xiebiao/licoreria/pkg/logger"
)

type fakeBroker struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (f *fakeBroker) Publish(ctx context.Context, routingKey string, message any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, routingKey)
	return nil
}

func TestBrokerPublisher_Publish(t *testing.T) {
	broker := &fakeBroker{}
	cb := NewBreaker(config.MQConfig{BreakerTimeout: time.Minute}, logger.Discard())
	p := NewBrokerPublisher(broker, cb, time.Second, logger.Discard())

	err := p.Publish(context.Background(),
		shared.NewEvent(sale.EventLineItemCreated, sale.LineItemEvent{OrderID: 1}),
		shared.NewEvent(sale.EventOrderDeleted, sale.OrderDeletedEvent{OrderID: 1}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{sale.EventLineItemCreated, sale.EventOrderDeleted}, broker.keys)
}

func TestBrokerPublisher_CanceledContextStillPublishes(t *testing.T) {
	broker := &fakeBroker{}
	p := NewBrokerPublisher(broker, NewBreaker(config.MQConfig{BreakerTimeout: time.Minute}, logger.Discard()), time.Second, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Publish(ctx, shared.NewEvent(sale.EventLineItemDeleted, nil)))
	assert.Len(t, broker.keys, 1)
}

func TestBrokerPublisher_BreakerOpens(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection refused")}
	cb := NewBreaker(config.MQConfig{BreakerTimeout: time.Minute}, logger.Discard())
	p := NewBrokerPublisher(broker, cb, time.Second, logger.Discard())

	for i := 0; i < 5; i++ {
		err := p.Publish(context.Background(), shared.NewEvent(sale.EventLineItemCreated, nil))
		assert.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())

	err := p.Publish(context.Background(), shared.NewEvent(sale.EventLineItemCreated, nil))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.Discard())
	assert.NoError(t, p.Publish(context.Background(), shared.NewEvent("x", 1)))
}
