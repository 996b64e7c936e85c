package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("broker unavailable")

// fakeClock 可手动推进的时钟，避免测试中sleep
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold uint32) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("rabbitmq", Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	cb.now = clock.Now
	cb.resetExpiry(clock.Now())
	return cb, clock
}

func TestCircuitBreaker_Closed(t *testing.T) {
	cb, _ := newTestBreaker(3)

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_TripAndReject(t *testing.T) {
	cb, _ := newTestBreaker(3)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errBroker }), errBroker)
	}
	require.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断器打开时不应该调用下游")
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	t.Run("探测成功后关闭", func(t *testing.T) {
		cb, clock := newTestBreaker(2)
		_ = cb.Execute(func() error { return errBroker })
		_ = cb.Execute(func() error { return errBroker })
		require.Equal(t, StateOpen, cb.State())

		clock.Advance(31 * time.Second)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("探测失败重新打开", func(t *testing.T) {
		cb, clock := newTestBreaker(2)
		_ = cb.Execute(func() error { return errBroker })
		_ = cb.Execute(func() error { return errBroker })

		clock.Advance(31 * time.Second)
		assert.ErrorIs(t, cb.Execute(func() error { return errBroker }), errBroker)
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestCircuitBreaker_IntervalResetsCounts(t *testing.T) {
	cb, clock := newTestBreaker(3)
	_ = cb.Execute(func() error { return errBroker })
	_ = cb.Execute(func() error { return errBroker })

	// 统计窗口到期后连续失败次数清零
	clock.Advance(2 * time.Minute)
	_ = cb.Execute(func() error { return errBroker })

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb, clock := newTestBreaker(1)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	})

	_ = cb.Execute(func() error { return errBroker })
	clock.Advance(31 * time.Second)
	_ = cb.Execute(func() error { return nil })

	assert.Equal(t, []string{
		"rabbitmq:CLOSED->OPEN",
		"rabbitmq:OPEN->HALF_OPEN",
		"rabbitmq:HALF_OPEN->CLOSED",
	}, transitions)
}

func TestCounts_FailureRate(t *testing.T) {
	c := Counts{}
	assert.Equal(t, float64(0), c.FailureRate())

	c = Counts{Requests: 4, TotalFailures: 1}
	assert.Equal(t, 0.25, c.FailureRate())
}

func TestNewCircuitBreaker_DefaultTrip(t *testing.T) {
	cb := NewCircuitBreaker("default", Config{Timeout: time.Minute})
	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errBroker })
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(func() error { return errBroker })
	assert.Equal(t, StateOpen, cb.State())
}
