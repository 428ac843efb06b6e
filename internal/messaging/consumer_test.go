package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type noopProcessor struct{}

func (noopProcessor) ProcessMessage(context.Context, amqp.Delivery) {}

func TestConsumer_RetriesWithFixedDelayUntilStopped(t *testing.T) {
	var dials atomic.Int32
	c := NewConsumer(ConsumerConfig{URL: "amqp://unreachable:1", Concurrency: 2, RetryDelay: 20 * time.Millisecond}, noopProcessor{}, zap.NewNop())
	c.dial = countingDialer(&dials, errors.New("connection refused"))

	assert.Equal(t, StateDisconnected, c.State())

	c.Start(context.Background())
	c.Start(context.Background()) // повторный Start не запускает второй цикл

	assert.Eventually(t, func() bool { return dials.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	c.Stop()
	stopped := dials.Load()
	assert.Equal(t, StateDisconnected, c.State())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, stopped, dials.Load(), "no reconnect attempts after Stop")

	c.Stop() // повторный Stop безопасен
}

func TestConsumer_DelayBetweenAttempts(t *testing.T) {
	var dials atomic.Int32
	c := NewConsumer(ConsumerConfig{RetryDelay: time.Hour}, noopProcessor{}, zap.NewNop())
	c.dial = countingDialer(&dials, errors.New("connection refused"))

	c.Start(context.Background())
	assert.Eventually(t, func() bool { return dials.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), dials.Load(), "second attempt waits for the retry delay")

	// Stop прерывает ожидание таймера.
	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt the retry delay")
	}
}

func TestConsumer_ParentContextCancelStopsLoop(t *testing.T) {
	var dials atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	c := NewConsumer(ConsumerConfig{RetryDelay: 10 * time.Millisecond}, noopProcessor{}, zap.NewNop())
	c.dial = countingDialer(&dials, errors.New("connection refused"))

	c.Start(ctx)
	assert.Eventually(t, func() bool { return dials.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	c.Stop()
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConsumer_StopWithoutStart(t *testing.T) {
	c := NewConsumer(ConsumerConfig{}, noopProcessor{}, zap.NewNop())
	c.Stop()
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConsumerState_String(t *testing.T) {
	assert.Equal(t, "DISCONNECTED", StateDisconnected.String())
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "CONNECTED", StateConnected.String())
}
