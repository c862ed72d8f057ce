package eventbus_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	infraeventbus "github.com/amirasaad/banking/infra/eventbus"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Name string
}

func (e *testEvent) EventType() string { return "test" }

func newBus() *infraeventbus.MemoryBus {
	return infraeventbus.NewWithMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryBus_PublishDispatchesToSubscribers(t *testing.T) {
	bus := newBus()
	var received []eventbus.Event
	bus.Subscribe("test", func(ctx context.Context, e eventbus.Event) error {
		received = append(received, e)
		return nil
	})
	bus.Subscribe("test", func(ctx context.Context, e eventbus.Event) error {
		received = append(received, e)
		return nil
	})
	bus.Subscribe("other", func(ctx context.Context, e eventbus.Event) error {
		t.Fatal("handler for another type must not fire")
		return nil
	})

	event := &testEvent{Name: "first"}
	require.NoError(t, bus.Publish(context.Background(), event))
	assert.Len(t, received, 2, "every subscriber of the type receives the event")
}

func TestMemoryBus_HandlerErrorDoesNotReachPublisher(t *testing.T) {
	bus := newBus()
	bus.Subscribe("test", func(ctx context.Context, e eventbus.Event) error {
		return errors.New("consumer broke")
	})
	assert.NoError(t, bus.Publish(context.Background(), &testEvent{}))
}

func TestMemoryBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := newBus()
	bus.Subscribe("test", func(ctx context.Context, e eventbus.Event) error {
		panic("consumer panicked")
	})
	fired := false
	bus.Subscribe("test", func(ctx context.Context, e eventbus.Event) error {
		fired = true
		return nil
	})

	assert.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), &testEvent{}))
	})
	assert.True(t, fired, "a panicking handler must not starve the others")
}

func TestMemoryBus_PublishedCapture(t *testing.T) {
	bus := newBus()
	require.NoError(t, bus.Publish(context.Background(), &testEvent{Name: "a"}))
	require.NoError(t, bus.Publish(context.Background(), &testEvent{Name: "b"}))
	assert.Len(t, bus.Published(), 2)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}
