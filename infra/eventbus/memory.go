// Package eventbus provides the in-memory and Redis Streams implementations
// of the eventbus.Bus contract.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/banking/pkg/eventbus"
)

// MemoryBus is a simple in-memory implementation of eventbus.Bus.
// Handlers run synchronously on the publisher's goroutine; handler errors
// and panics are logged and never reach the publisher.
type MemoryBus struct {
	mu        sync.RWMutex
	handlers  map[string][]eventbus.HandlerFunc
	published []eventbus.Event // retained for tests
	logger    *slog.Logger
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *MemoryBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to all registered handlers for its type.
func (b *MemoryBus) Publish(ctx context.Context, event eventbus.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[event.EventType()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		b.dispatch(ctx, event, handler)
	}
	return nil
}

func (b *MemoryBus) dispatch(ctx context.Context, event eventbus.Event, handler eventbus.HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler",
				"type", event.EventType(), "panic", r)
		}
	}()
	if err := handler(ctx, event); err != nil {
		b.logger.Error("failed to process event",
			"type", event.EventType(), "error", err)
	}
}

// Published returns the events published so far. This is useful for testing.
func (b *MemoryBus) Published() []eventbus.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]eventbus.Event{}, b.published...)
}

// ClearPublished clears the recorded events. This is useful for testing.
func (b *MemoryBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

var _ eventbus.Bus = (*MemoryBus)(nil)
