// Package eventbus defines the contract for publishing and subscribing to
// domain events. Publishing is fire-and-forget from the caller's point of
// view: a failed publish never rolls back committed financial state.
package eventbus

import "context"

// Event is implemented by every publishable domain event.
type Event interface {
	EventType() string
}

// HandlerFunc processes one delivered event. Errors are logged by the bus,
// never propagated to the publisher.
type HandlerFunc func(ctx context.Context, event Event) error

// Bus is the contract for event publication and consumption.
type Bus interface {
	// Publish emits an event to all subscribers of its type.
	Publish(ctx context.Context, event Event) error
	// Subscribe registers a handler for the given event type.
	Subscribe(eventType string, handler HandlerFunc)
}
