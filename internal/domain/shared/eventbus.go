package shared

import "context"

// EventPublisher is the application services' side of the event bus.
// Services publish only after their transaction commits, so handlers
// never observe state that was rolled back.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes published domain events.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types the handler wants. Empty means
	// every event.
	EventTypes() []string
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers the handler for the given event types, or for
	// all events when none are named.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is both ends of the pipe.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
