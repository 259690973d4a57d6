package queue

// Lifecycle event names published by the manager.
const (
	EventEnqueued  = "enqueued"
	EventStarted   = "started"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// Event represents a request lifecycle event.
// Minimal and stable: name + request/session ids and optional fields.
type Event struct {
	Name      string
	RequestID string
	SessionID string
	Fields    map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
