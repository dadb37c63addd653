package manager

// Event represents a manager lifecycle event: a name, the model reference and
// optional fields.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// Lifecycle event names.
const (
	EventLoadStart  = "load_start"
	EventLoadDone   = "load_done"
	EventLoadFailed = "load_failed"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
