package panel

// Event is a panel lifecycle event: name + panel and optional fields.
type Event struct {
	Name   string
	Panel  string
	Fields map[string]any
}

// Event names.
const (
	EventCreate      = "create"
	EventReady       = "ready"
	EventNavigate    = "navigate"
	EventDrawSkipped = "draw_skipped"
	EventVisible     = "visible"
	EventRemove      = "remove"
)

// EventPublisher receives lifecycle events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
