package writequeue

import (
	"log/slog"
	"sync"
	"time"
)

// EventType identifies a queue lifecycle event.
type EventType string

const (
	EventEnqueued  EventType = "enqueued"
	EventCompleted EventType = "completed"
	EventRetrying  EventType = "retrying"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// Event is a discrete lifecycle notification carrying a copy of the write
// it concerns.
type Event struct {
	Type  EventType
	Write QueuedWrite
	Err   string
	At    time.Time
}

// Listener receives queue lifecycle events. Listeners run synchronously on
// the emitting goroutine and must not block.
type Listener func(Event)

// eventBus fans events out to subscribed listeners. A panicking listener is
// recovered and logged so one bad listener never breaks dispatch.
type eventBus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	logger    *slog.Logger
}

func newEventBus(logger *slog.Logger) *eventBus {
	return &eventBus{
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (b *eventBus) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Emit delivers the event to all current listeners.
func (b *eventBus) Emit(evt Event) {
	evt.At = time.Now()

	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		b.safeCall(fn, evt)
	}
}

func (b *eventBus) safeCall(fn Listener, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				slog.String("event", string(evt.Type)),
				slog.String("write_id", evt.Write.ID),
				slog.Any("panic", r))
		}
	}()
	fn(evt)
}
