// Package events provides a small in-process publish/subscribe bus used
// for decoupling feature modules. Publishing is best effort: a slow or
// failing subscriber must never fail the operation that emitted the
// event.
package events

import (
	"context"
	"sync"
	"time"

	"stockquote_backend/platform/logger"
)

// Event is anything that can be published on the bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all domain events. Embed it
// and implement EventName on the concrete type.
type BaseEvent struct {
	At time.Time
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{At: time.Now().UTC()}
}

func (e BaseEvent) OccurredAt() time.Time { return e.At }

// Handler consumes events for one or more event names.
type Handler interface {
	Handle(ctx context.Context, event Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event)

func (f HandlerFunc) Handle(ctx context.Context, event Event) { f(ctx, event) }

// Bus dispatches events to subscribers.
type Bus interface {
	// Publish dispatches asynchronously and returns immediately.
	Publish(ctx context.Context, event Event)
	// PublishSync dispatches on the caller's goroutine and returns
	// when all handlers have run. Used by tests and the worker.
	PublishSync(ctx context.Context, event Event)
	Subscribe(eventName string, handler Handler)
}

// InMemoryBus is the single-process Bus implementation.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h := h
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.dispatch(ctx, h, event)
		}()
	}
}

func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, event)
	}
}

// Wait blocks until all asynchronously dispatched handlers finish.
// Called during graceful shutdown.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) dispatch(ctx context.Context, h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", "event", event.EventName(), "panic", r)
		}
	}()
	h.Handle(ctx, event)
}
