// Package event is an in-process event bus. Listeners run on a bounded
// pool of workers so a slow listener never holds up the publisher.
//
//	bus := event.NewBus(4)
//	defer bus.Close()
//	bus.Listen(event.PaymentConfirmed, func(ctx context.Context, e event.Event) {
//	    ...
//	})
//	bus.Publish(ctx, event.Event{Name: event.PaymentConfirmed, Payload: payment})
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/ruizhu/shopapi/pkg/logger"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	PaymentCreated     = "payment.created"
	PaymentConfirmed   = "payment.confirmed"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event: bus is closed")

type Event struct {
	Name    string
	Payload any
}

type Handler func(ctx context.Context, e Event)

type task struct {
	ctx     context.Context
	event   Event
	handler Handler
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool

	tasks chan task
	wg    sync.WaitGroup
	once  sync.Once
}

// NewBus starts workers goroutines. The queue holds twice that many
// pending deliveries; past that Publish delivers inline.
func NewBus(workers int) *Bus {
	if workers <= 0 {
		workers = 1
	}
	b := &Bus{
		handlers: make(map[string][]Handler),
		tasks:    make(chan task, workers*2),
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish queues e for every listener of e.Name. The listener context is
// detached from ctx's cancellation but keeps its values.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	ctx = context.WithoutCancel(ctx)
	for _, h := range b.handlers[e.Name] {
		t := task{ctx: ctx, event: e, handler: h}
		select {
		case b.tasks <- t:
		default:
			run(t)
		}
	}
	return nil
}

// Close stops accepting events and waits for queued deliveries.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.tasks)
		b.mu.Unlock()
		b.wg.Wait()
	})
}

func (b *Bus) worker() {
	defer b.wg.Done()
	for t := range b.tasks {
		run(t)
	}
}

func run(t task) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(t.ctx).Error("event listener panicked", "event", t.event.Name, "panic", rec)
		}
	}()
	t.handler(t.ctx, t.event)
}
