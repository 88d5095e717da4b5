package event

import (
	"context"
	"errors"
	"log"
)

// Listener pumps typed events from a publisher into a handler on its own
// goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop ends the pump goroutine.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start launches the pump goroutine.
func (l *Listener[T]) Start() {
	go func() {
		for {
			anEvent, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event: failed to consume: %v", err)
				continue
			}
			if anEvent != nil {
				l.handler(anEvent)
			}
		}
	}()
}
