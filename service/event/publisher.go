package event

import (
	"context"
	"time"

	"github.com/viant/conclave/service/messaging"
)

// Publisher emits typed events onto the type's own queue and mirrors them
// onto the service-wide any-queue so that a single listener can observe every
// event regardless of payload type.
type Publisher[T any] struct {
	queue    messaging.Queue[Event[T]]
	anyQueue messaging.Queue[Event[any]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish stamps and enqueues the event.
func (p *Publisher[T]) Publish(ctx context.Context, anEvent *Event[T]) error {
	anEvent.CreatedAt = time.Now()
	if p.anyQueue != nil {
		_ = p.anyQueue.Publish(ctx, &Event[any]{
			Context:   anEvent.Context,
			CreatedAt: anEvent.CreatedAt,
			Metadata:  anEvent.Metadata,
			Data:      anEvent.Data,
		})
	}
	return p.queue.Publish(ctx, anEvent)
}

// Consume blocks for the next event of this type and acknowledges it.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	message, err := p.queue.Consume(ctx)
	if err != nil || message == nil {
		return nil, err
	}
	if err = message.Ack(); err != nil {
		return nil, err
	}
	return message.T(), nil
}
