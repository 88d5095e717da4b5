// Package memory provides the channel-backed queue the engine runs on by
// default. One instance carries scheduled executions to the worker pool,
// one per run carries terminal executions back to the round barrier.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/conclave/service/messaging"
)

// Config customises an in-memory queue.
type Config struct {
	// MaxRetries bounds how often a Nacked message is redelivered
	MaxRetries int

	// RetryDelay spaces out redeliveries
	RetryDelay time.Duration

	// DeadLetter keeps messages whose redelivery budget ran out
	DeadLetter bool

	// Buffer is the channel capacity; Publish blocks once it is full
	Buffer int
}

// DefaultConfig returns the standard queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
		Buffer:     100,
	}
}

// Message is one delivery. The payload is a copy taken at Publish time, so a
// consumer mutating it (the worker does – it drives the execution to a
// terminal state) never races the publisher.
type Message[T any] struct {
	id        string
	payload   T
	queue     *Queue[T]
	redeliveries int
	createdAt time.Time

	mu        sync.Mutex
	processed bool
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack marks the message as successfully processed.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack reports a processing failure. The message is redelivered after the
// retry delay until the budget runs out, then parked on the dead letter list
// when one is configured.
func (m *Message[T]) Nack(error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.redeliveries++

	if m.redeliveries <= m.queue.config.MaxRetries {
		go m.queue.redeliver(m)
	} else if m.queue.config.DeadLetter {
		m.queue.park(m)
	}
	return nil
}

// Queue is a channel-backed messaging.Queue.
type Queue[T any] struct {
	config   Config
	messages chan *Message[T]

	deadMu sync.Mutex
	dead   []*Message[T]
}

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		config:   config,
		messages: make(chan *Message[T], config.Buffer),
	}
}

// Publish copies the payload into a new message and enqueues it.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available or the context ends.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case message := <-q.messages:
		return message, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of buffered messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DeadLetterSize returns the number of parked messages.
func (q *Queue[T]) DeadLetterSize() int {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	return len(q.dead)
}

// redeliver requeues a Nacked message after the retry delay.
func (q *Queue[T]) redeliver(m *Message[T]) {
	time.Sleep(q.config.RetryDelay)
	q.messages <- &Message[T]{
		id:        m.id,
		payload:   m.payload,
		queue:     q,
		redeliveries: m.redeliveries,
		createdAt: time.Now(),
	}
}

func (q *Queue[T]) park(m *Message[T]) {
	q.deadMu.Lock()
	q.dead = append(q.dead, m)
	q.deadMu.Unlock()
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
