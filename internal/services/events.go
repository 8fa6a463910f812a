package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ttbackend/apiserver/internal/logging"
	"github.com/ttbackend/apiserver/internal/mq"
)

var (
	ErrEventQueueFull   = errors.New("security event queue full")
	ErrEventQueueClosed = errors.New("security event queue closed")
)

type queuedEvent struct {
	eventType  mq.EventType
	employeeID int
}

// EventQueue hands security events to a single background worker so the
// request that triggered them never waits on the broker. Events are dropped
// when the buffer is full.
type EventQueue struct {
	next    SecurityEvents
	timeout time.Duration
	logger  *logging.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

// NewEventQueue starts the worker. Each delivery to next gets its own
// timeout, detached from the request context.
func NewEventQueue(next SecurityEvents, size int, timeout time.Duration, logger *logging.Logger) *EventQueue {
	if size < 1 {
		size = 1
	}
	q := &EventQueue{
		next:    next,
		timeout: timeout,
		logger:  logger.With("component", "security-events"),
		queue:   make(chan queuedEvent, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues the event without blocking.
func (q *EventQueue) Publish(_ context.Context, eventType mq.EventType, employeeID int) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrEventQueueClosed
	}

	select {
	case q.queue <- queuedEvent{eventType: eventType, employeeID: employeeID}:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to end.
func (q *EventQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *EventQueue) run() {
	defer close(q.done)
	for event := range q.queue {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.next.Publish(ctx, event.eventType, event.employeeID)
		cancel()
		if err != nil {
			q.logger.Warn("security event not delivered", "event", event.eventType, "error", err)
		}
	}
}
