package queue

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

const defaultMemoryCapacity = 1024

// MemoryQueue is a bounded in-process queue. It keeps the Publisher/Consumer
// contract but is not durable; use it for tests and single-process runs.
type MemoryQueue struct {
	messages chan memoryMessage
	seq      atomic.Uint64

	mu       sync.Mutex
	closed   bool
	acked    []string
	rejected map[string]string
}

type memoryMessage struct {
	token string
	body  []byte
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryQueue{
		messages: make(chan memoryMessage, capacity),
		rejected: make(map[string]string),
	}
}

func (q *MemoryQueue) Publish(ctx context.Context, task Task) error {
	body, err := task.Encode()
	if err != nil {
		return err
	}
	return q.PublishRaw(ctx, body)
}

// PublishRaw enqueues an already-encoded body.
func (q *MemoryQueue) PublishRaw(ctx context.Context, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	msg := memoryMessage{token: strconv.FormatUint(q.seq.Add(1), 10), body: body}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case msg, ok := <-q.messages:
		if !ok {
			return nil, ErrClosed
		}
		return &Delivery{
			Token: msg.token,
			Body:  msg.body,
			ack: func(context.Context) error {
				q.mu.Lock()
				q.acked = append(q.acked, msg.token)
				q.mu.Unlock()
				return nil
			},
			reject: func(_ context.Context, reason string) error {
				q.mu.Lock()
				q.rejected[msg.token] = reason
				q.mu.Unlock()
				return nil
			},
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Ping(context.Context) error {
	if q.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Len returns the number of messages waiting to be received.
func (q *MemoryQueue) Len() int {
	return len(q.messages)
}

func (q *MemoryQueue) Acked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

// Rejected maps rejected tokens to the reason given.
func (q *MemoryQueue) Rejected() map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]string, len(q.rejected))
	for k, v := range q.rejected {
		out[k] = v
	}
	return out
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.messages)
	}
	return nil
}

func (q *MemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
