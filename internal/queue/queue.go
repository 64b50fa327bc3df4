// Package queue carries prediction tasks from the API to the workers.
//
// Delivery is at-least-once: a message stays in the queue until the consumer
// acknowledges it, and a consumer that dies mid-message has it redelivered.
// Reject removes a message for good; nothing is ever requeued by this package.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrClosed    = errors.New("queue closed")
	ErrQueueFull = errors.New("queue full")
)

// Task is the unit of work: the two raw names as the client sent them.
type Task struct {
	Fighter1 string `json:"fighter1"`
	Fighter2 string `json:"fighter2"`
}

func (t Task) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// Publisher puts tasks on the queue.
type Publisher interface {
	Publish(ctx context.Context, task Task) error
	Ping(ctx context.Context) error
}

// Consumer hands out one delivery at a time. Receive blocks until a message
// arrives or ctx is done.
type Consumer interface {
	Receive(ctx context.Context) (*Delivery, error)
}

// Delivery is a received message. Token is the broker's own delivery id and is
// only meaningful for acknowledgement.
type Delivery struct {
	Token string
	Body  []byte

	ack    func(ctx context.Context) error
	reject func(ctx context.Context, reason string) error
}

// Task decodes the body. A decode error means the message is poison.
func (d *Delivery) Task() (Task, error) {
	var t Task
	if err := json.Unmarshal(d.Body, &t); err != nil {
		return Task{}, fmt.Errorf("decode task %s: %w", d.Token, err)
	}
	return t, nil
}

// Ack removes the message permanently.
func (d *Delivery) Ack(ctx context.Context) error {
	return d.ack(ctx)
}

// Reject removes the message permanently without redelivery.
func (d *Delivery) Reject(ctx context.Context, reason string) error {
	return d.reject(ctx, reason)
}
