package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const defaultFetchWait = 5 * time.Second

// JetStreamConfig describes a work-queue stream and its durable pull consumer.
type JetStreamConfig struct {
	Stream    string
	Subject   string
	Durable   string
	AckWait   time.Duration
	FetchWait time.Duration
}

// JetStream is both Publisher and Consumer over a NATS JetStream work queue.
// Term is used for rejection so the server never redelivers the message.
type JetStream struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	cfg      JetStreamConfig
}

func NewJetStream(ctx context.Context, nc *nats.Conn, cfg JetStreamConfig) (*JetStream, error) {
	if cfg.FetchWait <= 0 {
		cfg.FetchWait = defaultFetchWait
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       cfg.Durable,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		FilterSubject: cfg.Subject,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer %s: %w", cfg.Durable, err)
	}

	return &JetStream{nc: nc, js: js, consumer: consumer, cfg: cfg}, nil
}

func (q *JetStream) Publish(ctx context.Context, task Task) error {
	body, err := task.Encode()
	if err != nil {
		return err
	}
	_, err = q.js.Publish(ctx, q.cfg.Subject, body)
	return err
}

func (q *JetStream) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := q.consumer.Fetch(1, jetstream.FetchMaxWait(q.cfg.FetchWait))
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		for msg := range batch.Messages() {
			return q.delivery(msg), nil
		}
		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}
}

func (q *JetStream) delivery(msg jetstream.Msg) *Delivery {
	token := ""
	if meta, err := msg.Metadata(); err == nil {
		token = strconv.FormatUint(meta.Sequence.Stream, 10)
	}
	return &Delivery{
		Token: token,
		Body:  msg.Data(),
		ack: func(context.Context) error {
			return msg.Ack()
		},
		reject: func(context.Context, string) error {
			return msg.Term()
		},
	}
}

func (q *JetStream) Ping(context.Context) error {
	if !q.nc.IsConnected() {
		return fmt.Errorf("nats: %s", q.nc.Status())
	}
	return nil
}
