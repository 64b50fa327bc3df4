package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	payloadField      = "payload"
	defaultBlock      = 5 * time.Second
	defaultDeadMaxLen = 10000
)

// RedisStreamConfig names the stream and the consumer group shared by all workers.
type RedisStreamConfig struct {
	Stream   string
	Group    string
	Consumer string // unique per receive loop
	// Block bounds a single XREADGROUP wait.
	Block time.Duration
	// ClaimIdle is how long a message may sit unacknowledged with another
	// consumer before this one takes it over. Zero disables claiming.
	ClaimIdle time.Duration
	// DeadMaxLen caps the dead-letter stream.
	DeadMaxLen int64
}

func (c RedisStreamConfig) deadStream() string {
	return c.Stream + ":dead"
}

// RedisStreamPublisher appends tasks to a Redis stream.
type RedisStreamPublisher struct {
	client redis.Cmdable
	stream string
}

func NewRedisStreamPublisher(client redis.Cmdable, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, task Task) error {
	body, err := task.Encode()
	if err != nil {
		return err
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: string(body)},
	}).Err()
}

func (p *RedisStreamPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// RedisStreamConsumer reads one entry at a time through a consumer group.
// On start it first drains entries it had already been handed before a restart.
type RedisStreamConsumer struct {
	client      redis.Cmdable
	cfg         RedisStreamConfig
	backlogDone bool
}

// NewRedisStreamConsumer creates the group (and stream) if needed.
func NewRedisStreamConsumer(ctx context.Context, client redis.Cmdable, cfg RedisStreamConfig) (*RedisStreamConsumer, error) {
	if cfg.Stream == "" || cfg.Group == "" || cfg.Consumer == "" {
		return nil, errors.New("redis stream consumer: stream, group and consumer are required")
	}
	if cfg.Block <= 0 {
		cfg.Block = defaultBlock
	}
	if cfg.DeadMaxLen <= 0 {
		cfg.DeadMaxLen = defaultDeadMaxLen
	}

	err := client.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group %s: %w", cfg.Group, err)
	}

	return &RedisStreamConsumer{client: client, cfg: cfg}, nil
}

func (c *RedisStreamConsumer) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !c.backlogDone {
			msgs, err := c.read(ctx, "0", -1)
			if err != nil {
				return nil, err
			}
			if len(msgs) > 0 {
				return c.delivery(msgs[0]), nil
			}
			c.backlogDone = true
		}

		if c.cfg.ClaimIdle > 0 {
			msgs, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
				Stream:   c.cfg.Stream,
				Group:    c.cfg.Group,
				Consumer: c.cfg.Consumer,
				MinIdle:  c.cfg.ClaimIdle,
				Start:    "0-0",
				Count:    1,
			}).Result()
			if err != nil {
				return nil, fmt.Errorf("claim stale entries: %w", err)
			}
			if len(msgs) > 0 {
				return c.delivery(msgs[0]), nil
			}
		}

		msgs, err := c.read(ctx, ">", c.cfg.Block)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			return c.delivery(msgs[0]), nil
		}
	}
}

// read returns at most one message. A negative block makes the call non-blocking.
func (c *RedisStreamConsumer) read(ctx context.Context, id string, block time.Duration) ([]redis.XMessage, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, id},
		Count:    1,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", c.cfg.Stream, err)
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (c *RedisStreamConsumer) delivery(msg redis.XMessage) *Delivery {
	body, _ := msg.Values[payloadField].(string)
	id := msg.ID

	return &Delivery{
		Token: id,
		Body:  []byte(body),
		ack: func(ctx context.Context) error {
			_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.XAck(ctx, c.cfg.Stream, c.cfg.Group, id)
				pipe.XDel(ctx, c.cfg.Stream, id)
				return nil
			})
			return err
		},
		reject: func(ctx context.Context, reason string) error {
			_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.XAdd(ctx, &redis.XAddArgs{
					Stream: c.cfg.deadStream(),
					MaxLen: c.cfg.DeadMaxLen,
					Approx: true,
					Values: map[string]interface{}{
						payloadField: body,
						"token":      id,
						"reason":     reason,
					},
				})
				pipe.XAck(ctx, c.cfg.Stream, c.cfg.Group, id)
				pipe.XDel(ctx, c.cfg.Stream, id)
				return nil
			})
			return err
		},
	}
}
