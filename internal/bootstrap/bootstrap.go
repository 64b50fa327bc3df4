// Package bootstrap opens the external connections shared by cmd/api and
// cmd/worker. Callers own the returned handles and close them on shutdown.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ufcml/predict-api/internal/config"
	"github.com/ufcml/predict-api/internal/queue"
)

const connectTimeout = 10 * time.Second

// NewLogger returns a JSON production logger for ENV=production and a
// console development logger otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func OpenClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}

// OpenPostgres returns nil without error when url is empty.
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Queue is the configured work queue backend.
type Queue struct {
	Publisher queue.Publisher
	Consumers []queue.Consumer
	nc        *nats.Conn
}

// Close drains the NATS connection when one was opened.
func (q *Queue) Close() {
	if q.nc != nil {
		q.nc.Drain()
	}
}

// OpenQueue builds the publisher and, when consumers > 0, that many consumers
// for the backend named by cfg.QueueBackend.
func OpenQueue(ctx context.Context, cfg *config.Config, rdb redis.Cmdable, consumers int) (*Queue, error) {
	switch cfg.QueueBackend {
	case config.QueueNATS:
		return openJetStream(ctx, cfg, consumers)
	default:
		return openRedisStream(ctx, cfg, rdb, consumers)
	}
}

func openRedisStream(ctx context.Context, cfg *config.Config, rdb redis.Cmdable, n int) (*Queue, error) {
	q := &Queue{Publisher: queue.NewRedisStreamPublisher(rdb, cfg.QueueName)}

	host := cfg.QueueConsumer
	if host == "" {
		host = hostname()
	}
	for i := 0; i < n; i++ {
		c, err := queue.NewRedisStreamConsumer(ctx, rdb, queue.RedisStreamConfig{
			Stream:    cfg.QueueName,
			Group:     cfg.QueueGroup,
			Consumer:  ConsumerName(host, i),
			ClaimIdle: cfg.QueueClaimIdle,
		})
		if err != nil {
			return nil, err
		}
		q.Consumers = append(q.Consumers, c)
	}
	return q, nil
}

func openJetStream(ctx context.Context, cfg *config.Config, n int) (*Queue, error) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("ufc-predict-"+hostname()),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := queue.NewJetStream(ctx, nc, queue.JetStreamConfig{
		Stream:  cfg.QueueName,
		Subject: cfg.QueueName,
		Durable: cfg.QueueGroup,
		AckWait: cfg.QueueClaimIdle,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	// A pull consumer is safe to fetch from concurrently.
	q := &Queue{Publisher: js, nc: nc}
	for i := 0; i < n; i++ {
		q.Consumers = append(q.Consumers, js)
	}
	return q, nil
}

// ConsumerName is stable across restarts of the same host, so a restarted
// loop replays the entries it had received but not acknowledged.
func ConsumerName(host string, i int) string {
	return fmt.Sprintf("%s-%d", host, i)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "worker"
	}
	return h
}
