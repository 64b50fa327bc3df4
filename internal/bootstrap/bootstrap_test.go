package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufcml/predict-api/internal/config"
	"github.com/ufcml/predict-api/internal/queue"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(&config.Config{Env: env})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestOpenPostgres_Disabled(t *testing.T) {
	pool, err := OpenPostgres(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestOpenQueue_RedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := OpenRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	cfg := &config.Config{QueueBackend: config.QueueRedis, QueueName: "predict_queue", QueueGroup: "predict_workers"}
	q, err := OpenQueue(ctx, cfg, client, 2)
	require.NoError(t, err)
	defer q.Close()
	require.Len(t, q.Consumers, 2)

	require.NoError(t, q.Publisher.Publish(ctx, queue.Task{Fighter1: "Jon Jones", Fighter2: "Alex Pereira"}))

	d, err := q.Consumers[0].Receive(ctx)
	require.NoError(t, err)
	task, err := d.Task()
	require.NoError(t, err)
	assert.Equal(t, "Jon Jones", task.Fighter1)
	require.NoError(t, d.Ack(ctx))
}

func TestConsumerName_StablePerHostAndLoop(t *testing.T) {
	assert.Equal(t, ConsumerName("host", 0), ConsumerName("host", 0))
	assert.NotEqual(t, ConsumerName("host", 0), ConsumerName("host", 1))
	assert.Equal(t, "host-1", ConsumerName("host", 1))
}

// A worker that dies between receive and ack gets the same entry back after
// restarting on the same host, without waiting for the claim timeout.
func TestOpenQueue_RestartReplaysUnackedEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := OpenRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	cfg := &config.Config{
		QueueBackend:   config.QueueRedis,
		QueueName:      "predict_queue",
		QueueGroup:     "predict_workers",
		QueueConsumer:  "worker-a",
		QueueClaimIdle: time.Hour,
	}
	before, err := OpenQueue(ctx, cfg, client, 1)
	require.NoError(t, err)
	require.NoError(t, before.Publisher.Publish(ctx, queue.Task{Fighter1: "Jon Jones", Fighter2: "Alex Pereira"}))

	d1, err := before.Consumers[0].Receive(ctx)
	require.NoError(t, err)
	before.Close()

	after, err := OpenQueue(ctx, cfg, client, 1)
	require.NoError(t, err)
	defer after.Close()

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	d2, err := after.Consumers[0].Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, d1.Token, d2.Token)
	require.NoError(t, d2.Ack(ctx))

	consumers, err := client.XInfoConsumers(ctx, "predict_queue", "predict_workers").Result()
	require.NoError(t, err)
	assert.Len(t, consumers, 1, "a restart reuses the consumer instead of adding one")
}
