// Package worker drains the prediction queue. Each receive loop holds at most
// one message at a time: check the cache, run inference, write the result to
// the cache and the history store, then acknowledge.
//
// Failed messages are rejected without requeue.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ufcml/predict-api/internal/cache"
	"github.com/ufcml/predict-api/internal/history"
	"github.com/ufcml/predict-api/internal/inference"
	"github.com/ufcml/predict-api/internal/matchup"
	"github.com/ufcml/predict-api/internal/models"
	"github.com/ufcml/predict-api/internal/queue"
)

// DefaultCacheTTL is how long a finished prediction stays in the cache.
const DefaultCacheTTL = 600 * time.Second

const receiveBackoff = time.Second

// Prometheus metrics
var (
	messagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ufc_worker_messages_total",
		Help: "Task messages handled, by outcome",
	}, []string{"outcome"})

	messagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ufc_worker_failures_total",
		Help: "Rejected task messages, by reason",
	}, []string{"reason"})

	inferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ufc_inference_duration_seconds",
		Help:    "Duration of a single inference call",
		Buckets: prometheus.DefBuckets,
	})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ufc_worker_in_flight",
		Help: "Messages currently being handled",
	})
)

// Outcome is what happened to a single delivery.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped" // result already cached
	OutcomeRejected  Outcome = "rejected"
)

// Predictor is the inference engine as seen by the worker.
type Predictor interface {
	Predict(ctx context.Context, fighter1, fighter2 string) (*models.PredictionResult, error)
	ModelVersion() string
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	// Consumers gets one receive loop per entry.
	Consumers []queue.Consumer
	Cache     cache.Store
	History   history.Store
	Engine    Predictor
	CacheTTL  time.Duration
	Logger    *zap.Logger
	Now       func() time.Time
}

// Pool runs the receive loops.
type Pool struct {
	config PoolConfig
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pool{
		config: cfg,
		logger: cfg.Logger.Sugar(),
	}
}

// Start launches one goroutine per consumer.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i, c := range p.config.Consumers {
		p.wg.Add(1)
		go p.worker(i, c)
	}

	p.logger.Infow("Worker pool started",
		"workers", len(p.config.Consumers),
		"cacheTTL", p.config.CacheTTL,
	)
}

// Stop cancels the receive loops and waits for in-flight messages to finish.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(id int, c queue.Consumer) {
	defer p.wg.Done()

	p.logger.Infow("Worker started", "worker", id)

	for {
		d, err := c.Receive(p.ctx)
		if err != nil {
			if p.ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				p.logger.Infow("Worker exiting", "worker", id)
				return
			}
			p.logger.Errorw("Receive failed", "worker", id, "error", err)
			select {
			case <-time.After(receiveBackoff):
				continue
			case <-p.ctx.Done():
				return
			}
		}

		// Let the message finish even if shutdown starts mid-way.
		p.Handle(context.WithoutCancel(p.ctx), d)
	}
}

// Handle processes one delivery and always settles it with Ack or Reject.
func (p *Pool) Handle(ctx context.Context, d *queue.Delivery) Outcome {
	inFlight.Inc()
	defer inFlight.Dec()

	task, err := d.Task()
	if err != nil {
		return p.reject(ctx, d, "decode", err, nil)
	}

	key := matchup.Derive(task.Fighter1, task.Fighter2)
	fields := []interface{}{"token", d.Token, "key", key.Result(), "fighter1", task.Fighter1, "fighter2", task.Fighter2}

	exists, err := p.config.Cache.Exists(ctx, key.Result())
	if err != nil {
		return p.reject(ctx, d, "cache", err, fields)
	}
	if exists {
		p.logger.Infow("Result already cached, skipping", fields...)
		p.ack(ctx, d, fields)
		messagesHandled.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped
	}

	p.logger.Infow("Running inference", fields...)
	start := time.Now()
	res, err := p.config.Engine.Predict(ctx, task.Fighter1, task.Fighter2)
	inferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "inference"
		if errors.Is(err, inference.ErrFighterNotFound) {
			reason = "not_found"
		}
		return p.reject(ctx, d, reason, err, fields)
	}

	body, err := json.Marshal(res)
	if err != nil {
		return p.reject(ctx, d, "encode", err, fields)
	}
	if err := p.config.Cache.SetEx(ctx, key.Result(), string(body), p.config.CacheTTL); err != nil {
		return p.reject(ctx, d, "cache", err, fields)
	}

	rec := history.NewRecord(res, p.config.Engine.ModelVersion(), p.config.Now())
	if err := p.config.History.Append(ctx, rec); err != nil {
		return p.reject(ctx, d, "history", err, fields)
	}

	p.ack(ctx, d, fields)
	p.logger.Infow("Prediction saved", append(fields, "winner", res.Winner, "duration", time.Since(start))...)
	messagesHandled.WithLabelValues(string(OutcomeCompleted)).Inc()
	return OutcomeCompleted
}

// ack failures are only logged: a redelivered message finds the cached result
// and is skipped.
func (p *Pool) ack(ctx context.Context, d *queue.Delivery, fields []interface{}) {
	if err := d.Ack(ctx); err != nil {
		p.logger.Errorw("Ack failed", append(fields, "error", err)...)
	}
}

func (p *Pool) reject(ctx context.Context, d *queue.Delivery, reason string, cause error, fields []interface{}) Outcome {
	if fields == nil {
		fields = []interface{}{"token", d.Token}
	}
	p.logger.Errorw("Prediction task failed, rejecting without requeue",
		append(fields, "reason", reason, "error", cause)...)

	if err := d.Reject(ctx, reason); err != nil {
		p.logger.Errorw("Reject failed", append(fields, "error", err)...)
	}
	messagesFailed.WithLabelValues(reason).Inc()
	messagesHandled.WithLabelValues(string(OutcomeRejected)).Inc()
	return OutcomeRejected
}
