package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ufcml/predict-api/internal/cache"
	"github.com/ufcml/predict-api/internal/matchup"
	"github.com/ufcml/predict-api/internal/models"
	"github.com/ufcml/predict-api/internal/queue"
)

// DefaultLockTTL must exceed the worst-case inference latency.
const DefaultLockTTL = 30 * time.Second

var (
	ErrInvalidRequest   = errors.New("both fighter names are required")
	ErrStoreUnavailable = errors.New("cache store unavailable")
	ErrQueueUnavailable = errors.New("work queue unavailable")
)

var predictRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ufc_predict_requests_total",
	Help: "Prediction requests by outcome",
}, []string{"outcome"})

type Status string

const (
	StatusComplete   Status = "complete"
	StatusProcessing Status = "processing"
)

// PredictionOutcome is either a finished result or a request to poll again.
type PredictionOutcome struct {
	Status Status
	Result *models.PredictionResult // set only when Status is StatusComplete
	// Enqueued reports whether this call published the task.
	Enqueued bool
}

type PredictionConfig struct {
	Cache   cache.Store
	Queue   queue.Publisher
	LockTTL time.Duration
	Logger  *zap.Logger
}

type predictionService struct {
	cache   cache.Store
	queue   queue.Publisher
	lockTTL time.Duration
	logger  *zap.SugaredLogger
}

func NewPredictionService(cfg PredictionConfig) PredictionService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &predictionService{
		cache:   cfg.Cache,
		queue:   cfg.Queue,
		lockTTL: cfg.LockTTL,
		logger:  cfg.Logger.Sugar(),
	}
}

// Request returns the cached result for the matchup or makes sure a task for it
// is queued. It never waits for the worker and never writes the result key.
func (s *predictionService) Request(ctx context.Context, fighter1, fighter2 string) (*PredictionOutcome, error) {
	if strings.TrimSpace(fighter1) == "" || strings.TrimSpace(fighter2) == "" {
		predictRequests.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRequest
	}

	key := matchup.Derive(fighter1, fighter2)

	cached, ok, err := s.cache.Get(ctx, key.Result())
	if err != nil {
		predictRequests.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, key, err)
	}
	if ok {
		var res models.PredictionResult
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			predictRequests.WithLabelValues("hit").Inc()
			s.logger.Debugw("Prediction cache hit", "key", key.Result())
			return &PredictionOutcome{Status: StatusComplete, Result: &res}, nil
		}
		// Only the worker writes this key; an undecodable entry is reported and
		// treated as processing until it expires.
		s.logger.Errorw("Corrupt cached prediction", "key", key.Result(), "error", err)
		predictRequests.WithLabelValues("corrupt").Inc()
		return &PredictionOutcome{Status: StatusProcessing}, nil
	}

	acquired, err := s.cache.SetNX(ctx, key.Lock(), "1", s.lockTTL)
	if err != nil {
		predictRequests.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: lock %s: %v", ErrStoreUnavailable, key, err)
	}
	if !acquired {
		predictRequests.WithLabelValues("in_flight").Inc()
		s.logger.Debugw("Prediction already in flight", "key", key.Result())
		return &PredictionOutcome{Status: StatusProcessing}, nil
	}

	task := queue.Task{Fighter1: fighter1, Fighter2: fighter2}
	if err := s.queue.Publish(ctx, task); err != nil {
		// Without the task nobody would ever fill the cache, so give the lock back
		// and let the next poll try again.
		if delErr := s.cache.Del(ctx, key.Lock()); delErr != nil {
			s.logger.Warnw("Failed to release lock after publish error", "key", key.Lock(), "error", delErr)
		}
		predictRequests.WithLabelValues("queue_error").Inc()
		s.logger.Errorw("Failed to publish prediction task", "key", key.Result(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	predictRequests.WithLabelValues("enqueued").Inc()
	s.logger.Infow("Prediction task enqueued", "key", key.Result(), "fighter1", fighter1, "fighter2", fighter2)
	return &PredictionOutcome{Status: StatusProcessing, Enqueued: true}, nil
}
