package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ufcml/predict-api/internal/cache"
	"github.com/ufcml/predict-api/internal/inference"
	"github.com/ufcml/predict-api/internal/models"
)

// MockEngine counts Predict calls and returns a fixed result.
type MockEngine struct {
	mu          sync.Mutex
	Calls       int
	PredictFunc func(ctx context.Context, f1, f2 string) (*models.PredictionResult, error)
}

func (m *MockEngine) Predict(ctx context.Context, f1, f2 string) (*models.PredictionResult, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, f1, f2)
	}
	return &models.PredictionResult{
		Fighter1:    models.PlaceholderCard(f1),
		Fighter2:    models.PlaceholderCard(f2),
		Winner:      f1,
		Probability: models.Probability{Red: 0.61, Blue: 0.39},
		Shap:        []models.FeatureContribution{{Feature: "Elo rating difference", Value: 0.42}},
	}, nil
}

func (m *MockEngine) ModelVersion() string { return "logit_test" }

func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

func notFoundEngine() *MockEngine {
	return &MockEngine{PredictFunc: func(ctx context.Context, f1, f2 string) (*models.PredictionResult, error) {
		return nil, inference.ErrFighterNotFound
	}}
}

// MockHistory records appended rows.
type MockHistory struct {
	mu        sync.Mutex
	Records   []*models.HistoryRecord
	AppendErr error
}

func (m *MockHistory) Append(_ context.Context, rec *models.HistoryRecord) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	m.Records = append(m.Records, rec)
	m.mu.Unlock()
	return nil
}

func (m *MockHistory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}

// MockStore wraps a real store and lets single operations fail.
type MockStore struct {
	cache.Store
	SetExErr  error
	ExistsErr error
	LastTTL   time.Duration
}

func (m *MockStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	m.LastTTL = ttl
	if m.SetExErr != nil {
		return m.SetExErr
	}
	return m.Store.SetEx(ctx, key, value, ttl)
}

func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.Store.Exists(ctx, key)
}
