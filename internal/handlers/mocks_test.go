package handlers

import (
	"context"
	"errors"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ufcml/predict-api/internal/logic"
	"github.com/ufcml/predict-api/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	RequestFunc func(ctx context.Context, f1, f2 string) (*logic.PredictionOutcome, error)
}

func (m *MockPredictionService) Request(ctx context.Context, f1, f2 string) (*logic.PredictionOutcome, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, f1, f2)
	}
	return &logic.PredictionOutcome{Status: logic.StatusProcessing}, nil
}

// MockFightHistoryService
type MockFightHistoryService struct {
	RecentFunc func(name string, limit int) []models.FightHistoryEntry
}

func (m *MockFightHistoryService) Recent(name string, limit int) []models.FightHistoryEntry {
	if m.RecentFunc != nil {
		return m.RecentFunc(name, limit)
	}
	return []models.FightHistoryEntry{}
}

type MockPinger struct {
	Err error
}

func (m MockPinger) Ping(context.Context) error { return m.Err }

type MockPgExecer struct {
	Statements []string
	Err        error
}

func (m *MockPgExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.Statements = append(m.Statements, sql)
	return pgconn.CommandTag{}, m.Err
}

type MockClickHouseConn struct {
	driver.Conn
	Statements []string
	ExecErr    error
}

func (m *MockClickHouseConn) Exec(_ context.Context, query string, _ ...any) error {
	m.Statements = append(m.Statements, query)
	return m.ExecErr
}

var errBoom = errors.New("boom")
