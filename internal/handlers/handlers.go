package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/ufcml/predict-api/internal/logic"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PgExecer runs the Postgres migration script.
type PgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Config struct {
	Logger *zap.Logger
	// Services
	Prediction   logic.PredictionService
	FightHistory logic.FightHistoryService
	// Dependencies reported by /ready, keyed by name.
	Checks map[string]Pinger
	// Schema installation. Postgres is optional.
	Postgres      PgExecer
	ClickHouse    driver.Conn
	MigrationsDir string
	AdminToken    string
}

type Handler struct {
	logger        *zap.SugaredLogger
	prediction    logic.PredictionService
	fightHistory  logic.FightHistoryService
	checks        map[string]Pinger
	pg            PgExecer
	ch            driver.Conn
	migrationsDir string
	adminToken    string
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	return &Handler{
		logger:        cfg.Logger.Sugar(),
		prediction:    cfg.Prediction,
		fightHistory:  cfg.FightHistory,
		checks:        cfg.Checks,
		pg:            cfg.Postgres,
		ch:            cfg.ClickHouse,
		migrationsDir: cfg.MigrationsDir,
		adminToken:    cfg.AdminToken,
	}
}
