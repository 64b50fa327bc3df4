package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ufcml/predict-api/internal/bootstrap"
	"github.com/ufcml/predict-api/internal/cache"
	"github.com/ufcml/predict-api/internal/config"
	"github.com/ufcml/predict-api/internal/fights"
	"github.com/ufcml/predict-api/internal/handlers"
	"github.com/ufcml/predict-api/internal/logic"
)

// HTTP server timeouts
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	q, err := bootstrap.OpenQueue(ctx, cfg, rdb, 0)
	if err != nil {
		return err
	}
	defer q.Close()

	ch, err := bootstrap.OpenClickHouse(ctx, cfg.ClickHouseURL)
	if err != nil {
		return err
	}
	defer ch.Close()

	pg, err := bootstrap.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	var pgExec handlers.PgExecer
	if pg != nil {
		defer pg.Close()
		pgExec = pg
	}

	history, err := fights.LoadFile(cfg.FightsPath)
	if err != nil {
		return fmt.Errorf("load fights: %w", err)
	}
	sugar.Infow("Fight history loaded", "fights", history.Len(), "path", cfg.FightsPath)

	store := cache.NewRedisStore(rdb)
	h := handlers.New(handlers.Config{
		Logger: logger,
		Prediction: logic.NewPredictionService(logic.PredictionConfig{
			Cache:   store,
			Queue:   q.Publisher,
			LockTTL: cfg.LockTTL,
			Logger:  logger,
		}),
		FightHistory: history,
		Checks: map[string]handlers.Pinger{
			"redis":      store,
			"queue":      q.Publisher,
			"clickhouse": ch,
		},
		Postgres:      pgExec,
		ClickHouse:    ch,
		MigrationsDir: cfg.MigrationsDir,
		AdminToken:    cfg.AdminToken,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.NewRouter(h, handlers.RouterConfig{
			AllowedOrigins:     cfg.AllowedOrigins,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
			TrustProxyHeaders:  cfg.TrustProxy,
			StaticDir:          cfg.StaticDir,
		}),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Infow("Starting HTTP server", "addr", srv.Addr, "env", cfg.Env, "queue", cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	sugar.Info("Server stopped")
	return nil
}
