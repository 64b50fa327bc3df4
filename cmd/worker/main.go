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
	"github.com/ufcml/predict-api/internal/history"
	"github.com/ufcml/predict-api/internal/inference"
	"github.com/ufcml/predict-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
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

	// Load the model before touching the network so a bad artifact fails fast.
	profiles, err := inference.LoadProfilesFile(cfg.ProfilesPath)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	model, err := inference.LoadModelFile(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	sugar.Infow("Model loaded", "version", model.Version, "features", len(model.Features), "profiles", profiles.Len())

	pg, err := bootstrap.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	var cards inference.CardRepository
	if pg != nil {
		defer pg.Close()
		cards = inference.NewPostgresCards(pg)
		sugar.Info("Fighter cards from Postgres")
	} else if csvCards, err := inference.LoadCSVCardsFile(cfg.FightersPath); err == nil {
		cards = csvCards
		sugar.Infow("Fighter cards from CSV", "path", cfg.FightersPath)
	} else {
		sugar.Warnw("No fighter cards, using placeholders", "error", err)
	}

	engine := inference.NewEngine(inference.EngineConfig{
		Profiles: profiles,
		Model:    model,
		Cards:    cards,
		Logger:   logger,
	})

	rdb, err := bootstrap.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ch, err := bootstrap.OpenClickHouse(ctx, cfg.ClickHouseURL)
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := bootstrap.OpenQueue(ctx, cfg, rdb, cfg.WorkerCount)
	if err != nil {
		return err
	}
	defer q.Close()

	pool := worker.NewPool(worker.PoolConfig{
		Consumers: q.Consumers,
		Cache:     cache.NewRedisStore(rdb),
		History:   history.NewClickHouseStore(ch),
		Engine:    engine,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
	})

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerMetricsPort),
		Handler:           worker.NewMetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool.Start(gctx)
		<-gctx.Done()
		pool.Stop()
		return nil
	})
	g.Go(func() error {
		sugar.Infow("Starting metrics server", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", zap.Error(err))
		return err
	}
	sugar.Info("Worker stopped")
	return nil
}
