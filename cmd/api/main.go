package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/railquote/fare-estimator-api/internal/adapters/fareapi"
	"github.com/railquote/fare-estimator-api/internal/adapters/httpapi"
	memfarebook "github.com/railquote/fare-estimator-api/internal/adapters/memory/farebook"
	postgres "github.com/railquote/fare-estimator-api/internal/adapters/postgres"
	pgfarebook "github.com/railquote/fare-estimator-api/internal/adapters/postgres/farebook"
	"github.com/railquote/fare-estimator-api/internal/adapters/redis/farecache"
	"github.com/railquote/fare-estimator-api/internal/app/estimator"
	platformclock "github.com/railquote/fare-estimator-api/internal/platform/clock"
	"github.com/railquote/fare-estimator-api/internal/platform/config"
	"github.com/railquote/fare-estimator-api/internal/platform/logging"
	"github.com/railquote/fare-estimator-api/internal/platform/metrics"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

func main() {
	cfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid server config: %v", err)
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("invalid log config: %v", err)
	}

	if code := finish(logger, run(cfg, logger)); code != 0 {
		os.Exit(code)
	}
}

// finish logs a fatal run error and flushes the logger before the process exits.
func finish(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("api stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg config.ServerConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClockIn(cfg.Location)
	m := metrics.New()

	fares, cleanup, err := newFareProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	fares = m.InstrumentProvider(string(cfg.FareBackend), fares)

	if cfg.FareCache == config.FareCacheRedis {
		redisCfg, err := config.LoadRedisConfigFromEnv()
		if err != nil {
			return fmt.Errorf("invalid redis config: %w", err)
		}
		client, err := farecache.NewClient(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		fares = farecache.New(fares, client, redisCfg.TTL, logger)
	}

	svc := estimator.NewService(fares, clk, logger)
	handler := httpapi.NewRouter(
		httpapi.NewHandler(svc, m, logger),
		httpapi.RouterOptions{Logger: logger, Metrics: m},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("port", cfg.Port),
			zap.String("fare_backend", string(cfg.FareBackend)),
			zap.String("fare_cache", string(cfg.FareCache)),
			zap.String("timezone", cfg.Location.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newFareProvider(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (fareprovider.Provider, func(), error) {
	noop := func() {}

	switch cfg.FareBackend {
	case config.FareBackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, noop, fmt.Errorf("invalid postgres config: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return pgfarebook.NewBook(pool), pool.Close, nil

	case config.FareBackendMemory:
		book := memfarebook.NewBook()
		if cfg.FareTablePath != "" {
			f, err := os.Open(cfg.FareTablePath)
			if err != nil {
				return nil, noop, fmt.Errorf("open fare table: %w", err)
			}
			defer f.Close()
			if err := book.LoadJSON(ctx, f); err != nil {
				return nil, noop, err
			}
		}
		logger.Info("memory fare book ready", zap.Int("tariffs", book.Len()))
		return book, noop, nil

	default:
		apiCfg, err := config.LoadFareAPIConfigFromEnv()
		if err != nil {
			return nil, noop, fmt.Errorf("invalid fare api config: %w", err)
		}
		return fareapi.New(apiCfg), noop, nil
	}
}
