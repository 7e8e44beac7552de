package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"

	"github.com/peagah10/fechadura/internal/config"
	"github.com/peagah10/fechadura/internal/dispatch"
	"github.com/peagah10/fechadura/internal/ledger"
	"github.com/peagah10/fechadura/internal/lock"
	"github.com/peagah10/fechadura/internal/logger"
	"github.com/peagah10/fechadura/internal/metrics"
	"github.com/peagah10/fechadura/internal/server"
	"github.com/peagah10/fechadura/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	metrics.Register()

	ctx := context.Background()
	led, err := buildLedger(ctx, cfg)
	if err != nil {
		logger.Fatal("ledger init failed", map[string]any{"error": err.Error(), "backend": cfg.LedgerBackend})
	}

	var lockClient lock.Client
	if cfg.Simulation {
		lockClient = lock.NewSimulator()
	} else {
		lockClient = lock.NewTTLock(lock.TTLockConfig{
			APIBase:      cfg.TTAPIBase,
			ClientID:     cfg.TTClientID,
			ClientSecret: cfg.TTClientSecret,
			Email:        cfg.TTEmail,
			Password:     cfg.TTPassword,
		})
	}

	board := lock.NewStatusBoard(time.Duration(cfg.OpenSeconds) * time.Second)
	dispatcher := dispatch.New(led, lockClient, dispatch.Config{
		LockID:      cfg.LockID,
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}, dispatch.WithUnlockedHook(board.Opened))

	h := server.NewHandler(cfg.WebhookSecret, dispatcher, led, board, cfg.Simulation, cfg.LockID)
	r := chi.NewRouter()
	h.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("server starting", map[string]any{
		"port":            cfg.Port,
		"simulation_mode": cfg.Simulation,
		"ledger_backend":  cfg.LedgerBackend,
		"lock_id":         cfg.LockID,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-stop
	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", map[string]any{"error": err.Error()})
	}
	// Dispatches already past the response boundary run to their terminal
	// outcome before the process exits.
	h.Wait()
}

func buildLedger(ctx context.Context, cfg config.Config) (ledger.Ledger, error) {
	switch cfg.LedgerBackend {
	case config.LedgerPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := ledger.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	case config.LedgerRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return ledger.NewRedis(client), nil
	default:
		return ledger.NewMemory(), nil
	}
}
