package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/adapters/file"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	redisStore "github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Runtime bundles the services every command needs.
type Runtime struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      ports.HistoryStore
	Calculator *abacus.Calculator
	Registry   *prometheus.Registry

	closers []func() error
}

// NewRuntime builds logger, store, metrics and calculator from cfg.
// Logs go to logOut. Close must be called to release the store.
func NewRuntime(ctx context.Context, cfg *config.Config, logOut io.Writer) (*Runtime, error) {
	logger, err := NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	store, closer, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(reg)

	hooks := metrics.Hooks()
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}

	calc := abacus.New(
		abacus.WithStore(store),
		abacus.WithLogger(logger),
		abacus.WithLifecycleHooks(hooks),
		abacus.WithMaxInputSize(cfg.MaxInputSize),
	)

	rt := &Runtime{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Calculator: calc,
		Registry:   reg,
	}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}
	return rt, nil
}

// Close releases the resources held by the runtime.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewLogger configures the application logger from cfg.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, cfg.LogFormat), nil
}

// NewStore opens the history backend selected by cfg. The returned closer may be nil.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.HistoryStore, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		logger.Debug("Using in-memory history")
		return memory.NewStore(), nil, nil

	case config.BackendFile:
		logger.Debug("Using file history", "dir", cfg.Store.Dir)
		return file.New(cfg.Store.Dir), nil, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		opts := []redisStore.Option{redisStore.WithPrefix(rc.Prefix)}
		if rc.TTL > 0 {
			opts = append(opts, redisStore.WithTTL(rc.TTL))
		}
		store := redisStore.New(rc.Addr, rc.Password, rc.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Debug("Using redis history", "addr", rc.Addr, "prefix", rc.Prefix, "ttl", rc.TTL)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
