package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/cache"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/ports"
)

// CreateLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout conversation UI).
// Outside debug mode only warnings and errors are logged.
func CreateLogger(opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.JSONLogs {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

// Backend is a session store together with its optional distributed locker.
type Backend struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	Kind   string
}

// CreateBackend selects the session store: Redis when an address is configured,
// a directory of JSON files when a session directory is set, a TTL cache when only
// a session TTL is set, otherwise plain memory.
func CreateBackend(ctx context.Context, opts Options, logger *slog.Logger) (*Backend, error) {
	switch {
	case opts.RedisAddr != "":
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redis.WithTTL(opts.SessionTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis at %s is unreachable: %w", opts.RedisAddr, err)
		}
		logger.Info("Using Redis session store", "address", opts.RedisAddr, "db", opts.RedisDB, "ttl", opts.SessionTTL)
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), store.Prefix()),
			Kind:   "redis",
		}, nil
	case opts.SessionDir != "":
		logger.Info("Using file session store", "dir", opts.SessionDir)
		return &Backend{Store: file.New(opts.SessionDir), Kind: "file"}, nil
	case opts.SessionTTL > 0:
		logger.Info("Using in-memory session cache", "ttl", opts.SessionTTL)
		return &Backend{Store: cache.NewStore(opts.SessionTTL, cleanupInterval(opts.SessionTTL)), Kind: "cache"}, nil
	default:
		return &Backend{Store: memory.NewStore(), Kind: "memory"}, nil
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}

// CreateEngine builds an engine from opts on top of backend.
func CreateEngine(opts Options, backend *Backend, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*parley.Engine, error) {
	engineOpts := []parley.Option{
		parley.WithLogger(logger),
		parley.WithStore(backend.Store),
	}
	if backend.Locker != nil {
		engineOpts = append(engineOpts, parley.WithLocker(backend.Locker))
	}
	if opts.RulesPath != "" {
		engineOpts = append(engineOpts, parley.WithRulesFile(opts.RulesPath))
	}
	if opts.Fallback != "" {
		engineOpts = append(engineOpts, parley.WithFallback(opts.Fallback))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, parley.WithLifecycleHooks(observability.AuditHooks(logger)))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, parley.WithLifecycleHooks(h))
	}

	engine, err := parley.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
