package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Backend represents the storage backend type
type Backend string

const (
	// BackendMemory uses the in-memory store
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis as the backend
	BackendRedis Backend = "redis"
)

// Config holds configuration for creating a Store instance
type Config struct {
	Backend Backend

	// RedisURL is redis://[:password@]host:port/db or a bare host:port
	RedisURL string

	// JanitorInterval controls how often the in-memory store sweeps
	// expired keys. Default: 30 seconds
	JanitorInterval time.Duration

	// FailoverEnabled keeps serving from memory while Redis is down and
	// switches back once it answers again.
	FailoverEnabled bool

	// ProbeInterval controls how often Redis is probed after failover.
	// Default: 5 seconds
	ProbeInterval time.Duration

	// StartupProbeTimeout bounds the first Redis ping. Default: 1 second
	StartupProbeTimeout time.Duration

	// Logger receives failover events. A *zap.SugaredLogger's Warnw fits.
	Logger LogFunc
}

// StoreFactory defines a function that creates a Store instance
type StoreFactory func(cfg Config) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[Backend]StoreFactory)
)

// RegisterBackend registers a store factory for a given backend
func RegisterBackend(backend Backend, factory StoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[backend] = factory
}

func factoryFor(backend Backend) (StoreFactory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[backend]
	if !ok {
		return nil, fmt.Errorf("%s backend not registered", backend)
	}
	return f, nil
}

// NewStoreFromConfig creates a new Store instance based on the provided
// configuration. A Redis backend that cannot be reached at startup degrades
// to the in-memory store instead of failing.
func NewStoreFromConfig(cfg Config) (Store, error) {
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = 30 * time.Second
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = 5 * time.Second
	}
	if cfg.StartupProbeTimeout == 0 {
		cfg.StartupProbeTimeout = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = func(string, ...any) {}
	}

	switch cfg.Backend {
	case BackendMemory, "":
		factory, err := factoryFor(BackendMemory)
		if err != nil {
			return nil, err
		}
		return factory(cfg)
	case BackendRedis:
		return createRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: %s, %s)",
			cfg.Backend, BackendMemory, BackendRedis)
	}
}

func createRedisStore(cfg Config) (Store, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis URL is required when backend is 'redis'")
	}

	memoryFactory, err := factoryFor(BackendMemory)
	if err != nil {
		return nil, err
	}
	redisFactory, err := factoryFor(BackendRedis)
	if err != nil {
		return nil, err
	}

	memoryStore, err := memoryFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}

	redisStore, err := redisFactory(cfg)
	if err != nil {
		cfg.Logger("Redis unavailable at startup; using in-memory store", "error", err.Error())
		return memoryStore, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StartupProbeTimeout)
	defer cancel()
	healthy := redisStore.Ping(ctx) == nil

	if !cfg.FailoverEnabled {
		if !healthy {
			redisStore.Close()
			cfg.Logger("Redis health check failed at startup; using in-memory store")
			return memoryStore, nil
		}
		memoryStore.Close()
		return redisStore, nil
	}

	if !healthy {
		cfg.Logger("Redis unhealthy at startup; using in-memory store (will retry in background)")
		return NewFailoverStoreWithFallbackActive(redisStore, memoryStore, cfg.ProbeInterval, cfg.Logger), nil
	}
	return NewFailoverStore(redisStore, memoryStore, cfg.ProbeInterval, cfg.Logger), nil
}
