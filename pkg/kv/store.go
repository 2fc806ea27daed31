// Package kv is a small Redis-like key-value abstraction with an in-memory
// backend for development and tests and a Redis backend for production.
//
// Backends register themselves from their package init, so callers
// blank-import the ones they want:
//
//	import (
//		_ "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/memory"
//		_ "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/redis"
//	)
//
//	store, err := kv.NewStoreFromConfig(kv.Config{Backend: kv.BackendRedis, RedisURL: url})
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store is the subset of Redis the list cache relies on
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)

	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)

	// IncrBy treats a missing key as 0. IncrBy(key, 0) reads a counter.
	IncrBy(ctx context.Context, key string, n int64) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
