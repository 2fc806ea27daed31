package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/kvtest"
)

func TestRedisStore(t *testing.T) {
	kvtest.RunConformanceTests(t, func(t *testing.T) kvtest.Harness {
		mr := miniredis.RunT(t)
		store, err := New(mr.Addr())
		if err != nil {
			t.Fatalf("Failed to create Redis store: %v", err)
		}
		return kvtest.Harness{Store: store, Advance: mr.FastForward}
	})
}

func TestNewAcceptsURL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := New("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("Failed to create Redis store from URL: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestConnectionErrorsAreWrapped(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := New(mr.Addr())
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	defer store.Close()

	mr.Close()

	_, err = store.Get(context.Background(), "k")
	if !errors.Is(err, kv.ErrBackendUnavailable) {
		t.Fatalf("Expected ErrBackendUnavailable, got %v", err)
	}
}

func TestIsConnectionError(t *testing.T) {
	if IsConnectionError(nil) || IsConnectionError(context.Canceled) {
		t.Error("nil and cancellation are not connection errors")
	}
	if !IsConnectionError(errors.New("dial tcp: connection refused")) {
		t.Error("connection refused should count")
	}
}
