// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
)

// Harness is a fresh store plus a way to move its clock forward
type Harness struct {
	Store kv.Store
	// Advance lets TTLs elapse. Real backends sleep, miniredis fast-forwards.
	Advance func(d time.Duration)
}

// StoreFactory creates a fresh Harness for one subtest
type StoreFactory func(t *testing.T) Harness

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, h Harness)
	}{
		{"SetGet", testSetGet},
		{"GetNonExistent", testGetNonExistent},
		{"Overwrite", testOverwrite},
		{"DelExists", testDelExists},
		{"TTLExpiry", testTTLExpiry},
		{"IncrBy", testIncrBy},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := factory(t)
			defer h.Store.Close()
			tt.test(t, h)
		})
	}
}

func testSetGet(t *testing.T, h Harness) {
	ctx := context.Background()
	if err := h.Store.Set(ctx, "test:string", []byte("hello world")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := h.Store.Get(ctx, "test:string")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Expected %q, got %q", "hello world", got)
	}
}

func testGetNonExistent(t *testing.T, h Harness) {
	_, err := h.Store.Get(context.Background(), "test:missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func testOverwrite(t *testing.T, h Harness) {
	ctx := context.Background()
	if err := h.Store.Set(ctx, "test:over", []byte("a"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := h.Store.Set(ctx, "test:over", []byte("b")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	h.Advance(100 * time.Millisecond)
	got, err := h.Store.Get(ctx, "test:over")
	if err != nil {
		t.Fatalf("Set without TTL should clear the old expiry: %v", err)
	}
	if string(got) != "b" {
		t.Errorf("Expected %q, got %q", "b", got)
	}
}

func testDelExists(t *testing.T, h Harness) {
	ctx := context.Background()
	for _, key := range []string{"test:a", "test:b"} {
		if err := h.Store.Set(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	n, err := h.Store.Exists(ctx, "test:a", "test:b", "test:c")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 existing keys, got %d", n)
	}

	n, err = h.Store.Del(ctx, "test:a", "test:c")
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted key, got %d", n)
	}

	if n, _ = h.Store.Exists(ctx, "test:a"); n != 0 {
		t.Errorf("Expected deleted key to be gone")
	}
}

func testTTLExpiry(t *testing.T, h Harness) {
	ctx := context.Background()
	if err := h.Store.Set(ctx, "test:ttl", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := h.Store.Get(ctx, "test:ttl"); err != nil {
		t.Fatalf("Expected key before expiry: %v", err)
	}

	h.Advance(100 * time.Millisecond)

	if _, err := h.Store.Get(ctx, "test:ttl"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
	if n, _ := h.Store.Exists(ctx, "test:ttl"); n != 0 {
		t.Errorf("Expected expired key not to exist")
	}
}

func testIncrBy(t *testing.T, h Harness) {
	ctx := context.Background()

	v, err := h.Store.IncrBy(ctx, "test:counter", 0)
	if err != nil {
		t.Fatalf("IncrBy failed: %v", err)
	}
	if v != 0 {
		t.Errorf("Expected missing counter to read 0, got %d", v)
	}

	if v, _ = h.Store.IncrBy(ctx, "test:counter", 5); v != 5 {
		t.Errorf("Expected 5, got %d", v)
	}
	if v, _ = h.Store.IncrBy(ctx, "test:counter", -2); v != 3 {
		t.Errorf("Expected 3, got %d", v)
	}

	if err := h.Store.Set(ctx, "test:text", []byte("abc")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := h.Store.IncrBy(ctx, "test:text", 1); err == nil {
		t.Errorf("Expected IncrBy on a non-integer to fail")
	}
}

func testPing(t *testing.T, h Harness) {
	if err := h.Store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
