package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/kvtest"
)

func TestMemoryStore(t *testing.T) {
	kvtest.RunConformanceTests(t, func(t *testing.T) kvtest.Harness {
		return kvtest.Harness{
			Store:   New(0), // Disable janitor for deterministic tests
			Advance: time.Sleep,
		}
	})
}

func TestMemoryStoreWithJanitor(t *testing.T) {
	store := New(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "test:janitor", []byte("test"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	store.mu.Lock()
	_, present := store.values["test:janitor"]
	store.mu.Unlock()
	if present {
		t.Fatal("Expected key to be swept by janitor")
	}
	if _, err := store.Get(ctx, "test:janitor"); err != kv.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := New(0)
	ctx := context.Background()

	buf := []byte("abc")
	_ = store.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _ := store.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Store must not alias caller buffers, got %q", got)
	}
}
