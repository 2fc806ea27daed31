package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
	"github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv"
	memkv "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/memory"
	rediskv "github.com/ayushraiyani0003/HRCentral-sub004/pkg/kv/redis"
)

type countingService struct {
	lists   atomic.Int64
	creates atomic.Int64
	reject  bool
	gate    chan struct{}
}

func (s *countingService) ListAll(ctx context.Context, q resource.ListQuery) (resource.Envelope[[]resource.Record], error) {
	s.lists.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return resource.Envelope[[]resource.Record]{
		Success: true,
		Data:    []resource.Record{{"id": "1", "name": "Go", "level": 3}},
	}, nil
}

func (s *countingService) GetByID(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	return resource.Envelope[resource.Record]{Success: true, Data: resource.Record{"id": id}}, nil
}

func (s *countingService) Create(ctx context.Context, payload resource.Record) (resource.Envelope[resource.Record], error) {
	s.creates.Add(1)
	if s.reject {
		return resource.Envelope[resource.Record]{Success: false, Message: "no"}, nil
	}
	return resource.Envelope[resource.Record]{Success: true, Data: payload}, nil
}

func (s *countingService) Update(ctx context.Context, id string, payload resource.Record) (resource.Envelope[resource.Record], error) {
	return resource.Envelope[resource.Record]{Success: true, Data: payload}, nil
}

func (s *countingService) Delete(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	return resource.Envelope[resource.Record]{}, resource.NewError(resource.KindNotFound, "gone", nil)
}

func (s *countingService) Validate(payload resource.Record) resource.ValidationResult {
	return resource.ValidationResult{IsValid: true}
}

type fakeRecorder struct {
	mu                        sync.Mutex
	hits, misses, invalidated int
}

func (r *fakeRecorder) RecordCacheHit(context.Context, string) {
	r.mu.Lock()
	r.hits++
	r.mu.Unlock()
}

func (r *fakeRecorder) RecordCacheMiss(context.Context, string) {
	r.mu.Lock()
	r.misses++
	r.mu.Unlock()
}

func (r *fakeRecorder) RecordCacheInvalidation(context.Context, string) {
	r.mu.Lock()
	r.invalidated++
	r.mu.Unlock()
}

func backends(t *testing.T) map[string]func(t *testing.T) kv.Store {
	return map[string]func(t *testing.T) kv.Store{
		"memory": func(t *testing.T) kv.Store { return memkv.New(0) },
		"redis": func(t *testing.T) kv.Store {
			mr := miniredis.RunT(t)
			s, err := rediskv.New(mr.Addr())
			require.NoError(t, err)
			return s
		},
	}
}

func TestCachedServiceListsFromCache(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := &fakeRecorder{}
			cache := NewCache(newStore(t), time.Minute, nil, rec)
			defer cache.Close()

			inner := &countingService{}
			svc := NewCachedService(inner, "skills", cache)
			ctx := context.Background()
			q := resource.ListQuery{Search: "go", Filters: map[string]string{"category": "BACKEND"}}

			first, err := svc.ListAll(ctx, q)
			require.NoError(t, err)
			second, err := svc.ListAll(ctx, q)
			require.NoError(t, err)

			assert.Equal(t, int64(1), inner.lists.Load())
			assert.Equal(t, 1, rec.hits)
			assert.Equal(t, 1, rec.misses)
			require.Len(t, second.Data, 1)
			assert.Equal(t, first.Data[0].ID(), second.Data[0].ID())
			assert.Equal(t, "Go", second.Data[0]["name"])

			// A different query is a different entry
			_, err = svc.ListAll(ctx, resource.ListQuery{Search: "rust"})
			require.NoError(t, err)
			assert.Equal(t, int64(2), inner.lists.Load())
		})
	}
}

func TestCachedServiceInvalidatesOnWrite(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := &fakeRecorder{}
			cache := NewCache(newStore(t), time.Minute, nil, rec)
			defer cache.Close()

			inner := &countingService{}
			svc := NewCachedService(inner, "skills", cache)
			ctx := context.Background()

			_, _ = svc.ListAll(ctx, resource.ListQuery{})
			_, err := svc.Create(ctx, resource.Record{"name": "Rust"})
			require.NoError(t, err)
			_, _ = svc.ListAll(ctx, resource.ListQuery{})

			assert.Equal(t, int64(2), inner.lists.Load())
			assert.Equal(t, 1, rec.invalidated)
		})
	}
}

func TestCachedServiceKeepsCacheOnFailedWrite(t *testing.T) {
	cache := NewCache(memkv.New(0), time.Minute, nil, nil)
	defer cache.Close()

	inner := &countingService{reject: true}
	svc := NewCachedService(inner, "skills", cache)
	ctx := context.Background()

	_, _ = svc.ListAll(ctx, resource.ListQuery{})
	_, err := svc.Create(ctx, resource.Record{"name": "Rust"})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, "9")
	require.True(t, resource.IsKind(err, resource.KindNotFound))
	_, _ = svc.ListAll(ctx, resource.ListQuery{})

	assert.Equal(t, int64(1), inner.lists.Load())
}

func TestCacheSharesConcurrentMisses(t *testing.T) {
	cache := NewCache(memkv.New(0), time.Minute, nil, nil)
	defer cache.Close()

	inner := &countingService{gate: make(chan struct{})}
	svc := NewCachedService(inner, "skills", cache)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ListAll(context.Background(), resource.ListQuery{})
		}()
	}
	// Let the first load start, then release it
	require.Eventually(t, func() bool { return inner.lists.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	assert.Equal(t, int64(1), inner.lists.Load())
}

type brokenStore struct{ kv.Store }

func (brokenStore) IncrBy(context.Context, string, int64) (int64, error) {
	return 0, kv.ErrBackendUnavailable
}

func (brokenStore) Close() error { return nil }

func TestCacheOutageFallsThrough(t *testing.T) {
	cache := NewCache(brokenStore{}, time.Minute, nil, nil)
	inner := &countingService{}
	svc := NewCachedService(inner, "skills", cache)

	env, err := svc.ListAll(context.Background(), resource.ListQuery{})
	require.NoError(t, err)
	assert.True(t, env.Success)

	err = cache.Invalidate(context.Background(), "skills")
	assert.True(t, errors.Is(err, kv.ErrBackendUnavailable))
}

func TestListKeyTracksGeneration(t *testing.T) {
	cache := NewCache(memkv.New(0), 0, nil, nil)
	ctx := context.Background()
	q := resource.ListQuery{SortBy: "name", SortOrder: resource.Desc}

	before, err := cache.ListKey(ctx, "skills", q)
	require.NoError(t, err)
	again, _ := cache.ListKey(ctx, "skills", q)
	assert.Equal(t, before, again)

	require.NoError(t, cache.Invalidate(ctx, "skills"))
	after, _ := cache.ListKey(ctx, "skills", q)
	assert.NotEqual(t, before, after)
	assert.Contains(t, after, "hrc:list:skills:g1:")

	other, _ := cache.ListKey(ctx, "countries", q)
	assert.Contains(t, other, ":g0:")
}
