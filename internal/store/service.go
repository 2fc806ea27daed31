package store

import (
	"context"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// CachedService puts the list cache in front of a resource.Service.
// Successful writes invalidate the kind's cached lists.
type CachedService struct {
	resource.Service
	kind  string
	cache *Cache
}

var _ resource.Service = (*CachedService)(nil)

func NewCachedService(svc resource.Service, kind string, cache *Cache) *CachedService {
	return &CachedService{Service: svc, kind: kind, cache: cache}
}

func (s *CachedService) ListAll(ctx context.Context, q resource.ListQuery) (resource.Envelope[[]resource.Record], error) {
	return s.cache.List(ctx, s.kind, q, func(ctx context.Context) (resource.Envelope[[]resource.Record], error) {
		return s.Service.ListAll(ctx, q)
	})
}

func (s *CachedService) Create(ctx context.Context, payload resource.Record) (resource.Envelope[resource.Record], error) {
	return s.invalidateAfter(ctx, func() (resource.Envelope[resource.Record], error) {
		return s.Service.Create(ctx, payload)
	})
}

func (s *CachedService) Update(ctx context.Context, id string, payload resource.Record) (resource.Envelope[resource.Record], error) {
	return s.invalidateAfter(ctx, func() (resource.Envelope[resource.Record], error) {
		return s.Service.Update(ctx, id, payload)
	})
}

func (s *CachedService) Delete(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	return s.invalidateAfter(ctx, func() (resource.Envelope[resource.Record], error) {
		return s.Service.Delete(ctx, id)
	})
}

func (s *CachedService) invalidateAfter(ctx context.Context, write func() (resource.Envelope[resource.Record], error)) (resource.Envelope[resource.Record], error) {
	env, err := write()
	if err == nil && env.Success {
		// A failed bump only leaves lists stale until their TTL.
		_ = s.cache.Invalidate(ctx, s.kind)
	}
	return env, err
}
