package api

import (
	"context"
	"time"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// observedService reports every data service call as a resource operation.
type observedService struct {
	resource.Service
	kind     string
	recorder resource.OperationRecorder
}

func observe(svc resource.Service, kind string, recorder resource.OperationRecorder) resource.Service {
	if recorder == nil {
		return svc
	}
	return &observedService{Service: svc, kind: kind, recorder: recorder}
}

func (s *observedService) record(ctx context.Context, op resource.OpKind, success bool, err error, start time.Time) {
	outcome := "success"
	switch {
	case err != nil:
		outcome = string(resource.KindOf(err))
	case !success:
		outcome = "rejected"
	}
	s.recorder.RecordOperation(ctx, s.kind, string(op), outcome, time.Since(start))
}

func (s *observedService) ListAll(ctx context.Context, q resource.ListQuery) (resource.Envelope[[]resource.Record], error) {
	op := resource.OpFetchAll
	if q.Search != "" {
		op = resource.OpSearch
	}
	start := time.Now()
	env, err := s.Service.ListAll(ctx, q)
	s.record(ctx, op, env.Success, err, start)
	return env, err
}

func (s *observedService) GetByID(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	start := time.Now()
	env, err := s.Service.GetByID(ctx, id)
	s.record(ctx, resource.OpFetchOne, env.Success, err, start)
	return env, err
}

func (s *observedService) Create(ctx context.Context, payload resource.Record) (resource.Envelope[resource.Record], error) {
	start := time.Now()
	env, err := s.Service.Create(ctx, payload)
	s.record(ctx, resource.OpCreate, env.Success, err, start)
	return env, err
}

func (s *observedService) Update(ctx context.Context, id string, payload resource.Record) (resource.Envelope[resource.Record], error) {
	start := time.Now()
	env, err := s.Service.Update(ctx, id, payload)
	s.record(ctx, resource.OpUpdate, env.Success, err, start)
	return env, err
}

func (s *observedService) Delete(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	start := time.Now()
	env, err := s.Service.Delete(ctx, id)
	s.record(ctx, resource.OpDelete, env.Success, err, start)
	return env, err
}
