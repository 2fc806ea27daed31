package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/query"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// RepositoryService serves one kind straight from a db repository. The API
// server handlers and the console's embedded mode both run on it.
type RepositoryService struct {
	repo      interfaces.Repository
	kind      *entities.Kind
	validator *Validator
	logger    *zap.SugaredLogger
}

var _ resource.Service = (*RepositoryService)(nil)

func NewRepositoryService(repo interfaces.Repository, kind *entities.Kind, logger *zap.SugaredLogger) (*RepositoryService, error) {
	v, err := NewValidator(kind)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RepositoryService{
		repo:      repo,
		kind:      kind,
		validator: v,
		logger:    logger.With("kind", kind.Name),
	}, nil
}

func (s *RepositoryService) ListAll(ctx context.Context, q resource.ListQuery) (resource.Envelope[[]resource.Record], error) {
	dbq, err := s.query(q)
	if err != nil {
		return resource.Envelope[[]resource.Record]{}, err
	}
	page, err := s.repo.FindMany(ctx, dbq)
	if err != nil {
		return resource.Envelope[[]resource.Record]{}, s.classify("list", err)
	}
	out := make([]resource.Record, len(page.Data))
	for i, row := range page.Data {
		out[i] = toRecord(row)
	}
	return resource.Envelope[[]resource.Record]{Success: true, Data: out}, nil
}

func (s *RepositoryService) GetByID(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	if strings.TrimSpace(id) == "" {
		return resource.Envelope[resource.Record]{}, resource.NewError(resource.KindValidation, "", resource.ErrMissingID)
	}
	row, err := s.repo.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		return resource.Envelope[resource.Record]{}, s.classify("get", err)
	}
	return resource.Envelope[resource.Record]{Success: true, Data: toRecord(row)}, nil
}

func (s *RepositoryService) Create(ctx context.Context, payload resource.Record) (resource.Envelope[resource.Record], error) {
	data := s.prepare(payload)
	row, err := s.repo.Create(ctx, data)
	if err != nil {
		return resource.Envelope[resource.Record]{}, s.classify("create", err)
	}
	s.logger.Infow("Record created", "id", row["id"])
	return resource.Envelope[resource.Record]{Success: true, Data: toRecord(row), Message: s.kind.Label + " created"}, nil
}

func (s *RepositoryService) Update(ctx context.Context, id string, payload resource.Record) (resource.Envelope[resource.Record], error) {
	if strings.TrimSpace(id) == "" {
		return resource.Envelope[resource.Record]{}, resource.NewError(resource.KindValidation, "", resource.ErrMissingID)
	}
	data := s.prepare(payload)
	row, err := s.repo.Update(ctx, interfaces.StringID(id), data)
	if err != nil {
		return resource.Envelope[resource.Record]{}, s.classify("update", err)
	}
	s.logger.Infow("Record updated", "id", id)
	return resource.Envelope[resource.Record]{Success: true, Data: toRecord(row), Message: s.kind.Label + " updated"}, nil
}

func (s *RepositoryService) Delete(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	if strings.TrimSpace(id) == "" {
		return resource.Envelope[resource.Record]{}, resource.NewError(resource.KindValidation, "", resource.ErrMissingID)
	}
	if err := s.repo.Delete(ctx, interfaces.StringID(id)); err != nil {
		return resource.Envelope[resource.Record]{}, s.classify("delete", err)
	}
	s.logger.Infow("Record deleted", "id", id)
	return resource.Envelope[resource.Record]{Success: true, Message: s.kind.Label + " deleted"}, nil
}

func (s *RepositoryService) Validate(payload resource.Record) resource.ValidationResult {
	return s.validator.Validate(payload)
}

func (s *RepositoryService) query(q resource.ListQuery) (*interfaces.Query, error) {
	dbq := &interfaces.Query{
		Where: query.And(
			query.Search(q.Search, s.searchable()),
			query.Equals(q.Filters, s.kind.Fields.CaseInsensitive),
		),
	}
	if q.SortBy != "" {
		if _, ok := s.kind.Schema.Fields[q.SortBy]; !ok {
			return nil, resource.NewError(resource.KindValidation, "cannot sort by "+q.SortBy, interfaces.ErrInvalidQuery)
		}
		dbq.OrderBy = []interfaces.OrderBy{{Field: q.SortBy, Direction: string(resource.ParseDirection(string(q.SortOrder)))}}
	}
	return dbq, nil
}

func (s *RepositoryService) searchable() []string {
	if len(s.kind.Fields.Searchable) > 0 {
		return s.kind.Fields.Searchable
	}
	var out []string
	for field, fs := range s.kind.Schema.Fields {
		if field != resource.IDField && fs.Type == "string" {
			out = append(out, field)
		}
	}
	return out
}

// classify maps storage errors onto the resource error taxonomy
func (s *RepositoryService) classify(op string, err error) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return resource.NewError(resource.KindNotFound, s.kind.Label+" not found", err)
	case errors.Is(err, interfaces.ErrUniqueConstraint):
		return resource.NewError(resource.KindConflict, "a "+strings.ToLower(s.kind.Label)+" with that "+s.kind.UniqueField+" already exists", err)
	case errors.Is(err, interfaces.ErrInvalidData), errors.Is(err, interfaces.ErrInvalidQuery):
		return resource.NewError(resource.KindValidation, err.Error(), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resource.NewError(resource.KindNetwork, "request cancelled", err)
	}
	s.logger.Errorw("Storage operation failed", "op", op, "error", err)
	return resource.NewError(resource.KindUnknown, "storage failure", err)
}

// toRecord renders timestamps as RFC 3339 so records look the same as
// when they come over HTTP.
func toRecord(row map[string]interface{}) resource.Record {
	out := make(resource.Record, len(row))
	for k, v := range row {
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(time.RFC3339Nano)
		}
		out[k] = v
	}
	return out
}

// prepare trims strings and turns numeric form input into numbers. A blank
// numeric field is stored as null.
func (s *RepositoryService) prepare(payload resource.Record) map[string]interface{} {
	numeric := map[string]bool{}
	for _, rule := range s.kind.Rules {
		if rule.Number {
			numeric[rule.Field] = true
		}
	}

	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if k == resource.IDField {
			continue
		}
		if str, ok := v.(string); ok {
			str = strings.TrimSpace(str)
			v = str
			if numeric[k] {
				if str == "" {
					v = nil
				} else if _, err := strconv.ParseFloat(str, 64); err == nil {
					v = json.Number(str)
				}
			}
		}
		out[k] = v
	}
	return out
}
