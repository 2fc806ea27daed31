package dataservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

const apiPrefix = "/v1/"

// NewHTTPClient builds the shared REST client. Only reads are retried so a
// timed-out create is never sent twice.
func NewHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)

	client.AddRetryCondition(retryCondition)
	return client
}

func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// HTTPService talks to the REST backend for one kind
type HTTPService struct {
	client    *resty.Client
	kind      *entities.Kind
	validator *Validator
	logger    *zap.SugaredLogger
}

var _ resource.Service = (*HTTPService)(nil)

func NewHTTPService(client *resty.Client, kind *entities.Kind, logger *zap.SugaredLogger) (*HTTPService, error) {
	v, err := NewValidator(kind)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HTTPService{
		client:    client,
		kind:      kind,
		validator: v,
		logger:    logger.With("kind", kind.Name),
	}, nil
}

func (s *HTTPService) ListAll(ctx context.Context, q resource.ListQuery) (resource.Envelope[[]resource.Record], error) {
	req := s.client.R().SetContext(ctx).SetQueryParamsFromValues(listParams(q))
	env, err := s.do(req, http.MethodGet, s.collectionPath())
	if err != nil {
		return resource.Envelope[[]resource.Record]{}, err
	}
	out := resource.Envelope[[]resource.Record]{Success: env.Success, Message: env.Message}
	if !env.Success {
		return out, nil
	}
	if out.Data, err = env.records(); err != nil {
		return out, resource.NewError(resource.KindNetwork, "malformed list response", err)
	}
	return out, nil
}

func (s *HTTPService) GetByID(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	return s.one(s.client.R().SetContext(ctx), http.MethodGet, id)
}

func (s *HTTPService) Create(ctx context.Context, payload resource.Record) (resource.Envelope[resource.Record], error) {
	body := payload.Clone()
	delete(body, resource.IDField)
	req := s.client.R().SetContext(ctx).SetBody(body)
	env, err := s.do(req, http.MethodPost, s.collectionPath())
	return s.single(env, err)
}

func (s *HTTPService) Update(ctx context.Context, id string, payload resource.Record) (resource.Envelope[resource.Record], error) {
	body := payload.Clone()
	delete(body, resource.IDField)
	return s.one(s.client.R().SetContext(ctx).SetBody(body), http.MethodPut, id)
}

func (s *HTTPService) Delete(ctx context.Context, id string) (resource.Envelope[resource.Record], error) {
	return s.one(s.client.R().SetContext(ctx), http.MethodDelete, id)
}

func (s *HTTPService) Validate(payload resource.Record) resource.ValidationResult {
	return s.validator.Validate(payload)
}

func (s *HTTPService) one(req *resty.Request, method, id string) (resource.Envelope[resource.Record], error) {
	if strings.TrimSpace(id) == "" {
		return resource.Envelope[resource.Record]{}, resource.NewError(resource.KindValidation, "", resource.ErrMissingID)
	}
	env, err := s.do(req, method, s.collectionPath()+"/"+url.PathEscape(id))
	return s.single(env, err)
}

func (s *HTTPService) single(env envelope, err error) (resource.Envelope[resource.Record], error) {
	if err != nil {
		return resource.Envelope[resource.Record]{}, err
	}
	out := resource.Envelope[resource.Record]{Success: env.Success, Message: env.Message}
	if !env.Success {
		return out, nil
	}
	if out.Data, err = env.record(); err != nil {
		return out, resource.NewError(resource.KindNetwork, "malformed response", err)
	}
	return out, nil
}

// do executes the request and classifies every failure into an
// *resource.Error.
func (s *HTTPService) do(req *resty.Request, method, path string) (envelope, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		s.logger.Warnw("Data service request failed", "method", method, "path", path, "error", err)
		return envelope{}, resource.NewError(resource.KindNetwork, "could not reach the server", err)
	}

	s.logger.Debugw("Data service request",
		"method", method,
		"path", path,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)

	env, perr := parseEnvelope(resp.Body())
	if resp.IsError() {
		msg := env.Message
		if perr != nil || msg == "" {
			msg = fmt.Sprintf("server responded with %s", resp.Status())
		}
		return envelope{}, resource.NewError(statusKind(resp.StatusCode()), msg, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode()))
	}
	if perr != nil {
		if errors.Is(perr, resource.ErrNoResponse) && method == http.MethodDelete {
			return envelope{Success: true}, nil
		}
		return envelope{}, resource.NewError(resource.KindNetwork, "malformed response", perr)
	}
	return env, nil
}

func (s *HTTPService) collectionPath() string {
	return apiPrefix + s.kind.Name
}

// statusKind maps a non-2xx status onto the error taxonomy
func statusKind(code int) resource.ErrorKind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return resource.KindValidation
	case http.StatusNotFound:
		return resource.KindNotFound
	case http.StatusConflict:
		return resource.KindConflict
	default:
		return resource.KindNetwork
	}
}

func listParams(q resource.ListQuery) url.Values {
	v := url.Values{}
	if term := strings.TrimSpace(q.Search); term != "" {
		v.Set("search", term)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		if q.SortOrder != "" {
			v.Set("sortOrder", string(q.SortOrder))
		}
	}
	for field, value := range q.Filters {
		if value != "" {
			v.Set("filter."+field, value)
		}
	}
	return v
}
