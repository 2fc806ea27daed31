package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/dataservice"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/store"
)

// maxBodyBytes caps create and update payloads
const maxBodyBytes = 1 << 20

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
	RecordOperation(ctx context.Context, kind, op, outcome string, duration time.Duration)
}

// Pinger is anything /readyz should check besides the database
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db       interfaces.Database
	cache    Pinger
	services map[string]resource.Service
	logger   *zap.SugaredLogger
	metrics  MetricsInterface
}

// NewHandler builds one repository-backed service per registered kind. A
// non-nil cache puts the list cache in front of every service.
func NewHandler(db interfaces.Database, cache *store.Cache, logger *zap.SugaredLogger, metrics MetricsInterface) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &Handler{
		db:       db,
		services: make(map[string]resource.Service),
		logger:   logger,
		metrics:  metrics,
	}
	if cache != nil {
		h.cache = cache
	}

	for _, kind := range entities.All() {
		repoSvc, err := dataservice.NewRepositoryService(db.Repository(kind.Schema), kind, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s service: %w", kind.Name, err)
		}
		var svc resource.Service = repoSvc
		if cache != nil {
			svc = store.NewCachedService(svc, kind.Name, cache)
		}
		var recorder resource.OperationRecorder
		if metrics != nil {
			recorder = metrics
		}
		h.services[kind.Name] = observe(svc, kind.Name, recorder)
	}
	return h, nil
}

// Kind endpoints

func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := entities.All()
	out := make([]KindDTO, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, KindDTO{
			Name:            k.Name,
			Label:           k.Label,
			UniqueField:     k.UniqueField,
			Columns:         k.Columns,
			Searchable:      k.Fields.Searchable,
			CaseInsensitive: k.Fields.CaseInsensitive,
			Dates:           k.Fields.Dates,
			Numbers:         k.NumberFields(),
		})
	}
	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: out})
}

// Record endpoints

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	env, err := svc.ListAll(r.Context(), listQueryFrom(r.URL.Query()))
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	data := env.Data
	if data == nil {
		data = []resource.Record{}
	}
	h.writeEnvelope(w, http.StatusOK, env.Success, data, env.Message)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	env, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	h.writeEnvelope(w, http.StatusOK, env.Success, env.Data, env.Message)
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	if res := svc.Validate(payload); !res.IsValid {
		h.writeValidationError(w, r, res)
		return
	}
	env, err := svc.Create(r.Context(), payload)
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !env.Success {
		status = http.StatusOK
	}
	h.writeEnvelope(w, status, env.Success, env.Data, env.Message)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	// PUT accepts partial payloads, so rules run against the stored record
	// with the patch applied.
	existing, err := svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	if res := svc.Validate(existing.Data.Merge(payload)); !res.IsValid {
		h.writeValidationError(w, r, res)
		return
	}
	env, err := svc.Update(r.Context(), id, payload)
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	h.writeEnvelope(w, http.StatusOK, env.Success, env.Data, env.Message)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	env, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeResourceError(w, r, err)
		return
	}
	h.writeEnvelope(w, http.StatusOK, env.Success, nil, env.Message)
}

// ValidateRecord runs the server-side payload check without writing.
func (h *Handler) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, Response{Success: true, Data: svc.Validate(payload)})
}

// Health and ops endpoints
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var reasons []string
	if !h.db.IsHealthy(ctx) {
		reasons = append(reasons, "database unavailable")
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			reasons = append(reasons, "cache unavailable: "+err.Error())
		}
	}

	if len(reasons) > 0 {
		h.writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "degraded", Reasons: reasons})
		return
	}
	h.writeJSON(w, http.StatusOK, HealthDTO{Status: "ready"})
}

func (h *Handler) service(w http.ResponseWriter, r *http.Request) (resource.Service, bool) {
	name := chi.URLParam(r, "kind")
	svc, ok := h.services[name]
	if !ok {
		h.writeError(w, r, http.StatusNotFound, string(resource.KindNotFound), fmt.Sprintf("unknown kind %q", name))
		return nil, false
	}
	return svc, true
}

func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (resource.Record, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var payload resource.Record
	if err := dec.Decode(&payload); err != nil {
		msg := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		h.writeError(w, r, http.StatusBadRequest, string(resource.KindValidation), msg)
		return nil, false
	}
	if payload == nil {
		h.writeError(w, r, http.StatusBadRequest, string(resource.KindValidation), "request body must be a JSON object")
		return nil, false
	}
	return payload, true
}

// statusFor maps an error kind to the HTTP status clients classify back
// into the same kind.
func statusFor(kind resource.ErrorKind) int {
	switch kind {
	case resource.KindValidation:
		return http.StatusBadRequest
	case resource.KindNotFound:
		return http.StatusNotFound
	case resource.KindConflict:
		return http.StatusConflict
	case resource.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	h.writeJSON(w, status, Response{Success: success, Data: data, Message: message})
}

func (h *Handler) writeResourceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := resource.KindOf(err)
	msg := err.Error()
	var rerr *resource.Error
	if errors.As(err, &rerr) && rerr.Message != "" {
		msg = rerr.Message
	}
	h.writeError(w, r, statusFor(kind), string(kind), msg)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, r *http.Request, res resource.ValidationResult) {
	h.logger.Infow("Validation failed",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"errors", res.Errors,
	)
	h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    string(resource.KindValidation),
		Message: strings.Join(res.Errors, "; "),
		Errors:  res.Errors,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	fields := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"code", code,
		"message", message,
		"status", status,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("API error", fields...)
	} else {
		h.logger.Infow("API error", fields...)
	}

	h.writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
