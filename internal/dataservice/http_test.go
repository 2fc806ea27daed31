package dataservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

func newHTTPService(t *testing.T, handler http.HandlerFunc) *HTTPService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewHTTPService(NewHTTPClient(server.URL, 2*time.Second), entities.MustLookup("skills"), nil)
	require.NoError(t, err)
	return svc
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestHTTPListSendsQuery(t *testing.T) {
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/skills", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "go", q.Get("search"))
		assert.Equal(t, "name", q.Get("sortBy"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		assert.Equal(t, "Backend", q.Get("filter.category"))
		assert.False(t, q.Has("filter.empty"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":"1","name":"Go"}]}`)
	})

	env, err := svc.ListAll(context.Background(), resource.ListQuery{
		Search:    " go ",
		Filters:   map[string]string{"category": "Backend", "empty": ""},
		SortBy:    "name",
		SortOrder: resource.Desc,
	})
	require.NoError(t, err)
	assert.True(t, env.Success)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Go", env.Data[0]["name"])
}

func TestHTTPCreateStripsID(t *testing.T) {
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, "Go", body["name"])
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":"9","name":"Go"},"message":"Skill created"}`)
	})

	env, err := svc.Create(context.Background(), resource.Record{"id": "client-side", "name": "Go"})
	require.NoError(t, err)
	assert.Equal(t, "9", env.Data.ID())
	assert.Equal(t, "Skill created", env.Message)
}

func TestHTTPUpdateAndDeletePaths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"a b","name":"Rust"}}`)
	})

	env, err := svc.Update(context.Background(), "a b", resource.Record{"name": "Rust"})
	require.NoError(t, err)
	assert.Equal(t, "Rust", env.Data["name"])

	del, err := svc.Delete(context.Background(), "a b")
	require.NoError(t, err)
	assert.True(t, del.Success, "an empty 204 counts as success")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /v1/skills/a%20b", "DELETE /v1/skills/a%20b"}, seen)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   resource.ErrorKind
		msg    string
	}{
		{http.StatusBadRequest, `{"success":false,"message":"Name is required"}`, resource.KindValidation, "Name is required"},
		{http.StatusUnprocessableEntity, `{}`, resource.KindValidation, "server responded with 422 Unprocessable Entity"},
		{http.StatusNotFound, `{"success":false,"error":{"message":"Skill not found"}}`, resource.KindNotFound, "Skill not found"},
		{http.StatusConflict, `{"success":false,"message":"exists"}`, resource.KindConflict, "exists"},
		{http.StatusForbidden, `nope`, resource.KindNetwork, "server responded with 403 Forbidden"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := svc.Create(context.Background(), resource.Record{"name": "Go"})
			require.Error(t, err)
			assert.Equal(t, tt.kind, resource.KindOf(err))
			var rerr *resource.Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.msg, rerr.Message)
		})
	}
}

func TestHTTPRejectionIsNotAnError(t *testing.T) {
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Quota exceeded"}`)
	})

	env, err := svc.Create(context.Background(), resource.Record{"name": "Go"})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "Quota exceeded", env.Message)
}

func TestHTTPRetriesOnlyReads(t *testing.T) {
	var gets, posts atomic.Int32
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if gets.Add(1) == 1 {
				writeJSON(w, http.StatusServiceUnavailable, `{}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
			return
		}
		posts.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	})

	env, err := svc.ListAll(context.Background(), resource.ListQuery{})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, int32(2), gets.Load())

	_, err = svc.Create(context.Background(), resource.Record{"name": "Go"})
	assert.True(t, resource.IsKind(err, resource.KindNetwork))
	assert.Equal(t, int32(1), posts.Load())
}

func TestHTTPTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc, err := NewHTTPService(NewHTTPClient(url, time.Second), entities.MustLookup("skills"), nil)
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), "1")
	assert.True(t, resource.IsKind(err, resource.KindNetwork))

	_, err = svc.GetByID(context.Background(), " ")
	assert.True(t, resource.IsKind(err, resource.KindValidation))
	assert.ErrorIs(t, err, resource.ErrMissingID)
}

func TestHTTPServiceDrivesOrchestrator(t *testing.T) {
	var created atomic.Bool
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if created.Load() {
				writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":"1","name":"Go"},{"id":"2","name":"Rust"}]}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":"1","name":"Go"}]}`)
		case http.MethodPost:
			created.Store(true)
			writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":"2","name":"Rust"}}`)
		}
	})

	view := &resource.ModalState{}
	o := resource.New(svc, view, entities.MustLookup("skills").Options())
	defer o.Close()

	require.True(t, o.LoadAll(context.Background()).Success)

	res := o.Create(context.Background(), resource.Record{"name": "go"})
	assert.False(t, res.Success)
	assert.Equal(t, resource.KindConflict, res.Kind)
	assert.False(t, created.Load(), "duplicate never reaches the server")

	res = o.Create(context.Background(), resource.Record{"name": "Rust"})
	require.True(t, res.Success, res.Error)
	assert.Len(t, o.Items(), 2)
	assert.Equal(t, 1, view.Closes())
}
