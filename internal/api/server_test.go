package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsimmons122/employee-management/internal/api"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/store/inmemory"
	"github.com/dsimmons122/employee-management/internal/sync"
)

type noopTask struct {
	kind store.RunKind
}

func (n *noopTask) Kind() store.RunKind { return n.kind }

func (n *noopTask) Run(_ context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
	now := time.Now().UTC()
	run := store.SyncRun{
		ID:          uuid.New(),
		Kind:        n.kind,
		Status:      store.RunStatusSuccess,
		StartedAt:   now,
		CompletedAt: &now,
	}
	onStart(run.ID)
	return run, nil
}

func newServer(t *testing.T, opts ...api.ServerOption) http.Handler {
	t.Helper()
	s := inmemory.New()
	orch := sync.NewOrchestrator(s,
		&noopTask{kind: store.RunKindDirectory},
		&noopTask{kind: store.RunKindDevices},
		nil,
	)
	return api.NewServer(s, orch, sync.NewReporter(s), opts...)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerMountsHealthAtRoot(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = get(t, srv, "/readiness")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = get(t, srv, "/version")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_version")
}

func TestServerMountsSyncAPI(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	rec := get(t, srv, "/api/v1/employees")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"employees":[]}`, rec.Body.String())
}

func TestServerMetricsEndpoint(t *testing.T) {
	t.Parallel()

	// Without a registry the endpoint is not mounted.
	srv := newServer(t)
	rec := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv = newServer(t, api.WithMetricsRegistry(prometheus.NewRegistry()))
	rec = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAppliesMiddlewares(t *testing.T) {
	t.Parallel()

	var seen bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = true
			next.ServeHTTP(w, r)
		})
	}

	srv := newServer(t, api.WithMiddlewares(mw))
	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen)
}
