package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/dsimmons122/employee-management/internal/api/v1"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/store/inmemory"
	"github.com/dsimmons122/employee-management/internal/sync"
)

// scriptedTask lets API tests control stage outcomes without real sources.
type scriptedTask struct {
	kind store.RunKind
	run  func(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error)
}

func (s *scriptedTask) Kind() store.RunKind { return s.kind }

func (s *scriptedTask) Run(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
	return s.run(ctx, onStart)
}

// succeedingTask records and closes its own run, mirroring what a real
// source task does.
func succeedingTask(s store.Store, kind store.RunKind, synced int64) *scriptedTask {
	return &scriptedTask{kind: kind, run: func(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
		run, err := s.CreateSyncRun(ctx, kind)
		if err != nil {
			return store.SyncRun{}, err
		}
		onStart(run.ID)
		err = s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
			Status:        store.RunStatusSuccess,
			RecordsSynced: synced,
			CompletedAt:   time.Now().UTC(),
		})
		if err != nil {
			return store.SyncRun{}, err
		}
		return s.GetSyncRun(ctx, run.ID)
	}}
}

func newTestRouter(t *testing.T) (store.Store, http.Handler) {
	t.Helper()
	s := inmemory.New()
	orch := sync.NewOrchestrator(s,
		succeedingTask(s, store.RunKindDirectory, 3),
		succeedingTask(s, store.RunKindDevices, 2),
		nil,
		sync.WithStageTimeout(5*time.Second),
		sync.WithPollInterval(10*time.Millisecond),
	)
	return s, v1.Router(s, orch, sync.NewReporter(s))
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTriggerSyncReturnsRunID(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/sync", `{"kind":"full"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp v1.TriggerSyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "full", resp.Kind)
	require.NotEqual(t, uuid.Nil, resp.RunID)

	// The run executes in the background and must reach a terminal state.
	require.Eventually(t, func() bool {
		run, err := s.GetSyncRun(context.Background(), resp.RunID)
		return err == nil && run.CompletedAt != nil
	}, 5*time.Second, 10*time.Millisecond)

	run, err := s.GetSyncRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(5), run.RecordsSynced)
}

func TestTriggerSyncDefaultsToFullRun(t *testing.T) {
	t.Parallel()

	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/sync", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp v1.TriggerSyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "full", resp.Kind)
}

func TestTriggerSyncRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/sync", `{"kind":"bogus"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp v1.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "bogus")

	runs, err := s.ListSyncRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestTriggerSyncRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/sync", `{"kind":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSyncRunReportsStatus(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)
	ctx := context.Background()

	run, err := s.CreateSyncRun(ctx, store.RunKindDirectory)
	require.NoError(t, err)
	msg := "directory: 1 person failed"
	require.NoError(t, s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
		Status:        store.RunStatusPartial,
		RecordsSynced: 9,
		RecordsFailed: 1,
		ErrorMessage:  &msg,
		CompletedAt:   time.Now().UTC(),
	}))

	rec := doRequest(t, router, http.MethodGet, "/sync/runs/"+run.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report sync.StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, run.ID, report.RunID)
	assert.Equal(t, store.RunStatusPartial, report.Status)
	assert.True(t, report.IsComplete)
	assert.Equal(t, int64(9), report.RecordsSynced)
	assert.Equal(t, int64(1), report.RecordsFailed)
	assert.Equal(t, msg, report.ErrorMessage)
}

func TestGetSyncRunNotFound(t *testing.T) {
	t.Parallel()

	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/sync/runs/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSyncRunRejectsInvalidID(t *testing.T) {
	t.Parallel()

	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/sync/runs/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSyncRunsHonorsLimit(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run, err := s.CreateSyncRun(ctx, store.RunKindDevices)
		require.NoError(t, err)
		require.NoError(t, s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
			Status:      store.RunStatusSuccess,
			CompletedAt: time.Now().UTC(),
		}))
		time.Sleep(2 * time.Millisecond)
	}

	rec := doRequest(t, router, http.MethodGet, "/sync/runs?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]sync.StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["runs"], 2)
	assert.True(t, resp["runs"][0].StartedAt.After(resp["runs"][1].StartedAt) ||
		resp["runs"][0].StartedAt.Equal(resp["runs"][1].StartedAt))
}

func TestEmployeeEndpoints(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)
	ctx := context.Background()

	email := "alice@example.com"
	alice, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "dir-1",
		DisplayName:      "Alice Nguyen",
		Email:            &email,
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)
	_, err = s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "dir-2",
		DisplayName:      "Bob Okafor",
		EmploymentStatus: store.EmploymentStatusTerminated,
	})
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodGet, "/employees", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp map[string][]v1.EmployeeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Len(t, listResp["employees"], 2)

	rec = doRequest(t, router, http.MethodGet, "/employees/"+alice.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var emp v1.EmployeeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emp))
	assert.Equal(t, "dir-1", emp.ExternalID)
	assert.Equal(t, "Alice Nguyen", emp.DisplayName)
	require.NotNil(t, emp.Email)
	assert.Equal(t, email, *emp.Email)

	rec = doRequest(t, router, http.MethodGet, "/employees/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceEndpointsWithAssignmentsAndSoftware(t *testing.T) {
	t.Parallel()

	s, router := newTestRouter(t)
	ctx := context.Background()

	alice, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "dir-1",
		DisplayName:      "Alice Nguyen",
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)
	bob, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "dir-2",
		DisplayName:      "Bob Okafor",
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)

	dirID := "reg-1"
	dev, err := s.CreateDevice(ctx, store.Device{
		DirectoryDeviceID: &dirID,
		SerialNumber:      "HKXRGK2",
		Name:              "atl-HKXRGK2",
		EmployeeID:        &bob.ID,
	})
	require.NoError(t, err)

	// Closed entry for the previous owner, then the current one.
	closed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.RecordAssignment(ctx, store.AssignmentEntry{
		DeviceID:     dev.ID,
		EmployeeID:   alice.ID,
		AssignedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UnassignedAt: &closed,
		RegisteredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = s.OpenAssignment(ctx, dev.ID, bob.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, s.ReplaceDeviceSoftware(ctx, dev.ID, []store.InstalledSoftware{
		{Software: store.Software{Name: "7-Zip 23.01", NormalizedName: "7zip", Version: "23.01"}},
		{Software: store.Software{Name: "7-Zip 24.01", NormalizedName: "7zip", Version: "24.01"}},
		{Software: store.Software{Name: "Chrome", NormalizedName: "chrome", Version: "120.0.1"}},
	}))

	rec := doRequest(t, router, http.MethodGet, "/devices/"+dev.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var devResp v1.DeviceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devResp))
	assert.Equal(t, "HKXRGK2", devResp.SerialNumber)
	require.NotNil(t, devResp.EmployeeID)
	assert.Equal(t, bob.ID, *devResp.EmployeeID)

	rec = doRequest(t, router, http.MethodGet, "/devices/"+dev.ID.String()+"/assignments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var asgResp map[string][]v1.AssignmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asgResp))
	entries := asgResp["assignments"]
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsCurrent)
	assert.Equal(t, bob.ID, entries[0].EmployeeID)
	assert.False(t, entries[1].IsCurrent)
	assert.Equal(t, alice.ID, entries[1].EmployeeID)
	require.NotNil(t, entries[1].UnassignedAt)

	rec = doRequest(t, router, http.MethodGet, "/devices/"+dev.ID.String()+"/software", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var swResp map[string][]v1.SoftwareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &swResp))
	items := swResp["software"]
	require.Len(t, items, 3)
	// Grouped by normalized name, newest version first within the group.
	assert.Equal(t, "24.01", items[0].Version)
	assert.Equal(t, "23.01", items[1].Version)
	assert.Equal(t, "chrome", items[2].NormalizedName)
}

func TestDeviceSubresourcesOnMissingDevice(t *testing.T) {
	t.Parallel()

	_, router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/devices/"+uuid.NewString()+"/assignments", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/devices/"+uuid.NewString()+"/software", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
