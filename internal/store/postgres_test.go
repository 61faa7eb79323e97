package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dsimmons122/employee-management/database"
	"github.com/dsimmons122/employee-management/internal/store"
)

func setupStore(t *testing.T) store.Store {
	t.Helper()

	pool, cleanup := database.SetupTestPool(t)
	t.Cleanup(cleanup)

	s, err := store.NewPostgres(store.WithConnectionPool(pool))
	require.NoError(t, err)
	return s
}

func strPtr(s string) *string { return &s }

func TestEmployeeUpsertRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "okta|100",
		DisplayName:      "Ada Park",
		Email:            strPtr("ada@example.com"),
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	// Second upsert with the same external ID updates in place.
	updated, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "okta|100",
		DisplayName:      "Ada Park-Lee",
		EmploymentStatus: store.EmploymentStatusTerminated,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Ada Park-Lee", updated.DisplayName)
	require.Equal(t, store.EmploymentStatusTerminated, updated.EmploymentStatus)

	fetched, err := s.GetEmployeeByExternalID(ctx, "okta|100")
	require.NoError(t, err)
	require.Equal(t, updated.ID, fetched.ID)

	_, err = s.GetEmployeeByExternalID(ctx, "okta|missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeviceLookupsAndEmployeeLink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	s := setupStore(t)
	ctx := context.Background()

	emp, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "okta|200",
		DisplayName:      "Ben Ito",
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)

	dev, err := s.CreateDevice(ctx, store.Device{
		DirectoryDeviceID: strPtr("dir-1"),
		SerialNumber:      "HKXRGK2",
		Name:              "ben-HKXRGK2",
		EmployeeID:        &emp.ID,
	})
	require.NoError(t, err)

	byDir, err := s.GetDeviceByDirectoryID(ctx, "dir-1")
	require.NoError(t, err)
	require.Equal(t, dev.ID, byDir.ID)

	_, err = s.GetDeviceByManagementID(ctx, "mgmt-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Attach the management ID and verify both lookups resolve the same row.
	dev.ManagementDeviceID = strPtr("mgmt-1")
	dev, err = s.UpdateDevice(ctx, dev)
	require.NoError(t, err)

	byMgmt, err := s.GetDeviceByManagementID(ctx, "mgmt-1")
	require.NoError(t, err)
	require.Equal(t, dev.ID, byMgmt.ID)

	bySerial, err := s.ListDevicesBySerial(ctx, "HKXRGK2")
	require.NoError(t, err)
	require.Len(t, bySerial, 1)

	assigned, err := s.ListAssignedDirectoryDevices(ctx)
	require.NoError(t, err)
	require.Len(t, assigned, 1)

	// Clearing the employee removes it from the assigned listing.
	require.NoError(t, s.SetDeviceEmployee(ctx, dev.ID, nil))
	assigned, err = s.ListAssignedDirectoryDevices(ctx)
	require.NoError(t, err)
	require.Empty(t, assigned)

	err = s.SetDeviceEmployee(ctx, uuid.New(), nil)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssignmentHistoryLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	s := setupStore(t)
	ctx := context.Background()

	emp, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "okta|300",
		DisplayName:      "Cleo Marsh",
		EmploymentStatus: store.EmploymentStatusActive,
	})
	require.NoError(t, err)
	dev, err := s.CreateDevice(ctx, store.Device{SerialNumber: "S1", Name: "cleo-S1"})
	require.NoError(t, err)

	registered := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond)
	entry, err := s.OpenAssignment(ctx, dev.ID, emp.ID, registered)
	require.NoError(t, err)
	require.True(t, entry.IsCurrent)
	require.Nil(t, entry.UnassignedAt)

	exists, err := s.HasAssignmentPair(ctx, dev.ID, emp.ID)
	require.NoError(t, err)
	require.True(t, exists)

	current, err := s.GetCurrentAssignment(ctx, dev.ID)
	require.NoError(t, err)
	require.Equal(t, entry.ID, current.ID)

	closedAt := time.Now().UTC()
	closed, err := s.CloseCurrentAssignment(ctx, dev.ID, closedAt)
	require.NoError(t, err)
	require.True(t, closed)

	// Closing again is a no-op.
	closed, err = s.CloseCurrentAssignment(ctx, dev.ID, closedAt)
	require.NoError(t, err)
	require.False(t, closed)

	_, err = s.GetCurrentAssignment(ctx, dev.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The closed entry stays in the history.
	entries, err := s.ListAssignmentsForDevice(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].IsCurrent)
	require.NotNil(t, entries[0].UnassignedAt)
}

func TestSyncRunCloseGuards(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	s := setupStore(t)
	ctx := context.Background()

	run, err := s.CreateSyncRun(ctx, store.RunKindDirectory)
	require.NoError(t, err)
	require.Equal(t, store.RunStatusRunning, run.Status)
	require.Nil(t, run.CompletedAt)

	err = s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
		Status:        store.RunStatusSuccess,
		RecordsSynced: 12,
		CompletedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)

	fetched, err := s.GetSyncRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, store.RunStatusSuccess, fetched.Status)
	require.EqualValues(t, 12, fetched.RecordsSynced)
	require.NotNil(t, fetched.CompletedAt)

	// A second close must not overwrite the recorded outcome.
	err = s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
		Status:      store.RunStatusFailed,
		CompletedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyClosed)

	err = s.CloseSyncRun(ctx, uuid.New(), store.CloseRunParams{
		Status:      store.RunStatusFailed,
		CompletedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	runs, err := s.ListSyncRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestReplaceDeviceSoftware(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	s := setupStore(t)
	ctx := context.Background()

	dev, err := s.CreateDevice(ctx, store.Device{SerialNumber: "S2", Name: "dev-S2"})
	require.NoError(t, err)

	err = s.ReplaceDeviceSoftware(ctx, dev.ID, []store.InstalledSoftware{
		{Software: store.Software{Name: "7-Zip 22.01 (x64)", NormalizedName: "7zip", Version: "22.01"}},
		{Software: store.Software{Name: "Go", NormalizedName: "go", Version: "1.24.6"}},
	})
	require.NoError(t, err)

	installed, err := s.ListSoftwareForDevice(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, installed, 2)

	// Replacement swaps the set rather than accumulating.
	err = s.ReplaceDeviceSoftware(ctx, dev.ID, []store.InstalledSoftware{
		{Software: store.Software{Name: "7-Zip 24.08", NormalizedName: "7zip", Version: "24.08"}},
	})
	require.NoError(t, err)

	installed, err = s.ListSoftwareForDevice(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	require.Equal(t, "24.08", installed[0].Software.Version)
}
