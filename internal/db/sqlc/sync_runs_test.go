package sqlc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsimmons122/employee-management/database"
)

func setupQueries(t *testing.T) *Queries {
	t.Helper()

	pool, cleanup := database.SetupTestPool(t)
	t.Cleanup(cleanup)
	return New(pool)
}

func TestSyncRunLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	t.Parallel()

	q := setupQueries(t)
	ctx := context.Background()

	run, err := q.InsertSyncRun(ctx, InsertSyncRunParams{
		Kind:      SyncRunKindFull,
		StartedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, SyncRunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	msg := "directory: device fetch failed for p-3"
	completed := time.Now().UTC()
	rows, err := q.CloseSyncRun(ctx, CloseSyncRunParams{
		ID:            run.ID,
		Status:        SyncRunStatusPartial,
		RecordsSynced: 41,
		RecordsFailed: 1,
		ErrorMessage:  &msg,
		CompletedAt:   &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := q.GetSyncRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncRunStatusPartial, got.Status)
	assert.Equal(t, int64(41), got.RecordsSynced)
	assert.Equal(t, int64(1), got.RecordsFailed)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, msg, *got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)
}

func TestCloseSyncRunMinimalOnlyTouchesOpenRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	t.Parallel()

	q := setupQueries(t)
	ctx := context.Background()

	run, err := q.InsertSyncRun(ctx, InsertSyncRunParams{
		Kind:      SyncRunKindDevices,
		StartedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	completed := time.Now().UTC()
	rows, err := q.CloseSyncRunMinimal(ctx, CloseSyncRunMinimalParams{
		ID:          run.ID,
		Status:      SyncRunStatusFailed,
		CompletedAt: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// A second minimal close is a no-op: the completed_at guard holds.
	rows, err = q.CloseSyncRunMinimal(ctx, CloseSyncRunMinimalParams{
		ID:          run.ID,
		Status:      SyncRunStatusSuccess,
		CompletedAt: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	got, err := q.GetSyncRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncRunStatusFailed, got.Status)
}

func TestCloseSyncRunSecondCloseIsNoOp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	t.Parallel()

	q := setupQueries(t)
	ctx := context.Background()

	run, err := q.InsertSyncRun(ctx, InsertSyncRunParams{
		Kind:      SyncRunKindFull,
		StartedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	completed := time.Now().UTC()
	rows, err := q.CloseSyncRun(ctx, CloseSyncRunParams{
		ID:            run.ID,
		Status:        SyncRunStatusSuccess,
		RecordsSynced: 7,
		CompletedAt:   &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The full close carries the same completed_at guard as the minimal
	// close: a late duplicate must not overwrite the terminal record.
	later := completed.Add(time.Minute)
	rows, err = q.CloseSyncRun(ctx, CloseSyncRunParams{
		ID:            run.ID,
		Status:        SyncRunStatusFailed,
		RecordsFailed: 99,
		CompletedAt:   &later,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	got, err := q.GetSyncRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncRunStatusSuccess, got.Status)
	assert.Equal(t, int64(7), got.RecordsSynced)
	assert.Equal(t, int64(0), got.RecordsFailed)
}

func TestListSyncRunsNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	t.Parallel()

	q := setupQueries(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, kind := range []SyncRunKind{SyncRunKindDirectory, SyncRunKindDevices, SyncRunKindFull} {
		_, err := q.InsertSyncRun(ctx, InsertSyncRunParams{
			Kind:      kind,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := q.ListSyncRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, SyncRunKindFull, runs[0].Kind)
	assert.Equal(t, SyncRunKindDevices, runs[1].Kind)
}
