package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/store/inmemory"
)

func TestReporterCompletionFollowsCompletedAt(t *testing.T) {
	t.Parallel()
	s := inmemory.New()
	ctx := context.Background()

	run, err := s.CreateSyncRun(ctx, store.RunKindFull)
	require.NoError(t, err)

	r := NewReporter(s)
	report, err := r.GetStatus(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, report.IsComplete)
	assert.Equal(t, store.RunStatusRunning, report.Status)
	assert.Nil(t, report.CompletedAt)

	msg := "devices for person p-3: upstream 503"
	require.NoError(t, s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
		Status:        store.RunStatusPartial,
		RecordsSynced: 9,
		RecordsFailed: 1,
		ErrorMessage:  &msg,
		CompletedAt:   time.Now().UTC(),
	}))

	report, err = r.GetStatus(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, report.IsComplete)
	assert.Equal(t, store.RunStatusPartial, report.Status)
	assert.Equal(t, int64(9), report.RecordsSynced)
	assert.Equal(t, int64(1), report.RecordsFailed)
	assert.Equal(t, msg, report.ErrorMessage)
	require.NotNil(t, report.CompletedAt)
}

func TestReporterUnknownRun(t *testing.T) {
	t.Parallel()
	r := NewReporter(inmemory.New())
	_, err := r.GetStatus(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReporterHistoryNewestFirst(t *testing.T) {
	t.Parallel()
	s := inmemory.New()
	ctx := context.Background()

	kinds := []store.RunKind{store.RunKindDirectory, store.RunKindDevices, store.RunKindFull}
	for _, kind := range kinds {
		run, err := s.CreateSyncRun(ctx, kind)
		require.NoError(t, err)
		require.NoError(t, s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
			Status:      store.RunStatusSuccess,
			CompletedAt: time.Now().UTC(),
		}))
		// StartedAt stamps must differ for the ordering to be observable.
		time.Sleep(2 * time.Millisecond)
	}

	reports, err := NewReporter(s).ListHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, store.RunKindFull, reports[0].Kind)
	assert.Equal(t, store.RunKindDevices, reports[1].Kind)
	assert.True(t, reports[0].StartedAt.After(reports[1].StartedAt))
}
