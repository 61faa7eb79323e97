package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/store/inmemory"
)

// stubTask lets orchestrator tests script stage outcomes directly.
type stubTask struct {
	kind  store.RunKind
	calls atomic.Int32
	run   func(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error)
}

func (s *stubTask) Kind() store.RunKind { return s.kind }

func (s *stubTask) Run(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
	s.calls.Add(1)
	return s.run(ctx, onStart)
}

func closedRun(kind store.RunKind, status store.RunStatus, synced, failed int64, msg string) store.SyncRun {
	now := time.Now().UTC()
	run := store.SyncRun{
		ID:            uuid.New(),
		Kind:          kind,
		Status:        status,
		RecordsSynced: synced,
		RecordsFailed: failed,
		StartedAt:     now.Add(-time.Second),
		CompletedAt:   &now,
	}
	if msg != "" {
		run.ErrorMessage = &msg
	}
	return run
}

func respondWith(run store.SyncRun, err error) func(context.Context, func(uuid.UUID)) (store.SyncRun, error) {
	return func(_ context.Context, _ func(uuid.UUID)) (store.SyncRun, error) {
		return run, err
	}
}

// waitForClose polls until the orchestrator's deferred close lands.
func waitForClose(t *testing.T, s store.Store, id uuid.UUID) store.SyncRun {
	t.Helper()
	var run store.SyncRun
	require.Eventually(t, func() bool {
		var err error
		run, err = s.GetSyncRun(context.Background(), id)
		return err == nil && run.CompletedAt != nil
	}, 5*time.Second, 10*time.Millisecond)
	return run
}

func TestOrchestratorFullRunAggregates(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	dir := &stubTask{kind: store.RunKindDirectory,
		run: respondWith(closedRun(store.RunKindDirectory, store.RunStatusSuccess, 10, 0, ""), nil)}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 5, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil)
	id, err := o.TriggerSync(context.Background(), store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(15), run.RecordsSynced)
	assert.Zero(t, run.RecordsFailed)
	assert.Nil(t, run.ErrorMessage)
	assert.Equal(t, int32(1), dir.calls.Load())
	assert.Equal(t, int32(1), dev.calls.Load())
	// Deregistration happens just after the close lands.
	require.Eventually(t, func() bool { return len(o.Active()) == 0 },
		time.Second, 10*time.Millisecond)
}

func TestOrchestratorPartialWhenStageHasFailures(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	dir := &stubTask{kind: store.RunKindDirectory,
		run: respondWith(closedRun(store.RunKindDirectory, store.RunStatusPartial, 8, 2, "person p-9: upstream 503"), nil)}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 4, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil)
	id, err := o.TriggerSync(context.Background(), store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusPartial, run.Status)
	assert.Equal(t, int64(12), run.RecordsSynced)
	assert.Equal(t, int64(2), run.RecordsFailed)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "p-9")
}

func TestOrchestratorDirectoryFailureSkipsDevices(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	dir := &stubTask{kind: store.RunKindDirectory,
		run: respondWith(closedRun(store.RunKindDirectory, store.RunStatusFailed, 0, 0, "directory unreachable"),
			errors.New("directory unreachable"))}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 5, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil)
	id, err := o.TriggerSync(context.Background(), store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusFailed, run.Status)
	assert.Zero(t, dev.calls.Load())
}

func TestOrchestratorStageTimeoutFailsRun(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	dir := &stubTask{kind: store.RunKindDirectory,
		run: func(_ context.Context, _ func(uuid.UUID)) (store.SyncRun, error) {
			<-release
			return store.SyncRun{}, errors.New("released")
		}}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 5, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil,
		WithStageTimeout(50*time.Millisecond),
		WithPollInterval(10*time.Millisecond))
	id, err := o.TriggerSync(context.Background(), store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "timed out")
	assert.Zero(t, dev.calls.Load())
}

func TestOrchestratorPollFallbackRecoversLostResponse(t *testing.T) {
	t.Parallel()
	s := inmemory.New()
	ctx := context.Background()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// The directory task closes its own run record but its direct response
	// never arrives; the poll fallback must pick the outcome up from the
	// store and let the run proceed.
	dir := &stubTask{kind: store.RunKindDirectory,
		run: func(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
			run, err := s.CreateSyncRun(ctx, store.RunKindDirectory)
			if err != nil {
				return store.SyncRun{}, err
			}
			onStart(run.ID)
			if err := s.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
				Status:        store.RunStatusSuccess,
				RecordsSynced: 7,
				CompletedAt:   time.Now().UTC(),
			}); err != nil {
				return store.SyncRun{}, err
			}
			<-release
			return store.SyncRun{}, errors.New("released")
		}}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 3, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil,
		WithStageTimeout(5*time.Second),
		WithPollInterval(10*time.Millisecond))
	id, err := o.TriggerSync(ctx, store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(10), run.RecordsSynced)
	assert.Equal(t, int32(1), dev.calls.Load())
}

func TestOrchestratorDevicesOnlySkipsDirectory(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	dir := &stubTask{kind: store.RunKindDirectory,
		run: respondWith(closedRun(store.RunKindDirectory, store.RunStatusSuccess, 10, 0, ""), nil)}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(closedRun(store.RunKindDevices, store.RunStatusSuccess, 5, 0, ""), nil)}

	o := NewOrchestrator(s, dir, dev, nil)
	id, err := o.TriggerSync(context.Background(), store.RunKindDevices)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.Equal(t, store.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(5), run.RecordsSynced)
	assert.Zero(t, dir.calls.Load())
	assert.Equal(t, int32(1), dev.calls.Load())
}

func TestOrchestratorRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	o := NewOrchestrator(inmemory.New(), nil, nil, nil)
	_, err := o.TriggerSync(context.Background(), store.RunKind("bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sync kind")
}

func TestOrchestratorRunNeverStaysRunning(t *testing.T) {
	t.Parallel()
	s := inmemory.New()

	// Both stages error outright; the deferred close must still land a
	// terminal record.
	dir := &stubTask{kind: store.RunKindDirectory,
		run: respondWith(store.SyncRun{Status: store.RunStatusFailed},
			errors.New("create run failed"))}
	dev := &stubTask{kind: store.RunKindDevices,
		run: respondWith(store.SyncRun{}, errors.New("create run failed"))}

	o := NewOrchestrator(s, dir, dev, nil)
	id, err := o.TriggerSync(context.Background(), store.RunKindFull)
	require.NoError(t, err)

	run := waitForClose(t, s, id)
	assert.True(t, run.Status.Terminal())
	require.NotNil(t, run.CompletedAt)
}
