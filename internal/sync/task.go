package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/store"
)

// maxErrorMessageLen caps the error summary persisted on a sync run
const maxErrorMessageLen = 4000

// Task is one source sync task. Run creates its own Sync Run record,
// executes the full pass, and closes the record with a terminal status
// before returning. onStart is invoked with the run id as soon as the
// record exists, so callers can poll the record independently of the
// direct return value.
type Task interface {
	Kind() store.RunKind
	Run(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error)
}

// result accumulates per-entity outcomes of one task execution.
// Safe for concurrent use by batch workers.
type result struct {
	mu     sync.Mutex
	synced int64
	failed int64
	errs   []string
}

func (r *result) ok() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced++
}

func (r *result) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	r.errs = append(r.errs, err.Error())
}

func (r *result) addFailures(n int64, errs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed += n
	r.errs = append(r.errs, errs...)
}

func (r *result) counts() (synced, failed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.synced, r.failed
}

// status derives the terminal run status from the accumulated counts.
// A task-fatal error, or errors with nothing synced, means failed; errors
// alongside synced records mean partial.
func (r *result) status(taskErr error) store.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	hadErrors := taskErr != nil || r.failed > 0 || len(r.errs) > 0
	switch {
	case hadErrors && r.synced == 0:
		return store.RunStatusFailed
	case hadErrors:
		return store.RunStatusPartial
	default:
		return store.RunStatusSuccess
	}
}

func (r *result) message(taskErr error) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts := make([]string, 0, len(r.errs)+1)
	if taskErr != nil {
		parts = append(parts, taskErr.Error())
	}
	parts = append(parts, r.errs...)
	if len(parts) == 0 {
		return nil
	}
	msg := strings.Join(parts, "; ")
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return &msg
}

// closeTaskRun writes the terminal state of a task's own run record and
// returns the closed snapshot. The close uses a context detached from the
// task's, so a timed-out task still records its outcome.
func closeTaskRun(
	ctx context.Context,
	st store.Store,
	run store.SyncRun,
	res *result,
	taskErr error,
) (store.SyncRun, error) {
	ctx = context.WithoutCancel(ctx)
	synced, failed := res.counts()

	err := st.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
		Status:        res.status(taskErr),
		RecordsSynced: synced,
		RecordsFailed: failed,
		ErrorMessage:  res.message(taskErr),
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil && !errors.Is(err, store.ErrAlreadyClosed) {
		return store.SyncRun{}, fmt.Errorf("failed to close run %s: %w", run.ID, err)
	}
	return st.GetSyncRun(ctx, run.ID)
}
