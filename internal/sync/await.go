package sync

import (
	"context"
	"errors"
	"time"

	"github.com/dsimmons122/employee-management/internal/store"
)

// ErrStageTimeout is returned when a sync stage neither responded nor
// reached a terminal state in the store within the allowed wait.
var ErrStageTimeout = errors.New("sync stage timed out")

// stageResponse carries a task's direct return value.
type stageResponse struct {
	run store.SyncRun
	err error
}

// pollFunc checks whether the stage's own run record has reached a terminal
// state. It returns the record and true once it has.
type pollFunc func(context.Context) (store.SyncRun, bool)

// awaitStage resolves to the first of three outcomes: the task's direct
// response, a bounded timeout, or (when poll is non-nil) the task's own run
// record turning terminal in the store. The poll loop is cancelled as soon
// as any branch wins, so no timer or worker outlives the wait.
func awaitStage(
	ctx context.Context,
	response <-chan stageResponse,
	timeout time.Duration,
	pollInterval time.Duration,
	poll pollFunc,
) (store.SyncRun, error) {
	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	polled := make(chan store.SyncRun, 1)
	if poll != nil {
		go func() {
			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-pollCtx.Done():
					return
				case <-ticker.C:
					if run, done := poll(pollCtx); done {
						polled <- run
						return
					}
				}
			}
		}()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-response:
		return resp.run, resp.err
	case run := <-polled:
		// Direct response was lost or is still in flight; the durable
		// record is the source of truth for the stage's outcome.
		return run, nil
	case <-timer.C:
		return store.SyncRun{}, ErrStageTimeout
	case <-ctx.Done():
		return store.SyncRun{}, ctx.Err()
	}
}
