package sync

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dsimmons122/employee-management/internal/store"
)

// scheduleJitter is the maximum random offset (±30 seconds) applied to the
// schedule interval to prevent instances from triggering simultaneously
const scheduleJitter = 30 * time.Second

// Coordinator triggers full sync runs on a fixed schedule. One-off syncs
// still go through the orchestrator directly; the coordinator only adds
// the timer loop.
type Coordinator interface {
	// Start begins scheduled sync coordination.
	// Blocks until context is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator loop
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	orchestrator *Orchestrator
	interval     time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewCoordinator creates a coordinator that triggers a full sync every
// interval, with jitter
func NewCoordinator(orchestrator *Orchestrator, interval time.Duration) Coordinator {
	return &defaultCoordinator{
		orchestrator: orchestrator,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

// scheduledInterval returns the configured interval with a random jitter
// applied, clamped so jitter never drives it to zero.
func (c *defaultCoordinator) scheduledInterval() time.Duration {
	jitter := scheduleJitter
	if half := c.interval / 2; jitter > half {
		jitter = half
	}
	if jitter <= 0 {
		return c.interval
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for schedule jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return c.interval + offset
}

// Start begins scheduled sync coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting sync coordinator", "interval", c.interval)

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		close(c.done)
		slog.Info("Sync coordinator shut down")
	}()

	ticker := time.NewTicker(c.scheduledInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.triggerScheduledSync(coordCtx)
			// Recalculate interval with new jitter for the next iteration
			ticker.Reset(c.scheduledInterval())
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-c.done
	}
	return nil
}

func (c *defaultCoordinator) triggerScheduledSync(ctx context.Context) {
	// Skip when a run is already in flight; overlapping full syncs would
	// race each other's reconciliation passes.
	if active := c.orchestrator.Active(); len(active) > 0 {
		slog.Debug("Skipping scheduled sync, run already in flight", "active_runs", len(active))
		return
	}

	runID, err := c.orchestrator.TriggerSync(ctx, store.RunKindFull)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("Failed to trigger scheduled sync", "error", err)
		}
		return
	}
	slog.Info("Scheduled sync triggered", "run_id", runID)
}
