package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	sdk "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	intotel "github.com/dsimmons122/employee-management/internal/otel"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/telemetry"
)

// tracerName identifies sync engine spans.
const tracerName = "github.com/dsimmons122/employee-management/sync"

const (
	// defaultStageTimeout bounds how long the orchestrator waits for one stage
	defaultStageTimeout = 10 * time.Minute

	// defaultPollInterval is how often the store is polled for a stage's
	// run record when the direct response has not arrived yet
	defaultPollInterval = 5 * time.Second

	// closeMaxTries bounds the close-with-verification retry loop
	closeMaxTries = 5
)

// Orchestrator runs source sync tasks in their fixed dependency order
// (directory before devices) under one durable Sync Run record. Triggering
// is fire-and-forget: the caller gets a run id back immediately and polls
// the Status Reporter for the outcome.
type Orchestrator struct {
	store        store.Store
	directory    Task
	devices      Task
	metrics      *telemetry.SyncMetrics
	tracer       trace.Tracer
	stageTimeout time.Duration
	pollInterval time.Duration

	// active is the registry of in-flight runs: registered on start,
	// deregistered on terminal state. It keeps the async run referenced
	// and queryable with explicit ownership.
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// OrchestratorOption is a functional option for configuring the Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithStageTimeout bounds how long the orchestrator waits for one stage
func WithStageTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stageTimeout = d
		}
	}
}

// WithPollInterval sets how often a stage's run record is polled while its
// direct response is outstanding
func WithPollInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// NewOrchestrator creates an orchestrator over the given store and tasks
func NewOrchestrator(
	s store.Store,
	directory, devices Task,
	metrics *telemetry.SyncMetrics,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		store:        s,
		directory:    directory,
		devices:      devices,
		metrics:      metrics,
		tracer:       sdk.Tracer(tracerName),
		stageTimeout: defaultStageTimeout,
		pollInterval: defaultPollInterval,
		active:       make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TriggerSync starts a sync run of the given kind and returns its id
// immediately. The run executes in the background; callers poll for status.
func (o *Orchestrator) TriggerSync(ctx context.Context, kind store.RunKind) (uuid.UUID, error) {
	switch kind {
	case store.RunKindFull, store.RunKindDirectory, store.RunKindDevices:
	default:
		return uuid.Nil, fmt.Errorf("unknown sync kind %q", kind)
	}

	run, err := o.store.CreateSyncRun(ctx, kind)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create sync run: %w", err)
	}

	o.register(run.ID)
	// The run must outlive the triggering request.
	go o.execute(context.WithoutCancel(ctx), run)

	slog.InfoContext(ctx, "sync triggered", "run_id", run.ID, "kind", kind)
	return run.ID, nil
}

// Active returns the ids of runs currently in flight.
func (o *Orchestrator) Active() []uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(o.active))
	for id := range o.active {
		ids = append(ids, id)
	}
	return ids
}

func (o *Orchestrator) register(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active[id] = struct{}{}
}

func (o *Orchestrator) deregister(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, id)
}

// execute drives one run to a terminal state. The deferred close is
// unconditional: whatever happens in the stages, the run record never stays
// running.
func (o *Orchestrator) execute(ctx context.Context, run store.SyncRun) {
	var (
		synced, failed int64
		msgs           []string
		status         = store.RunStatusSuccess
	)

	ctx, span := intotel.StartSpan(ctx, o.tracer, "sync.run", trace.WithAttributes(
		intotel.AttrRunID.String(run.ID.String()),
		intotel.AttrRunKind.String(string(run.Kind)),
	))

	o.metrics.RunStarted(ctx, string(run.Kind))
	defer func() {
		if r := recover(); r != nil {
			status = store.RunStatusFailed
			msgs = append(msgs, fmt.Sprintf("sync panicked: %v", r))
			slog.ErrorContext(ctx, "sync run panicked", "run_id", run.ID, "panic", r)
		}
		o.closeRun(ctx, run, status, synced, failed, msgs)
		o.deregister(run.ID)
		o.metrics.RunFinished(ctx, string(run.Kind))
		span.SetAttributes(
			intotel.AttrRunStatus.String(string(status)),
			intotel.AttrRecordsSynced.Int64(synced),
			intotel.AttrRecordsFailed.Int64(failed),
		)
		span.End()
	}()

	if run.Kind == store.RunKindFull || run.Kind == store.RunKindDirectory {
		// The directory stage gets a store-polling fallback: if the direct
		// response is lost, its own run record still tells us the outcome.
		dirRun, err := o.runStage(ctx, o.directory, true)
		if err != nil {
			status = store.RunStatusFailed
			msgs = append(msgs, fmt.Sprintf("directory sync: %v", err))
			return
		}
		synced += dirRun.RecordsSynced
		failed += dirRun.RecordsFailed
		if dirRun.ErrorMessage != nil {
			msgs = append(msgs, *dirRun.ErrorMessage)
		}
		if dirRun.Status == store.RunStatusFailed {
			// Device ownership must reflect the latest directory state;
			// enriching devices against stale identity data is unsafe.
			status = store.RunStatusFailed
			return
		}
	}

	if run.Kind == store.RunKindFull || run.Kind == store.RunKindDevices {
		// Last stage: response-or-timeout only, no polling fallback needed.
		devRun, err := o.runStage(ctx, o.devices, false)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("device sync: %v", err))
		} else {
			synced += devRun.RecordsSynced
			failed += devRun.RecordsFailed
			if devRun.ErrorMessage != nil {
				msgs = append(msgs, *devRun.ErrorMessage)
			}
		}
	}

	status = deriveStatus(synced, failed, msgs)
}

// runStage launches the task and waits for the first of: direct response,
// stage timeout, or (withPoll) the task's own run record turning terminal.
// On timeout the task keeps running; the orchestrator stops waiting, not
// the work.
func (o *Orchestrator) runStage(ctx context.Context, task Task, withPoll bool) (store.SyncRun, error) {
	ctx, span := intotel.StartSpan(ctx, o.tracer, "sync.stage", trace.WithAttributes(
		intotel.AttrStage.String(string(task.Kind())),
	))
	defer span.End()

	response := make(chan stageResponse, 1)
	var stageRunID atomic.Pointer[uuid.UUID]

	go func() {
		run, err := task.Run(ctx, func(id uuid.UUID) {
			stageRunID.Store(&id)
		})
		response <- stageResponse{run: run, err: err}
	}()

	var poll pollFunc
	if withPoll {
		poll = func(pctx context.Context) (store.SyncRun, bool) {
			idp := stageRunID.Load()
			if idp == nil {
				return store.SyncRun{}, false
			}
			run, err := o.store.GetSyncRun(pctx, *idp)
			if err != nil || run.CompletedAt == nil {
				return store.SyncRun{}, false
			}
			return run, true
		}
	}

	run, err := awaitStage(ctx, response, o.stageTimeout, o.pollInterval, poll)
	if errors.Is(err, ErrStageTimeout) {
		err = fmt.Errorf("%s stage: %w", task.Kind(), err)
		intotel.RecordError(span, err)
		return store.SyncRun{}, err
	}
	intotel.RecordError(span, err)
	return run, err
}

// deriveStatus applies the aggregate rule: errors with nothing synced means
// failed, errors alongside synced records means partial.
func deriveStatus(synced, failed int64, msgs []string) store.RunStatus {
	hadErrors := failed > 0 || len(msgs) > 0
	switch {
	case hadErrors && synced == 0:
		return store.RunStatusFailed
	case hadErrors:
		return store.RunStatusPartial
	default:
		return store.RunStatusSuccess
	}
}

// closeRun writes the terminal state with a read-your-write check: the store
// may not make the update immediately visible, so the close is retried with
// backoff until a re-read shows completed_at set. As a last resort a minimal
// close stamps status and completion time so the run never stays running.
func (o *Orchestrator) closeRun(
	ctx context.Context,
	run store.SyncRun,
	status store.RunStatus,
	synced, failed int64,
	msgs []string,
) {
	var errMsg *string
	if len(msgs) > 0 {
		joined := strings.Join(msgs, "; ")
		if len(joined) > maxErrorMessageLen {
			joined = joined[:maxErrorMessageLen]
		}
		errMsg = &joined
	}

	completedAt := time.Now().UTC()
	operation := func() (struct{}, error) {
		err := o.store.CloseSyncRun(ctx, run.ID, store.CloseRunParams{
			Status:        status,
			RecordsSynced: synced,
			RecordsFailed: failed,
			ErrorMessage:  errMsg,
			CompletedAt:   completedAt,
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyClosed) {
			return struct{}{}, err
		}
		got, err := o.store.GetSyncRun(ctx, run.ID)
		if err != nil {
			return struct{}{}, err
		}
		if got.CompletedAt == nil {
			return struct{}{}, errors.New("close not yet visible")
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(closeMaxTries))
	if err == nil {
		o.metrics.RecordRun(ctx, string(run.Kind), string(status),
			time.Since(run.StartedAt), synced, failed)
		slog.InfoContext(ctx, "sync run closed",
			"run_id", run.ID,
			"kind", run.Kind,
			"status", status,
			"records_synced", synced,
			"records_failed", failed)
		return
	}

	slog.ErrorContext(ctx, "failed to close sync run, degrading to minimal close",
		"run_id", run.ID, "error", err)
	if err := o.store.CloseSyncRunMinimal(ctx, run.ID, status, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "minimal close failed", "run_id", run.ID, "error", err)
	}
}
