package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/store"
)

// StatusReport is the poller-facing view of one sync run.
type StatusReport struct {
	RunID         uuid.UUID       `json:"run_id"`
	Kind          store.RunKind   `json:"kind"`
	Status        store.RunStatus `json:"status"`
	IsComplete    bool            `json:"is_complete"`
	RecordsSynced int64           `json:"records_synced"`
	RecordsFailed int64           `json:"records_failed"`
	Duration      string          `json:"duration"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// Reporter exposes current and historical sync run state to callers. It
// tolerates the same store-visibility lag the orchestrator's close handles:
// a run whose status looks terminal but whose completed_at is still null is
// reported as not complete, and callers should keep polling.
type Reporter struct {
	store store.Store
}

// NewReporter creates a Reporter over the given store
func NewReporter(s store.Store) *Reporter {
	return &Reporter{store: s}
}

// GetStatus returns the current report for one run.
func (r *Reporter) GetStatus(ctx context.Context, runID uuid.UUID) (StatusReport, error) {
	run, err := r.store.GetSyncRun(ctx, runID)
	if err != nil {
		return StatusReport{}, err
	}
	return reportFromRun(run), nil
}

// ListHistory returns the most recent runs, newest first.
func (r *Reporter) ListHistory(ctx context.Context, limit int32) ([]StatusReport, error) {
	runs, err := r.store.ListSyncRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	reports := make([]StatusReport, len(runs))
	for i, run := range runs {
		reports[i] = reportFromRun(run)
	}
	return reports, nil
}

func reportFromRun(run store.SyncRun) StatusReport {
	// Completion is derived strictly from completed_at: a terminal status
	// alone may not be durably visible yet.
	report := StatusReport{
		RunID:         run.ID,
		Kind:          run.Kind,
		Status:        run.Status,
		IsComplete:    run.CompletedAt != nil,
		RecordsSynced: run.RecordsSynced,
		RecordsFailed: run.RecordsFailed,
		Duration:      run.Duration(time.Now().UTC()).Round(time.Millisecond).String(),
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
	}
	if run.ErrorMessage != nil {
		report.ErrorMessage = *run.ErrorMessage
	}
	return report
}
