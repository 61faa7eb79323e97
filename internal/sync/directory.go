package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/directory"
	"github.com/dsimmons122/employee-management/internal/normalize"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/telemetry"
)

// DirectoryTask syncs people and their device registrations from the
// identity directory. It is the only writer of employee records and of
// device ownership: employee_id and directory_device_id are set here (via
// the reconciler) and nowhere else.
type DirectoryTask struct {
	store      store.Store
	client     directory.Client
	matcher    *Matcher
	reconciler *Reconciler
	metrics    *telemetry.SyncMetrics
}

var _ Task = (*DirectoryTask)(nil)

// NewDirectoryTask creates a directory sync task
func NewDirectoryTask(s store.Store, client directory.Client, metrics *telemetry.SyncMetrics) *DirectoryTask {
	return &DirectoryTask{
		store:      s,
		client:     client,
		matcher:    NewMatcher(s),
		reconciler: NewReconciler(s),
		metrics:    metrics,
	}
}

// Kind returns the run kind this task records
func (*DirectoryTask) Kind() store.RunKind {
	return store.RunKindDirectory
}

// Run executes a full directory pass and returns the closed run record.
func (t *DirectoryTask) Run(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
	run, err := t.store.CreateSyncRun(ctx, store.RunKindDirectory)
	if err != nil {
		return store.SyncRun{}, fmt.Errorf("failed to create directory sync run: %w", err)
	}
	if onStart != nil {
		onStart(run.ID)
	}
	t.metrics.RunStarted(ctx, string(store.RunKindDirectory))
	defer t.metrics.RunFinished(ctx, string(store.RunKindDirectory))

	slog.InfoContext(ctx, "directory sync started", "run_id", run.ID)

	res := &result{}
	taskErr := t.execute(ctx, res)

	final, closeErr := closeTaskRun(ctx, t.store, run, res, taskErr)
	if closeErr != nil {
		return store.SyncRun{}, closeErr
	}
	t.metrics.RecordRun(ctx, string(final.Kind), string(final.Status),
		final.Duration(time.Now().UTC()), final.RecordsSynced, final.RecordsFailed)

	slog.InfoContext(ctx, "directory sync finished",
		"run_id", final.ID,
		"status", final.Status,
		"records_synced", final.RecordsSynced,
		"records_failed", final.RecordsFailed)
	return final, taskErr
}

func (t *DirectoryTask) execute(ctx context.Context, res *result) error {
	people, err := t.client.ListPeople(ctx)
	if err != nil {
		// The first call failing means the source is unreachable; abort
		// the task rather than recording every person as failed.
		return fmt.Errorf("directory unreachable: %w", err)
	}

	now := time.Now().UTC()
	obs := NewObservationSet()

	for _, person := range people {
		emp, err := t.upsertPerson(ctx, person, now)
		if err != nil {
			res.fail(fmt.Errorf("person %s: %w", person.ID, err))
			continue
		}
		res.ok()

		regs, err := t.client.ListDevicesForPerson(ctx, person.ID)
		if err != nil {
			res.fail(fmt.Errorf("devices for person %s: %w", person.ID, err))
			continue
		}
		for _, reg := range dedupeRegistrations(regs) {
			dev, err := t.upsertRegistration(ctx, reg, now)
			if err != nil {
				res.fail(fmt.Errorf("registration %s: %w", reg.ID, err))
				continue
			}
			res.ok()
			obs.Add(dev.ID, emp.ID, reg.RegisteredDate)
		}
	}

	// Winner selection needs the complete observation set, so reconcile
	// exactly once after all people are processed.
	failed, errs := t.reconciler.Reconcile(ctx, obs)
	res.addFailures(failed, errs)
	return nil
}

// upsertPerson creates or updates the employee row for one directory person.
// termination_date is sticky: an existing value is preserved, and a newly
// terminated account gets the last-sign-in day, falling back to today.
func (t *DirectoryTask) upsertPerson(ctx context.Context, person directory.Person, now time.Time) (store.Employee, error) {
	status := store.EmploymentStatusActive
	if !person.Active {
		status = store.EmploymentStatusTerminated
	}

	var termDate *time.Time
	existing, err := t.store.GetEmployeeByExternalID(ctx, person.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return store.Employee{}, err
	}
	if err == nil {
		termDate = existing.TerminationDate
	}
	if status == store.EmploymentStatusTerminated && termDate == nil {
		d := truncateToDay(now)
		if person.LastSignInAt != nil {
			d = truncateToDay(*person.LastSignInAt)
		}
		termDate = &d
	}

	emp := store.Employee{
		ExternalID:       person.ID,
		DisplayName:      person.DisplayName,
		EmploymentStatus: status,
		TerminationDate:  termDate,
		LastSignInAt:     person.LastSignInAt,
		LastSyncedAt:     &now,
	}
	if person.Email != "" {
		emp.Email = &person.Email
	}
	if person.ManagerExternalID != "" {
		emp.ManagerExternalID = &person.ManagerExternalID
	}
	return t.store.UpsertEmployee(ctx, emp)
}

// upsertRegistration resolves a directory device registration to a device
// row, creating one when nothing matches. Ownership is not written here;
// the reconciler assigns employees once the full pass is collected.
func (t *DirectoryTask) upsertRegistration(
	ctx context.Context,
	reg directory.DeviceRegistration,
	now time.Time,
) (store.Device, error) {
	serial, _ := normalize.SerialFromName(reg.DisplayName)
	observation := Observation{
		ExternalID:  reg.ID,
		Serial:      serial,
		DisplayName: reg.DisplayName,
	}

	existing, err := t.matcher.Resolve(ctx, SourceDirectory, observation)
	if err != nil {
		return store.Device{}, err
	}
	if existing == nil {
		return t.store.CreateDevice(ctx, store.Device{
			DirectoryDeviceID: &reg.ID,
			SerialNumber:      serial,
			Name:              reg.DisplayName,
			LastSyncedAt:      &now,
		})
	}

	existing.DirectoryDeviceID = &reg.ID
	existing.Name = reg.DisplayName
	if existing.SerialNumber == "" {
		existing.SerialNumber = serial
	}
	existing.LastSyncedAt = &now
	return t.store.UpdateDevice(ctx, *existing)
}

// dedupeRegistrations collapses multiple registrations of the same physical
// machine (same extracted serial) to one, preferring an active registration
// and then the most recent one. Registrations without an extractable serial
// are kept as-is.
func dedupeRegistrations(regs []directory.DeviceRegistration) []directory.DeviceRegistration {
	byKey := make(map[string]directory.DeviceRegistration, len(regs))
	order := make([]string, 0, len(regs))
	for _, reg := range regs {
		key := reg.ID
		if serial, ok := normalize.SerialFromName(reg.DisplayName); ok {
			key = serial
		}
		current, seen := byKey[key]
		if !seen {
			byKey[key] = reg
			order = append(order, key)
			continue
		}
		if preferRegistration(reg, current) {
			byKey[key] = reg
		}
	}

	deduped := make([]directory.DeviceRegistration, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, byKey[key])
	}
	return deduped
}

func preferRegistration(a, b directory.DeviceRegistration) bool {
	if a.Active != b.Active {
		return a.Active
	}
	return a.RegisteredDate.After(b.RegisteredDate)
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
