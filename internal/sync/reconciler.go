package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/store"
)

// Candidate is one claim on a device observed during a directory pass.
type Candidate struct {
	EmployeeID   uuid.UUID
	RegisteredAt time.Time
}

// ObservationSet accumulates the device-to-employee claims seen during a
// single directory sync pass. Reconciliation needs the full set, so claims
// are collected per run and resolved once at the end.
type ObservationSet struct {
	claims map[uuid.UUID][]Candidate
}

// NewObservationSet creates an empty observation set.
func NewObservationSet() *ObservationSet {
	return &ObservationSet{claims: make(map[uuid.UUID][]Candidate)}
}

// Add records a claim of employeeID on deviceID.
func (o *ObservationSet) Add(deviceID, employeeID uuid.UUID, registeredAt time.Time) {
	o.claims[deviceID] = append(o.claims[deviceID], Candidate{
		EmployeeID:   employeeID,
		RegisteredAt: registeredAt,
	})
}

// Observed reports whether the device was seen at all during the pass.
func (o *ObservationSet) Observed(deviceID uuid.UUID) bool {
	_, ok := o.claims[deviceID]
	return ok
}

// Reconciler resolves ownership conflicts after a directory pass: when
// multiple employees claim the same device in one run it picks the claim
// with the latest registration as the winner and records the rest as
// non-current history, and it unassigns devices the directory no longer
// reports at all.
type Reconciler struct {
	store store.Store
}

// NewReconciler creates a Reconciler over the given store
func NewReconciler(s store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// Reconcile applies winner selection and unregistration for one completed
// directory pass. Entity-level failures are collected, not propagated; the
// returned error covers only failures that abort the whole pass.
func (r *Reconciler) Reconcile(ctx context.Context, obs *ObservationSet) (failed int64, errs []string) {
	now := time.Now().UTC()

	for deviceID, candidates := range obs.claims {
		if err := r.reconcileDevice(ctx, deviceID, candidates, now); err != nil {
			failed++
			errs = append(errs, err.Error())
			slog.ErrorContext(ctx, "failed to reconcile device",
				"device_id", deviceID, "error", err)
		}
	}

	n, unassignErrs := r.unassignUnobserved(ctx, obs, now)
	failed += n
	errs = append(errs, unassignErrs...)
	return failed, errs
}

func (r *Reconciler) reconcileDevice(
	ctx context.Context,
	deviceID uuid.UUID,
	candidates []Candidate,
	now time.Time,
) error {
	// Latest registration wins. Sort is stable, so equal timestamps keep
	// observation order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RegisteredAt.After(candidates[j].RegisteredAt)
	})
	winner := candidates[0]

	dev, err := r.store.GetDevice(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}

	if dev.EmployeeID == nil || *dev.EmployeeID != winner.EmployeeID {
		if _, err := r.store.CloseCurrentAssignment(ctx, deviceID, now); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
		if err := r.store.SetDeviceEmployee(ctx, deviceID, &winner.EmployeeID); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
		if _, err := r.store.OpenAssignment(ctx, deviceID, winner.EmployeeID, winner.RegisteredAt); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
		slog.InfoContext(ctx, "device reassigned",
			"device_id", deviceID, "employee_id", winner.EmployeeID)
	}

	// Record losing claims for the audit trail. Keyed by pair existence so
	// re-running an unchanged sync writes nothing.
	for _, c := range candidates[1:] {
		if c.EmployeeID == winner.EmployeeID {
			continue
		}
		exists, err := r.store.HasAssignmentPair(ctx, deviceID, c.EmployeeID)
		if err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
		if exists {
			continue
		}
		if _, err := r.store.RecordAssignment(ctx, store.AssignmentEntry{
			DeviceID:     deviceID,
			EmployeeID:   c.EmployeeID,
			AssignedAt:   c.RegisteredAt,
			UnassignedAt: &now,
			RegisteredAt: c.RegisteredAt,
			IsCurrent:    false,
		}); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
	}
	return nil
}

// unassignUnobserved clears ownership of directory-known devices the current
// pass never saw. Management-only devices are left alone; their linkage is
// frozen at whatever the directory last set.
func (r *Reconciler) unassignUnobserved(ctx context.Context, obs *ObservationSet, now time.Time) (int64, []string) {
	assigned, err := r.store.ListAssignedDirectoryDevices(ctx)
	if err != nil {
		return 1, []string{fmt.Sprintf("failed to list assigned devices: %v", err)}
	}

	var failed int64
	var errs []string
	for _, dev := range assigned {
		if obs.Observed(dev.ID) {
			continue
		}
		if _, err := r.store.CloseCurrentAssignment(ctx, dev.ID, now); err != nil {
			failed++
			errs = append(errs, err.Error())
			continue
		}
		if err := r.store.SetDeviceEmployee(ctx, dev.ID, nil); err != nil {
			failed++
			errs = append(errs, err.Error())
			continue
		}
		slog.InfoContext(ctx, "device unregistered from directory, assignment closed",
			"device_id", dev.ID)
	}
	return failed, errs
}
