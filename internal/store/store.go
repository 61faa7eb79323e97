// Package store defines the persistence interface for employees, devices,
// assignment history, software inventory, and sync run records, along with
// the domain types shared across the sync engine and the API layer.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyClosed is returned when closing a sync run that already has a
// terminal status recorded.
var ErrAlreadyClosed = errors.New("sync run already closed")

// CloseRunParams carries the terminal fields written when a sync run ends.
type CloseRunParams struct {
	Status        RunStatus
	RecordsSynced int64
	RecordsFailed int64
	ErrorMessage  *string
	CompletedAt   time.Time
}

// Store is the persistence interface used by the sync engine and the
// HTTP API. Implementations must be safe for concurrent use.
type Store interface {
	// Employee operations. UpsertEmployee inserts or updates by external
	// directory ID and returns the stored row.
	UpsertEmployee(ctx context.Context, emp Employee) (Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error)
	GetEmployeeByExternalID(ctx context.Context, externalID string) (Employee, error)
	ListEmployees(ctx context.Context, limit, offset int32) ([]Employee, error)

	// Device operations. CreateDevice assigns the ID; UpdateDevice and
	// SetDeviceEmployee return ErrNotFound when the device does not exist.
	CreateDevice(ctx context.Context, dev Device) (Device, error)
	UpdateDevice(ctx context.Context, dev Device) (Device, error)
	SetDeviceEmployee(ctx context.Context, deviceID uuid.UUID, employeeID *uuid.UUID) error
	GetDevice(ctx context.Context, id uuid.UUID) (Device, error)
	GetDeviceByDirectoryID(ctx context.Context, directoryID string) (Device, error)
	GetDeviceByManagementID(ctx context.Context, managementID string) (Device, error)
	ListDevices(ctx context.Context, limit, offset int32) ([]Device, error)
	ListDevicesBySerial(ctx context.Context, serial string) ([]Device, error)
	ListDevicesWithoutDirectoryID(ctx context.Context) ([]Device, error)
	ListDevicesWithoutManagementID(ctx context.Context) ([]Device, error)
	ListAssignedDirectoryDevices(ctx context.Context) ([]Device, error)

	// Assignment history operations. OpenAssignment writes a current entry;
	// RecordAssignment writes an already-closed audit entry. Closing a
	// device with no current entry is a no-op reported by the bool.
	OpenAssignment(ctx context.Context, deviceID, employeeID uuid.UUID, registeredAt time.Time) (AssignmentEntry, error)
	RecordAssignment(ctx context.Context, entry AssignmentEntry) (AssignmentEntry, error)
	CloseCurrentAssignment(ctx context.Context, deviceID uuid.UUID, at time.Time) (bool, error)
	GetCurrentAssignment(ctx context.Context, deviceID uuid.UUID) (AssignmentEntry, error)
	HasAssignmentPair(ctx context.Context, deviceID, employeeID uuid.UUID) (bool, error)
	ListAssignmentsForDevice(ctx context.Context, deviceID uuid.UUID) ([]AssignmentEntry, error)

	// Sync run operations. CreateSyncRun opens a run in the running state.
	// CloseSyncRun transitions it to a terminal state and returns
	// ErrAlreadyClosed if a terminal status was already recorded.
	// CloseSyncRunMinimal records only the status and completion time and
	// skips the already-closed guard; it backstops a failed full close.
	CreateSyncRun(ctx context.Context, kind RunKind) (SyncRun, error)
	GetSyncRun(ctx context.Context, id uuid.UUID) (SyncRun, error)
	CloseSyncRun(ctx context.Context, id uuid.UUID, params CloseRunParams) error
	CloseSyncRunMinimal(ctx context.Context, id uuid.UUID, status RunStatus, at time.Time) error
	ListSyncRuns(ctx context.Context, limit int32) ([]SyncRun, error)

	// Software inventory operations. ReplaceDeviceSoftware swaps the full
	// installed set for a device in one transaction.
	UpsertSoftware(ctx context.Context, sw Software) (Software, error)
	ReplaceDeviceSoftware(ctx context.Context, deviceID uuid.UUID, installed []InstalledSoftware) error
	ListSoftwareForDevice(ctx context.Context, deviceID uuid.UUID) ([]InstalledSoftware, error)
}
