package store

import (
	"time"

	"github.com/google/uuid"
)

// EmploymentStatus is the directory-derived employment state of an employee.
type EmploymentStatus string

const (
	// EmploymentStatusActive means the directory account is enabled
	EmploymentStatusActive EmploymentStatus = "active"

	// EmploymentStatusTerminated means the directory account is disabled
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// RunKind identifies which sync produced a run record.
type RunKind string

const (
	// RunKindDirectory is a directory (identity) sync run
	RunKindDirectory RunKind = "directory"

	// RunKindDevices is a device-management sync run
	RunKindDevices RunKind = "devices"

	// RunKindFull is a full two-stage orchestrated run
	RunKindFull RunKind = "full"
)

// RunStatus is the lifecycle state of a sync run.
type RunStatus string

const (
	// RunStatusRunning means the run is in progress
	RunStatusRunning RunStatus = "running"

	// RunStatusSuccess means the run completed with no failures
	RunStatusSuccess RunStatus = "success"

	// RunStatusPartial means the run completed with some record failures
	RunStatusPartial RunStatus = "partial"

	// RunStatusFailed means the run failed outright
	RunStatusFailed RunStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSuccess || s == RunStatusPartial || s == RunStatusFailed
}

// Employee is an identity record owned by the directory source.
type Employee struct {
	ID                uuid.UUID
	ExternalID        string
	DisplayName       string
	Email             *string
	ManagerExternalID *string
	EmploymentStatus  EmploymentStatus
	TerminationDate   *time.Time
	LastSignInAt      *time.Time
	LastSyncedAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Device is a hardware record. DirectoryDeviceID and ManagementDeviceID are
// independent optional keys; a device may carry either or both. EmployeeID is
// directory-owned: only the directory sync may set or clear it.
type Device struct {
	ID                 uuid.UUID
	DirectoryDeviceID  *string
	ManagementDeviceID *string
	SerialNumber       string
	Name               string
	Manufacturer       *string
	Model              *string
	OSName             *string
	OSVersion          *string
	LastSeenAt         *time.Time
	EmployeeID         *uuid.UUID
	Managed            bool
	LastSyncedAt       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AssignmentEntry is one device-to-employee assignment history record.
// Entries are never deleted; a closed entry (IsCurrent false with a
// non-nil UnassignedAt) is the audit trail of a past assignment.
type AssignmentEntry struct {
	ID           uuid.UUID
	DeviceID     uuid.UUID
	EmployeeID   uuid.UUID
	AssignedAt   time.Time
	UnassignedAt *time.Time
	RegisteredAt time.Time
	IsCurrent    bool
}

// SyncRun is one durable record of a sync task or orchestration execution.
type SyncRun struct {
	ID            uuid.UUID
	Kind          RunKind
	Status        RunStatus
	RecordsSynced int64
	RecordsFailed int64
	ErrorMessage  *string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// Duration returns the run duration, using now for still-open runs.
func (r SyncRun) Duration(now time.Time) time.Duration {
	if r.CompletedAt != nil {
		return r.CompletedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Software is one software product/version as reported by the
// device-management source, keyed by its normalized grouping name.
type Software struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	Version        string
	Vendor         *string
}

// InstalledSoftware links a software record to a device.
type InstalledSoftware struct {
	Software    Software
	InstalledAt *time.Time
}
