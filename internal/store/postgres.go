package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsimmons122/employee-management/internal/db/sqlc"
)

// options holds configuration options for the database-backed store
type options struct {
	pool *pgxpool.Pool
}

// Option is a functional option for configuring the database-backed store
type Option func(*options) error

// WithConnectionPool configures the store with the given pgx pool. The
// caller is responsible for closing the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// pgStore implements the Store interface on Postgres via sqlc queries
type pgStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*pgStore)(nil)

// NewPostgres creates a new Postgres-backed store with the given options
func NewPostgres(opts ...Option) (Store, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	return &pgStore{pool: o.pool}, nil
}

func (s *pgStore) UpsertEmployee(ctx context.Context, emp Employee) (Employee, error) {
	row, err := sqlc.New(s.pool).UpsertEmployee(ctx, sqlc.UpsertEmployeeParams{
		ExternalID:        emp.ExternalID,
		DisplayName:       emp.DisplayName,
		Email:             emp.Email,
		ManagerExternalID: emp.ManagerExternalID,
		EmploymentStatus:  sqlc.EmploymentStatus(emp.EmploymentStatus),
		TerminationDate:   emp.TerminationDate,
		LastSignInAt:      emp.LastSignInAt,
		LastSyncedAt:      emp.LastSyncedAt,
	})
	if err != nil {
		return Employee{}, fmt.Errorf("failed to upsert employee %q: %w", emp.ExternalID, err)
	}
	return employeeFromRow(row), nil
}

func (s *pgStore) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	row, err := sqlc.New(s.pool).GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, wrapNotFound(err, "employee")
	}
	return employeeFromRow(row), nil
}

func (s *pgStore) GetEmployeeByExternalID(ctx context.Context, externalID string) (Employee, error) {
	row, err := sqlc.New(s.pool).GetEmployeeByExternalID(ctx, externalID)
	if err != nil {
		return Employee{}, wrapNotFound(err, "employee")
	}
	return employeeFromRow(row), nil
}

func (s *pgStore) ListEmployees(ctx context.Context, limit, offset int32) ([]Employee, error) {
	rows, err := sqlc.New(s.pool).ListEmployees(ctx, sqlc.ListEmployeesParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	employees := make([]Employee, len(rows))
	for i, row := range rows {
		employees[i] = employeeFromRow(row)
	}
	return employees, nil
}

func (s *pgStore) CreateDevice(ctx context.Context, dev Device) (Device, error) {
	row, err := sqlc.New(s.pool).InsertDevice(ctx, sqlc.InsertDeviceParams{
		DirectoryDeviceID:  dev.DirectoryDeviceID,
		ManagementDeviceID: dev.ManagementDeviceID,
		SerialNumber:       dev.SerialNumber,
		Name:               dev.Name,
		Manufacturer:       dev.Manufacturer,
		Model:              dev.Model,
		OsName:             dev.OSName,
		OsVersion:          dev.OSVersion,
		LastSeenAt:         dev.LastSeenAt,
		EmployeeID:         dev.EmployeeID,
		Managed:            dev.Managed,
		LastSyncedAt:       dev.LastSyncedAt,
	})
	if err != nil {
		return Device{}, fmt.Errorf("failed to insert device: %w", err)
	}
	return deviceFromRow(row), nil
}

func (s *pgStore) UpdateDevice(ctx context.Context, dev Device) (Device, error) {
	row, err := sqlc.New(s.pool).UpdateDevice(ctx, sqlc.UpdateDeviceParams{
		ID:                 dev.ID,
		DirectoryDeviceID:  dev.DirectoryDeviceID,
		ManagementDeviceID: dev.ManagementDeviceID,
		SerialNumber:       dev.SerialNumber,
		Name:               dev.Name,
		Manufacturer:       dev.Manufacturer,
		Model:              dev.Model,
		OsName:             dev.OSName,
		OsVersion:          dev.OSVersion,
		LastSeenAt:         dev.LastSeenAt,
		EmployeeID:         dev.EmployeeID,
		Managed:            dev.Managed,
		LastSyncedAt:       dev.LastSyncedAt,
	})
	if err != nil {
		return Device{}, wrapNotFound(err, "device")
	}
	return deviceFromRow(row), nil
}

func (s *pgStore) SetDeviceEmployee(ctx context.Context, deviceID uuid.UUID, employeeID *uuid.UUID) error {
	affected, err := sqlc.New(s.pool).SetDeviceEmployee(ctx, sqlc.SetDeviceEmployeeParams{
		ID:         deviceID,
		EmployeeID: employeeID,
	})
	if err != nil {
		return fmt.Errorf("failed to set device employee: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
	}
	return nil
}

func (s *pgStore) GetDevice(ctx context.Context, id uuid.UUID) (Device, error) {
	row, err := sqlc.New(s.pool).GetDevice(ctx, id)
	if err != nil {
		return Device{}, wrapNotFound(err, "device")
	}
	return deviceFromRow(row), nil
}

func (s *pgStore) GetDeviceByDirectoryID(ctx context.Context, directoryID string) (Device, error) {
	row, err := sqlc.New(s.pool).GetDeviceByDirectoryID(ctx, directoryID)
	if err != nil {
		return Device{}, wrapNotFound(err, "device")
	}
	return deviceFromRow(row), nil
}

func (s *pgStore) GetDeviceByManagementID(ctx context.Context, managementID string) (Device, error) {
	row, err := sqlc.New(s.pool).GetDeviceByManagementID(ctx, managementID)
	if err != nil {
		return Device{}, wrapNotFound(err, "device")
	}
	return deviceFromRow(row), nil
}

func (s *pgStore) ListDevices(ctx context.Context, limit, offset int32) ([]Device, error) {
	rows, err := sqlc.New(s.pool).ListDevices(ctx, sqlc.ListDevicesParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devicesFromRows(rows), nil
}

func (s *pgStore) ListDevicesBySerial(ctx context.Context, serial string) ([]Device, error) {
	rows, err := sqlc.New(s.pool).ListDevicesBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices by serial: %w", err)
	}
	return devicesFromRows(rows), nil
}

func (s *pgStore) ListDevicesWithoutDirectoryID(ctx context.Context) ([]Device, error) {
	rows, err := sqlc.New(s.pool).ListDevicesWithoutDirectoryID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices without directory ID: %w", err)
	}
	return devicesFromRows(rows), nil
}

func (s *pgStore) ListDevicesWithoutManagementID(ctx context.Context) ([]Device, error) {
	rows, err := sqlc.New(s.pool).ListDevicesWithoutManagementID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices without management ID: %w", err)
	}
	return devicesFromRows(rows), nil
}

func (s *pgStore) ListAssignedDirectoryDevices(ctx context.Context) ([]Device, error) {
	rows, err := sqlc.New(s.pool).ListAssignedDirectoryDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned directory devices: %w", err)
	}
	return devicesFromRows(rows), nil
}

func (s *pgStore) OpenAssignment(
	ctx context.Context,
	deviceID, employeeID uuid.UUID,
	registeredAt time.Time,
) (AssignmentEntry, error) {
	row, err := sqlc.New(s.pool).InsertAssignment(ctx, sqlc.InsertAssignmentParams{
		DeviceID:     deviceID,
		EmployeeID:   employeeID,
		AssignedAt:   time.Now().UTC(),
		RegisteredAt: registeredAt,
		IsCurrent:    true,
	})
	if err != nil {
		return AssignmentEntry{}, fmt.Errorf("failed to open assignment: %w", err)
	}
	return assignmentFromRow(row), nil
}

func (s *pgStore) RecordAssignment(ctx context.Context, entry AssignmentEntry) (AssignmentEntry, error) {
	row, err := sqlc.New(s.pool).InsertAssignment(ctx, sqlc.InsertAssignmentParams{
		DeviceID:     entry.DeviceID,
		EmployeeID:   entry.EmployeeID,
		AssignedAt:   entry.AssignedAt,
		UnassignedAt: entry.UnassignedAt,
		RegisteredAt: entry.RegisteredAt,
		IsCurrent:    entry.IsCurrent,
	})
	if err != nil {
		return AssignmentEntry{}, fmt.Errorf("failed to record assignment: %w", err)
	}
	return assignmentFromRow(row), nil
}

func (s *pgStore) CloseCurrentAssignment(ctx context.Context, deviceID uuid.UUID, at time.Time) (bool, error) {
	affected, err := sqlc.New(s.pool).CloseCurrentAssignment(ctx, sqlc.CloseCurrentAssignmentParams{
		DeviceID:     deviceID,
		UnassignedAt: &at,
	})
	if err != nil {
		return false, fmt.Errorf("failed to close current assignment: %w", err)
	}
	return affected > 0, nil
}

func (s *pgStore) GetCurrentAssignment(ctx context.Context, deviceID uuid.UUID) (AssignmentEntry, error) {
	row, err := sqlc.New(s.pool).GetCurrentAssignment(ctx, deviceID)
	if err != nil {
		return AssignmentEntry{}, wrapNotFound(err, "assignment")
	}
	return assignmentFromRow(row), nil
}

func (s *pgStore) HasAssignmentPair(ctx context.Context, deviceID, employeeID uuid.UUID) (bool, error) {
	exists, err := sqlc.New(s.pool).AssignmentPairExists(ctx, sqlc.AssignmentPairExistsParams{
		DeviceID:   deviceID,
		EmployeeID: employeeID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check assignment pair: %w", err)
	}
	return exists, nil
}

func (s *pgStore) ListAssignmentsForDevice(ctx context.Context, deviceID uuid.UUID) ([]AssignmentEntry, error) {
	rows, err := sqlc.New(s.pool).ListAssignmentsForDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	entries := make([]AssignmentEntry, len(rows))
	for i, row := range rows {
		entries[i] = assignmentFromRow(row)
	}
	return entries, nil
}

func (s *pgStore) CreateSyncRun(ctx context.Context, kind RunKind) (SyncRun, error) {
	row, err := sqlc.New(s.pool).InsertSyncRun(ctx, sqlc.InsertSyncRunParams{
		Kind:      sqlc.SyncRunKind(kind),
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		return SyncRun{}, fmt.Errorf("failed to create sync run: %w", err)
	}
	return syncRunFromRow(row), nil
}

func (s *pgStore) GetSyncRun(ctx context.Context, id uuid.UUID) (SyncRun, error) {
	row, err := sqlc.New(s.pool).GetSyncRun(ctx, id)
	if err != nil {
		return SyncRun{}, wrapNotFound(err, "sync run")
	}
	return syncRunFromRow(row), nil
}

func (s *pgStore) CloseSyncRun(ctx context.Context, id uuid.UUID, params CloseRunParams) error {
	completedAt := params.CompletedAt
	affected, err := sqlc.New(s.pool).CloseSyncRun(ctx, sqlc.CloseSyncRunParams{
		ID:            id,
		Status:        sqlc.SyncRunStatus(params.Status),
		RecordsSynced: params.RecordsSynced,
		RecordsFailed: params.RecordsFailed,
		ErrorMessage:  params.ErrorMessage,
		CompletedAt:   &completedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to close sync run: %w", err)
	}
	if affected == 0 {
		// Either the run does not exist or it was closed already.
		if _, err := s.GetSyncRun(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("sync run %s: %w", id, ErrAlreadyClosed)
	}
	return nil
}

func (s *pgStore) CloseSyncRunMinimal(ctx context.Context, id uuid.UUID, status RunStatus, at time.Time) error {
	affected, err := sqlc.New(s.pool).CloseSyncRunMinimal(ctx, sqlc.CloseSyncRunMinimalParams{
		ID:          id,
		Status:      sqlc.SyncRunStatus(status),
		CompletedAt: &at,
	})
	if err != nil {
		return fmt.Errorf("failed to close sync run (minimal): %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sync run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *pgStore) ListSyncRuns(ctx context.Context, limit int32) ([]SyncRun, error) {
	rows, err := sqlc.New(s.pool).ListSyncRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	runs := make([]SyncRun, len(rows))
	for i, row := range rows {
		runs[i] = syncRunFromRow(row)
	}
	return runs, nil
}

func (s *pgStore) UpsertSoftware(ctx context.Context, sw Software) (Software, error) {
	row, err := sqlc.New(s.pool).UpsertSoftware(ctx, sqlc.UpsertSoftwareParams{
		Name:           sw.Name,
		NormalizedName: sw.NormalizedName,
		Version:        sw.Version,
		Vendor:         sw.Vendor,
	})
	if err != nil {
		return Software{}, fmt.Errorf("failed to upsert software %q: %w", sw.Name, err)
	}
	return softwareFromRow(row), nil
}

// ReplaceDeviceSoftware swaps the installed software set for a device inside
// a single transaction so readers never observe a half-replaced inventory.
func (s *pgStore) ReplaceDeviceSoftware(ctx context.Context, deviceID uuid.UUID, installed []InstalledSoftware) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	querier := sqlc.New(s.pool).WithTx(tx)
	if err := querier.DeleteDeviceSoftware(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to clear device software: %w", err)
	}
	for _, item := range installed {
		row, err := querier.UpsertSoftware(ctx, sqlc.UpsertSoftwareParams{
			Name:           item.Software.Name,
			NormalizedName: item.Software.NormalizedName,
			Version:        item.Software.Version,
			Vendor:         item.Software.Vendor,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert software %q: %w", item.Software.Name, err)
		}
		if err := querier.InsertDeviceSoftware(ctx, sqlc.InsertDeviceSoftwareParams{
			DeviceID:    deviceID,
			SoftwareID:  row.ID,
			InstalledAt: item.InstalledAt,
		}); err != nil {
			return fmt.Errorf("failed to link software %q: %w", item.Software.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit device software: %w", err)
	}
	return nil
}

func (s *pgStore) ListSoftwareForDevice(ctx context.Context, deviceID uuid.UUID) ([]InstalledSoftware, error) {
	rows, err := sqlc.New(s.pool).ListSoftwareForDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list software: %w", err)
	}
	installed := make([]InstalledSoftware, len(rows))
	for i, row := range rows {
		installed[i] = InstalledSoftware{
			Software: Software{
				ID:             row.ID,
				Name:           row.Name,
				NormalizedName: row.NormalizedName,
				Version:        row.Version,
				Vendor:         row.Vendor,
			},
			InstalledAt: row.InstalledAt,
		}
	}
	return installed, nil
}

func wrapNotFound(err error, kind string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}

func employeeFromRow(row sqlc.Employee) Employee {
	return Employee{
		ID:                row.ID,
		ExternalID:        row.ExternalID,
		DisplayName:       row.DisplayName,
		Email:             row.Email,
		ManagerExternalID: row.ManagerExternalID,
		EmploymentStatus:  EmploymentStatus(row.EmploymentStatus),
		TerminationDate:   row.TerminationDate,
		LastSignInAt:      row.LastSignInAt,
		LastSyncedAt:      row.LastSyncedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func deviceFromRow(row sqlc.Device) Device {
	return Device{
		ID:                 row.ID,
		DirectoryDeviceID:  row.DirectoryDeviceID,
		ManagementDeviceID: row.ManagementDeviceID,
		SerialNumber:       row.SerialNumber,
		Name:               row.Name,
		Manufacturer:       row.Manufacturer,
		Model:              row.Model,
		OSName:             row.OsName,
		OSVersion:          row.OsVersion,
		LastSeenAt:         row.LastSeenAt,
		EmployeeID:         row.EmployeeID,
		Managed:            row.Managed,
		LastSyncedAt:       row.LastSyncedAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func devicesFromRows(rows []sqlc.Device) []Device {
	devices := make([]Device, len(rows))
	for i, row := range rows {
		devices[i] = deviceFromRow(row)
	}
	return devices
}

func assignmentFromRow(row sqlc.AssignmentHistory) AssignmentEntry {
	return AssignmentEntry{
		ID:           row.ID,
		DeviceID:     row.DeviceID,
		EmployeeID:   row.EmployeeID,
		AssignedAt:   row.AssignedAt,
		UnassignedAt: row.UnassignedAt,
		RegisteredAt: row.RegisteredAt,
		IsCurrent:    row.IsCurrent,
	}
}

func softwareFromRow(row sqlc.Software) Software {
	return Software{
		ID:             row.ID,
		Name:           row.Name,
		NormalizedName: row.NormalizedName,
		Version:        row.Version,
		Vendor:         row.Vendor,
	}
}

func syncRunFromRow(row sqlc.SyncRun) SyncRun {
	return SyncRun{
		ID:            row.ID,
		Kind:          RunKind(row.Kind),
		Status:        RunStatus(row.Status),
		RecordsSynced: row.RecordsSynced,
		RecordsFailed: row.RecordsFailed,
		ErrorMessage:  row.ErrorMessage,
		StartedAt:     row.StartedAt,
		CompletedAt:   row.CompletedAt,
	}
}
