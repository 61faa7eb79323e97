// Package inmemory provides an in-memory implementation of the Store
// interface. It backs unit tests for the sync engine and the API layer,
// where spinning up Postgres would add nothing to what the test checks.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/store"
)

// memStore implements the Store interface with map-backed tables
type memStore struct {
	mu sync.RWMutex

	employees   map[uuid.UUID]store.Employee
	devices     map[uuid.UUID]store.Device
	assignments map[uuid.UUID]store.AssignmentEntry
	syncRuns    map[uuid.UUID]store.SyncRun
	software    map[uuid.UUID]store.Software
	installed   map[uuid.UUID][]store.InstalledSoftware // keyed by device ID
}

var _ store.Store = (*memStore)(nil)

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		employees:   make(map[uuid.UUID]store.Employee),
		devices:     make(map[uuid.UUID]store.Device),
		assignments: make(map[uuid.UUID]store.AssignmentEntry),
		syncRuns:    make(map[uuid.UUID]store.SyncRun),
		software:    make(map[uuid.UUID]store.Software),
		installed:   make(map[uuid.UUID][]store.InstalledSoftware),
	}
}

func (m *memStore) UpsertEmployee(_ context.Context, emp store.Employee) (store.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range m.employees {
		if existing.ExternalID == emp.ExternalID {
			emp.ID = id
			emp.CreatedAt = existing.CreatedAt
			emp.UpdatedAt = now
			m.employees[id] = emp
			return emp, nil
		}
	}
	emp.ID = uuid.New()
	emp.CreatedAt = now
	emp.UpdatedAt = now
	m.employees[emp.ID] = emp
	return emp, nil
}

func (m *memStore) GetEmployee(_ context.Context, id uuid.UUID) (store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return store.Employee{}, fmt.Errorf("employee: %w", store.ErrNotFound)
	}
	return emp, nil
}

func (m *memStore) GetEmployeeByExternalID(_ context.Context, externalID string) (store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, emp := range m.employees {
		if emp.ExternalID == externalID {
			return emp, nil
		}
	}
	return store.Employee{}, fmt.Errorf("employee: %w", store.ErrNotFound)
}

func (m *memStore) ListEmployees(_ context.Context, limit, offset int32) ([]store.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]store.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		all = append(all, emp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ExternalID < all[j].ExternalID })
	return page(all, limit, offset), nil
}

func (m *memStore) CreateDevice(_ context.Context, dev store.Device) (store.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The schema declares both external ids unique; enforce that here so
	// callers exercise the same create-then-update race handling they
	// need against Postgres.
	for _, existing := range m.devices {
		if dev.DirectoryDeviceID != nil && existing.DirectoryDeviceID != nil &&
			*dev.DirectoryDeviceID == *existing.DirectoryDeviceID {
			return store.Device{}, fmt.Errorf("device with directory id %q already exists", *dev.DirectoryDeviceID)
		}
		if dev.ManagementDeviceID != nil && existing.ManagementDeviceID != nil &&
			*dev.ManagementDeviceID == *existing.ManagementDeviceID {
			return store.Device{}, fmt.Errorf("device with management id %q already exists", *dev.ManagementDeviceID)
		}
	}

	now := time.Now().UTC()
	dev.ID = uuid.New()
	dev.CreatedAt = now
	dev.UpdatedAt = now
	m.devices[dev.ID] = dev
	return dev, nil
}

func (m *memStore) UpdateDevice(_ context.Context, dev store.Device) (store.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.devices[dev.ID]
	if !ok {
		return store.Device{}, fmt.Errorf("device: %w", store.ErrNotFound)
	}
	dev.CreatedAt = existing.CreatedAt
	dev.UpdatedAt = time.Now().UTC()
	m.devices[dev.ID] = dev
	return dev, nil
}

func (m *memStore) SetDeviceEmployee(_ context.Context, deviceID uuid.UUID, employeeID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dev, ok := m.devices[deviceID]
	if !ok {
		return fmt.Errorf("device %s: %w", deviceID, store.ErrNotFound)
	}
	dev.EmployeeID = employeeID
	dev.UpdatedAt = time.Now().UTC()
	m.devices[deviceID] = dev
	return nil
}

func (m *memStore) GetDevice(_ context.Context, id uuid.UUID) (store.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dev, ok := m.devices[id]
	if !ok {
		return store.Device{}, fmt.Errorf("device: %w", store.ErrNotFound)
	}
	return dev, nil
}

func (m *memStore) GetDeviceByDirectoryID(_ context.Context, directoryID string) (store.Device, error) {
	return m.findDevice(func(d store.Device) bool {
		return d.DirectoryDeviceID != nil && *d.DirectoryDeviceID == directoryID
	})
}

func (m *memStore) GetDeviceByManagementID(_ context.Context, managementID string) (store.Device, error) {
	return m.findDevice(func(d store.Device) bool {
		return d.ManagementDeviceID != nil && *d.ManagementDeviceID == managementID
	})
}

func (m *memStore) ListDevices(_ context.Context, limit, offset int32) ([]store.Device, error) {
	return page(m.filterDevices(func(store.Device) bool { return true }), limit, offset), nil
}

func (m *memStore) ListDevicesBySerial(_ context.Context, serial string) ([]store.Device, error) {
	return m.filterDevices(func(d store.Device) bool {
		return d.SerialNumber != "" && d.SerialNumber == serial
	}), nil
}

func (m *memStore) ListDevicesWithoutDirectoryID(_ context.Context) ([]store.Device, error) {
	return m.filterDevices(func(d store.Device) bool { return d.DirectoryDeviceID == nil }), nil
}

func (m *memStore) ListDevicesWithoutManagementID(_ context.Context) ([]store.Device, error) {
	return m.filterDevices(func(d store.Device) bool { return d.ManagementDeviceID == nil }), nil
}

func (m *memStore) ListAssignedDirectoryDevices(_ context.Context) ([]store.Device, error) {
	return m.filterDevices(func(d store.Device) bool {
		return d.EmployeeID != nil && d.DirectoryDeviceID != nil
	}), nil
}

func (m *memStore) OpenAssignment(
	_ context.Context,
	deviceID, employeeID uuid.UUID,
	registeredAt time.Time,
) (store.AssignmentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.assignments {
		if entry.DeviceID == deviceID && entry.IsCurrent {
			return store.AssignmentEntry{}, fmt.Errorf("device %s already has a current assignment", deviceID)
		}
	}
	entry := store.AssignmentEntry{
		ID:           uuid.New(),
		DeviceID:     deviceID,
		EmployeeID:   employeeID,
		AssignedAt:   time.Now().UTC(),
		RegisteredAt: registeredAt,
		IsCurrent:    true,
	}
	m.assignments[entry.ID] = entry
	return entry, nil
}

func (m *memStore) RecordAssignment(_ context.Context, entry store.AssignmentEntry) (store.AssignmentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uuid.New()
	m.assignments[entry.ID] = entry
	return entry, nil
}

func (m *memStore) CloseCurrentAssignment(_ context.Context, deviceID uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed := false
	for id, entry := range m.assignments {
		if entry.DeviceID == deviceID && entry.IsCurrent {
			entry.IsCurrent = false
			entry.UnassignedAt = &at
			m.assignments[id] = entry
			closed = true
		}
	}
	return closed, nil
}

func (m *memStore) GetCurrentAssignment(_ context.Context, deviceID uuid.UUID) (store.AssignmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, entry := range m.assignments {
		if entry.DeviceID == deviceID && entry.IsCurrent {
			return entry, nil
		}
	}
	return store.AssignmentEntry{}, fmt.Errorf("assignment: %w", store.ErrNotFound)
}

func (m *memStore) HasAssignmentPair(_ context.Context, deviceID, employeeID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, entry := range m.assignments {
		if entry.DeviceID == deviceID && entry.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListAssignmentsForDevice(_ context.Context, deviceID uuid.UUID) ([]store.AssignmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []store.AssignmentEntry
	for _, entry := range m.assignments {
		if entry.DeviceID == deviceID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AssignedAt.Before(entries[j].AssignedAt)
	})
	return entries, nil
}

func (m *memStore) CreateSyncRun(_ context.Context, kind store.RunKind) (store.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run := store.SyncRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    store.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	m.syncRuns[run.ID] = run
	return run, nil
}

func (m *memStore) GetSyncRun(_ context.Context, id uuid.UUID) (store.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.syncRuns[id]
	if !ok {
		return store.SyncRun{}, fmt.Errorf("sync run: %w", store.ErrNotFound)
	}
	return run, nil
}

func (m *memStore) CloseSyncRun(_ context.Context, id uuid.UUID, params store.CloseRunParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.syncRuns[id]
	if !ok {
		return fmt.Errorf("sync run: %w", store.ErrNotFound)
	}
	if run.CompletedAt != nil {
		return fmt.Errorf("sync run %s: %w", id, store.ErrAlreadyClosed)
	}
	run.Status = params.Status
	run.RecordsSynced = params.RecordsSynced
	run.RecordsFailed = params.RecordsFailed
	run.ErrorMessage = params.ErrorMessage
	completedAt := params.CompletedAt
	run.CompletedAt = &completedAt
	m.syncRuns[id] = run
	return nil
}

func (m *memStore) CloseSyncRunMinimal(_ context.Context, id uuid.UUID, status store.RunStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.syncRuns[id]
	if !ok {
		return fmt.Errorf("sync run: %w", store.ErrNotFound)
	}
	if run.CompletedAt != nil {
		return nil
	}
	run.Status = status
	run.CompletedAt = &at
	m.syncRuns[id] = run
	return nil
}

func (m *memStore) ListSyncRuns(_ context.Context, limit int32) ([]store.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]store.SyncRun, 0, len(m.syncRuns))
	for _, run := range m.syncRuns {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && int(limit) < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *memStore) UpsertSoftware(_ context.Context, sw store.Software) (store.Software, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.upsertSoftwareLocked(sw), nil
}

func (m *memStore) ReplaceDeviceSoftware(
	_ context.Context,
	deviceID uuid.UUID,
	installed []store.InstalledSoftware,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replacement := make([]store.InstalledSoftware, len(installed))
	for i, item := range installed {
		item.Software = m.upsertSoftwareLocked(item.Software)
		replacement[i] = item
	}
	m.installed[deviceID] = replacement
	return nil
}

func (m *memStore) ListSoftwareForDevice(_ context.Context, deviceID uuid.UUID) ([]store.InstalledSoftware, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	installed := make([]store.InstalledSoftware, len(m.installed[deviceID]))
	copy(installed, m.installed[deviceID])
	sort.Slice(installed, func(i, j int) bool {
		if installed[i].Software.NormalizedName != installed[j].Software.NormalizedName {
			return installed[i].Software.NormalizedName < installed[j].Software.NormalizedName
		}
		return installed[i].Software.Version < installed[j].Software.Version
	})
	return installed, nil
}

// upsertSoftwareLocked requires m.mu held for writing.
func (m *memStore) upsertSoftwareLocked(sw store.Software) store.Software {
	for id, existing := range m.software {
		if existing.NormalizedName == sw.NormalizedName && existing.Version == sw.Version {
			sw.ID = id
			m.software[id] = sw
			return sw
		}
	}
	sw.ID = uuid.New()
	m.software[sw.ID] = sw
	return sw
}

func (m *memStore) findDevice(match func(store.Device) bool) (store.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, dev := range m.devices {
		if match(dev) {
			return dev, nil
		}
	}
	return store.Device{}, fmt.Errorf("device: %w", store.ErrNotFound)
}

func (m *memStore) filterDevices(match func(store.Device) bool) []store.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var devices []store.Device
	for _, dev := range m.devices {
		if match(dev) {
			devices = append(devices, dev)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.Before(devices[j].CreatedAt)
	})
	return devices
}

func page[T any](items []T, limit, offset int32) []T {
	if int(offset) >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}
