package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dsimmons122/employee-management/internal/devicemgmt"
	"github.com/dsimmons122/employee-management/internal/normalize"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/telemetry"
)

// defaultBatchWorkers bounds per-device parallelism within one pass
const defaultBatchWorkers = 10

// DeviceTask syncs managed hardware from the device-management service.
// It enriches device rows with hardware detail and software inventory but
// never writes employee_id: ownership is directory-owned, and this task
// only carries forward whatever value the resolved record already has.
type DeviceTask struct {
	store   store.Store
	client  devicemgmt.Client
	matcher *Matcher
	metrics *telemetry.SyncMetrics
	workers int

	// softwareWG tracks fire-and-forget software syncs so shutdown can
	// drain them; device completion never waits on it.
	softwareWG sync.WaitGroup
}

var _ Task = (*DeviceTask)(nil)

// NewDeviceTask creates a device-management sync task. workers bounds the
// per-device parallelism; zero or negative selects the default.
func NewDeviceTask(s store.Store, client devicemgmt.Client, metrics *telemetry.SyncMetrics, workers int) *DeviceTask {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	return &DeviceTask{
		store:   s,
		client:  client,
		matcher: NewMatcher(s),
		metrics: metrics,
		workers: workers,
	}
}

// Kind returns the run kind this task records
func (*DeviceTask) Kind() store.RunKind {
	return store.RunKindDevices
}

// Run executes a full device-management pass and returns the closed run record.
func (t *DeviceTask) Run(ctx context.Context, onStart func(uuid.UUID)) (store.SyncRun, error) {
	run, err := t.store.CreateSyncRun(ctx, store.RunKindDevices)
	if err != nil {
		return store.SyncRun{}, fmt.Errorf("failed to create device sync run: %w", err)
	}
	if onStart != nil {
		onStart(run.ID)
	}
	t.metrics.RunStarted(ctx, string(store.RunKindDevices))
	defer t.metrics.RunFinished(ctx, string(store.RunKindDevices))

	slog.InfoContext(ctx, "device sync started", "run_id", run.ID)

	res := &result{}
	taskErr := t.execute(ctx, res)

	final, closeErr := closeTaskRun(ctx, t.store, run, res, taskErr)
	if closeErr != nil {
		return store.SyncRun{}, closeErr
	}
	t.metrics.RecordRun(ctx, string(final.Kind), string(final.Status),
		final.Duration(time.Now().UTC()), final.RecordsSynced, final.RecordsFailed)

	slog.InfoContext(ctx, "device sync finished",
		"run_id", final.ID,
		"status", final.Status,
		"records_synced", final.RecordsSynced,
		"records_failed", final.RecordsFailed)
	return final, taskErr
}

// DrainSoftware blocks until in-flight software inventory syncs finish.
// Intended for graceful shutdown and tests, never for the sync path itself.
func (t *DeviceTask) DrainSoftware() {
	t.softwareWG.Wait()
}

func (t *DeviceTask) execute(ctx context.Context, res *result) error {
	observations, err := t.client.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("device management unreachable: %w", err)
	}

	now := time.Now().UTC()

	// Entity failures are recorded in res, never returned: a worker error
	// must not cancel the rest of the batch.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for _, observation := range observations {
		g.Go(func() error {
			if err := t.syncDevice(gctx, observation, now); err != nil {
				res.fail(fmt.Errorf("device %s: %w", observation.ID, err))
				return nil
			}
			res.ok()
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (t *DeviceTask) syncDevice(ctx context.Context, observation devicemgmt.DeviceObservation, now time.Time) error {
	// Display names from this source are often truncated; the hardware
	// detail's serial is the reliable identity signal.
	detail, err := t.client.GetDeviceDetail(ctx, observation.ID)
	if err != nil {
		return fmt.Errorf("failed to get detail: %w", err)
	}

	serial := normalize.Serial(detail.Hardware.SerialNumber)
	if serial == "" {
		serial = normalize.Serial(observation.SerialNumber)
	}
	name := detail.Name
	if name == "" {
		name = observation.Name
	}

	existing, err := t.matcher.Resolve(ctx, SourceManagement, Observation{
		ExternalID:  observation.ID,
		Serial:      serial,
		DisplayName: name,
	})
	if err != nil {
		return err
	}

	var dev store.Device
	if existing == nil {
		dev, err = t.createDevice(ctx, observation, detail, serial, name, now)
	} else {
		dev, err = t.enrichDevice(ctx, *existing, observation, detail, serial, now)
	}
	if err != nil {
		return err
	}

	// Software inventory is large and not needed for the pass to succeed;
	// sync it in the background on a context that outlives this batch.
	t.softwareWG.Add(1)
	go t.syncSoftware(context.WithoutCancel(ctx), dev.ID, observation.ID)

	return nil
}

func (t *DeviceTask) createDevice(
	ctx context.Context,
	observation devicemgmt.DeviceObservation,
	detail devicemgmt.DeviceDetail,
	serial, name string,
	now time.Time,
) (store.Device, error) {
	dev := store.Device{
		ManagementDeviceID: &observation.ID,
		SerialNumber:       serial,
		Name:               name,
		Managed:            true,
		LastSyncedAt:       &now,
	}
	applyHardware(&dev, observation, detail)

	created, err := t.store.CreateDevice(ctx, dev)
	if err == nil {
		return created, nil
	}

	// A parallel worker may have created the row first; the unique
	// constraint serializes the race, so retry as an update.
	raced, lookupErr := t.store.GetDeviceByManagementID(ctx, observation.ID)
	if errors.Is(lookupErr, store.ErrNotFound) {
		return store.Device{}, err
	}
	if lookupErr != nil {
		return store.Device{}, lookupErr
	}
	return t.enrichDevice(ctx, raced, observation, detail, serial, now)
}

// enrichDevice updates hardware fields on an existing row. employee_id is
// left exactly as loaded.
func (t *DeviceTask) enrichDevice(
	ctx context.Context,
	dev store.Device,
	observation devicemgmt.DeviceObservation,
	detail devicemgmt.DeviceDetail,
	serial string,
	now time.Time,
) (store.Device, error) {
	dev.ManagementDeviceID = &observation.ID
	if serial != "" {
		dev.SerialNumber = serial
	}
	if dev.Name == "" {
		dev.Name = detail.Name
	}
	dev.Managed = true
	dev.LastSyncedAt = &now
	applyHardware(&dev, observation, detail)

	return t.store.UpdateDevice(ctx, dev)
}

func applyHardware(dev *store.Device, observation devicemgmt.DeviceObservation, detail devicemgmt.DeviceDetail) {
	setIfPresent(&dev.Manufacturer, detail.Hardware.Manufacturer, observation.Manufacturer)
	setIfPresent(&dev.Model, detail.Hardware.Model, observation.Model)
	setIfPresent(&dev.OSName, detail.OSName, observation.OSName)
	setIfPresent(&dev.OSVersion, detail.OSVersion, observation.OSVersion)
	if detail.LastSeenAt != nil {
		dev.LastSeenAt = detail.LastSeenAt
	} else if observation.LastSeenAt != nil {
		dev.LastSeenAt = observation.LastSeenAt
	}
}

func setIfPresent(dst **string, values ...string) {
	for _, v := range values {
		if v != "" {
			*dst = &v
			return
		}
	}
}
