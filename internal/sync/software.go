package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dsimmons122/employee-management/internal/normalize"
	"github.com/dsimmons122/employee-management/internal/store"
)

// syncSoftware replaces the stored software inventory for one device with
// what the management service currently reports. Failures are logged only;
// inventory is enrichment and must never fail the device pass.
func (t *DeviceTask) syncSoftware(ctx context.Context, deviceID uuid.UUID, managementID string) {
	defer t.softwareWG.Done()

	items, err := t.client.ListInstalledSoftware(ctx, managementID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch software inventory",
			"device_id", deviceID, "error", err)
		return
	}

	installed := make([]store.InstalledSoftware, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		sw := store.Software{
			Name:           item.Name,
			NormalizedName: normalize.SoftwareName(item.Name),
			Version:        item.Version,
		}
		if item.Vendor != "" {
			vendor := item.Vendor
			sw.Vendor = &vendor
		}
		installed = append(installed, store.InstalledSoftware{
			Software:    sw,
			InstalledAt: item.InstalledAt,
		})
	}

	if err := t.store.ReplaceDeviceSoftware(ctx, deviceID, installed); err != nil {
		slog.WarnContext(ctx, "failed to store software inventory",
			"device_id", deviceID, "error", err)
		return
	}
	slog.DebugContext(ctx, "software inventory synced",
		"device_id", deviceID, "items", len(installed))
}
