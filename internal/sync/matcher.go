package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dsimmons122/employee-management/internal/normalize"
	"github.com/dsimmons122/employee-management/internal/store"
)

// Source identifies which external system produced an observation.
type Source string

const (
	// SourceDirectory marks observations from the identity directory
	SourceDirectory Source = "directory"

	// SourceManagement marks observations from the device-management service
	SourceManagement Source = "management"
)

// Observation is one reported sighting of a device from a source.
type Observation struct {
	// ExternalID is the id the calling source uses for this device
	ExternalID string

	// Serial is the normalized hardware serial, empty when unknown
	Serial string

	// DisplayName is the raw device name as the source reports it
	DisplayName string
}

// Matcher decides which existing device record an observation identifies.
// Rules apply in strict priority order, first hit wins:
//
//  1. Exact match on the calling source's external id.
//  2. Normalized serial match against any device, excluding devices already
//     bound to a different external id of the same source.
//  3. Fuzzy name match, only against devices that do not yet carry the
//     calling source's external id.
//
// Id-match dominates serial-match dominates name-match because serials are
// the most reliable cross-source join key while display names are sometimes
// truncated or reused.
type Matcher struct {
	store store.Store
}

// NewMatcher creates a Matcher over the given store
func NewMatcher(s store.Store) *Matcher {
	return &Matcher{store: s}
}

// Resolve returns the existing device the observation identifies, or nil
// when no existing record matches and a new one should be created.
func (m *Matcher) Resolve(ctx context.Context, src Source, obs Observation) (*store.Device, error) {
	// Rule 1: the source's own external id.
	dev, err := m.getBySourceID(ctx, src, obs.ExternalID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		return &dev, nil
	}

	// Rule 2: normalized serial across both sources.
	if obs.Serial != "" {
		candidates, err := m.store.ListDevicesBySerial(ctx, obs.Serial)
		if err != nil {
			return nil, fmt.Errorf("failed to match by serial: %w", err)
		}
		eligible := make([]store.Device, 0, len(candidates))
		for _, c := range candidates {
			// A device already bound to a different id of the calling
			// source is a different physical machine.
			if id := sourceID(src, c); id != nil && *id != obs.ExternalID {
				continue
			}
			eligible = append(eligible, c)
		}
		if best := pickBest(eligible); best != nil {
			return best, nil
		}
	}

	// Rule 3: fuzzy name, only against devices the calling source has not
	// claimed yet.
	unclaimed, err := m.listWithoutSourceID(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to match by name: %w", err)
	}
	eligible := make([]store.Device, 0)
	for _, c := range unclaimed {
		if normalize.NamesMatch(obs.DisplayName, c.Name) {
			eligible = append(eligible, c)
		}
	}
	best := pickBest(eligible)
	if best != nil && obs.Serial != "" && best.SerialNumber != "" && best.SerialNumber != obs.Serial {
		// Name-based matches are kept even when serials disagree; some
		// fleets do not follow the naming convention the serial was
		// extracted from. Log it so the discrepancy is visible.
		slog.WarnContext(ctx, "name-matched device has conflicting serial",
			"device_id", best.ID,
			"stored_serial", best.SerialNumber,
			"observed_serial", obs.Serial,
			"source", src)
	}
	return best, nil
}

func (m *Matcher) getBySourceID(ctx context.Context, src Source, externalID string) (store.Device, error) {
	if externalID == "" {
		return store.Device{}, store.ErrNotFound
	}
	if src == SourceDirectory {
		return m.store.GetDeviceByDirectoryID(ctx, externalID)
	}
	return m.store.GetDeviceByManagementID(ctx, externalID)
}

func (m *Matcher) listWithoutSourceID(ctx context.Context, src Source) ([]store.Device, error) {
	if src == SourceDirectory {
		return m.store.ListDevicesWithoutDirectoryID(ctx)
	}
	return m.store.ListDevicesWithoutManagementID(ctx)
}

func sourceID(src Source, dev store.Device) *string {
	if src == SourceDirectory {
		return dev.DirectoryDeviceID
	}
	return dev.ManagementDeviceID
}

// pickBest applies the tie-break for non-exact-id rules: a device known to
// both sources beats a source-only one, then the most recently synced wins.
func pickBest(candidates []store.Device) *store.Device {
	var best *store.Device
	for i := range candidates {
		c := &candidates[i]
		if best == nil || better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *store.Device) bool {
	aBoth := a.DirectoryDeviceID != nil && a.ManagementDeviceID != nil
	bBoth := b.DirectoryDeviceID != nil && b.ManagementDeviceID != nil
	if aBoth != bBoth {
		return aBoth
	}
	if a.LastSyncedAt == nil {
		return false
	}
	if b.LastSyncedAt == nil {
		return true
	}
	return a.LastSyncedAt.After(*b.LastSyncedAt)
}
