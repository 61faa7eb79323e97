// Package devicemgmt provides a client for the device-management API, the
// source of managed hardware observations and installed software inventory.
package devicemgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dsimmons122/employee-management/internal/httpclient"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

const pageSize = 200

// DeviceObservation is one managed device as seen in a bulk listing.
// SerialNumber is frequently absent here; the detail endpoint is the
// reliable place to read it.
type DeviceObservation struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SerialNumber string     `json:"serial_number,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Model        string     `json:"model,omitempty"`
	OSName       string     `json:"os_name,omitempty"`
	OSVersion    string     `json:"os_version,omitempty"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// HardwareInfo carries the hardware identity block of a device detail.
type HardwareInfo struct {
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
}

// DeviceDetail is the full record for one managed device.
type DeviceDetail struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Hardware   HardwareInfo `json:"hardware"`
	OSName     string       `json:"os_name,omitempty"`
	OSVersion  string       `json:"os_version,omitempty"`
	LastSeenAt *time.Time   `json:"last_seen_at,omitempty"`
}

// SoftwareItem is one installed software entry reported for a device.
type SoftwareItem struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Vendor      string     `json:"vendor,omitempty"`
	InstalledAt *time.Time `json:"installed_at,omitempty"`
}

// Client is the interface for device-management API operations
type Client interface {
	// ListDevices returns every managed device, walking all pages.
	ListDevices(ctx context.Context) ([]DeviceObservation, error)

	// GetDeviceDetail returns the full record for one device, including
	// the authoritative hardware serial.
	GetDeviceDetail(ctx context.Context, deviceID string) (DeviceDetail, error)

	// ListInstalledSoftware returns the software inventory for one device.
	ListInstalledSoftware(ctx context.Context, deviceID string) ([]SoftwareItem, error)
}

type devicePage struct {
	Items      []DeviceObservation `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

type softwarePage struct {
	Items []SoftwareItem `json:"items"`
}

type apiClient struct {
	http     httpclient.Client
	endpoint string
}

var _ Client = (*apiClient)(nil)

// NewClient creates a device-management API client against the given endpoint
func NewClient(http httpclient.Client, endpoint string) Client {
	return &apiClient{
		http:     http,
		endpoint: endpoint,
	}
}

func (c *apiClient) ListDevices(ctx context.Context) ([]DeviceObservation, error) {
	var devices []DeviceObservation
	cursor := ""
	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprintf("%d", pageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := c.http.Get(ctx, fmt.Sprintf("%s/v1/devices?%s", c.endpoint, query.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to list devices: %w", err)
		}

		var page devicePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode device page: %w", err)
		}
		devices = append(devices, page.Items...)

		if page.NextCursor == "" {
			return devices, nil
		}
		cursor = page.NextCursor
	}
}

func (c *apiClient) GetDeviceDetail(ctx context.Context, deviceID string) (DeviceDetail, error) {
	body, err := c.http.Get(ctx,
		fmt.Sprintf("%s/v1/devices/%s", c.endpoint, url.PathEscape(deviceID)))
	if err != nil {
		return DeviceDetail{}, fmt.Errorf("failed to get device %q: %w", deviceID, err)
	}

	var detail DeviceDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return DeviceDetail{}, fmt.Errorf("failed to decode device %q: %w", deviceID, err)
	}
	return detail, nil
}

func (c *apiClient) ListInstalledSoftware(ctx context.Context, deviceID string) ([]SoftwareItem, error) {
	body, err := c.http.Get(ctx,
		fmt.Sprintf("%s/v1/devices/%s/software", c.endpoint, url.PathEscape(deviceID)))
	if err != nil {
		return nil, fmt.Errorf("failed to list software for device %q: %w", deviceID, err)
	}

	var page softwarePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode software for device %q: %w", deviceID, err)
	}
	return page.Items, nil
}
