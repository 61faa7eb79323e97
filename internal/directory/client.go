// Package directory provides a client for the identity directory API, the
// authoritative source for people and for device-to-person registrations.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dsimmons122/employee-management/internal/httpclient"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// pageSize is the number of records requested per directory API page
const pageSize = 200

// Person is one directory account.
type Person struct {
	ID                string     `json:"id"`
	DisplayName       string     `json:"display_name"`
	Email             string     `json:"email,omitempty"`
	ManagerExternalID string     `json:"manager_id,omitempty"`
	Active            bool       `json:"active"`
	LastSignInAt      *time.Time `json:"last_sign_in_at,omitempty"`
}

// DeviceRegistration is one device registered to a person in the directory.
// DisplayName conventionally embeds the hardware serial after the first
// hyphen ("atl-HKXRGK2").
type DeviceRegistration struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	Platform       string    `json:"platform,omitempty"`
	RegisteredDate time.Time `json:"registered_date"`
	Active         bool      `json:"active"`
}

// Client is the interface for directory API operations
type Client interface {
	// ListPeople returns every person in the directory, walking all pages.
	ListPeople(ctx context.Context) ([]Person, error)

	// ListDevicesForPerson returns the devices registered to a person.
	ListDevicesForPerson(ctx context.Context, personID string) ([]DeviceRegistration, error)
}

// peoplePage is the wire envelope for paginated people listings
type peoplePage struct {
	Items      []Person `json:"items"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// devicesPage is the wire envelope for device registration listings
type devicesPage struct {
	Items []DeviceRegistration `json:"items"`
}

type apiClient struct {
	http     httpclient.Client
	endpoint string
}

var _ Client = (*apiClient)(nil)

// NewClient creates a directory API client against the given endpoint
func NewClient(http httpclient.Client, endpoint string) Client {
	return &apiClient{
		http:     http,
		endpoint: endpoint,
	}
}

func (c *apiClient) ListPeople(ctx context.Context) ([]Person, error) {
	var people []Person
	cursor := ""
	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprintf("%d", pageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := c.http.Get(ctx, fmt.Sprintf("%s/v1/people?%s", c.endpoint, query.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to list people: %w", err)
		}

		var page peoplePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode people page: %w", err)
		}
		people = append(people, page.Items...)

		if page.NextCursor == "" {
			return people, nil
		}
		cursor = page.NextCursor
	}
}

func (c *apiClient) ListDevicesForPerson(ctx context.Context, personID string) ([]DeviceRegistration, error) {
	body, err := c.http.Get(ctx,
		fmt.Sprintf("%s/v1/people/%s/devices", c.endpoint, url.PathEscape(personID)))
	if err != nil {
		return nil, fmt.Errorf("failed to list devices for person %q: %w", personID, err)
	}

	var page devicesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode devices for person %q: %w", personID, err)
	}
	return page.Items, nil
}
