package devicemgmt

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTP struct {
	responses map[string]string
}

func (f *fakeHTTP) Get(_ context.Context, url string) ([]byte, error) {
	for key, body := range f.responses {
		if strings.Contains(url, key) {
			return []byte(body), nil
		}
	}
	return nil, fmt.Errorf("no canned response for %s", url)
}

func TestListDevicesWalksAllPages(t *testing.T) {
	t.Parallel()

	http := &fakeHTTP{responses: map[string]string{
		"cursor=next": `{"items":[{"id":"m2","name":"host-2"}]}`,
		"/v1/devices": `{"items":[{"id":"m1","name":"host-1","serial_number":"S1"}],"next_cursor":"next"}`,
	}}
	client := NewClient(http, "https://mdm.example.com")

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "S1", devices[0].SerialNumber)
	assert.Empty(t, devices[1].SerialNumber)
}

func TestGetDeviceDetail(t *testing.T) {
	t.Parallel()

	http := &fakeHTTP{responses: map[string]string{
		"/v1/devices/m1": `{
			"id":"m1",
			"name":"host-1",
			"hardware":{"serial_number":"hkxrgk2","manufacturer":"Dell"},
			"os_name":"Windows",
			"os_version":"11"
		}`,
	}}
	client := NewClient(http, "https://mdm.example.com")

	detail, err := client.GetDeviceDetail(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "hkxrgk2", detail.Hardware.SerialNumber)
	assert.Equal(t, "Windows", detail.OSName)
}

func TestListInstalledSoftware(t *testing.T) {
	t.Parallel()

	http := &fakeHTTP{responses: map[string]string{
		"/v1/devices/m1/software": `{
			"items":[
				{"name":"7-Zip 22.01 (x64)","version":"22.01"},
				{"name":"Go","version":"1.24.6","vendor":"Google"}
			]
		}`,
	}}
	client := NewClient(http, "https://mdm.example.com")

	items, err := client.ListInstalledSoftware(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Google", items[1].Vendor)
}
