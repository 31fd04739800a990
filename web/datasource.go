package web

import (
	"context"

	"enipgo/objects"
	"enipgo/transport"
)

// DeviceStatus summarizes one configured device for GET /api/devices.
type DeviceStatus struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Connected bool   `json:"connected"`
	LastError string `json:"last_error,omitempty"`
}

// DataSource is the read surface the web server renders: the live device
// inventory plus on-demand identity/attribute reads. cmd/warscan's poller
// implements this against its pool of transport.Client connections.
type DataSource interface {
	ListDevices() []DeviceStatus
	Identity(ctx context.Context, device string) (objects.IdentityObject, error)
	Attribute(ctx context.Context, device, path string) (transport.AttributeReading, error)
}
