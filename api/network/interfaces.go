package network

import (
	"context"
)

// ControllerAPIClient defines the operations of a UniFi Network controller
// client. The MCP tool layer depends on this interface, so tests can swap in
// a fake controller.
//
// All methods mirror the corresponding methods in APIClient.
//
// Example usage with testify/mock:
//
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) ListDevices(ctx context.Context) ([]Device, error) {
//	    args := m.Called(ctx)
//	    return args.Get(0).([]Device), args.Error(1)
//	}
//
//nolint:interfacebloat // This interface mirrors the full API client
type ControllerAPIClient interface {
	// Devices operations

	// ListDevices returns every device adopted on the site.
	ListDevices(ctx context.Context) ([]Device, error)

	// RestartDevice asks the controller to reboot a device.
	RestartDevice(ctx context.Context, mac string) (*CommandResult, error)

	// DeviceActivity joins a device with its attached clients.
	DeviceActivity(ctx context.Context, mac string) (*ActivityRecord, error)

	// Clients operations

	// ListClients returns active or all known clients.
	ListClients(ctx context.Context, filter ClientFilter) ([]Client, error)

	// BlockClient prevents a client from connecting.
	BlockClient(ctx context.Context, mac string) (*CommandResult, error)

	// UnblockClient lifts a block.
	UnblockClient(ctx context.Context, mac string) (*CommandResult, error)

	// DisconnectClient forces a client to reconnect.
	DisconnectClient(ctx context.Context, mac string) (*CommandResult, error)

	// Site operations

	// ListSites returns the sites visible to the logged-in admin.
	ListSites(ctx context.Context) ([]Site, error)

	// SiteHealth returns the health summary of the configured site.
	SiteHealth(ctx context.Context) (*SiteHealth, error)

	// ListNetworks returns the site's network configurations.
	ListNetworks(ctx context.Context) ([]Network, error)

	// Session operations

	// Self returns the logged-in admin.
	Self(ctx context.Context) (*Admin, error)

	// Logout ends the controller session, best effort.
	Logout(ctx context.Context)
}

// Ensure APIClient implements ControllerAPIClient.
var _ ControllerAPIClient = (*APIClient)(nil)
