package network

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Device is an adopted UniFi network device (access point, switch, gateway).
type Device struct {
	ID      string `json:"_id"`
	MAC     string `json:"mac"`
	Model   string `json:"model"`
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	State   int    `json:"state"`
	IP      string `json:"ip,omitempty"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime,omitempty"`
	Adopted bool   `json:"adopted"`
	NumSta  int    `json:"num_sta,omitempty"`
	TxBytes int64  `json:"tx_bytes,omitempty"`
	RxBytes int64  `json:"rx_bytes,omitempty"`
}

// DeviceStateConnected is the controller's state code for an online device.
const DeviceStateConnected = 1

// Online reports whether the controller considers the device connected.
func (d *Device) Online() bool {
	return d.State == DeviceStateConnected
}

// Client is a station known to the controller, either currently associated
// or (for historical listings) seen in the past.
type Client struct {
	ID        string `json:"_id"`
	MAC       string `json:"mac"`
	Hostname  string `json:"hostname,omitempty"`
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip,omitempty"`
	IsWired   bool   `json:"is_wired"`
	IsGuest   bool   `json:"is_guest"`
	Blocked   bool   `json:"blocked"`
	Network   string `json:"network,omitempty"`
	ESSID     string `json:"essid,omitempty"`
	APMAC     string `json:"ap_mac,omitempty"`
	SwMAC     string `json:"sw_mac,omitempty"`
	UplinkMAC string `json:"uplink_mac,omitempty"`
	Signal    int    `json:"signal,omitempty"`
	Uptime    int64  `json:"uptime,omitempty"`
	TxBytes   int64  `json:"tx_bytes,omitempty"`
	RxBytes   int64  `json:"rx_bytes,omitempty"`
	LastSeen  int64  `json:"last_seen,omitempty"`
}

// DisplayName returns the most descriptive label available for the client.
func (c *Client) DisplayName() string {
	switch {
	case c.Hostname != "":
		return c.Hostname
	case c.Name != "":
		return c.Name
	default:
		return "Unknown"
	}
}

// AttachedTo reports whether the client is associated with, or wired to,
// the device with the given MAC address.
func (c *Client) AttachedTo(deviceMAC string) bool {
	return sameMAC(c.APMAC, deviceMAC) || sameMAC(c.SwMAC, deviceMAC) || sameMAC(c.UplinkMAC, deviceMAC)
}

// Site is a controller site.
type Site struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Role        string `json:"role,omitempty"`
}

// HealthSubsystem is one row of the site health report (wan, lan, wlan, www, vpn).
type HealthSubsystem struct {
	Subsystem  string `json:"subsystem"`
	Status     string `json:"status"`
	GatewayMAC string `json:"gw_mac,omitempty"`
	WANIP      string `json:"wan_ip,omitempty"`
	NumAP      int    `json:"num_ap,omitempty"`
	NumSwitch  int    `json:"num_sw,omitempty"`
	NumGateway int    `json:"num_gw,omitempty"`
	NumUser    int    `json:"num_user,omitempty"`
	NumGuest   int    `json:"num_guest,omitempty"`
	NumAdopted int    `json:"num_adopted,omitempty"`
}

// SiteHealth is the health summary of the configured site.
type SiteHealth struct {
	Site       string
	Subsystems []HealthSubsystem
}

// Subsystem returns the named subsystem row, if present.
func (h *SiteHealth) Subsystem(name string) (HealthSubsystem, bool) {
	for _, s := range h.Subsystems {
		if s.Subsystem == name {
			return s, true
		}
	}

	return HealthSubsystem{}, false
}

// Network is a network configuration (LAN, VLAN, WAN, VPN).
type Network struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Purpose      string  `json:"purpose"`
	VLAN         FlexInt `json:"vlan,omitempty"`
	VLANEnabled  bool    `json:"vlan_enabled"`
	IPSubnet     string  `json:"ip_subnet,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	NetworkGroup string  `json:"networkgroup,omitempty"`
	DHCPEnabled  bool    `json:"dhcpd_enabled"`
}

// IsEnabled treats a missing "enabled" field as enabled, like the controller UI.
func (n *Network) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// Admin is the controller account a session belongs to, as reported by /api/self.
type Admin struct {
	ID       string `json:"admin_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	IsSuper  bool   `json:"is_super"`
	SiteRole string `json:"site_role,omitempty"`
}

// ActivityRecord joins a device with the clients currently attached to it.
type ActivityRecord struct {
	Device       Device
	Clients      []Client
	ClientCount  int
	TotalTxBytes int64
	TotalRxBytes int64
}

// CommandResult is the outcome of a fire-and-forget controller command.
// Accepted means the controller took the command, not that it has completed.
type CommandResult struct {
	Command  string
	MAC      string
	Accepted bool
	IssuedAt time.Time
}

// ClientFilter selects between the two client listings.
type ClientFilter int

const (
	// ClientsActive lists currently associated clients (stat/sta).
	ClientsActive ClientFilter = iota
	// ClientsAll lists every client the controller remembers, including
	// offline ones (rest/user).
	ClientsAll
)

// FlexInt decodes controller fields that are numbers on some firmware
// versions and numeric strings on others. An empty string decodes to zero.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode numeric string")
		}
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}

	v, err := strconv.Atoi(string(data))
	if err != nil {
		return errors.Wrapf(err, "decode %q as integer", data)
	}

	*f = FlexInt(v)
	return nil
}
