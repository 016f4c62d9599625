package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lexfrei/unifi-mcp/api/network"
)

const notAvailable = "N/A"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with one decimal in base-1024 units,
// e.g. 1536 -> "1.5 KB".
func FormatBytes(n int64) string {
	v := float64(n)
	for _, unit := range byteUnits {
		if v < 1024 {
			return fmt.Sprintf("%.1f %s", v, unit)
		}
		v /= 1024
	}

	return fmt.Sprintf("%.1f PB", v)
}

// FormatUptime renders seconds as "1d 1h 1m 5s", omitting zero components.
func FormatUptime(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	secs := seconds % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+"d")
	}
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+"m")
	}
	if secs > 0 {
		parts = append(parts, strconv.FormatInt(secs, 10)+"s")
	}

	return strings.Join(parts, " ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func deviceStatus(d *network.Device) string {
	if d.Online() {
		return "Online"
	}
	return "Offline"
}

func connectionType(c *network.Client) string {
	if c.IsWired {
		return "Wired"
	}
	return "Wireless"
}

// FormatDevices renders a device listing.
func FormatDevices(devices []network.Device) string {
	if len(devices) == 0 {
		return "No devices found."
	}

	lines := []string{fmt.Sprintf("Found %d device(s):\n", len(devices))}
	for i := range devices {
		d := &devices[i]
		lines = append(lines,
			"- "+orDefault(d.Name, "Unknown"),
			"  MAC: "+orDefault(d.MAC, "Unknown"),
			fmt.Sprintf("  Model: %s (%s)", orDefault(d.Model, "Unknown"), orDefault(d.Type, "Unknown")),
			"  Status: "+deviceStatus(d),
			"  IP: "+orDefault(d.IP, notAvailable),
			"  Firmware: "+orDefault(d.Version, notAvailable),
		)
		if d.Uptime > 0 {
			lines = append(lines, "  Uptime: "+FormatUptime(d.Uptime))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// FormatClients renders a client listing.
func FormatClients(clients []network.Client) string {
	if len(clients) == 0 {
		return "No clients found."
	}

	lines := []string{fmt.Sprintf("Found %d client(s):\n", len(clients))}
	for i := range clients {
		lines = append(lines, clientLines(&clients[i], false)...)
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func clientLines(c *network.Client, detailed bool) []string {
	lines := []string{
		"- " + c.DisplayName(),
		"  MAC: " + orDefault(c.MAC, "Unknown"),
		"  IP: " + orDefault(c.IP, notAvailable),
		"  Connection: " + connectionType(c),
	}
	if c.ESSID != "" {
		lines = append(lines, "  SSID: "+c.ESSID)
	}
	if c.Network != "" {
		lines = append(lines, "  Network: "+c.Network)
	}
	if c.Blocked {
		lines = append(lines, "  Blocked: yes")
	}
	if detailed {
		if !c.IsWired && c.Signal != 0 {
			lines = append(lines, fmt.Sprintf("  Signal: %d dBm", c.Signal))
		}
		if c.Uptime > 0 {
			lines = append(lines, "  Uptime: "+FormatUptime(c.Uptime))
		}
	}
	lines = append(lines, fmt.Sprintf("  Traffic: TX %s / RX %s", FormatBytes(c.TxBytes), FormatBytes(c.RxBytes)))

	return lines
}

// FormatSites renders a site listing.
func FormatSites(sites []network.Site) string {
	if len(sites) == 0 {
		return "No sites found."
	}

	lines := []string{fmt.Sprintf("Found %d site(s):\n", len(sites))}
	for _, s := range sites {
		name := orDefault(s.Name, "Unknown")
		lines = append(lines,
			"- "+orDefault(s.Description, name),
			"  Name: "+name,
			"  ID: "+orDefault(s.ID, notAvailable),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// FormatHealth renders the site health report.
func FormatHealth(health *network.SiteHealth) string {
	if health == nil || len(health.Subsystems) == 0 {
		return "No health data available."
	}

	lines := []string{"Site Health Status:\n"}
	for _, s := range health.Subsystems {
		name := orDefault(s.Subsystem, "Unknown")
		lines = append(lines,
			"- "+strings.ToUpper(name),
			"  Status: "+orDefault(s.Status, "unknown"),
		)

		switch name {
		case "wan":
			lines = append(lines, "  Gateway: "+orDefault(s.GatewayMAC, notAvailable))
			if s.WANIP != "" {
				lines = append(lines, "  WAN IP: "+s.WANIP)
			}
		case "wlan":
			lines = append(lines,
				fmt.Sprintf("  Access Points: %d", s.NumAP),
				fmt.Sprintf("  Wireless Clients: %d", s.NumUser),
			)
		case "lan":
			lines = append(lines,
				fmt.Sprintf("  Switches: %d", s.NumSwitch),
				fmt.Sprintf("  Wired Clients: %d", s.NumUser),
			)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// FormatNetworks renders the network configurations.
func FormatNetworks(networks []network.Network) string {
	if len(networks) == 0 {
		return "No networks configured."
	}

	lines := []string{fmt.Sprintf("Found %d network(s):\n", len(networks))}
	for i := range networks {
		n := &networks[i]

		vlan := notAvailable
		if n.VLAN != 0 {
			vlan = strconv.Itoa(int(n.VLAN))
		}
		status := "Enabled"
		if !n.IsEnabled() {
			status = "Disabled"
		}

		lines = append(lines,
			"- "+orDefault(n.Name, "Unknown"),
			"  Purpose: "+orDefault(n.Purpose, "unknown"),
			"  VLAN: "+vlan,
			"  Subnet: "+orDefault(n.IPSubnet, notAvailable),
			"  Status: "+status,
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// FormatDeviceActivity renders a device with the clients attached to it.
func FormatDeviceActivity(record *network.ActivityRecord) string {
	d := &record.Device

	lines := []string{
		"Device Activity Report\n",
		"Device: " + orDefault(d.Name, "Unknown"),
		"  MAC: " + orDefault(d.MAC, "Unknown"),
		fmt.Sprintf("  Model: %s (%s)", orDefault(d.Model, "Unknown"), orDefault(d.Type, "Unknown")),
		"  Status: " + deviceStatus(d),
	}
	if d.Uptime > 0 {
		lines = append(lines, "  Uptime: "+FormatUptime(d.Uptime))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("Connected Clients: %d", record.ClientCount),
		fmt.Sprintf("Total Traffic: TX %s / RX %s", FormatBytes(record.TotalTxBytes), FormatBytes(record.TotalRxBytes)),
		"",
	)

	for i := range record.Clients {
		lines = append(lines, clientLines(&record.Clients[i], true)...)
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
