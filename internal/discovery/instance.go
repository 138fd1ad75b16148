package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a webli server found on the local network.
type Instance struct {
	// Name is the advertised instance name (e.g., "webli")
	Name string

	// Hostname is the mDNS hostname (e.g., "devbox.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTPS port
	Port int

	// Metadata contains the TXT record data
	// Common fields: "server=webli", "version=1.2.0", "path=/"
	Metadata map[string]string

	// DiscoveredAt is when the instance was seen
	DiscoveredAt time.Time
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s) at %s", i.Name, i.Hostname, net.JoinHostPort(i.IP, strconv.Itoa(i.Port)))
}

// BaseURL returns the HTTPS base URL for the instance.
func (i *Instance) BaseURL() string {
	return "https://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
