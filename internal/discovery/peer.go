package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Peer represents a canplot API server found on the network
type Peer struct {
	// Instance is the mDNS service instance name (e.g., "canplot-bench-laptop")
	Instance string

	// Hostname is the mDNS hostname (e.g., "bench-laptop.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when the peer has no IPv4 address
	IP string

	// Port is the HTTP port of the API
	Port int

	// Metadata contains the TXT record data
	// Common fields: "version=1.2.0", "path=/api"
	Metadata map[string]string

	// DiscoveredAt is when the peer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("canplot %s (%s) at %s:%d", p.Instance, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the base URL of the peer's API. Peers advertising
// tls=true are addressed over https.
func (p *Peer) BaseURL() string {
	host := p.IP
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	scheme := "http"
	if p.GetMetadata("tls") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, p.Port)
}

// Version returns the advertised server version, if any
func (p *Peer) Version() string {
	return p.GetMetadata("version")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
