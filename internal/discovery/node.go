package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Node represents a Meshtastic node advertising its TCP API on the network
type Node struct {
	// ID is the node identifier (e.g., "!a1b2c3d4"), empty when not advertised
	ID string

	// ShortName is the node's four character short name, if advertised
	ShortName string

	// Instance is the mDNS service instance name (e.g., "Meshtastic_c3d4")
	Instance string

	// Hostname is the mDNS hostname (e.g., "Meshtastic_c3d4.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was advertised
	IP string

	// Port is the TCP API port (typically 4403)
	Port int

	// Metadata contains the raw mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the node was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the node
func (n *Node) String() string {
	name := n.ShortName
	if name == "" {
		name = n.Instance
	}
	if n.ID != "" {
		return fmt.Sprintf("Meshtastic node %s (%s) at %s", n.ID, name, n.Address())
	}
	return fmt.Sprintf("Meshtastic node %s at %s", name, n.Address())
}

// Address returns host:port for the node's TCP API
func (n *Node) Address() string {
	return net.JoinHostPort(n.IP, strconv.Itoa(n.Port))
}

// Key returns the identifier used to remember the node: its ID when
// advertised, otherwise its instance name
func (n *Node) Key() string {
	if n.ID != "" {
		return n.ID
	}
	return n.Instance
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (n *Node) GetMetadata(key string) string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata[key]
}
