// Package discovery provides mDNS-based discovery of Meshtastic nodes.
//
// Meshtastic firmware with networking enabled advertises its TCP API as a
// "_meshtastic._tcp" service. TXT records carry the node ID ("id=!a1b2c3d4")
// and short name ("shortname=ROOF") on recent firmware.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//
//	nodes, err := scanner.ScanForNodesWithContext(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, node := range nodes {
//	    fmt.Println(node)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Nodes must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
