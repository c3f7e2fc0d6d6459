package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type Meshtastic firmware advertises
	ServiceType = "_meshtastic._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for node discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the Meshtastic TCP API port
	DefaultPort = 4403
)

// Scanner handles mDNS node discovery
type Scanner struct {
	// Timeout is the maximum time to wait for node discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForNodesWithContext discovers nodes until the scanner timeout or ctx
// ends. Nodes are returned sorted by key, one entry per key.
func (s *Scanner) ScanForNodesWithContext(ctx context.Context) ([]*Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu    sync.Mutex
		found = make(map[string]*Node)
		done  = make(chan struct{})
	)
	go func() {
		defer close(done)
		for entry := range entries {
			node := s.parseServiceEntry(entry)
			if node == nil {
				continue
			}
			mu.Lock()
			found[node.Key()] = node
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// the resolver closes entries once it has shut down
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	nodes := make([]*Node, 0, len(found))
	for _, n := range found {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key() < nodes[j].Key() })
	return nodes, nil
}

// WaitForNodeWithContext waits until the node with the given ID or instance
// name is seen, the scanner timeout elapses or ctx ends.
func (s *Scanner) WaitForNodeWithContext(ctx context.Context, key string) (*Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	id := normalizeNodeID(key)
	entries := make(chan *zeroconf.ServiceEntry)
	nodeChan := make(chan *Node, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			node := s.parseServiceEntry(entry)
			if node != nil && (node.ID == id || node.Instance == key) {
				select {
				case nodeChan <- node:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case node := <-nodeChan:
		return node, nil
	case <-ctx.Done():
		select {
		case node := <-nodeChan:
			return node, nil
		default:
		}
		return nil, fmt.Errorf("node %s not found within timeout", key)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Node.
// Returns nil if the entry has no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Node {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	node := &Node{
		ID:           normalizeNodeID(metadata["id"]),
		ShortName:    metadata["shortname"],
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
	if node.Key() == "" {
		node.Instance = strings.TrimSuffix(entry.HostName, ".")
	}
	return node
}

// normalizeNodeID accepts "!a1b2c3d4" or "a1b2c3d4" and returns the
// canonical "!"-prefixed lowercase form.
func normalizeNodeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	return "!" + strings.TrimPrefix(id, "!")
}
