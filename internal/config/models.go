package config

import (
	"time"

	"github.com/muurk/meshcfg/internal/editor"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// DefaultNodeKey stores state for snapshots that carry no node identifier.
const DefaultNodeKey = "default"

// Registry represents the entire user configuration file.
// This stores known nodes, their pending edits and application preferences.
type Registry struct {
	Version     int              `yaml:"version"`
	Nodes       map[string]*Node `yaml:"nodes,omitempty"` // Keyed by node ID (e.g. "!a1b2c3d4")
	Preferences *Preferences     `yaml:"preferences,omitempty"`
}

// Node represents what meshcfg remembers about a single Meshtastic node.
type Node struct {
	Nickname    string                     `yaml:"nickname,omitempty"`     // User-friendly name
	LastAddress string                     `yaml:"last_address,omitempty"` // Last known host:port
	LastSeen    time.Time                  `yaml:"last_seen,omitempty"`    // Last discovery/snapshot time
	LastConfig  *moduleconfig.ModuleConfig `yaml:"last_config,omitempty"`  // Last confirmed module configuration
	Pending     *moduleconfig.PendingEdits `yaml:"pending,omitempty"`      // Unconfirmed edits from the last session
}

// Preferences represents application-wide user preferences.
// Command-line flags take precedence over these values.
type Preferences struct {
	Locale          string `yaml:"locale,omitempty"`        // UI language, e.g. "de" (default: $LANG)
	DebounceMS      int    `yaml:"debounce_ms"`             // Quiet window before edits reach the overlay
	LogLevel        string `yaml:"log_level,omitempty"`     // debug, info, warn, error (default: silent)
	SnapshotPath    string `yaml:"snapshot_path,omitempty"` // Default snapshot document
	BridgeURL       string `yaml:"bridge_url,omitempty"`    // Default websocket bridge
	MetricsAddr     string `yaml:"metrics_addr,omitempty"`  // Prometheus listen address (empty: disabled)
	DiscoverTimeout int    `yaml:"discover_timeout"`        // mDNS discovery timeout in seconds
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DebounceMS:      int(editor.DefaultWindow / time.Millisecond),
		DiscoverTimeout: defaultDiscoverTimeout,
	}
}

// DebounceWindow returns the configured quiet window, falling back to the
// editor default for non-positive values.
func (p *Preferences) DebounceWindow() time.Duration {
	if p == nil || p.DebounceMS <= 0 {
		return editor.DefaultWindow
	}
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Nodes:       make(map[string]*Node),
		Preferences: defaultPreferences(),
	}
}

// NodeKey maps a node ID to its registry key.
func NodeKey(id string) string {
	if id == "" {
		return DefaultNodeKey
	}
	return id
}

// GetNode retrieves node metadata by ID.
// Returns nil if the node doesn't exist in the registry.
func (r *Registry) GetNode(id string) *Node {
	return r.Nodes[NodeKey(id)]
}

// EnsureNode ensures a node entry exists in the registry.
func (r *Registry) EnsureNode(id string) *Node {
	if r.Nodes == nil {
		r.Nodes = make(map[string]*Node)
	}

	key := NodeKey(id)
	if node, exists := r.Nodes[key]; exists {
		return node
	}

	node := &Node{}
	r.Nodes[key] = node
	return node
}

// UpdateNodeLastSeen updates the last seen timestamp and address for a node.
func (r *Registry) UpdateNodeLastSeen(id, address string) {
	node := r.EnsureNode(id)
	node.LastSeen = time.Now()
	if address != "" {
		node.LastAddress = address
	}
}

// SetNodeNickname sets a user-friendly nickname for a node.
func (r *Registry) SetNodeNickname(id, nickname string) {
	r.EnsureNode(id).Nickname = nickname
}

// RememberConfig stores the last configuration confirmed by a node.
func (r *Registry) RememberConfig(id string, config *moduleconfig.ModuleConfig) {
	node := r.EnsureNode(id)
	node.LastConfig = config
	node.LastSeen = time.Now()
}

// SetPending stores unconfirmed edits for a node. Empty edits remove the entry.
func (r *Registry) SetPending(id string, pending moduleconfig.PendingEdits) {
	if pending.IsEmpty() {
		if node := r.GetNode(id); node != nil {
			node.Pending = nil
		}
		return
	}
	r.EnsureNode(id).Pending = &pending
}

// PendingFor returns the stored edits for a node, or nil.
func (r *Registry) PendingFor(id string) *moduleconfig.PendingEdits {
	node := r.GetNode(id)
	if node == nil || node.Pending.IsEmpty() {
		return nil
	}
	return node.Pending
}

// ClearPending drops the stored edits of one module for a node. It reports
// whether anything was removed.
func (r *Registry) ClearPending(id string, module moduleconfig.Name) bool {
	node := r.GetNode(id)
	if node == nil || node.Pending == nil {
		return false
	}

	switch module {
	case moduleconfig.RemoteHardware:
		if node.Pending.RemoteHardware.IsEmpty() {
			return false
		}
		node.Pending.RemoteHardware = nil
	default:
		return false
	}

	if node.Pending.IsEmpty() {
		node.Pending = nil
	}
	return true
}
