package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "meshcfg"
	configFile = "config.yaml"

	// ConfigDirEnvVar overrides the configuration directory.
	ConfigDirEnvVar = "MESHCFG_CONFIG_DIR"

	// CurrentVersion is the registry file format written by Save.
	CurrentVersion = 1

	// MaxDebounce caps the debounce preference.
	MaxDebounce = 10 * time.Second

	defaultDiscoverTimeout = 5
)

// GetConfigDir returns the directory holding the registry:
//   - $MESHCFG_CONFIG_DIR when set
//   - Windows: %LOCALAPPDATA%\meshcfg
//   - macOS: $HOME/.config/meshcfg
//   - others: $XDG_CONFIG_HOME/meshcfg, falling back to $HOME/.config/meshcfg
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		// UserCacheDir is %LocalAppData% on Windows.
		local, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine local app data directory: %w", err)
		}
		return filepath.Join(local, appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path to the registry file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the registry from the default location.
func Load() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads a registry from path. A missing file yields a new default
// registry. Files without a version are read as the current version.
func LoadFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if r.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (this meshcfg reads up to %d)", r.Version, CurrentVersion)
	}

	r.normalize()
	return &r, nil
}

// normalize repairs values a hand-edited file may carry: missing sections,
// out of range preferences, node keys that differ only by whitespace and
// pending entries without edits.
func (r *Registry) normalize() {
	r.Version = CurrentVersion

	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	p := r.Preferences
	p.Locale = strings.TrimSpace(p.Locale)
	if p.DebounceMS <= 0 {
		p.DebounceMS = defaultPreferences().DebounceMS
	}
	if limit := int(MaxDebounce / time.Millisecond); p.DebounceMS > limit {
		p.DebounceMS = limit
	}
	if p.DiscoverTimeout <= 0 {
		p.DiscoverTimeout = defaultDiscoverTimeout
	}

	nodes := make(map[string]*Node, len(r.Nodes))
	for id, node := range r.Nodes {
		if node == nil {
			continue
		}
		if node.Pending.IsEmpty() {
			node.Pending = nil
		}
		key := NodeKey(strings.TrimSpace(id))
		if _, taken := nodes[key]; taken && node.Pending == nil {
			continue
		}
		nodes[key] = node
	}
	r.Nodes = nodes
}

// Save writes the registry to the default location.
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveTo(path)
}

// SaveTo writes the registry to path, creating its directory. The file is
// replaced atomically so a crash never leaves half a registry behind.
func (r *Registry) SaveTo(path string) error {
	r.normalize()

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# meshcfg configuration\n" +
		"# Known Meshtastic nodes, module edits not yet confirmed by a node,\n" +
		"# and editor preferences. Rewritten by meshcfg; comments are not kept.\n\n"
	data = append([]byte(header), data...)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+configFile+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
