package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/config"
	"github.com/muurk/meshcfg/internal/devicesync"
	"github.com/muurk/meshcfg/internal/logging"
)

// flagValues holds the persistent command-line flags.
type flagValues struct {
	ConfigPath   string
	SnapshotPath string
	BridgeURL    string
	Node         string
	Locale       string
	Debounce     time.Duration
	LogLevel     string
	MetricsAddr  string
}

// settings is the effective configuration: flags over preferences.
type settings struct {
	Node            string
	Locale          string
	SnapshotPath    string
	BridgeURL       string
	MetricsAddr     string
	LogLevel        string
	Debounce        time.Duration
	DiscoverTimeout time.Duration
}

var (
	flags        flagValues
	outputFormat string

	// Set by setup before any command runs.
	registry *config.Registry
	opts     settings
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.ConfigPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/meshcfg/config.yaml)")
	f.StringVar(&flags.SnapshotPath, "snapshot", "", "Read node snapshots from a YAML/JSON file (watched for changes)")
	f.StringVar(&flags.BridgeURL, "bridge", "", "Read node snapshots from a websocket bridge (ws://host:port/path)")
	f.StringVar(&flags.Node, "node", "", "Node ID, e.g. !a1b2c3d4")
	f.StringVar(&flags.Locale, "locale", "", "UI language, e.g. de (default: preferences, then $LANG)")
	f.DurationVar(&flags.Debounce, "debounce", 0, "Quiet window before edits are stored (default: preferences, 500ms)")
	f.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default: silent)")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")
	f.StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json, yaml)")
}

// setup loads the registry and resolves settings. Commands that own the
// terminal initialize logging themselves.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	reg, err := loadRegistry(flags.ConfigPath)
	if err != nil {
		return err
	}
	registry = reg
	opts = resolveSettings(flags, reg.Preferences)

	if ownsTerminal(cmd) {
		return nil
	}
	return logging.Initialize(opts.LogLevel)
}

// ownsTerminal reports whether cmd runs the editor: the root command or edit.
func ownsTerminal(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "edit"
}

// resolveSettings applies flags over preferences. A snapshot or bridge given
// on the command line replaces both preferred sources.
func resolveSettings(f flagValues, prefs *config.Preferences) settings {
	if prefs == nil {
		prefs = &config.Preferences{}
	}

	s := settings{
		Node:         f.Node,
		Locale:       firstNonEmpty(f.Locale, prefs.Locale),
		SnapshotPath: prefs.SnapshotPath,
		BridgeURL:    prefs.BridgeURL,
		MetricsAddr:  firstNonEmpty(f.MetricsAddr, prefs.MetricsAddr),
		LogLevel:     firstNonEmpty(f.LogLevel, prefs.LogLevel),
		Debounce:     prefs.DebounceWindow(),
	}

	if f.SnapshotPath != "" || f.BridgeURL != "" {
		s.SnapshotPath = f.SnapshotPath
		s.BridgeURL = f.BridgeURL
	}
	if f.Debounce > 0 {
		s.Debounce = f.Debounce
	}

	s.DiscoverTimeout = 5 * time.Second
	if prefs.DiscoverTimeout > 0 {
		s.DiscoverTimeout = time.Duration(prefs.DiscoverTimeout) * time.Second
	}

	return s
}

var errNoSource = errors.New("no snapshot source: use --snapshot <file> or --bridge <ws-url>")

// newSource builds the snapshot source selected by s.
func newSource(s settings) (devicesync.Source, error) {
	switch {
	case s.SnapshotPath != "" && s.BridgeURL != "":
		return nil, fmt.Errorf("use either --snapshot or --bridge, not both")
	case s.SnapshotPath != "":
		return devicesync.NewFileSource(s.SnapshotPath), nil
	case s.BridgeURL != "":
		return devicesync.NewWebSocketSource(s.BridgeURL, s.Node), nil
	default:
		return nil, errNoSource
	}
}

func loadRegistry(path string) (*config.Registry, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func saveRegistry() error {
	if flags.ConfigPath != "" {
		return registry.SaveTo(flags.ConfigPath)
	}
	return registry.Save()
}

// editorLogPath is where logs go while the editor owns the terminal.
func editorLogPath() string {
	if path := os.Getenv(logging.LogFileEnvVar); path != "" {
		return path
	}
	if flags.ConfigPath != "" {
		return filepath.Join(filepath.Dir(flags.ConfigPath), "meshcfg.log")
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "meshcfg.log")
	}
	return filepath.Join(dir, "meshcfg.log")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
