package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/muurk/meshcfg/internal/config"
	"github.com/muurk/meshcfg/internal/devicesync"
	"github.com/muurk/meshcfg/internal/discovery"
	"github.com/muurk/meshcfg/internal/i18n"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/metrics"
	"github.com/muurk/meshcfg/internal/moduleconfig"
	"github.com/muurk/meshcfg/internal/overlay"
	"github.com/muurk/meshcfg/internal/tui"
	"github.com/muurk/meshcfg/internal/ui"
	"github.com/muurk/meshcfg/internal/urls"
)

// Command flags
var (
	showTimeout   time.Duration
	scanTimeout   time.Duration
	discardYes    bool
	discardModule string
)

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(scanCmd)
}

// editCmd launches the interactive editor
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the remote hardware module interactively",
	Long: `Launch the full-screen editor for the remote hardware module.

The editor shows the node's configuration with your pending edits layered
on top. Edits are stored 500ms after you stop typing; 'd' discards them and
reverts to what the node reported. Pending edits are saved on exit and
restored the next time the editor starts for the same node.`,
	Example: `  # Edit from a snapshot file, re-read whenever it changes
  meshcfg edit --snapshot node.yaml

  # Edit through a websocket bridge
  meshcfg --bridge ws://localhost:8080/ws --node '!a1b2c3d4'`,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the editor needs an interactive terminal; use 'meshcfg show' to print the configuration")
	}

	source, err := newSource(opts)
	if err != nil {
		return err
	}

	logPath := editorLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := logging.InitializeWithOutput(opts.LogLevel, logPath); err != nil {
		return err
	}

	tr, err := i18n.New(opts.Locale, os.Getenv("LC_ALL"), os.Getenv("LC_MESSAGES"), os.Getenv("LANG"))
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	store := overlay.NewStore()
	store.Restore(registry.PendingFor(opts.Node))

	recorder := metrics.NewRecorder()
	unsubscribe := store.Subscribe(recorder.OverlayChanged)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if opts.MetricsAddr != "" {
		if _, err := recorder.Serve(ctx, opts.MetricsAddr); err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
	}

	logging.Info("Starting editor",
		zap.String("session", store.SessionID()),
		zap.String("node", config.NodeKey(opts.Node)),
		zap.String("source", fmt.Sprint(source)),
		zap.Duration("debounce", opts.Debounce),
		zap.String("language", tr.Language().String()),
	)

	app := tui.NewAppModel(tui.Options{
		Store:      store,
		Translator: tr,
		Window:     opts.Debounce,
		Observer:   recorder,
		Node:       opts.Node,
	})
	program := tea.NewProgram(app, tea.WithAltScreen())

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := source.Run(ctx, func(s devicesync.Snapshot) {
			recorder.RecordSnapshot(s.Source, s.Err)
			if s.Config != nil {
				registry.RememberConfig(firstNonEmpty(s.Config.Node, opts.Node), s.Config)
			}
			program.Send(tui.SnapshotMsg{Snapshot: s})
		})
		if err != nil && ctx.Err() == nil {
			logging.Warn("Snapshot source stopped", zap.String("source", source.Name()), zap.Error(err))
			program.Send(tui.SnapshotMsg{Snapshot: devicesync.Snapshot{
				Source:   source.Name(),
				Received: time.Now(),
				Err:      err,
			}})
		}
	}()

	_, runErr := program.Run()
	cancel()
	<-done

	pending := store.Pending()
	registry.SetPending(opts.Node, pending)
	if err := saveRegistry(); err != nil {
		return fmt.Errorf("failed to save pending edits: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("editor error: %w", runErr)
	}

	if !pending.IsEmpty() {
		fmt.Fprintf(cmd.OutOrStdout(), "Pending edits kept for %s. Use 'meshcfg discard' to drop them.\n", config.NodeKey(opts.Node))
	}
	return nil
}

// showCmd prints the configuration with pending edits applied
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the remote hardware configuration",
	Long: `Print the remote hardware configuration as the editor would start from:
pending edits layered over the node's last reported values.

Fields with pending edits are marked with an asterisk in the detailed format.`,
	Example: `  # Detailed output
  meshcfg show --snapshot node.yaml

  # One line
  meshcfg show --snapshot node.yaml --format compact

  # JSON for scripting, including the remote and pending layers
  meshcfg show --bridge ws://localhost:8080/ws --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().DurationVar(&showTimeout, "timeout", 10*time.Second, "How long to wait for a snapshot")
}

var errNoRemoteHardware = errors.New("node reported no remote hardware configuration")

// showResult is the structured form of 'meshcfg show'.
type showResult struct {
	Node     string                             `json:"node,omitempty" yaml:"node,omitempty"`
	Remote   *moduleconfig.RemoteHardwareConfig `json:"remote" yaml:"remote"`
	Pending  *moduleconfig.RemoteHardwarePatch  `json:"pending,omitempty" yaml:"pending,omitempty"`
	Resolved *moduleconfig.RemoteHardwareConfig `json:"resolved" yaml:"resolved"`
	Errors   moduleconfig.FieldErrors           `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	source, err := newSource(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), showTimeout)
	defer cancel()

	remote, err := devicesync.First(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to read node configuration: %w", err)
	}

	result, err := buildShowResult(remote, registry.PendingFor(opts.Node))
	if err != nil {
		return err
	}
	return renderShow(cmd.OutOrStdout(), outputFormat, result)
}

// buildShowResult resolves pending over remote.
func buildShowResult(remote *moduleconfig.ModuleConfig, pending *moduleconfig.PendingEdits) (showResult, error) {
	if remote == nil || remote.RemoteHardware == nil {
		return showResult{}, errNoRemoteHardware
	}

	result := showResult{
		Node:   remote.Node,
		Remote: remote.RemoteHardware,
	}

	var patch moduleconfig.Patch
	if pending != nil && !pending.RemoteHardware.IsEmpty() {
		result.Pending = pending.RemoteHardware
		patch = pending.RemoteHardware
	}

	result.Resolved = moduleconfig.ResolveRemoteHardware(remote.RemoteHardware, patch)
	if errs := moduleconfig.ValidateRemoteHardware(*result.Resolved); len(errs) > 0 {
		result.Errors = errs
	}
	return result, nil
}

func renderShow(w io.Writer, format string, result showResult) error {
	switch format {
	case "compact":
		_, err := fmt.Fprintln(w, result.Resolved.FormatCompact())
		return err

	case "json", "yaml":
		return writeStructured(w, format, result)

	case "detailed", "":
		p := ui.NewPrinter(w)
		p.PrintHeader("Remote hardware", "meshcfg show", []ui.Detail{
			{Key: "Node", Value: config.NodeKey(result.Node)},
			{Key: "Pending edits", Value: fmt.Sprintf("%v", result.Pending != nil)},
		})
		p.Newline()

		var patch moduleconfig.Patch
		if result.Pending != nil {
			patch = result.Pending
		}
		p.Println(result.Resolved.FormatDetailed(patch))

		if len(result.Errors) > 0 {
			details := make([]ui.Detail, 0, len(result.Errors))
			for _, field := range result.Errors.Fields() {
				details = append(details, ui.Detail{Key: field, Value: result.Errors[field]})
			}
			details = append(details, ui.Detail{Key: "Docs", Value: urls.RemoteHardwareModule})
			p.PrintWarning("Invalid values", details)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (use detailed, compact, json or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// discardCmd drops stored pending edits
var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard pending edits without opening the editor",
	Long: `Drop the pending edits stored for a node, so the next editor session
starts from the node's reported configuration.`,
	Example: `  # Ask before discarding
  meshcfg discard --node '!a1b2c3d4'

  # No prompt
  meshcfg discard --node '!a1b2c3d4' --yes`,
	RunE: runDiscard,
}

func init() {
	discardCmd.Flags().BoolVarP(&discardYes, "yes", "y", false, "Do not ask for confirmation")
	discardCmd.Flags().StringVar(&discardModule, "module", string(moduleconfig.RemoteHardware), "Module whose edits are discarded")
}

func runDiscard(cmd *cobra.Command, args []string) error {
	module := moduleconfig.Name(discardModule)
	if module != moduleconfig.RemoteHardware {
		return moduleconfig.NewUnknownModuleError(module)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	node := config.NodeKey(opts.Node)

	pending := registry.PendingFor(opts.Node)
	if pending == nil || pending.RemoteHardware.IsEmpty() {
		p.PrintWarning("Nothing to discard", []ui.Detail{
			{Key: "Node", Value: node},
			{Key: "Module", Value: string(module)},
		})
		return nil
	}

	p.PrintHeader("Pending edits", "meshcfg discard", append([]ui.Detail{
		{Key: "Node", Value: node},
	}, describePatch(pending.RemoteHardware)...))

	if !discardYes && !ui.Confirm(cmd.InOrStdin(), p, "Discard these edits?") {
		p.Println("Aborted.")
		return nil
	}

	registry.ClearPending(opts.Node, module)
	if err := saveRegistry(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	logging.Info("Discarded stored edits", zap.String("node", node), zap.String("module", string(module)))
	p.PrintSuccess("Pending edits discarded", []ui.Detail{
		{Key: "Node", Value: node},
		{Key: "Module", Value: string(module)},
	})
	return nil
}

// describePatch lists the fields a patch sets.
func describePatch(p *moduleconfig.RemoteHardwarePatch) []ui.Detail {
	var details []ui.Detail
	if p.Enabled != nil {
		details = append(details, ui.Detail{Key: "enabled", Value: moduleconfig.FormatEnabled(*p.Enabled)})
	}
	if p.AllowUndefinedPinAccess != nil {
		details = append(details, ui.Detail{Key: "undefined pins", Value: moduleconfig.FormatEnabled(*p.AllowUndefinedPinAccess)})
	}
	if p.AvailablePins != nil {
		details = append(details, ui.Detail{Key: "pins", Value: moduleconfig.FormatPins(p.AvailablePins)})
	}
	return details
}

// scanCmd discovers nodes on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Meshtastic nodes on the network",
	Long: `Scan for Meshtastic nodes using mDNS/DNS-SD discovery.

Nodes with networking enabled advertise a _meshtastic._tcp service. Found
nodes are remembered in the config file with their address.`,
	Example: `  # Scan with the configured timeout (default 5s)
  meshcfg scan

  # Longer scan for busy networks
  meshcfg scan --timeout 15s

  # Wait for one node to appear
  meshcfg scan --node '!a1b2c3d4'`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (default: preferences, 5s)")
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout := scanTimeout
	if timeout <= 0 {
		timeout = opts.DiscoverTimeout
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout

	var nodes []*discovery.Node
	if opts.Node != "" {
		p.Printf("Waiting for node %s (timeout: %s)...\n\n", opts.Node, timeout)
		node, err := scanner.WaitForNodeWithContext(cmd.Context(), opts.Node)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		nodes = append(nodes, node)
	} else {
		p.Printf("Scanning for Meshtastic nodes (timeout: %s)...\n\n", timeout)
		found, err := scanner.ScanForNodesWithContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		nodes = found
	}

	if len(nodes) == 0 {
		p.PrintError("No nodes found", nil, []string{
			"Ensure the node has WiFi or Ethernet enabled",
			"Check that your computer is on the same network segment",
			"Allow mDNS (UDP port 5353) through the firewall",
			"Try increasing --timeout",
			"Network setup: " + urls.NetworkConfig,
		})
		return nil
	}

	for _, n := range nodes {
		key := n.Key()
		registry.UpdateNodeLastSeen(key, n.Address())
		if known := registry.GetNode(key); known != nil && known.Nickname == "" && n.ShortName != "" {
			registry.SetNodeNickname(key, n.ShortName)
		}

		p.PrintSuccess(n.String(), []ui.Detail{
			{Key: "Node", Value: key},
			{Key: "Address", Value: n.Address()},
			{Key: "Metadata", Value: formatMetadata(n.Metadata)},
		})
	}

	if err := saveRegistry(); err != nil {
		logging.Warn("Failed to remember discovered nodes", zap.Error(err))
	}

	p.Printf("\nFound %d node(s). Use 'meshcfg --node <id> --bridge <url>' to edit one.\n", len(nodes))
	return nil
}

func formatMetadata(m map[string]string) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
