package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/meshcfg/internal/devicesync"
	"github.com/muurk/meshcfg/internal/editor"
	"github.com/muurk/meshcfg/internal/i18n"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// SnapshotMsg carries a remote configuration snapshot, or a sync failure,
// into the event loop. Send it with tea.Program.Send from the goroutine
// running a devicesync.Source.
type SnapshotMsg struct {
	devicesync.Snapshot
}

// Options configures the application model.
type Options struct {
	// Store is the edit overlay shared with the rest of the process.
	Store editor.OverlayStore

	// Translator selects the UI language. Nil shows raw keys.
	Translator *i18n.Translator

	// Window is the debounce window; zero means editor.DefaultWindow.
	Window time.Duration

	// Observer receives page lifecycle events. Optional.
	Observer editor.Observer

	// Node labels the header until a snapshot names the node.
	Node string

	// Remote is an initial snapshot, if one was read before start.
	Remote *moduleconfig.ModuleConfig
}

// AppModel is the top-level model. It owns the scheduler that turns debounce
// timers into messages and hosts the module editor screen.
type AppModel struct {
	Screen RemoteHardwareModel

	// UI state
	Width  int
	Height int

	sched    *TickScheduler
	node     string
	source   string
	syncErr  error
	quitting bool
}

// NewAppModel creates the application and mounts the editor page.
func NewAppModel(opts Options) AppModel {
	sched := NewTickScheduler()

	pageOpts := []editor.Option{editor.WithWindow(opts.Window)}
	if opts.Observer != nil {
		pageOpts = append(pageOpts, editor.WithObserver(opts.Observer))
	}
	page := editor.NewPage(editor.RemoteHardwareBinding(), opts.Store, sched, pageOpts...)

	node := opts.Node
	var remote *moduleconfig.RemoteHardwareConfig
	if opts.Remote != nil {
		remote = opts.Remote.RemoteHardware
		if opts.Remote.Node != "" {
			node = opts.Remote.Node
		}
	}
	page.Mount(remote)

	return AppModel{
		Screen: NewRemoteHardwareModel(page, opts.Translator),
		sched:  sched,
		node:   node,
	}
}

// Init starts the waiting spinner.
func (m AppModel) Init() tea.Cmd {
	if m.Screen.Page.Remote() != nil {
		return nil
	}
	return m.Screen.Spinner.Tick
}

// Update routes messages. Every path returns the scheduler's queued timers
// so debounce windows opened while handling msg start ticking.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Screen.Help.Width = ContentWidth(msg.Width)
		return m, nil

	case timerFiredMsg:
		m.sched.Fire(msg)
		return m, m.sched.Drain()

	case SnapshotMsg:
		return m.applySnapshot(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || key.Matches(msg, m.Screen.Keys.Quit) {
			return m.quit()
		}
	}

	var cmd tea.Cmd
	m.Screen, cmd = m.Screen.Update(msg)
	return m, tea.Batch(cmd, m.sched.Drain())
}

func (m AppModel) applySnapshot(msg SnapshotMsg) (tea.Model, tea.Cmd) {
	m.source = msg.Source
	if msg.Err != nil {
		m.syncErr = msg.Err
		return m, nil
	}
	m.syncErr = nil

	if msg.Config == nil {
		return m, nil
	}
	if msg.Config.Node != "" {
		m.node = msg.Config.Node
	}

	hadRemote := m.Screen.Page.Remote() != nil
	m.Screen.Page.SyncRemote(msg.Config.RemoteHardware)
	m.Screen.clampCursor()

	var cmd tea.Cmd
	if hadRemote && m.Screen.Page.Remote() == nil {
		cmd = m.Screen.Spinner.Tick
	}
	return m, tea.Batch(cmd, m.sched.Drain())
}

// quit unmounts the page, dropping any write still inside its window, and
// stops the program.
func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.Screen.Page.Unmount()
	m.quitting = true
	return m, tea.Quit
}

// Quitting reports whether the user asked to leave.
func (m AppModel) Quitting() bool {
	return m.quitting
}

// View renders the screen inside the application container.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	content := m.Screen.View()
	if m.syncErr != nil {
		content += "\n" + ErrorBoxStyle.Render(m.Screen.tr.T("config.syncError")+" ("+m.source+"): "+devicesync.ShortMessage(m.syncErr))
	}

	return RenderApplicationContainer(content, m.Screen.HelpView(), m.node, m.Width, m.Height)
}
